package companies

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"company-manager/core/database"
	"company-manager/core/reconcile"
	"company-manager/feature/companies/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned when a company or snapshot does not exist.
var ErrNotFound = errors.New("not found")

const insertBatchSize = 500

// ListParams filters and pages a catalogue listing. Search matches the
// short name, legal name, CNPJ or code, case-insensitively.
type ListParams struct {
	Skip   int
	Limit  int
	Search string
}

func (p ListParams) normalized() ListParams {
	p.Skip = max(p.Skip, 0)
	if p.Limit <= 0 {
		p.Limit = 100
	}
	p.Limit = min(p.Limit, 1000)
	p.Search = strings.TrimSpace(p.Search)
	return p
}

// Repository persists the reconciled catalogue.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a repository on db.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Prepare migrates the catalogue tables and verifies every column the
// repository relies on is present.
func (r *Repository) Prepare(ctx context.Context) error {
	db := r.db.WithContext(ctx)
	if err := db.AutoMigrate(&models.Company{}, &models.Snapshot{}); err != nil {
		return fmt.Errorf("failed to migrate catalogue tables: %w", err)
	}

	required := map[string][]string{
		models.Company{}.TableName():  models.CompanyColumns,
		models.Snapshot{}.TableName(): models.SnapshotColumns,
	}
	for table, cols := range required {
		missing, err := database.MissingColumns(db, table, cols)
		if err != nil {
			return err
		}
		if len(missing) > 0 {
			return fmt.Errorf("table %s is missing columns: %s", table, strings.Join(missing, ", "))
		}
	}
	return nil
}

// Save records a snapshot of result and upserts its companies by code in
// one transaction. Rows the portal no longer lists are pruned only when the
// result is complete or the portal reported an empty catalogue; a failed
// run only records the snapshot.
func (r *Repository) Save(ctx context.Context, result *reconcile.Result) (*models.Snapshot, error) {
	snap := models.NewSnapshot(result)
	status := result.Status()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&snap).Error; err != nil {
			return fmt.Errorf("failed to create snapshot: %w", err)
		}
		if status == reconcile.StatusFailed {
			return nil
		}

		rows := make([]models.Company, 0, len(result.Companies))
		for _, c := range result.Companies {
			rows = append(rows, models.FromRecord(c, snap.ID))
		}
		if len(rows) > 0 {
			upsert := clause.OnConflict{
				Columns: []clause.Column{{Name: "code"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"portal_id", "short_name", "legal_name", "cnpj",
					"city", "state", "active", "snapshot_id", "updated_at",
				}),
			}
			if err := tx.Clauses(upsert).CreateInBatches(rows, insertBatchSize).Error; err != nil {
				return fmt.Errorf("failed to upsert companies: %w", err)
			}
		}

		if status == reconcile.StatusComplete || status == reconcile.StatusEmpty {
			if err := tx.Where("snapshot_id <> ?", snap.ID).Delete(&models.Company{}).Error; err != nil {
				return fmt.Errorf("failed to prune companies: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// List returns one page of the catalogue ordered by short name, with the
// total number of matching rows.
func (r *Repository) List(ctx context.Context, params ListParams) ([]models.Company, int64, error) {
	params = params.normalized()

	filtered := func() *gorm.DB {
		query := r.db.WithContext(ctx).Model(&models.Company{})
		if params.Search != "" {
			pattern := "%" + strings.ToLower(params.Search) + "%"
			query = query.Where(
				"LOWER(short_name) LIKE ? OR LOWER(legal_name) LIKE ? OR LOWER(cnpj) LIKE ?",
				pattern, pattern, pattern,
			)
		}
		return query
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count companies: %w", err)
	}

	var rows []models.Company
	err := filtered().Order("short_name ASC").Order("code ASC").
		Offset(params.Skip).Limit(params.Limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list companies: %w", err)
	}
	return rows, total, nil
}

// FindByCode returns the company with the given code.
func (r *Repository) FindByCode(ctx context.Context, code int64) (*models.Company, error) {
	var row models.Company
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find company %d: %w", code, err)
	}
	return &row, nil
}

// FindByPortalID returns the company with the given portal id.
func (r *Repository) FindByPortalID(ctx context.Context, id string) (*models.Company, error) {
	var row models.Company
	err := r.db.WithContext(ctx).Where("portal_id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find company %s: %w", id, err)
	}
	return &row, nil
}

// Count returns the number of companies in the catalogue.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Company{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count companies: %w", err)
	}
	return n, nil
}

// LatestSnapshot returns the most recent snapshot.
func (r *Repository) LatestSnapshot(ctx context.Context) (*models.Snapshot, error) {
	var snap models.Snapshot
	err := r.db.WithContext(ctx).Order("id DESC").First(&snap).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load latest snapshot: %w", err)
	}
	return &snap, nil
}

// All returns the whole catalogue ordered by short name.
func (r *Repository) All(ctx context.Context) ([]models.Company, error) {
	var rows []models.Company
	if err := r.db.WithContext(ctx).Order("short_name ASC").Order("code ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load companies: %w", err)
	}
	return rows, nil
}

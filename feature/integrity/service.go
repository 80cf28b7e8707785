package integrity

import (
	"context"

	"company-manager/core/storage"
	"company-manager/feature/companies"
	"company-manager/feature/integrity/checks"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service handles integrity checks.
type Service struct {
	client storage.Client
	bucket string
	prefix string
	db     *gorm.DB
	logger *zap.Logger
}

// NewService creates a new integrity service. A nil client or db disables
// the checks that need them.
func NewService(client storage.Client, cfg storage.Config, db *gorm.DB, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		client: client,
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
		db:     db,
		logger: logger,
	}
}

// CheckStructure returns a list of missing folders.
func (s *Service) CheckStructure(ctx context.Context) ([]string, error) {
	return checks.CheckStructure(ctx, s.client, s.bucket, s.prefix)
}

// FixStructure creates the missing folders.
func (s *Service) FixStructure(ctx context.Context, missing []string) error {
	return checks.FixStructure(ctx, s.client, s.bucket, s.logger, missing)
}

// CheckSnapshots returns the snapshot files missing from storage.
func (s *Service) CheckSnapshots(ctx context.Context) ([]string, error) {
	return checks.CheckSnapshots(ctx, s.client, s.bucket, s.prefix)
}

// CheckSchema compares the catalogue tables with the models.
func (s *Service) CheckSchema() (*checks.SchemaReport, error) {
	return checks.CheckSchema(s.db)
}

// CheckCatalogue compares the stored catalogue with the latest run.
func (s *Service) CheckCatalogue(ctx context.Context) (*checks.CatalogueReport, error) {
	if s.db == nil {
		return nil, checks.ErrDatabaseDisabled
	}
	return checks.CheckCatalogue(ctx, companies.NewRepository(s.db))
}

// CheckAll runs every check and collects each outcome under its name.
func (s *Service) CheckAll(ctx context.Context) map[string]any {
	report := make(map[string]any)

	if missing, err := s.CheckStructure(ctx); err != nil {
		report["structure"] = map[string]any{"status": "error", "error": err.Error()}
	} else {
		report["structure"] = map[string]any{"status": "ok", "missing": missing}
	}

	if missing, err := s.CheckSnapshots(ctx); err != nil {
		report["snapshots"] = map[string]any{"status": "error", "error": err.Error()}
	} else {
		report["snapshots"] = map[string]any{"status": "ok", "missing": missing}
	}

	if schema, err := s.CheckSchema(); err != nil {
		report["schema"] = map[string]any{"status": "error", "error": err.Error()}
	} else {
		report["schema"] = schema
	}

	if catalogue, err := s.CheckCatalogue(ctx); err != nil {
		report["catalogue"] = map[string]any{"status": "error", "error": err.Error()}
	} else {
		report["catalogue"] = catalogue
	}

	return report
}

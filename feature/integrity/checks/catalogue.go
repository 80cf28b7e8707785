package checks

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"company-manager/core/reconcile"
	"company-manager/feature/companies"
	"company-manager/feature/companies/models"
)

// CatalogueStore is the read side of the company repository.
type CatalogueStore interface {
	Count(ctx context.Context) (int64, error)
	LatestSnapshot(ctx context.Context) (*models.Snapshot, error)
	All(ctx context.Context) ([]models.Company, error)
}

// CatalogueReport compares the stored catalogue with its latest snapshot.
type CatalogueReport struct {
	Stored             int64            `json:"stored"`
	Snapshot           *models.Snapshot `json:"snapshot,omitempty"`
	DuplicatePortalIDs []string         `json:"duplicate_portal_ids"`
	Issues             []string         `json:"issues"`
	Matched            bool             `json:"matched"`
}

// CheckCatalogue verifies that the stored catalogue agrees with the latest
// recorded reconciliation run.
func CheckCatalogue(ctx context.Context, store CatalogueStore) (*CatalogueReport, error) {
	if store == nil {
		return nil, ErrDatabaseDisabled
	}

	report := &CatalogueReport{DuplicatePortalIDs: []string{}, Issues: []string{}}

	stored, err := store.Count(ctx)
	if err != nil {
		return nil, err
	}
	report.Stored = stored

	snap, err := store.LatestSnapshot(ctx)
	switch {
	case errors.Is(err, companies.ErrNotFound):
		report.Issues = append(report.Issues, "no reconciliation run recorded")
	case err != nil:
		return nil, err
	default:
		report.Snapshot = snap
		report.Issues = append(report.Issues, snapshotIssues(snap, stored)...)
	}

	rows, err := store.All(ctx)
	if err != nil {
		return nil, err
	}
	report.DuplicatePortalIDs = duplicatePortalIDs(rows)
	if len(report.DuplicatePortalIDs) > 0 {
		report.Issues = append(report.Issues, fmt.Sprintf("%d portal ids shared by several codes", len(report.DuplicatePortalIDs)))
	}

	report.Matched = len(report.Issues) == 0
	return report, nil
}

func snapshotIssues(snap *models.Snapshot, stored int64) []string {
	var issues []string
	switch reconcile.Status(snap.Status) {
	case reconcile.StatusPartial:
		issues = append(issues, fmt.Sprintf("latest run is partial: %d of %d companies", snap.Loaded, snap.Expected))
	case reconcile.StatusFailed:
		issues = append(issues, "latest run failed")
	}

	// Partial and failed runs keep earlier rows, so only a shortfall counts there.
	pruned := reconcile.Status(snap.Status) == reconcile.StatusComplete || reconcile.Status(snap.Status) == reconcile.StatusEmpty
	if (pruned && stored != int64(snap.Loaded)) || stored < int64(snap.Loaded) {
		issues = append(issues, fmt.Sprintf("stored %d companies but latest run loaded %d", stored, snap.Loaded))
	}
	return issues
}

func duplicatePortalIDs(rows []models.Company) []string {
	seen := make(map[string]int, len(rows))
	for _, row := range rows {
		if row.PortalID != "" {
			seen[row.PortalID]++
		}
	}

	dups := []string{}
	for id, n := range seen {
		if n > 1 {
			dups = append(dups, id)
		}
	}
	sort.Strings(dups)
	return dups
}

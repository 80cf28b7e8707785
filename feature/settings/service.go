package settings

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"company-manager/core/backend"
	"company-manager/core/reconcile"
	"company-manager/feature/companies"

	"go.uber.org/zap"
)

// ErrUnknownCompany is returned when selecting a company that is not in
// the reconciled catalogue.
var ErrUnknownCompany = errors.New("unknown company")

// Portal is the session-scoped selection API of the portal.
type Portal interface {
	ActiveCompany(ctx context.Context) (*reconcile.Company, error)
	SelectCompany(ctx context.Context, id string) (*reconcile.Company, error)
	ClearSelection(ctx context.Context) error
}

// Catalogue resolves companies from the reconciled catalogue.
type Catalogue interface {
	FindByID(ctx context.Context, id string) (*reconcile.Company, error)
	Catalogue(ctx context.Context) ([]reconcile.Company, error)
}

// Service manages the active company of the portal session.
type Service struct {
	portal    Portal
	catalogue Catalogue
	logger    *zap.Logger

	mu       sync.Mutex
	autoDone bool
}

// NewService creates a settings service.
func NewService(portal Portal, catalogue Catalogue, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{portal: portal, catalogue: catalogue, logger: logger}
}

// Current returns the active company, or nil when none is selected.
func (s *Service) Current(ctx context.Context) (*reconcile.Company, error) {
	return s.portal.ActiveCompany(ctx)
}

// Select makes the company with the given portal id active. The id must be
// part of the reconciled catalogue.
func (s *Service) Select(ctx context.Context, id string) (*reconcile.Company, error) {
	if _, err := s.catalogue.FindByID(ctx, id); err != nil {
		if errors.Is(err, companies.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownCompany, id)
		}
		return nil, err
	}

	selected, err := s.portal.SelectCompany(ctx, id)
	if backend.IsNotFound(err) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCompany, id)
	}
	if err != nil {
		return nil, err
	}
	s.logger.Info("Company selected", zap.String("id", selected.ID), zap.Int64("code", selected.Code))
	return selected, nil
}

// Clear removes the active company.
func (s *Service) Clear(ctx context.Context) error {
	if err := s.portal.ClearSelection(ctx); err != nil {
		return err
	}
	s.logger.Info("Company selection cleared")
	return nil
}

// AutoSelect selects the first company in name order when none is active.
// It decides at most once per Service; later calls only report the current
// selection. The boolean reports whether this call made the selection.
func (s *Service) AutoSelect(ctx context.Context) (*reconcile.Company, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.portal.ActiveCompany(ctx)
	if err != nil {
		return nil, false, err
	}
	if s.autoDone || current != nil {
		s.autoDone = true
		return current, false, nil
	}

	list, err := s.catalogue.Catalogue(ctx)
	if err != nil {
		return nil, false, err
	}
	s.autoDone = true
	if len(list) == 0 {
		s.logger.Warn("No companies available for automatic selection")
		return nil, false, nil
	}

	selected, err := s.portal.SelectCompany(ctx, list[0].ID)
	if err != nil {
		// Allow another attempt after a portal failure.
		s.autoDone = false
		return nil, false, err
	}
	s.logger.Info("Company selected automatically", zap.String("id", selected.ID), zap.String("name", selected.ShortName))
	return selected, true, nil
}

package companies

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"company-manager/core/reconcile"
	"company-manager/feature/companies/models"

	"go.uber.org/zap"
)

const cacheKey = "companies"

// sessionSource is a source that can (re)establish its portal session.
type sessionSource interface {
	EnsureSession(ctx context.Context) error
}

// Summary describes the latest reconciliation for API and CLI callers.
type Summary struct {
	Status     reconcile.Status      `json:"status"`
	Message    string                `json:"message"`
	Loaded     int                   `json:"loaded"`
	Expected   int                   `json:"expected"`
	Requests   int                   `json:"requests"`
	Failures   int                   `json:"failures"`
	Phases     []reconcile.PhaseStat `json:"phases,omitempty"`
	DurationMs int64                 `json:"duration_ms"`
	FinishedAt time.Time             `json:"finished_at"`
	Cached     bool                  `json:"cached"`

	SnapshotID   uint   `json:"snapshot_id,omitempty"`
	PersistError string `json:"persist_error,omitempty"`
	ExportKey    string `json:"export_key,omitempty"`
	ExportError  string `json:"export_error,omitempty"`
}

// ListPage is one page of the catalogue.
type ListPage struct {
	Items []reconcile.Company `json:"items"`
	Total int                 `json:"total"`
}

// Service reconciles the portal's company listing and serves the result.
// The database and the exporter are optional sinks.
type Service struct {
	source   reconcile.Source
	opts     reconcile.Options
	repo     *Repository
	exporter *Exporter
	metrics  *Metrics
	logger   *zap.Logger
	cache    *reconcile.Cache[*outcome]

	mu   sync.RWMutex
	last *Summary
}

// NewService creates a companies service. repo, exporter and metrics may be nil.
func NewService(source reconcile.Source, opts reconcile.Options, repo *Repository, exporter *Exporter, metrics *Metrics, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		source:   source,
		opts:     opts,
		repo:     repo,
		exporter: exporter,
		metrics:  metrics,
		logger:   logger,
		cache:    reconcile.NewCache[*outcome](),
	}
}

// Reconcile returns the current catalogue, running a reconciliation when
// the cached one is stale or force is set. Concurrent callers share one run.
func (s *Service) Reconcile(ctx context.Context, force bool) (*reconcile.Result, *Summary) {
	if force {
		s.cache.Invalidate(cacheKey)
	}
	ttl := time.Duration(s.opts.CacheTTLSeconds) * time.Second

	out, cached := s.cache.GetOrLoad(ctx, cacheKey, ttl, s.load)

	summary := *out.summary
	summary.Cached = cached
	return out.result, &summary
}

// outcome pairs a run with the summary of what its sinks did, so callers
// never mix the result of one run with the summary of another.
type outcome struct {
	result  *reconcile.Result
	summary *Summary
}

// load runs one reconciliation and feeds the sinks. The run is shared by
// every waiting caller, so it is detached from the first caller's
// cancellation.
func (s *Service) load(ctx context.Context) *outcome {
	ctx = context.WithoutCancel(ctx)

	if ss, ok := s.source.(sessionSource); ok {
		if err := ss.EnsureSession(ctx); err != nil {
			s.logger.Error("Portal login failed", zap.Error(err))
		}
	}

	s.logger.Info("Reconciling companies")
	sink := func(p reconcile.Progress) {
		s.logger.Debug(p.Message, zap.Stringer("phase", p.Phase))
	}
	result := reconcile.Load(ctx, s.source, s.opts, sink, s.logger)
	s.metrics.Observe(result)

	summary := summarize(result)
	if s.repo != nil {
		if snap, err := s.repo.Save(ctx, result); err != nil {
			s.logger.Error("Failed to persist companies", zap.Error(err))
			summary.PersistError = err.Error()
		} else {
			summary.SnapshotID = snap.ID
		}
	}
	if s.exporter != nil && result.Status() != reconcile.StatusFailed {
		if key, err := s.exporter.Export(ctx, result); err != nil {
			s.logger.Error("Failed to export companies", zap.Error(err))
			summary.ExportError = err.Error()
		} else {
			summary.ExportKey = key
		}
	}

	if !result.Complete() {
		s.logger.Warn(result.Message(),
			zap.Int("loaded", result.Loaded), zap.Int("expected", result.Expected))
	}

	s.mu.Lock()
	s.last = summary
	s.mu.Unlock()
	return &outcome{result: result, summary: summary}
}

func summarize(result *reconcile.Result) *Summary {
	return &Summary{
		Status:     result.Status(),
		Message:    result.Message(),
		Loaded:     result.Loaded,
		Expected:   result.Expected,
		Requests:   result.Requests,
		Failures:   result.Failures,
		Phases:     result.Phases,
		DurationMs: result.Duration.Milliseconds(),
		FinishedAt: result.FinishedAt,
	}
}

// Status returns the latest reconciliation summary: the in-memory one,
// else the last persisted snapshot, else the last export.
func (s *Service) Status(ctx context.Context) (*Summary, error) {
	s.mu.RLock()
	last := s.last
	s.mu.RUnlock()
	if last != nil {
		summary := *last
		return &summary, nil
	}

	if s.repo != nil {
		snap, err := s.repo.LatestSnapshot(ctx)
		if err == nil {
			return snapshotSummary(snap), nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	if s.exporter != nil {
		doc, err := s.exporter.Latest(ctx)
		if err == nil {
			summary := summarize(doc.Result)
			return summary, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	return nil, ErrNotFound
}

func snapshotSummary(snap *models.Snapshot) *Summary {
	r := &reconcile.Result{Loaded: snap.Loaded, Expected: snap.Expected, Failures: snap.Failures}
	return &Summary{
		Status:     reconcile.Status(snap.Status),
		Message:    r.Message(),
		Loaded:     snap.Loaded,
		Expected:   snap.Expected,
		Requests:   snap.Requests,
		Failures:   snap.Failures,
		DurationMs: snap.DurationMs,
		FinishedAt: snap.CreatedAt,
		SnapshotID: snap.ID,
	}
}

// Catalogue returns every known company in locale-aware name order. It
// reconciles on first use when nothing is persisted.
func (s *Service) Catalogue(ctx context.Context) ([]reconcile.Company, error) {
	if s.repo != nil {
		rows, err := s.repo.All(ctx)
		if err != nil {
			return nil, err
		}
		if len(rows) > 0 {
			out := make([]reconcile.Company, len(rows))
			for i, row := range rows {
				out[i] = row.ToRecord()
			}
			reconcile.SortByName(out, s.opts.Locale)
			return out, nil
		}
	}
	return s.current(ctx).Companies, nil
}

// current returns the cached result, reconciling when there is none yet.
func (s *Service) current(ctx context.Context) *reconcile.Result {
	if out, ok := s.cache.Peek(cacheKey); ok {
		return out.result
	}
	result, _ := s.Reconcile(ctx, false)
	return result
}

// List returns one page of the catalogue, from the database when one is
// configured and from the reconciled result otherwise.
func (s *Service) List(ctx context.Context, params ListParams) (*ListPage, error) {
	params = params.normalized()

	if s.repo != nil {
		rows, total, err := s.repo.List(ctx, params)
		if err != nil {
			return nil, err
		}
		page := &ListPage{Items: make([]reconcile.Company, len(rows)), Total: int(total)}
		for i, row := range rows {
			page.Items[i] = row.ToRecord()
		}
		return page, nil
	}

	var matched []reconcile.Company
	for _, c := range s.current(ctx).Companies {
		if matches(c, params.Search) {
			matched = append(matched, c)
		}
	}
	page := &ListPage{Items: []reconcile.Company{}, Total: len(matched)}
	if params.Skip < len(matched) {
		end := min(params.Skip+params.Limit, len(matched))
		page.Items = matched[params.Skip:end]
	}
	return page, nil
}

func matches(c reconcile.Company, search string) bool {
	if search == "" {
		return true
	}
	needle := strings.ToLower(search)
	for _, field := range []string{c.ShortName, c.LegalName, c.CNPJ} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

// Get returns the company with the given code.
func (s *Service) Get(ctx context.Context, code int64) (*reconcile.Company, error) {
	if s.repo != nil {
		row, err := s.repo.FindByCode(ctx, code)
		if err != nil {
			return nil, err
		}
		rec := row.ToRecord()
		return &rec, nil
	}
	for _, c := range s.current(ctx).Companies {
		if c.Code == code {
			return &c, nil
		}
	}
	return nil, fmt.Errorf("company %d: %w", code, ErrNotFound)
}

// FindByID returns the company with the given portal id.
func (s *Service) FindByID(ctx context.Context, id string) (*reconcile.Company, error) {
	if s.repo != nil {
		row, err := s.repo.FindByPortalID(ctx, id)
		if err != nil {
			return nil, err
		}
		rec := row.ToRecord()
		return &rec, nil
	}
	for _, c := range s.current(ctx).Companies {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, fmt.Errorf("company %s: %w", id, ErrNotFound)
}

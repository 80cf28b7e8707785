package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// ErrNilPage is recorded when a source returns neither a page nor an error.
var ErrNilPage = errors.New("source returned no page")

// run is the explicit working set of one reconciliation pass.
type run struct {
	src    Source
	opts   Options
	sink   ProgressSink
	logger *zap.Logger

	companies CompanyMap
	expected  int
	requests  int
	failures  int
	stats     map[Phase]*PhaseStat
}

// Load assembles the fullest deduplicated company set the source will
// yield, escalating Bulk → PagedSweep → CodeProbe → KeywordSweep until the
// set reaches the total declared by the bulk request.
//
// Load never returns an error: failed requests are logged, counted and
// treated as contributing nothing. Requests are issued one at a time. A
// cancelled ctx ends the run early with whatever was gathered.
func Load(ctx context.Context, src Source, opts Options, sink ProgressSink, logger *zap.Logger) *Result {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &run{
		src:       src,
		opts:      opts.withDefaults(),
		sink:      sink,
		logger:    logger,
		companies: make(CompanyMap),
		stats:     make(map[Phase]*PhaseStat),
	}

	start := time.Now()
	phase := PhaseBulk
	for phase != PhaseDone {
		if err := ctx.Err(); err != nil {
			r.logger.Warn("Reconciliation interrupted", zap.Stringer("phase", phase), zap.Error(err))
			break
		}

		r.logger.Debug("Entering phase", zap.Stringer("phase", phase),
			zap.Int("loaded", len(r.companies)), zap.Int("expected", r.expected))

		switch phase {
		case PhaseBulk:
			phase = r.bulk(ctx)
		case PhasePagedSweep:
			phase = r.pagedSweep(ctx)
		case PhaseCodeProbe:
			phase = r.codeProbe(ctx)
		case PhaseKeywordSweep:
			phase = r.keywordSweep(ctx)
		default:
			phase = PhaseDone
		}
	}

	result := r.result(start)
	r.logger.Info("Reconciliation finished",
		zap.String("status", string(result.Status())),
		zap.Int("loaded", result.Loaded),
		zap.Int("expected", result.Expected),
		zap.Int("requests", result.Requests),
		zap.Int("failures", result.Failures),
		zap.Duration("duration", result.Duration),
	)
	return result
}

func (r *run) complete() bool {
	return len(r.companies) >= r.expected
}

// bulk requests one large page and records the declared total.
func (r *run) bulk(ctx context.Context) Phase {
	page, ok := r.fetch(ctx, PhaseBulk, Query{Skip: 0, Limit: r.opts.BulkLimit})
	if ok {
		r.expected = max(page.Total, 0)
		r.merge(PhaseBulk, page.Items)
	}

	// With a failed bulk request expected stays 0, so the later phases
	// would have nothing to aim for.
	if r.complete() {
		return PhaseDone
	}
	return PhasePagedSweep
}

// pagedSweep walks small pages up to the expected page count plus slack.
func (r *run) pagedSweep(ctx context.Context) Phase {
	size := r.opts.PageSize
	expectedPages := (r.expected + size - 1) / size
	bound := expectedPages + r.opts.PageSlack

	for page := 0; page < bound; page++ {
		if ctx.Err() != nil {
			return PhaseDone
		}

		p, ok := r.fetch(ctx, PhasePagedSweep, Query{Skip: page * size, Limit: size})
		added := 0
		if ok {
			added = r.merge(PhasePagedSweep, p.Items)
		}
		if r.complete() {
			return PhaseDone
		}
		if added == 0 && page >= expectedPages {
			r.logger.Debug("Paged sweep exhausted", zap.Int("page", page))
			break
		}
	}
	return PhaseCodeProbe
}

// codeProbe searches each missing code between the known min and max,
// provided the span is narrow enough to enumerate.
func (r *run) codeProbe(ctx context.Context) Phase {
	lo, hi, ok := codeBounds(r.companies)
	if !ok {
		return PhaseKeywordSweep
	}
	// Unsigned so that codes at opposite ends of int64 cannot overflow the span.
	span := uint64(hi) - uint64(lo)
	if span >= uint64(r.opts.CodeRangeBound) {
		r.logger.Info("Code range too wide to probe",
			zap.Int64("min_code", lo), zap.Int64("max_code", hi))
		return PhaseKeywordSweep
	}

	probes := 0
	for off := uint64(0); off <= span && probes < r.opts.MaxCodeProbes; off++ {
		code := lo + int64(off)
		if _, known := r.companies[code]; known {
			continue
		}
		if ctx.Err() != nil {
			return PhaseDone
		}
		probes++

		p, ok := r.fetch(ctx, PhaseCodeProbe, Query{Skip: 0, Limit: r.opts.PageSize, Search: strconv.FormatInt(code, 10)})
		if ok {
			r.merge(PhaseCodeProbe, p.Items)
		}
		if r.complete() {
			return PhaseDone
		}
	}
	return PhaseKeywordSweep
}

// keywordSweep searches generic name fragments. It is best effort.
func (r *run) keywordSweep(ctx context.Context) Phase {
	for _, kw := range r.opts.Keywords {
		if ctx.Err() != nil {
			break
		}
		p, ok := r.fetch(ctx, PhaseKeywordSweep, Query{Skip: 0, Limit: r.opts.KeywordLimit, Search: kw})
		if ok {
			r.merge(PhaseKeywordSweep, p.Items)
		}
		if r.complete() {
			break
		}
	}
	return PhaseDone
}

// fetch issues one request. Every failure kind is logged and reported as
// !ok so callers treat it as an empty page.
func (r *run) fetch(ctx context.Context, phase Phase, q Query) (*Page, bool) {
	stat := r.stat(phase)
	stat.Requests++
	r.requests++

	page, err := r.src.ListCompanies(ctx, q)
	if err == nil && page == nil {
		err = ErrNilPage
	}
	if err != nil {
		stat.Failures++
		r.failures++
		r.logger.Warn("Company listing request failed",
			zap.Stringer("phase", phase),
			zap.Int("skip", q.Skip),
			zap.Int("limit", q.Limit),
			zap.String("search", q.Search),
			zap.Error(err),
		)
		return nil, false
	}
	return page, true
}

func (r *run) merge(phase Phase, items []Company) int {
	var added int
	r.companies, added = MergeByCode(r.companies, items)
	r.stat(phase).Added += added

	if r.sink != nil {
		r.sink(Progress{
			Phase:    phase,
			Loaded:   len(r.companies),
			Expected: r.expected,
			Message:  fmt.Sprintf("loading companies (%d of ~%d)", len(r.companies), max(r.expected, len(r.companies))),
		})
	}
	return added
}

func (r *run) stat(phase Phase) *PhaseStat {
	s, ok := r.stats[phase]
	if !ok {
		s = &PhaseStat{Phase: phase, Name: phase.String()}
		r.stats[phase] = s
	}
	return s
}

func (r *run) result(start time.Time) *Result {
	phases := make([]PhaseStat, 0, len(r.stats))
	for p := PhaseBulk; p < PhaseDone; p++ {
		if s, ok := r.stats[p]; ok {
			phases = append(phases, *s)
		}
	}

	companies := Sorted(r.companies, r.opts.Locale)
	return &Result{
		Companies:  companies,
		Loaded:     len(companies),
		Expected:   r.expected,
		Requests:   r.requests,
		Failures:   r.failures,
		Phases:     phases,
		Duration:   time.Since(start),
		FinishedAt: time.Now(),
	}
}

// Ran reports whether the phase issued at least one request.
func (r *Result) Ran(phase Phase) bool {
	for _, s := range r.Phases {
		if s.Phase == phase && s.Requests > 0 {
			return true
		}
	}
	return false
}

package reconcile

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeSource records every query and answers through respond.
type fakeSource struct {
	calls   []Query
	respond func(q Query) (*Page, error)
}

func (f *fakeSource) ListCompanies(ctx context.Context, q Query) (*Page, error) {
	f.calls = append(f.calls, q)
	return f.respond(q)
}

func (f *fakeSource) searches() []string {
	var out []string
	for _, q := range f.calls {
		if q.Search != "" {
			out = append(out, q.Search)
		}
	}
	return out
}

func company(code int64) Company {
	return Company{
		ID:        fmt.Sprintf("id-%d", code),
		Code:      code,
		ShortName: fmt.Sprintf("Empresa %04d", code),
		LegalName: fmt.Sprintf("Empresa %04d LTDA", code),
	}
}

func companies(from, to int64, skip ...int64) []Company {
	skipped := make(map[int64]bool)
	for _, s := range skip {
		skipped[s] = true
	}
	var out []Company
	for code := from; code <= to; code++ {
		if !skipped[code] {
			out = append(out, company(code))
		}
	}
	return out
}

func slice(all []Company, skip, limit int) []Company {
	if skip >= len(all) {
		return nil
	}
	end := min(skip+limit, len(all))
	// Capped so that callers appending to a page never write into all.
	return all[skip:end:end]
}

func TestLoad_BulkCompleteSkipsLaterPhases(t *testing.T) {
	all := companies(1, 50)
	src := &fakeSource{respond: func(q Query) (*Page, error) {
		return &Page{Items: slice(all, q.Skip, q.Limit), Total: 50}, nil
	}}

	result := Load(context.Background(), src, DefaultOptions(), nil, zap.NewNop())

	require.Len(t, src.calls, 1)
	assert.Equal(t, Query{Skip: 0, Limit: 1000}, src.calls[0])
	assert.Equal(t, 50, result.Loaded)
	assert.Equal(t, 50, result.Expected)
	assert.Equal(t, StatusComplete, result.Status())
	assert.True(t, result.Ran(PhaseBulk))
	assert.False(t, result.Ran(PhasePagedSweep))
	assert.False(t, result.Ran(PhaseCodeProbe))
	assert.False(t, result.Ran(PhaseKeywordSweep))
}

func TestLoad_PagedSweepRecoversShortBulk(t *testing.T) {
	all := companies(1, 50)
	src := &fakeSource{respond: func(q Query) (*Page, error) {
		if q.Limit == 1000 {
			// Bulk under-reports: only the first 40 come back.
			return &Page{Items: all[:40], Total: 50}, nil
		}
		// Every page also repeats the first record.
		items := append([]Company{all[0]}, slice(all, q.Skip, q.Limit)...)
		return &Page{Items: items, Total: 50}, nil
	}}

	opts := DefaultOptions()
	opts.PageSize = 10
	result := Load(context.Background(), src, opts, nil, nil)

	assert.Equal(t, 50, result.Loaded)
	assert.Equal(t, StatusComplete, result.Status())
	assert.Equal(t, "50 companies loaded", result.Message())
	assert.True(t, result.Ran(PhasePagedSweep))
	assert.False(t, result.Ran(PhaseCodeProbe))
	// Bulk plus pages 0..4; page 4 completes the set.
	assert.Len(t, src.calls, 6)
	assert.Equal(t, Query{Skip: 40, Limit: 10}, src.calls[5])
}

func TestLoad_PagedSweepStopsWhenExhausted(t *testing.T) {
	all := companies(1, 50, 10, 20, 30)
	src := &fakeSource{respond: func(q Query) (*Page, error) {
		if q.Search != "" {
			return &Page{Total: 0}, nil
		}
		return &Page{Items: slice(all, q.Skip, q.Limit), Total: 50}, nil
	}}

	opts := DefaultOptions()
	opts.PageSize = 10
	opts.Keywords = []string{"LTDA"}
	result := Load(context.Background(), src, opts, nil, nil)

	paged := 0
	for _, q := range src.calls {
		if q.Search == "" && q.Limit == 10 {
			paged++
		}
	}
	// Pages 0..4 cover the expected count; page 5 adds nothing and ends the sweep.
	assert.Equal(t, 6, paged)
	assert.Equal(t, 47, result.Loaded)
}

func TestLoad_ZeroPageSlackStopsAtExpectedPages(t *testing.T) {
	all := companies(1, 50, 10, 20, 30)
	src := &fakeSource{respond: func(q Query) (*Page, error) {
		if q.Search != "" {
			return &Page{Total: 0}, nil
		}
		return &Page{Items: slice(all, q.Skip, q.Limit), Total: 50}, nil
	}}

	opts := DefaultOptions()
	opts.PageSize = 10
	opts.PageSlack = 0
	opts.Keywords = []string{"LTDA"}
	result := Load(context.Background(), src, opts, nil, nil)

	paged := 0
	for _, q := range src.calls {
		if q.Search == "" && q.Limit == 10 {
			paged++
		}
	}
	assert.Equal(t, 5, paged)
	assert.Equal(t, 47, result.Loaded)
}

func TestLoad_PartialResultAfterAllPhases(t *testing.T) {
	all := companies(1, 50, 10, 20, 30)
	src := &fakeSource{respond: func(q Query) (*Page, error) {
		if q.Search != "" {
			return &Page{Items: nil, Total: 0}, nil
		}
		return &Page{Items: slice(all, q.Skip, q.Limit), Total: 50}, nil
	}}

	opts := DefaultOptions()
	opts.Keywords = []string{"LTDA", "SA"}
	result := Load(context.Background(), src, opts, nil, nil)

	assert.Equal(t, 47, result.Loaded)
	assert.Equal(t, 50, result.Expected)
	assert.Equal(t, StatusPartial, result.Status())
	assert.Contains(t, result.Message(), "47 of 50")
	assert.Equal(t, []string{"10", "20", "30", "LTDA", "SA"}, src.searches())
	assert.Zero(t, result.Failures)
}

func TestLoad_CodeProbeFillsGaps(t *testing.T) {
	all := companies(1, 20)
	src := &fakeSource{respond: func(q Query) (*Page, error) {
		if q.Search != "" {
			code, err := strconv.ParseInt(q.Search, 10, 64)
			require.NoError(t, err)
			return &Page{Items: []Company{company(code)}, Total: 1}, nil
		}
		// Paging never returns codes 5 and 7.
		visible := companies(1, 20, 5, 7)
		return &Page{Items: slice(visible, q.Skip, q.Limit), Total: len(all)}, nil
	}}

	result := Load(context.Background(), src, DefaultOptions(), nil, nil)

	assert.Equal(t, StatusComplete, result.Status())
	assert.Equal(t, []string{"5", "7"}, src.searches())
	assert.False(t, result.Ran(PhaseKeywordSweep))
}

func TestLoad_WideCodeRangeFallsBackToKeywords(t *testing.T) {
	visible := []Company{company(1), company(5000)}
	hidden := company(2500)
	src := &fakeSource{respond: func(q Query) (*Page, error) {
		switch q.Search {
		case "":
			return &Page{Items: slice(visible, q.Skip, q.Limit), Total: 3}, nil
		case "LTDA":
			return &Page{Items: []Company{visible[0], hidden}, Total: 2}, nil
		default:
			return &Page{}, nil
		}
	}}

	opts := DefaultOptions()
	opts.Keywords = []string{"ME", "LTDA", "SA"}
	result := Load(context.Background(), src, opts, nil, nil)

	assert.Equal(t, StatusComplete, result.Status())
	assert.False(t, result.Ran(PhaseCodeProbe))
	// The sweep stops as soon as the set is complete.
	assert.Equal(t, []string{"ME", "LTDA"}, src.searches())
}

func TestLoad_CodesAtInt64ExtremesSkipProbe(t *testing.T) {
	visible := []Company{company(math.MinInt64 + 1), company(math.MaxInt64)}
	src := &fakeSource{respond: func(q Query) (*Page, error) {
		if q.Search != "" {
			return &Page{}, nil
		}
		return &Page{Items: slice(visible, q.Skip, q.Limit), Total: 3}, nil
	}}

	opts := DefaultOptions()
	opts.Keywords = []string{"LTDA"}
	result := Load(context.Background(), src, opts, nil, nil)

	assert.False(t, result.Ran(PhaseCodeProbe))
	assert.Equal(t, []string{"LTDA"}, src.searches())
	assert.Equal(t, StatusPartial, result.Status())
}

func TestLoad_CodeProbeReachesMaxInt64(t *testing.T) {
	visible := []Company{company(math.MaxInt64 - 2), company(math.MaxInt64)}
	hidden := company(math.MaxInt64 - 1)
	src := &fakeSource{respond: func(q Query) (*Page, error) {
		switch q.Search {
		case "":
			return &Page{Items: slice(visible, q.Skip, q.Limit), Total: 4}, nil
		case strconv.FormatInt(hidden.Code, 10):
			return &Page{Items: []Company{hidden}, Total: 1}, nil
		default:
			return &Page{}, nil
		}
	}}

	opts := DefaultOptions()
	opts.Keywords = []string{"LTDA"}
	result := Load(context.Background(), src, opts, nil, nil)

	// One probe for the only gap; the walk ends at the top of the range.
	assert.Equal(t, []string{strconv.FormatInt(hidden.Code, 10), "LTDA"}, src.searches())
	assert.Equal(t, 3, result.Loaded)
	assert.Equal(t, StatusPartial, result.Status())
}

func TestLoad_CodeProbeIsBounded(t *testing.T) {
	visible := []Company{company(1), company(1000)}
	src := &fakeSource{respond: func(q Query) (*Page, error) {
		if q.Search != "" {
			return &Page{}, nil
		}
		return &Page{Items: slice(visible, q.Skip, q.Limit), Total: 1000}, nil
	}}

	opts := DefaultOptions()
	opts.MaxCodeProbes = 5
	opts.Keywords = []string{"LTDA"}
	result := Load(context.Background(), src, opts, nil, nil)

	var probe PhaseStat
	for _, s := range result.Phases {
		if s.Phase == PhaseCodeProbe {
			probe = s
		}
	}
	assert.Equal(t, 5, probe.Requests)
	assert.Equal(t, []string{"2", "3", "4", "5", "6", "LTDA"}, src.searches())
	assert.Equal(t, StatusPartial, result.Status())
}

func TestLoad_BulkNetworkError(t *testing.T) {
	src := &fakeSource{respond: func(q Query) (*Page, error) {
		return nil, errors.New("dial tcp: connection refused")
	}}

	result := Load(context.Background(), src, DefaultOptions(), nil, nil)

	assert.Len(t, src.calls, 1)
	assert.Empty(t, result.Companies)
	assert.Equal(t, 0, result.Loaded)
	assert.Equal(t, 0, result.Expected)
	assert.Equal(t, 1, result.Failures)
	assert.Equal(t, StatusFailed, result.Status())
}

func TestLoad_FailedPagesAreSkipped(t *testing.T) {
	all := companies(1, 30)
	src := &fakeSource{respond: func(q Query) (*Page, error) {
		switch {
		case q.Search != "":
			code, err := strconv.ParseInt(q.Search, 10, 64)
			require.NoError(t, err)
			return &Page{Items: []Company{company(code)}, Total: 1}, nil
		case q.Limit == 1000:
			return &Page{Items: append(all[:10:10], all[29]), Total: 30}, nil
		case q.Skip == 10:
			return nil, errors.New("502 bad gateway")
		case q.Skip == 20:
			return nil, nil
		default:
			return &Page{Items: slice(all, q.Skip, q.Limit), Total: 30}, nil
		}
	}}

	opts := DefaultOptions()
	opts.PageSize = 10
	opts.Keywords = []string{"LTDA"}
	result := Load(context.Background(), src, opts, nil, nil)

	// Codes 11..29 are recovered by probing once paging gives up.
	assert.Equal(t, StatusComplete, result.Status())
	assert.Equal(t, 2, result.Failures)
	assert.True(t, result.Ran(PhaseCodeProbe))
	assert.False(t, result.Ran(PhaseKeywordSweep))
}

func TestLoad_ProgressIsMonotonic(t *testing.T) {
	all := companies(1, 30)
	src := &fakeSource{respond: func(q Query) (*Page, error) {
		if q.Limit == 1000 {
			return &Page{Items: all[:5], Total: 30}, nil
		}
		return &Page{Items: slice(all, q.Skip, q.Limit), Total: 30}, nil
	}}

	var updates []Progress
	opts := DefaultOptions()
	opts.PageSize = 10
	Load(context.Background(), src, opts, func(p Progress) { updates = append(updates, p) }, nil)

	require.NotEmpty(t, updates)
	for i := 1; i < len(updates); i++ {
		assert.GreaterOrEqual(t, updates[i].Loaded, updates[i-1].Loaded)
	}
	last := updates[len(updates)-1]
	assert.Equal(t, 30, last.Loaded)
	assert.Equal(t, PhasePagedSweep, last.Phase)
	assert.Equal(t, "loading companies (30 of ~30)", last.Message)
}

func TestLoad_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	all := companies(1, 100)
	src := &fakeSource{}
	src.respond = func(q Query) (*Page, error) {
		if len(src.calls) == 2 {
			cancel()
		}
		if q.Limit == 1000 {
			return &Page{Items: all[:10], Total: 100}, nil
		}
		return &Page{Items: slice(all, q.Skip, q.Limit), Total: 100}, nil
	}

	opts := DefaultOptions()
	opts.PageSize = 10
	result := Load(ctx, src, opts, nil, nil)

	assert.Len(t, src.calls, 2)
	assert.Equal(t, 10, result.Loaded)
	assert.Equal(t, StatusPartial, result.Status())
}

func TestLoad_ResultIsSortedByName(t *testing.T) {
	items := []Company{
		{Code: 3, ShortName: "Óptica Central"},
		{Code: 1, ShortName: "Zeta"},
		{Code: 2, ShortName: "Ótica Azul"},
		{Code: 4, ShortName: "abc"},
	}
	src := &fakeSource{respond: func(q Query) (*Page, error) {
		return &Page{Items: items, Total: 4}, nil
	}}

	result := Load(context.Background(), src, DefaultOptions(), nil, nil)

	var names []string
	for _, c := range result.Companies {
		names = append(names, c.ShortName)
	}
	assert.Equal(t, []string{"abc", "Óptica Central", "Ótica Azul", "Zeta"}, names)
}

// Whatever order and duplication the pages come in, if their union covers
// every code the loader ends with exactly the declared total.
func TestLoad_UnionCoverageReachesTotal(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for trial := 0; trial < 25; trial++ {
		n := 20 + rng.Intn(200)
		all := companies(1, int64(n))
		perm := rng.Perm(n)
		shuffled := make([]Company, n)
		for i, j := range perm {
			shuffled[i] = all[j]
		}

		bulkCut := rng.Intn(n)
		src := &fakeSource{respond: func(q Query) (*Page, error) {
			if q.Limit == 1000 {
				return &Page{Items: shuffled[:bulkCut], Total: n}, nil
			}
			items := slice(shuffled, q.Skip, q.Limit)
			// Sprinkle duplicates from elsewhere in the set.
			for k := 0; k < 3; k++ {
				items = append(items, shuffled[rng.Intn(n)])
			}
			return &Page{Items: items, Total: n}, nil
		}}

		opts := DefaultOptions()
		opts.PageSize = 1 + rng.Intn(50)
		result := Load(context.Background(), src, opts, nil, nil)

		require.Equal(t, n, result.Loaded, "trial %d", trial)
		assert.Equal(t, StatusComplete, result.Status())
		assert.Len(t, result.Companies, n)
	}
}

func TestSlice_AppendLeavesSourceIntact(t *testing.T) {
	all := companies(1, 5)
	page := slice(all, 0, 2)
	page = append(page, company(99))

	assert.Len(t, page, 3)
	assert.Equal(t, int64(3), all[2].Code)
}

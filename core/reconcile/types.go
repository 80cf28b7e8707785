package reconcile

import (
	"context"
	"fmt"
	"time"
)

// Company is a company record as returned by the portal listing endpoint.
// Records are immutable once fetched.
type Company struct {
	// ID is the portal's opaque, stable identifier.
	ID string `json:"id"`

	// Code is the integer business code (codigo). It is the dedup key and
	// may be sparse across the catalogue.
	Code int64 `json:"codigo"`

	// ShortName is the display name (nome_abreviado), used for sort and search.
	ShortName string `json:"nome_abreviado"`

	// LegalName is the registered name (razao_social).
	LegalName string `json:"razao_social"`

	// CNPJ is the Brazilian company registry number as returned by the portal.
	CNPJ string `json:"cnpj"`

	City   string `json:"cidade,omitempty"`
	State  string `json:"uf,omitempty"`
	Active *bool  `json:"ativo,omitempty"`
}

// CompanyMap accumulates companies keyed by Code across all phases.
type CompanyMap map[int64]Company

// Query is one listing request.
type Query struct {
	Skip   int
	Limit  int
	Search string
}

// Page is one listing response. Total is the server's declared size of
// the whole (filtered) set, which is not always reachable by paging.
type Page struct {
	Items []Company
	Total int
}

// Source is the paginated listing capability the loader reconciles against.
type Source interface {
	ListCompanies(ctx context.Context, q Query) (*Page, error)
}

// Phase is a step of the reconciliation state machine.
type Phase int

const (
	// PhaseBulk requests a single large page.
	PhaseBulk Phase = iota
	// PhasePagedSweep walks conservative pages.
	PhasePagedSweep
	// PhaseCodeProbe searches individual missing codes.
	PhaseCodeProbe
	// PhaseKeywordSweep searches generic business-name terms.
	PhaseKeywordSweep
	// PhaseDone is terminal.
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseBulk:
		return "bulk"
	case PhasePagedSweep:
		return "paged_sweep"
	case PhaseCodeProbe:
		return "code_probe"
	case PhaseKeywordSweep:
		return "keyword_sweep"
	case PhaseDone:
		return "done"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Progress is an advisory running total reported after each request.
type Progress struct {
	Phase    Phase
	Loaded   int
	Expected int
	Message  string
}

// ProgressSink receives progress updates. It is called synchronously from
// the loader, so it must not block for long.
type ProgressSink func(Progress)

// PhaseStat summarizes the work done by one phase.
type PhaseStat struct {
	Phase    Phase  `json:"-"`
	Name     string `json:"phase"`
	Requests int    `json:"requests"`
	Added    int    `json:"added"`
	Failures int    `json:"failures"`
}

// Status classifies a finished reconciliation for the caller.
type Status string

const (
	// StatusComplete means every expected company was loaded.
	StatusComplete Status = "complete"
	// StatusPartial means fewer companies than the declared total were found.
	StatusPartial Status = "partial"
	// StatusEmpty means the portal reported no companies at all.
	StatusEmpty Status = "empty"
	// StatusFailed means nothing could be loaded because requests failed.
	StatusFailed Status = "failed"
)

// Result is the outcome of one reconciliation run.
type Result struct {
	// Companies is sorted by ShortName using the configured locale.
	Companies []Company `json:"items"`

	// Loaded equals len(Companies): the number of unique codes found.
	Loaded int `json:"loaded"`

	// Expected is the total declared by the bulk request, 0 if it failed.
	Expected int `json:"expected"`

	Requests   int           `json:"requests"`
	Failures   int           `json:"failures"`
	Phases     []PhaseStat   `json:"phases"`
	Duration   time.Duration `json:"duration_ns"`
	FinishedAt time.Time     `json:"finished_at"`
}

// Status reports full, partial or failed completion.
func (r *Result) Status() Status {
	switch {
	case r.Loaded == 0 && r.Failures > 0:
		return StatusFailed
	case r.Loaded == 0 && r.Expected == 0:
		return StatusEmpty
	case r.Loaded >= r.Expected:
		return StatusComplete
	default:
		return StatusPartial
	}
}

// Message is the human-readable status line shown to operators.
func (r *Result) Message() string {
	switch r.Status() {
	case StatusFailed:
		return "failed to load companies"
	case StatusEmpty:
		return "no companies available"
	case StatusComplete:
		return fmt.Sprintf("%d companies loaded", r.Loaded)
	default:
		return fmt.Sprintf("%d of %d companies loaded; the list may be incomplete", r.Loaded, r.Expected)
	}
}

// Complete reports whether Loaded reached Expected.
func (r *Result) Complete() bool {
	return r.Status() == StatusComplete
}

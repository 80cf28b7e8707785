package reconcile

// DefaultKeywords are generic organisational-name fragments searched as a
// last resort: legal-entity suffixes and common Brazilian business words.
var DefaultKeywords = []string{
	"LTDA", "ME", "EPP", "EIRELI", "S/A", "SA",
	"COMERCIO", "SERVICOS", "INDUSTRIA", "TRANSPORTES", "CONSTRUCAO",
	"ASSOCIACAO", "CONDOMINIO", "CLINICA", "HOSPITAL", "ESCOLA",
	"EMPRESA", "GRUPO", "BRASIL",
}

// Options tunes the reconciliation phases. Zero values take the defaults.
type Options struct {
	// BulkLimit is the page size of the single bulk request.
	BulkLimit int `mapstructure:"bulk_limit" default:"1000"`
	// PageSize is the conservative page size of the paged sweep.
	PageSize int `mapstructure:"page_size" default:"100"`
	// PageSlack is how many pages past the expected count the sweep may go.
	PageSlack int `mapstructure:"page_slack" default:"3"`
	// CodeRangeBound is the widest max-min code span the probe will enumerate.
	CodeRangeBound int64 `mapstructure:"code_range_bound" default:"2000"`
	// MaxCodeProbes caps the number of search-by-code requests.
	MaxCodeProbes int `mapstructure:"max_code_probes" default:"100"`
	// KeywordLimit is the page size of each keyword search.
	KeywordLimit int `mapstructure:"keyword_limit" default:"1000"`
	// Keywords are the search terms of the keyword sweep.
	Keywords []string `mapstructure:"keywords" default:""`
	// Locale is the BCP-47 tag used to order companies by name.
	Locale string `mapstructure:"locale" default:"pt-BR"`
	// CacheTTLSeconds is how long a result is served from cache (0 disables).
	CacheTTLSeconds int `mapstructure:"cache_ttl_seconds" default:"300"`
}

// DefaultOptions returns the stock tuning.
func DefaultOptions() Options {
	return Options{PageSlack: 3}.withDefaults()
}

func (o Options) withDefaults() Options {
	if o.BulkLimit <= 0 {
		o.BulkLimit = 1000
	}
	if o.PageSize <= 0 {
		o.PageSize = 100
	}
	// Zero slack is a valid setting: stop at the expected page count.
	if o.PageSlack < 0 {
		o.PageSlack = 3
	}
	if o.CodeRangeBound <= 0 {
		o.CodeRangeBound = 2000
	}
	if o.MaxCodeProbes <= 0 {
		o.MaxCodeProbes = 100
	}
	if o.KeywordLimit <= 0 {
		o.KeywordLimit = 1000
	}
	if len(o.Keywords) == 0 {
		o.Keywords = DefaultKeywords
	}
	if o.Locale == "" {
		o.Locale = "pt-BR"
	}
	return o
}

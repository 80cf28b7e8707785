package reconcile

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortByName orders companies by ShortName using the collation rules of
// locale (e.g. "pt-BR"), breaking ties by Code. An unparsable locale
// falls back to the root collation.
func SortByName(companies []Company, locale string) {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.Und
	}
	// Collators keep internal buffers and are not safe for concurrent use.
	c := collate.New(tag)

	sort.SliceStable(companies, func(i, j int) bool {
		if cmp := c.CompareString(companies[i].ShortName, companies[j].ShortName); cmp != 0 {
			return cmp < 0
		}
		return companies[i].Code < companies[j].Code
	})
}

// Sorted flattens the map into a slice ordered by SortByName.
func Sorted(m CompanyMap, locale string) []Company {
	out := make([]Company, 0, len(m))
	for _, c := range m {
		out = append(out, c)
	}
	SortByName(out, locale)
	return out
}

package reconcile

// MergeByCode inserts the incoming companies whose Code is not yet present
// and returns the map with the number of new entries. A code already in
// the map is never overwritten, so the size only ever grows by the number
// of previously unseen codes. A nil map is allocated.
func MergeByCode(existing CompanyMap, incoming []Company) (CompanyMap, int) {
	if existing == nil {
		existing = make(CompanyMap, len(incoming))
	}

	added := 0
	for _, c := range incoming {
		if _, seen := existing[c.Code]; seen {
			continue
		}
		existing[c.Code] = c
		added++
	}
	return existing, added
}

// codeBounds returns the smallest and largest known code.
func codeBounds(m CompanyMap) (lo, hi int64, ok bool) {
	for code := range m {
		if !ok {
			lo, hi, ok = code, code, true
			continue
		}
		lo = min(lo, code)
		hi = max(hi, code)
	}
	return lo, hi, ok
}

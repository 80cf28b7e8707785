// Package reconcile assembles a complete, deduplicated company catalogue
// from a paginated listing endpoint whose declared total is not reliably
// reachable by plain paging: pages may come back short, overlap, or repeat
// records.
//
// # Phases
//
// Load is a small state machine. Each phase runs only if the previous one
// left the set smaller than the total declared by the bulk request:
//
//  1. Bulk: one request with a large limit; records the expected total.
//  2. PagedSweep: conservative pages up to ceil(total/size) + slack,
//     stopping once a page past the expected count adds nothing.
//  3. CodeProbe: when max-min of the known codes is narrow, search each
//     missing code individually, up to a fixed number of probes.
//  4. KeywordSweep: search generic business-name fragments. Best effort.
//
// Records are merged by their business code with MergeByCode, which never
// overwrites an existing code. The finished set is ordered by short name
// with locale-aware collation.
//
// # Failure Semantics
//
// A transport error, a non-2xx response or a malformed body is logged and
// counted, and the request contributes nothing. Load itself never fails;
// callers inspect Result.Status to tell full from partial success.
//
// # Caching
//
// Cache keeps the last result per key with a TTL and uses singleflight so
// concurrent callers share one reconciliation run.
//
// # Usage
//
//	result := reconcile.Load(ctx, client, reconcile.DefaultOptions(), func(p reconcile.Progress) {
//	    log.Info(p.Message)
//	}, log)
//	if !result.Complete() {
//	    log.Warn(result.Message())
//	}
//
// The escalation exists to cope with the portal's inconsistent paging; with
// a consistent backend the bulk phase completes on its own.
package reconcile

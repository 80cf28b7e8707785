// Package companies serves the reconciled company catalogue.
//
// The Service runs the portal reconciliation (core/reconcile) behind a TTL
// cache, then feeds the result to the optional sinks: the Repository
// (GORM, MySQL or SQLite) and the Exporter (JSON snapshots in S3/MinIO).
// Prometheus metrics are recorded for every run.
//
// # Routes
//
//	GET  /companies            list (skip, limit, search)
//	GET  /companies/status     latest reconciliation summary
//	POST /companies/reconcile  run a reconciliation (force=true bypasses the cache)
//	GET  /companies/:code      one company by code
package companies

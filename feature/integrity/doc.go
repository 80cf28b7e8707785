// Package integrity provides health checks for the catalogue's sinks.
//
// Unlike the companies feature, which produces the catalogue, this package
// validates that what was stored is usable.
//
// # Checks Provided
//
//   - Structure: the snapshot folder exists in the storage bucket.
//   - Snapshots: latest.json is present under the snapshot prefix.
//   - Schema: the companies and company_snapshots tables match the models (columns, types).
//   - Catalogue: the stored row count agrees with the latest run, and no portal id is shared by two codes.
//
// # HTTP Endpoints
//
//   - GET /integrity : Runs all checks.
//   - GET /integrity/structure : Runs structure check (supports ?fix=true).
//   - GET /integrity/snapshots : Runs snapshot check.
//   - GET /integrity/schema : Runs schema check.
//   - GET /integrity/catalogue : Runs catalogue check.
package integrity

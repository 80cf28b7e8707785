// Package middleware groups the Fiber middleware mounted by the start command
// in front of the company and settings routes.
//
// # Subpackages
//
//   - auth: checks the X-API-Key header (or a Bearer token) with a
//     constant-time compare. An empty key turns the check off, and path
//     prefixes listed in Config.Skip (the start command passes /swagger and
//     /metrics) are always served.
//   - rayid: tags each request with a UUID kept in the "ray_id" locals and
//     echoed in the X-Ray-ID response header. A valid UUID sent by the caller
//     is reused. The request logger reads it back through logger.WithRayID.
//
// rayid is registered first so that rejected requests still carry an id.
package middleware

// Package backend is the HTTP client for the portal REST API.
//
// Client implements reconcile.Source over the paginated company listing
// and wraps the session endpoints used by the settings page: login and the
// active-company selection. Session state lives in the client's cookie jar.
package backend

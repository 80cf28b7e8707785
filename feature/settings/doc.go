// Package settings manages the active company of the portal session, as
// the portal's settings page does: read it, select one from the reconciled
// catalogue, clear it, or pick the first company by name when none is set.
package settings

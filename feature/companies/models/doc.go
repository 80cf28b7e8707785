// Package models defines the GORM models of the company catalogue: one row
// per reconciled company and one snapshot row per persisted run.
package models

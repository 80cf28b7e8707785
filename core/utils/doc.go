// Package utils contains small conversion helpers for loosely typed input.
package utils

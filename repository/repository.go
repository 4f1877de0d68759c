// Package repository holds the sentinel errors both storage backends
// report for expected outcomes. Services translate them into the
// user-facing fault taxonomy; any other error means the store itself
// failed.
package repository

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrNoStock         = errors.New("no stock")
	ErrDecommissioned  = errors.New("book decommissioned")
	ErrActiveLoans     = errors.New("active loans exist")
	ErrAlreadyReturned = errors.New("loan already returned")
)

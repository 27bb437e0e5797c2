// Package migrations holds the SQLite schema, embedded into the binaries.
package migrations

import "embed"

// FS contains every NNN_*.sql migration file
//
//go:embed *.sql
var FS embed.FS

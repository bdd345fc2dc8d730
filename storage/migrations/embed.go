package migrations

import "embed"

// FS contains the SQLite migrations for the letters table.
//
//go:embed *.sql
var FS embed.FS

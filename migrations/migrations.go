// Package migrations holds the versioned schema shipped with the binary.
package migrations

import "embed"

// FS contains every NNN_name.up.sql and NNN_name.down.sql file.
//
//go:embed *.sql
var FS embed.FS

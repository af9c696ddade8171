// Package migrations embeds the SQL schema migrations so binaries and tests
// can apply them without a migrations directory on disk.
package migrations

import "embed"

// FS holds the NNNNNN_name.up.sql / .down.sql pairs
//
//go:embed *.sql
var FS embed.FS

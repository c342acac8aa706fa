// Package migrations embeds the schema migrations for the document
// store. Files are named <version>_<name>.up.sql and applied in order.
package migrations

import "embed"

// FS holds the migration files embedded at compile time.
//
//go:embed *.sql
var FS embed.FS

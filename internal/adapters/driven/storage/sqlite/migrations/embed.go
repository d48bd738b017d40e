// Package migrations embeds the SQL migrations that define the bundle schema.
// The highest migration version is the bundle format version.
package migrations

import "embed"

// FS contains all SQL migration files embedded at compile time.
//
//go:embed *.sql
var FS embed.FS

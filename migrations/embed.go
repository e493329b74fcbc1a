// Package migrations embeds the versioned Postgres schema applied by golang-migrate.
package migrations

import "embed"

// FS holds the NNNNNN_name.{up,down}.sql files
//
//go:embed *.sql
var FS embed.FS

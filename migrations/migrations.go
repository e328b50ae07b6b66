// Package migrations embeds the SQL schema for the Postgres dedup store.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS

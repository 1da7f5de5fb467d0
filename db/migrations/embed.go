// Package migrations embeds the SQL schema so cmd/migration works without a
// checkout on disk.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS

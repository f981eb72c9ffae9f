// Package migrations embeds the goose SQL migrations so the server and the
// CLI can apply them without shipping the directory.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS

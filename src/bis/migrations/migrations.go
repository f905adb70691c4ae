// Package migrations embeds the selection list schema
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS

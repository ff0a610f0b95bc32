// Package migrations embeds SQL migration files.
package migrations

import "embed"

// FS contains the ordered *_up.sql and *_down.sql migration files.
//
//go:embed *.sql
var FS embed.FS

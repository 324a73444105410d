// Package migrations embeds the goose SQL migrations for the shared
// Postgres tier.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS

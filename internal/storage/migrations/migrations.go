// Package migrations embeds the goose SQL migrations for the local store.
//
// Migrations are additive: a schema change in a new version never wipes
// previously persisted days, so rehydration after an upgrade merges old data
// with new defaults instead of overwriting it.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS

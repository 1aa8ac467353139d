package migrations

import "embed"

// Migrations holds the schema, applied by golang-migrate through iofs.
//
//go:embed *.sql
var Migrations embed.FS

package db

import "embed"

// Migrations holds the goose SQL files so the binary can migrate without
// the source tree.
//
//go:embed migrations/*.sql
var Migrations embed.FS

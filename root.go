// Package domaincheck embeds static assets shipped with the binary.
package domaincheck

import "embed"

// Migrations holds the goose SQL migrations applied by the migrate command.
//
//go:embed migrations/*.sql
var Migrations embed.FS

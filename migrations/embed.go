// Package migrations embeds the Booking Service schema for golang-migrate.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS

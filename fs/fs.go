// Package appfs embeds the assets shipped with every binary: SQL migrations and email templates.
package appfs

import "embed"

const (
	MigrationsDir     = "migrations"
	EmailTemplatesDir = "templates/email"
)

//go:embed migrations all:templates
var FS embed.FS

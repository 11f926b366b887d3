// Package appfs embeds the SQL migrations and email templates into the binaries.
package appfs

import "embed"

//go:embed migrations/*.sql templates/email/*
var FS embed.FS

const (
	MigrationsDir     = "migrations"
	EmailTemplatesDir = "templates/email"
)

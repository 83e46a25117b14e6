package main

import (
	"context"
	"database/sql"

	"resume-assistant/internal/shared/storage/db"
)

var commands = map[string]func(context.Context, *sql.DB) error{
	"up":     db.RunMigrations,
	"down":   db.RollbackMigration,
	"status": db.MigrationStatus,
}

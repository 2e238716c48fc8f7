// AngelaMos | 2026
// migrate.go

package core

import (
	"context"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/selfmode/selfmode-api/migrations"
)

func (d *Database) Migrate(ctx context.Context) error {
	goose.SetBaseFS(migrations.FS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set migration dialect: %w", err)
	}

	if err := goose.UpContext(ctx, d.DB.DB, "."); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

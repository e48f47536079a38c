package application

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// MigrationRegistry collects embedded schema files from registered modules.
// Apply executes them in registration order; statements are expected to be
// idempotent (CREATE TABLE IF NOT EXISTS and friends).
type MigrationRegistry struct {
	schemas []*embed.FS
}

func (r *MigrationRegistry) RegisterSchema(files *embed.FS) {
	r.schemas = append(r.schemas, files)
}

func (r *MigrationRegistry) Apply(ctx context.Context, pool *pgxpool.Pool) error {
	for _, schema := range r.schemas {
		err := fs.WalkDir(schema, ".", func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !strings.HasSuffix(path, ".sql") {
				return nil
			}
			raw, err := schema.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read schema %s: %w", path, err)
			}
			if _, err := pool.Exec(ctx, string(raw)); err != nil {
				return fmt.Errorf("apply schema %s: %w", path, err)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

package postgres

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// EnsureSchema aplica en orden los scripts idempotentes de schema/.
func EnsureSchema(ctx context.Context, q Querier) error {
	names, err := fs.Glob(schemaFS, "schema/*.sql")
	if err != nil {
		return fmt.Errorf("listar schema: %w", err)
	}
	sort.Strings(names)
	for _, name := range names {
		sql, err := schemaFS.ReadFile(name)
		if err != nil {
			return fmt.Errorf("leer %s: %w", name, err)
		}
		if _, err := q.Exec(ctx, string(sql)); err != nil {
			return fmt.Errorf("aplicar %s: %w", name, err)
		}
	}
	return nil
}

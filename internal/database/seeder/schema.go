package seeder

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"classifieds/internal/database"
)

// ErrSchemaMismatch means the migrated schema lacks columns a seeder writes.
var ErrSchemaMismatch = errors.New("schema mismatch")

// RequireColumns fails with ErrSchemaMismatch naming every column of table that the
// public schema does not have.
func RequireColumns(ctx context.Context, q database.Querier, table string, columns ...string) error {
	if q == nil {
		return database.ErrNilDB
	}
	if strings.TrimSpace(table) == "" || len(columns) == 0 {
		return fmt.Errorf("require columns: empty table or column list")
	}

	rows, err := q.Query(ctx,
		`SELECT column_name FROM information_schema.columns WHERE table_schema = 'public' AND table_name = $1`,
		table,
	)
	if err != nil {
		return fmt.Errorf("inspect %s: %w", table, err)
	}
	defer rows.Close()

	existing := map[string]bool{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return err
		}
		existing[c] = true
	}
	if err := rows.Err(); err != nil {
		return err
	}

	var missing []string
	for _, col := range columns {
		if !existing[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s missing %s", ErrSchemaMismatch, table, strings.Join(missing, ", "))
	}
	return nil
}

package repository

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

type scanner interface {
	Scan(dest ...any) error
}

// Migrate applies every *.up.sql file in fsys in lexical order. The bundled
// migrations are idempotent, so running them on each start is safe.
func Migrate(ctx context.Context, db *sql.DB, fsys fs.FS) error {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("Migrate: read dir: %w", err)
	}

	var upFiles []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".up.sql") {
			upFiles = append(upFiles, e.Name())
		}
	}
	sort.Strings(upFiles)

	for _, f := range upFiles {
		content, err := fs.ReadFile(fsys, f)
		if err != nil {
			return fmt.Errorf("Migrate: read %s: %w", f, err)
		}
		if _, err := db.ExecContext(ctx, string(content)); err != nil {
			return fmt.Errorf("Migrate: execute %s: %w", f, err)
		}
	}
	return nil
}

package zombiezen

import (
	"context"
	"embed"
	"fmt"
	"path"

	"zombiezen.com/go/sqlite/sqlitex"
)

// sqlFiles embeds all SQL scripts from the sql/ subdirectory.
//
//go:embed sql/*.sql
var sqlFiles embed.FS

// CreateSchemas reads a SQL script from the embedded filesystem (e.g.,
// "docs.sql" or "forms.sql") and executes it using the provided connection
// pool.
func CreateSchemas(pool *sqlitex.Pool, schemaName string) error {
	scriptPath := path.Join("sql", schemaName)

	script, err := sqlFiles.ReadFile(scriptPath)
	if err != nil {
		return fmt.Errorf("failed to read embedded sql file %s: %w", scriptPath, err)
	}

	conn, err := pool.Take(context.TODO())
	if err != nil {
		return err
	}
	defer pool.Put(conn)

	if err := sqlitex.ExecuteScript(conn, string(script), nil); err != nil {
		return fmt.Errorf("failed to execute script %s: %w", schemaName, err)
	}

	return nil
}

// CreateDocTables creates the docs and spans tables.
func CreateDocTables(pool *sqlitex.Pool) error {
	return CreateSchemas(pool, "docs.sql")
}

// CreateFormTables creates the forms table.
func CreateFormTables(pool *sqlitex.Pool) error {
	return CreateSchemas(pool, "forms.sql")
}

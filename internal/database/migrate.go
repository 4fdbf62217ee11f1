package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/iliyamo/parking-console/internal/logger"
)

// schema holds the tables, the two booking procedures and the pending-payment
// triggers.  Each file is exactly one statement so the driver can run it
// without client-side delimiter handling.
//
//go:embed schema/*.sql
var schema embed.FS

// Step is one schema statement.
type Step struct {
	Name string
	SQL  string
}

// Steps returns the embedded schema statements in apply order.
func Steps() ([]Step, error) {
	names, err := fs.Glob(schema, "schema/*.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	steps := make([]Step, 0, len(names))
	for _, n := range names {
		b, err := schema.ReadFile(n)
		if err != nil {
			return nil, err
		}
		body := strings.TrimSpace(string(b))
		if body == "" {
			continue
		}
		steps = append(steps, Step{Name: strings.TrimPrefix(n, "schema/"), SQL: body})
	}
	return steps, nil
}

// Migrate applies every schema statement in order.  Tables are created only
// when missing; procedures and triggers are dropped and recreated.
func Migrate(ctx context.Context, db *sql.DB, log *logger.Log) error {
	steps, err := Steps()
	if err != nil {
		return err
	}
	for _, s := range steps {
		if _, err := db.ExecContext(ctx, s.SQL); err != nil {
			return fmt.Errorf("apply %s: %w", s.Name, err)
		}
		log.WithField("step", s.Name).Info("schema step applied")
	}
	return nil
}

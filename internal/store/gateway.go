// Package store is the console's data access layer.  Every call acquires its
// own connection, runs one statement or procedure, and releases the
// connection before returning.  Failures never propagate as errors: they are
// reported to the caller's Reporter as user-facing text and the call returns
// an empty result, false, or a failed Outcome.  An empty Fetch therefore
// means either "no rows" or "query failed and was reported".
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/parking-console/internal/logger"
)

// Reporter receives user-facing failure messages.
type Reporter interface {
	Report(msg string)
}

// Guard runs inside the transaction of a guarded command, before the
// command itself.  A non-nil error aborts and rolls back the command.
type Guard func(ctx context.Context, tx *sql.Tx) error

// Procedure is an in-process implementation of a named stored procedure.
// It runs inside a transaction owned by the gateway and returns the single
// result row, or nil when it produces no result set.
type Procedure func(ctx context.Context, tx *sql.Tx, args ...any) (Record, error)

// Outcome is the result of Call.  OK is false when the procedure failed (the
// failure has already been reported).  Record is nil when the procedure
// succeeded without a result set.
type Outcome struct {
	OK     bool
	Record Record
}

// Message returns the procedure's "message" column, if any.
func (o Outcome) Message() (string, bool) {
	if !o.OK || o.Record == nil || !o.Record.Has("message") {
		return "", false
	}
	return o.Record.String("message"), true
}

var procName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

type Gateway struct {
	db    *sql.DB
	log   *logger.Log
	procs map[string]Procedure
}

// NewGateway binds a gateway to db.  A nil log discards output.
func NewGateway(db *sql.DB, log *logger.Log) *Gateway {
	if db == nil {
		panic("nil database passed to NewGateway")
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Gateway{db: db, log: log.WithEntryName("store"), procs: map[string]Procedure{}}
}

// Register makes Call run fn in-process instead of issuing CALL name(...).
func (g *Gateway) Register(name string, fn Procedure) {
	g.procs[name] = fn
}

// Fetch runs a read-only statement and returns every row.  It returns an
// empty slice when no rows match and also after reporting a failure.
func (g *Gateway) Fetch(ctx context.Context, rep Reporter, query string, args ...any) []Record {
	conn, ok := g.connect(ctx, rep)
	if !ok {
		return []Record{}
	}
	defer conn.Close()

	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		g.fail(rep, "Database Query Error", err, query)
		return []Record{}
	}
	defer rows.Close()
	out, err := scanAll(rows)
	if err != nil {
		g.fail(rep, "Database Query Error", err, query)
		return []Record{}
	}
	return out
}

// Execute runs a mutating statement in its own transaction.  It reports and
// returns false on failure.  No row count is returned.
func (g *Gateway) Execute(ctx context.Context, rep Reporter, command string, args ...any) bool {
	return g.ExecuteGuarded(ctx, rep, nil, command, args...)
}

// ExecuteGuarded is Execute with a guard evaluated in the same transaction
// before the command.  A guard error is reported like a store rejection.
func (g *Gateway) ExecuteGuarded(ctx context.Context, rep Reporter, guard Guard, command string, args ...any) bool {
	conn, ok := g.connect(ctx, rep)
	if !ok {
		return false
	}
	defer conn.Close()

	err := withTx(ctx, conn, func(tx *sql.Tx) error {
		if guard != nil {
			if err := guard(ctx, tx); err != nil {
				return err
			}
		}
		_, err := tx.ExecContext(ctx, command, args...)
		return err
	})
	if err != nil {
		g.fail(rep, "Database Command Error", err, command)
		return false
	}
	return true
}

// Call invokes a named procedure with positional arguments and commits its
// side effects.  In-process procedures registered with Register take
// precedence over the database's own.
func (g *Gateway) Call(ctx context.Context, rep Reporter, name string, args ...any) Outcome {
	label := fmt.Sprintf("Procedure Error (%s)", name)
	if !procName.MatchString(name) {
		g.fail(rep, label, errors.New("invalid procedure name"), name)
		return Outcome{}
	}
	conn, ok := g.connect(ctx, rep)
	if !ok {
		return Outcome{}
	}
	defer conn.Close()

	var rec Record
	err := withTx(ctx, conn, func(tx *sql.Tx) error {
		if fn, ok := g.procs[name]; ok {
			r, err := fn(ctx, tx, args...)
			rec = r
			return err
		}
		r, err := callStored(ctx, tx, name, args)
		rec = r
		return err
	})
	if err != nil {
		g.fail(rep, label, err, name)
		return Outcome{}
	}
	return Outcome{OK: true, Record: rec}
}

func callStored(ctx context.Context, tx *sql.Tx, name string, args []any) (Record, error) {
	marks := strings.TrimSuffix(strings.Repeat("?,", len(args)), ",")
	rows, err := tx.QueryContext(ctx, "CALL "+name+"("+marks+")", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var all []Record
	for {
		batch, err := scanAll(rows)
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if !rows.NextResultSet() {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, nil
	}
	return all[0], nil
}

func withTx(ctx context.Context, conn *sql.Conn, fn func(tx *sql.Tx) error) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

func (g *Gateway) connect(ctx context.Context, rep Reporter) (*sql.Conn, bool) {
	conn, err := g.db.Conn(ctx)
	if err != nil {
		g.log.WithErr(err).Warn("acquire connection failed")
		report(rep, "Error connecting to database: "+errorText(err))
		return nil, false
	}
	return conn, true
}

func (g *Gateway) fail(rep Reporter, label string, err error, statement string) {
	g.log.WithErr(err).WithField("statement", compact(statement)).Warn(label)
	report(rep, label+": "+errorText(err))
}

func report(rep Reporter, msg string) {
	if rep != nil {
		rep.Report(msg)
	}
}

// errorText returns the server's own message for MySQL errors, so a
// SIGNAL from a trigger or procedure reaches the operator verbatim.
func errorText(err error) string {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Message
	}
	return err.Error()
}

func compact(s string) string { return strings.Join(strings.Fields(s), " ") }

func scanAll(rows *sql.Rows) ([]Record, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	out := []Record{}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		rec := make(Record, len(cols))
		for i, c := range cols {
			if b, ok := vals[i].([]byte); ok {
				rec[c] = string(b)
			} else {
				rec[c] = vals[i]
			}
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

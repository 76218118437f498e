package sql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/syssam/daoism/dialect"
	"github.com/syssam/daoism/statement"
)

// Executor runs built statements through a dialect.ExecQuerier. It
// implements the executor the DAO engine and the sequence generators consume.
type Executor struct {
	drv dialect.ExecQuerier
}

// NewExecutor returns an Executor running statements on drv. drv is usually
// a *Driver, a *StatsDriver or a transaction started from either.
func NewExecutor(drv dialect.ExecQuerier) *Executor {
	return &Executor{drv: drv}
}

// Query runs a SELECT statement and returns its rows keyed by column name.
// It never returns a nil slice on success.
func (e *Executor) Query(ctx context.Context, query string, args []statement.Binding) ([]map[string]any, error) {
	rows := &Rows{}
	if err := e.drv.Query(ctx, query, values(args), rows); err != nil {
		return nil, err
	}
	return ScanMaps(rows)
}

// Insert runs an INSERT statement. It returns the keys generated by the
// database, when the driver reports them, and the affected row count.
// Statements with a RETURNING clause are run as queries and every returned
// row contributes its first column as a key.
func (e *Executor) Insert(ctx context.Context, query string, args []statement.Binding) ([]any, int64, error) {
	if hasReturning(query) {
		rows, err := e.Query(ctx, query, args)
		if err != nil {
			return nil, 0, err
		}
		keys := make([]any, 0, len(rows))
		for _, r := range rows {
			for _, v := range r {
				keys = append(keys, v)
				break
			}
		}
		return keys, int64(len(rows)), nil
	}
	var res sql.Result
	if err := e.drv.Exec(ctx, query, values(args), &res); err != nil {
		return nil, 0, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, 0, fmt.Errorf("dialect/sql: rows affected: %w", err)
	}
	var keys []any
	// Drivers without LastInsertId support (lib/pq) report an error here.
	if id, err := res.LastInsertId(); err == nil && id != 0 && affected > 0 {
		keys = append(keys, id)
	}
	return keys, affected, nil
}

// Update runs any other statement and returns the affected row count.
// Statements that do not report a count, such as DDL on some drivers,
// return 0.
func (e *Executor) Update(ctx context.Context, query string, args []statement.Binding) (int64, error) {
	var res sql.Result
	if err := e.drv.Exec(ctx, query, values(args), &res); err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return n, nil
}

// values converts bindings to driver arguments. Booleans are bound by the
// engine as the strings "true" and "false".
func values(args []statement.Binding) []any {
	argv := make([]any, len(args))
	for i, a := range args {
		argv[i] = a.Value
		if strings.EqualFold(a.Type, "BOOLEAN") {
			if s, ok := a.Value.(string); ok {
				argv[i] = s == "true"
			}
		}
	}
	return argv
}

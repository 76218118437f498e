package daoism

import (
	"context"
	"strings"
	"unicode"

	"github.com/syssam/daoism/statement"
)

// Executor runs built statements. The dialect/sql package provides an
// implementation over database/sql.
type Executor interface {
	// Query runs a select statement and returns its rows keyed by column.
	Query(ctx context.Context, query string, args []Binding) ([]map[string]any, error)
	// Insert runs an insert statement and returns the keys generated by the
	// database, if any, and the affected row count.
	Insert(ctx context.Context, query string, args []Binding) ([]any, int64, error)
	// Update runs any other statement and returns the affected row count.
	Update(ctx context.Context, query string, args []Binding) (int64, error)
}

// result is the outcome of one executed statement.
type result struct {
	rows     []map[string]any
	keys     []any
	affected int64
}

// keyword returns the lower-cased leading keyword of query.
func keyword(query string) string {
	query = strings.TrimLeftFunc(query, unicode.IsSpace)
	end := strings.IndexFunc(query, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	if end < 0 {
		end = len(query)
	}
	return strings.ToLower(query[:end])
}

// execute binds and runs st, routing it to the executor by its leading
// keyword. Query results are never nil.
func (d *DAO) execute(ctx context.Context, op string, st statement.Statement, src any) (*result, error) {
	args, err := d.bind(op, st, src)
	if err != nil {
		return nil, err
	}
	query := st.Build()
	d.log.DebugContext(ctx, "executing statement", "op", op, "sql", query, "args", len(args))
	res := &result{}
	switch keyword(query) {
	case "select":
		rows, err := d.exec.Query(ctx, query, args)
		if err != nil {
			return nil, &QueryError{Table: d.table, Op: op, SQL: query, Err: err}
		}
		if rows == nil {
			rows = []map[string]any{}
		}
		res.rows = rows
	case "insert":
		keys, n, err := d.exec.Insert(ctx, query, args)
		if err != nil {
			return nil, &MutationError{Table: d.table, Op: op, SQL: query, Err: err}
		}
		res.keys, res.affected = keys, n
	default:
		n, err := d.exec.Update(ctx, query, args)
		if err != nil {
			return nil, &MutationError{Table: d.table, Op: op, SQL: query, Err: err}
		}
		res.affected = n
	}
	return res, nil
}

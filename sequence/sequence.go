// Package sequence provides primary key generators for auto-increment keys.
package sequence

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/syssam/daoism/dialect"
	"github.com/syssam/daoism/statement"
)

// Generator draws primary key values.
type Generator interface {
	// Nextval returns the next value of the named sequence. table names the
	// table the sequence feeds; a new sequence starts after its row count.
	Nextval(ctx context.Context, name, table string) (any, error)
	// Drop removes the named sequence.
	Drop(ctx context.Context, name string) error
}

// Executor runs statements for the SQL generator. *sql.Executor from
// dialect/sql implements it.
type Executor interface {
	Query(ctx context.Context, query string, args []statement.Binding) ([]map[string]any, error)
	Update(ctx context.Context, query string, args []statement.Binding) (int64, error)
}

// DefaultTable is the table holding sequence values on dialects without
// native sequences.
const DefaultTable = "DAOISM_SEQUENCES"

// SQL generates values with native sequences on PostgreSQL and with a
// sequence table elsewhere.
type SQL struct {
	exec    Executor
	dialect string
	table   string

	mu      sync.Mutex
	created map[string]bool
	ready   bool
}

// Option configures a SQL generator.
type Option func(*SQL)

// WithTable sets the sequence table name used on MySQL and SQLite.
func WithTable(name string) Option {
	return func(s *SQL) {
		s.table = name
	}
}

// NewSQL returns a generator running its statements through exec.
func NewSQL(exec Executor, dialectName string, opts ...Option) *SQL {
	s := &SQL{
		exec:    exec,
		dialect: dialect.Normalize(dialectName),
		table:   DefaultTable,
		created: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Nextval implements Generator.
func (s *SQL) Nextval(ctx context.Context, name, table string) (any, error) {
	if name == "" {
		return nil, fmt.Errorf("sequence: empty sequence name")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dialect == dialect.Postgres {
		return s.native(ctx, name, table)
	}
	return s.tabled(ctx, name, table)
}

// Drop implements Generator.
func (s *SQL) Drop(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.created, name)
	if s.dialect == dialect.Postgres {
		if _, err := s.exec.Update(ctx, "DROP SEQUENCE IF EXISTS "+s.ident(name), nil); err != nil {
			return fmt.Errorf("sequence: drop %s: %w", name, err)
		}
		return nil
	}
	if err := s.ensureTable(ctx); err != nil {
		return err
	}
	if _, err := s.exec.Update(ctx, "DELETE FROM "+s.ident(s.table)+" WHERE "+s.ident("SEQUENCE_NAME")+" = "+s.placeholder(1),
		[]statement.Binding{{Type: "VARCHAR", Value: name}}); err != nil {
		return fmt.Errorf("sequence: drop %s: %w", name, err)
	}
	return nil
}

func (s *SQL) native(ctx context.Context, name, table string) (any, error) {
	if !s.created[name] {
		start, err := s.start(ctx, table)
		if err != nil {
			return nil, err
		}
		q := "CREATE SEQUENCE IF NOT EXISTS " + s.ident(name) + " START WITH " + strconv.FormatInt(start, 10)
		if _, err := s.exec.Update(ctx, q, nil); err != nil {
			return nil, fmt.Errorf("sequence: create %s: %w", name, err)
		}
		s.created[name] = true
	}
	rows, err := s.exec.Query(ctx, "SELECT nextval("+s.placeholder(1)+") AS "+s.ident("VALUE"),
		[]statement.Binding{{Type: "VARCHAR", Value: s.ident(name)}})
	if err != nil {
		return nil, fmt.Errorf("sequence: nextval %s: %w", name, err)
	}
	v, err := first(rows)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (s *SQL) tabled(ctx context.Context, name, table string) (any, error) {
	if err := s.ensureTable(ctx); err != nil {
		return nil, err
	}
	nameArg := statement.Binding{Type: "VARCHAR", Value: name}
	rows, err := s.exec.Query(ctx, "SELECT "+s.ident("SEQUENCE_VALUE")+" FROM "+s.ident(s.table)+" WHERE "+s.ident("SEQUENCE_NAME")+" = "+s.placeholder(1),
		[]statement.Binding{nameArg})
	if err != nil {
		return nil, fmt.Errorf("sequence: read %s: %w", name, err)
	}
	if len(rows) == 0 {
		start, err := s.start(ctx, table)
		if err != nil {
			return nil, err
		}
		q := "INSERT INTO " + s.ident(s.table) + " (" + s.ident("SEQUENCE_NAME") + ", " + s.ident("SEQUENCE_VALUE") + ") VALUES (" + s.placeholder(1) + ", " + s.placeholder(2) + ")"
		if _, err := s.exec.Update(ctx, q, []statement.Binding{nameArg, {Type: "BIGINT", Value: start}}); err != nil {
			return nil, fmt.Errorf("sequence: create %s: %w", name, err)
		}
		return start, nil
	}
	cur, err := first(rows)
	if err != nil {
		return nil, err
	}
	next := cur + 1
	q := "UPDATE " + s.ident(s.table) + " SET " + s.ident("SEQUENCE_VALUE") + " = " + s.placeholder(1) + " WHERE " + s.ident("SEQUENCE_NAME") + " = " + s.placeholder(2)
	if _, err := s.exec.Update(ctx, q, []statement.Binding{{Type: "BIGINT", Value: next}, nameArg}); err != nil {
		return nil, fmt.Errorf("sequence: advance %s: %w", name, err)
	}
	return next, nil
}

func (s *SQL) ensureTable(ctx context.Context) error {
	if s.ready {
		return nil
	}
	q := "CREATE TABLE IF NOT EXISTS " + s.ident(s.table) + " (" +
		s.ident("SEQUENCE_NAME") + " VARCHAR(255) NOT NULL PRIMARY KEY, " +
		s.ident("SEQUENCE_VALUE") + " BIGINT NOT NULL)"
	if _, err := s.exec.Update(ctx, q, nil); err != nil {
		return fmt.Errorf("sequence: create table %s: %w", s.table, err)
	}
	s.ready = true
	return nil
}

// start returns the first value of a new sequence feeding table.
func (s *SQL) start(ctx context.Context, table string) (int64, error) {
	if table == "" {
		return 1, nil
	}
	rows, err := s.exec.Query(ctx, "SELECT COUNT(*) AS "+s.ident("COUNT")+" FROM "+s.ident(table), nil)
	if err != nil {
		return 0, fmt.Errorf("sequence: count %s: %w", table, err)
	}
	n, err := first(rows)
	if err != nil {
		return 0, err
	}
	return n + 1, nil
}

func (s *SQL) ident(name string) string {
	q := `"`
	if s.dialect == dialect.MySQL {
		q = "`"
	}
	return q + strings.ReplaceAll(name, q, q+q) + q
}

func (s *SQL) placeholder(i int) string {
	if s.dialect == dialect.Postgres {
		return "$" + strconv.Itoa(i)
	}
	return "?"
}

// first returns the first column of the first row as an int64.
func first(rows []map[string]any) (int64, error) {
	if len(rows) == 0 {
		return 0, fmt.Errorf("sequence: no rows")
	}
	for _, v := range rows[0] {
		return toInt64(v)
	}
	return 0, fmt.Errorf("sequence: empty row")
}

func toInt64(v any) (int64, error) {
	switch v := v.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case uint64:
		return int64(v), nil
	case float64:
		return int64(v), nil
	case []byte:
		return strconv.ParseInt(string(v), 10, 64)
	case string:
		return strconv.ParseInt(v, 10, 64)
	}
	return 0, fmt.Errorf("sequence: unexpected value %T", v)
}

// UUID generates random UUID strings. Sequences are not stored, so Drop is a
// no-op.
type UUID struct{}

// Nextval implements Generator.
func (UUID) Nextval(context.Context, string, string) (any, error) {
	return uuid.NewString(), nil
}

// Drop implements Generator.
func (UUID) Drop(context.Context, string) error { return nil }

var (
	_ Generator = (*SQL)(nil)
	_ Generator = UUID{}
)

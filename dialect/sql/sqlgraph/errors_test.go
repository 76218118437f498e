package sqlgraph

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

type stateErr string

func (e stateErr) Error() string    { return "pgx: " + string(e) }
func (e stateErr) SQLState() string { return string(e) }

func TestClassification(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "pq unique", err: &pq.Error{Code: "23505"}, want: "unique_constraint"},
		{name: "pq undefined table", err: &pq.Error{Code: "42P01"}, want: "undefined_table"},
		{name: "pq foreign key", err: &pq.Error{Code: "23503"}, want: "foreign_key_constraint"},
		{name: "pq other", err: &pq.Error{Code: "42601", Message: "UNIQUE constraint failed"}, want: "other"},
		{name: "mysql duplicate", err: &mysql.MySQLError{Number: 1062}, want: "unique_constraint"},
		{name: "mysql no table", err: &mysql.MySQLError{Number: 1146}, want: "undefined_table"},
		{name: "mysql check", err: &mysql.MySQLError{Number: 3819}, want: "check_constraint"},
		{name: "sqlstate", err: stateErr("23514"), want: "check_constraint"},
		{name: "sqlite unique", err: errors.New("constraint failed: UNIQUE constraint failed: USERS.EMAIL (2067)"), want: "unique_constraint"},
		{name: "sqlite no table", err: errors.New("SQL logic error: no such table: USERS (1)"), want: "undefined_table"},
		{name: "wrapped", err: fmt.Errorf("dialect/sql: exec: %w", &pq.Error{Code: "23505"}), want: "unique_constraint"},
		{name: "unknown", err: errors.New("connection refused"), want: "other"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestIsConstraintError(t *testing.T) {
	t.Parallel()
	assert.True(t, IsConstraintError(&mysql.MySQLError{Number: 1452}))
	assert.True(t, IsConstraintError(errors.New("FOREIGN KEY constraint failed")))
	assert.False(t, IsConstraintError(&mysql.MySQLError{Number: 1146}))
	assert.False(t, IsConstraintError(nil))
	assert.False(t, IsUndefinedTableError(nil))
}

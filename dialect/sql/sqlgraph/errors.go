// Package sqlgraph classifies errors reported by the supported SQL drivers.
package sqlgraph

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
)

// PostgreSQL SQLSTATE codes.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
	pgUndefinedTable      = "42P01"
)

// MySQL error numbers.
const (
	mysqlDuplicateEntry         = 1062
	mysqlForeignKeyParent       = 1451 // Cannot delete or update a parent row
	mysqlForeignKeyChild        = 1452 // Cannot add or update a child row
	mysqlCheckConstraintViolate = 3819
	mysqlNoSuchTable            = 1146
)

// sqlStateError is implemented by drivers reporting SQLSTATE codes
// other than lib/pq, such as pgx.
type sqlStateError interface {
	SQLState() string
}

// class describes how each driver reports one kind of failure.
type class struct {
	pg       []string
	mysql    []uint16
	messages []string
}

var (
	uniqueClass = class{
		pg:       []string{pgUniqueViolation},
		mysql:    []uint16{mysqlDuplicateEntry},
		messages: []string{"Error 1062", "violates unique constraint", "UNIQUE constraint failed"},
	}
	foreignKeyClass = class{
		pg:       []string{pgForeignKeyViolation},
		mysql:    []uint16{mysqlForeignKeyParent, mysqlForeignKeyChild},
		messages: []string{"Error 1451", "Error 1452", "violates foreign key constraint", "FOREIGN KEY constraint failed"},
	}
	checkClass = class{
		pg:       []string{pgCheckViolation},
		mysql:    []uint16{mysqlCheckConstraintViolate},
		messages: []string{"Error 3819", "violates check constraint", "CHECK constraint failed"},
	}
	undefinedTableClass = class{
		pg:       []string{pgUndefinedTable},
		mysql:    []uint16{mysqlNoSuchTable},
		messages: []string{"Error 1146", "no such table"},
	}
)

func (c class) match(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return contains(c.pg, string(pqErr.Code))
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return contains(c.mysql, myErr.Number)
	}
	var stErr sqlStateError
	if errors.As(err, &stErr) && contains(c.pg, stErr.SQLState()) {
		return true
	}
	// modernc.org/sqlite and unknown drivers.
	msg := err.Error()
	for _, m := range c.messages {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

// IsConstraintError reports whether err resulted from a database constraint violation.
func IsConstraintError(err error) bool {
	return IsUniqueConstraintError(err) ||
		IsForeignKeyConstraintError(err) ||
		IsCheckConstraintError(err)
}

// IsUniqueConstraintError reports whether err resulted from a uniqueness
// constraint violation, e.g. a duplicate value in a unique index.
func IsUniqueConstraintError(err error) bool {
	return uniqueClass.match(err)
}

// IsForeignKeyConstraintError reports whether err resulted from a foreign-key
// constraint violation.
func IsForeignKeyConstraintError(err error) bool {
	return foreignKeyClass.match(err)
}

// IsCheckConstraintError reports whether err resulted from a check constraint violation.
func IsCheckConstraintError(err error) bool {
	return checkClass.match(err)
}

// IsUndefinedTableError reports whether err resulted from a statement on a
// table that does not exist.
func IsUndefinedTableError(err error) bool {
	return undefinedTableClass.match(err)
}

// Classify returns a short name for the kind of err, for logging.
func Classify(err error) string {
	switch {
	case err == nil:
		return ""
	case IsUndefinedTableError(err):
		return "undefined_table"
	case IsUniqueConstraintError(err):
		return "unique_constraint"
	case IsForeignKeyConstraintError(err):
		return "foreign_key_constraint"
	case IsCheckConstraintError(err):
		return "check_constraint"
	}
	return "other"
}

func contains[T comparable](vs []T, v T) bool {
	for _, x := range vs {
		if x == v {
			return true
		}
	}
	return false
}

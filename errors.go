package daoism

import (
	"errors"
	"fmt"
)

// Sentinel errors for the failure kinds of DAO operations. Typed errors
// below match them with errors.Is.
var (
	// ErrInvalidArgument is returned for nil or malformed arguments and for
	// values that cannot be coerced to their declared type.
	ErrInvalidArgument = errors.New("daoism: invalid argument")

	// ErrMissingArgument is returned when a required argument, such as the id
	// of a remove, is nil. It is an ErrInvalidArgument.
	ErrMissingArgument = fmt.Errorf("%w: missing argument", ErrInvalidArgument)

	// ErrMissingRequired is returned when a mandatory property has no value.
	ErrMissingRequired = errors.New("daoism: missing required property")

	// ErrUniqueConstraint is returned when a unique property value is taken.
	ErrUniqueConstraint = errors.New("daoism: unique constraint violation")

	// ErrUnknownAssociation is returned when an association name is not
	// declared by the description.
	ErrUnknownAssociation = errors.New("daoism: unknown association")

	// ErrNotFound is returned when an entity to traverse from does not exist.
	ErrNotFound = errors.New("daoism: entity not found")

	// ErrExecution is returned when the executor fails to run a statement.
	ErrExecution = errors.New("daoism: execution failure")
)

// ArgumentError describes an invalid argument of an operation.
type ArgumentError struct {
	Table   string
	Op      string
	Message string
	missing bool
}

// Error returns the error string.
func (e *ArgumentError) Error() string {
	return fmt.Sprintf("daoism: %s %s: illegal argument: %s", e.Op, e.Table, e.Message)
}

// Is reports whether target is ErrInvalidArgument, or ErrMissingArgument
// for missing arguments.
func (e *ArgumentError) Is(target error) bool {
	return target == ErrInvalidArgument || (e.missing && target == ErrMissingArgument)
}

// NewArgumentError returns an ArgumentError for op on table.
func NewArgumentError(table, op, format string, args ...any) *ArgumentError {
	return &ArgumentError{Table: table, Op: op, Message: fmt.Sprintf(format, args...)}
}

// NewMissingArgumentError returns an ArgumentError matching ErrMissingArgument.
func NewMissingArgumentError(table, op, name string) *ArgumentError {
	return &ArgumentError{Table: table, Op: op, Message: name + " is required", missing: true}
}

// IsInvalidArgument returns true if err is an ErrInvalidArgument.
func IsInvalidArgument(err error) bool {
	return err != nil && errors.Is(err, ErrInvalidArgument)
}

// ValidationError reports a mandatory property without a value.
type ValidationError struct {
	Table    string
	Property string
}

// Error returns the error string.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("daoism: %s: illegal %s property value: null", e.Table, e.Property)
}

// Is reports whether target is ErrMissingRequired.
func (e *ValidationError) Is(target error) bool {
	return target == ErrMissingRequired
}

// IsValidationError returns true if err is a ValidationError.
func IsValidationError(err error) bool {
	if err == nil {
		return false
	}
	var e *ValidationError
	return errors.As(err, &e)
}

// ConstraintError reports a unique property value that is already stored.
type ConstraintError struct {
	Table    string
	Property string
	Value    any
	// Err is the driver error when the violation was reported by the
	// database rather than found by the pre-insert check.
	Err error
}

// Error returns the error string.
func (e *ConstraintError) Error() string {
	if e.Property == "" {
		return fmt.Sprintf("daoism: %s: unique constraint violation: %v", e.Table, e.Err)
	}
	return fmt.Sprintf("daoism: %s: unique constraint violation for %s [%v]", e.Table, e.Property, e.Value)
}

// Unwrap returns the driver error, if any.
func (e *ConstraintError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrUniqueConstraint.
func (e *ConstraintError) Is(target error) bool {
	return target == ErrUniqueConstraint
}

// IsConstraintError returns true if err is a unique constraint violation.
func IsConstraintError(err error) bool {
	return err != nil && errors.Is(err, ErrUniqueConstraint)
}

// AssociationError reports an association name the description does not declare.
type AssociationError struct {
	Table       string
	Association string
}

// Error returns the error string.
func (e *AssociationError) Error() string {
	return fmt.Sprintf("daoism: %s: unknown association %q", e.Table, e.Association)
}

// Is reports whether target is ErrUnknownAssociation.
func (e *AssociationError) Is(target error) bool {
	return target == ErrUnknownAssociation
}

// IsUnknownAssociation returns true if err is an AssociationError.
func IsUnknownAssociation(err error) bool {
	return err != nil && errors.Is(err, ErrUnknownAssociation)
}

// NotFoundError reports a missing entity.
type NotFoundError struct {
	Table string
	ID    any
}

// Error returns the error string.
func (e *NotFoundError) Error() string {
	if e.ID != nil {
		return fmt.Sprintf("daoism: %s not found (id=%v)", e.Table, e.ID)
	}
	return fmt.Sprintf("daoism: %s not found", e.Table)
}

// Is reports whether target is ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// IsNotFound returns true if err is a NotFoundError.
func IsNotFound(err error) bool {
	return err != nil && errors.Is(err, ErrNotFound)
}

// QueryError wraps a failed read statement.
type QueryError struct {
	Table string
	Op    string // find, list, count, ...
	SQL   string
	Err   error
}

// Error returns the error string.
func (e *QueryError) Error() string {
	return fmt.Sprintf("daoism: querying %s (%s): %v", e.Table, e.Op, e.Err)
}

// Unwrap returns the executor error.
func (e *QueryError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrExecution.
func (e *QueryError) Is(target error) bool {
	return target == ErrExecution
}

// MutationError wraps a failed write or DDL statement.
type MutationError struct {
	Table string
	Op    string // insert, update, remove, createTable, ...
	SQL   string
	Err   error
}

// Error returns the error string.
func (e *MutationError) Error() string {
	return fmt.Sprintf("daoism: %s %s: %v", e.Op, e.Table, e.Err)
}

// Unwrap returns the executor error.
func (e *MutationError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrExecution.
func (e *MutationError) Is(target error) bool {
	return target == ErrExecution
}

// IsExecutionError returns true if err is a QueryError or a MutationError.
func IsExecutionError(err error) bool {
	return err != nil && errors.Is(err, ErrExecution)
}

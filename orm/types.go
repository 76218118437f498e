package orm

import "strings"

// Column types understood by the engine. Comparisons are case-insensitive;
// Init upper-cases the declared types.
const (
	Integer   = "INTEGER"
	BigInt    = "BIGINT"
	SmallInt  = "SMALLINT"
	TinyInt   = "TINYINT"
	Double    = "DOUBLE"
	Float     = "FLOAT"
	Real      = "REAL"
	Decimal   = "DECIMAL"
	Boolean   = "BOOLEAN"
	Varchar   = "VARCHAR"
	Char      = "CHAR"
	Text      = "TEXT"
	Date      = "DATE"
	Time      = "TIME"
	Timestamp = "TIMESTAMP"
	UUID      = "UUID"
	Blob      = "BLOB"
)

// AssociationType is the cardinality of an association.
type AssociationType string

// Association types.
const (
	OneToOne   AssociationType = "ONE_TO_ONE"
	OneToMany  AssociationType = "ONE_TO_MANY"
	ManyToOne  AssociationType = "MANY_TO_ONE"
	ManyToMany AssociationType = "MANY_TO_MANY"
)

// Valid reports whether t is one of the four association types.
func (t AssociationType) Valid() bool {
	switch t {
	case OneToOne, OneToMany, ManyToOne, ManyToMany:
		return true
	}
	return false
}

// Cascades reports whether associations of this type own their dependents,
// that is, whether inline children are inserted and dependents removed with
// the owning entity.
func (t AssociationType) Cascades() bool {
	return t != ManyToMany && t != ManyToOne
}

// Single reports whether the association resolves to at most one entity.
func (t AssociationType) Single() bool {
	return t == OneToOne || t == ManyToOne
}

// Operations that can be restricted with Property.AllowedOps.
const (
	OpInsert = "insert"
	OpUpdate = "update"
)

// IsInteger reports whether the type is bound as an integer.
func IsInteger(typ string) bool {
	switch strings.ToUpper(typ) {
	case Integer, BigInt, SmallInt, TinyInt:
		return true
	}
	return false
}

// IsFloat reports whether the type is bound as a float.
func IsFloat(typ string) bool {
	switch strings.ToUpper(typ) {
	case Double, Float, Real:
		return true
	}
	return false
}

// IsCharacter reports whether the type holds character data that may be
// matched with LIKE patterns.
func IsCharacter(typ string) bool {
	switch strings.ToUpper(typ) {
	case Varchar, Char:
		return true
	}
	return false
}

// IsTextKey reports whether a primary key of this type keeps its ids as
// strings instead of parsing them as integers.
func IsTextKey(typ string) bool {
	switch strings.ToUpper(typ) {
	case Varchar, Char, UUID:
		return true
	}
	return false
}

package statement

import (
	"strconv"
	"strings"

	"github.com/syssam/daoism/dialect"
	"github.com/syssam/daoism/orm"
)

const defaultLength = 255

// columnType maps a declared property type to the column type of the
// dialect. generated marks an integer primary key filled by the database.
func columnType(d string, p *orm.Property, generated bool) string {
	typ := strings.ToUpper(p.Type)
	switch typ {
	case orm.Integer, orm.SmallInt, orm.TinyInt:
		switch {
		case generated && d == dialect.Postgres:
			return "SERIAL"
		case d == dialect.SQLite:
			return "INTEGER"
		case d == dialect.MySQL && typ == orm.Integer:
			return "INT"
		}
		return typ
	case orm.BigInt:
		switch {
		case generated && d == dialect.Postgres:
			return "BIGSERIAL"
		case generated && d == dialect.SQLite:
			// Only INTEGER PRIMARY KEY aliases the rowid.
			return "INTEGER"
		}
		return typ
	case orm.Double:
		switch d {
		case dialect.Postgres:
			return "DOUBLE PRECISION"
		case dialect.SQLite:
			return "REAL"
		}
		return typ
	case orm.Float, orm.Real:
		switch d {
		case dialect.Postgres, dialect.SQLite:
			return "REAL"
		}
		return "FLOAT"
	case orm.Varchar, orm.Char:
		return typ + "(" + strconv.Itoa(length(p, defaultLength)) + ")"
	case orm.Decimal:
		return "DECIMAL(19, 4)"
	case orm.UUID:
		switch d {
		case dialect.Postgres:
			return "UUID"
		case dialect.MySQL:
			return "CHAR(36)"
		}
		return "VARCHAR(36)"
	case orm.Blob:
		if d == dialect.Postgres {
			return "BYTEA"
		}
		return "BLOB"
	case orm.Timestamp:
		if d == dialect.MySQL {
			return "DATETIME"
		}
		return typ
	}
	return typ
}

func length(p *orm.Property, def int) int {
	if p.Length > 0 {
		return p.Length
	}
	return def
}

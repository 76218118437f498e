package field

import (
	"github.com/syssam/daoism/orm"
)

// Builder is a fluent builder of one orm.Property.
type Builder struct {
	desc *orm.Property
}

func newBuilder(name, typ string) *Builder {
	return &Builder{desc: &orm.Property{Name: name, Type: typ}}
}

// Int returns a builder of an INTEGER property.
func Int(name string) *Builder { return newBuilder(name, orm.Integer) }

// Int64 returns a builder of a BIGINT property.
func Int64(name string) *Builder { return newBuilder(name, orm.BigInt) }

// Int16 returns a builder of a SMALLINT property.
func Int16(name string) *Builder { return newBuilder(name, orm.SmallInt) }

// Int8 returns a builder of a TINYINT property.
func Int8(name string) *Builder { return newBuilder(name, orm.TinyInt) }

// Float64 returns a builder of a DOUBLE property.
func Float64(name string) *Builder { return newBuilder(name, orm.Double) }

// Float32 returns a builder of a REAL property.
func Float32(name string) *Builder { return newBuilder(name, orm.Real) }

// Decimal returns a builder of a DECIMAL property.
func Decimal(name string) *Builder { return newBuilder(name, orm.Decimal) }

// Bool returns a builder of a BOOLEAN property.
func Bool(name string) *Builder { return newBuilder(name, orm.Boolean) }

// String returns a builder of a VARCHAR property.
func String(name string) *Builder { return newBuilder(name, orm.Varchar) }

// Char returns a builder of a fixed length CHAR property.
func Char(name string, length int) *Builder {
	return newBuilder(name, orm.Char).MaxLen(length)
}

// Text returns a builder of a TEXT property.
func Text(name string) *Builder { return newBuilder(name, orm.Text) }

// Time returns a builder of a TIMESTAMP property.
func Time(name string) *Builder { return newBuilder(name, orm.Timestamp) }

// Date returns a builder of a DATE property.
func Date(name string) *Builder { return newBuilder(name, orm.Date) }

// UUID returns a builder of a UUID property.
func UUID(name string) *Builder { return newBuilder(name, orm.UUID) }

// Bytes returns a builder of a BLOB property.
func Bytes(name string) *Builder { return newBuilder(name, orm.Blob) }

// Column sets the storage column. It defaults to the upper snake case of the
// property name.
func (b *Builder) Column(name string) *Builder {
	b.desc.Column = name
	return b
}

// ID marks the property as the primary key.
func (b *Builder) ID() *Builder {
	b.desc.ID = true
	return b
}

// AutoIncrement draws primary key values from the sequence generator. It
// implies ID.
func (b *Builder) AutoIncrement() *Builder {
	b.desc.ID = true
	b.desc.AutoIncrement = true
	return b
}

// Required makes the property mandatory on insert and update.
func (b *Builder) Required() *Builder {
	b.desc.Mandatory = true
	return b
}

// Unique rejects inserts of values that are already stored.
func (b *Builder) Unique() *Builder {
	b.desc.Unique = true
	return b
}

// MaxLen sets the column length of character properties.
func (b *Builder) MaxLen(n int) *Builder {
	b.desc.Length = n
	return b
}

// Immutable restricts writes of the property to inserts.
func (b *Builder) Immutable() *Builder {
	return b.AllowedOps(orm.OpInsert)
}

// AllowedOps restricts the operations that write the property.
func (b *Builder) AllowedOps(ops ...string) *Builder {
	b.desc.AllowedOps = append(b.desc.AllowedOps, ops...)
	return b
}

// Default writes v when the property has no value.
func (b *Builder) Default(v any) *Builder {
	return b.DefaultFunc(func() any { return v })
}

// DefaultFunc writes the result of fn when the property has no value.
func (b *Builder) DefaultFunc(fn func() any) *Builder {
	return b.DBValue(func(v any, _ map[string]any) any {
		if v == nil {
			return fn()
		}
		return v
	})
}

// DBValue adds a conversion applied to the value on write. Conversions run
// in the order they were added.
func (b *Builder) DBValue(fn func(v any, entity map[string]any) any) *Builder {
	prev := b.desc.DBValue
	if prev == nil {
		b.desc.DBValue = fn
		return b
	}
	b.desc.DBValue = func(v any, entity map[string]any) any {
		return fn(prev(v, entity), entity)
	}
	return b
}

// Value adds a conversion applied to the stored value on read. Conversions
// run in the order they were added.
func (b *Builder) Value(fn func(raw any) any) *Builder {
	prev := b.desc.Value
	if prev == nil {
		b.desc.Value = fn
		return b
	}
	b.desc.Value = func(raw any) any {
		return fn(prev(raw))
	}
	return b
}

// Descriptor returns the built property.
func (b *Builder) Descriptor() *orm.Property {
	return b.desc
}

package mixin

import (
	"time"

	"github.com/google/uuid"

	"github.com/syssam/daoism/schema"
	"github.com/syssam/daoism/schema/field"
)

// ID adds an auto-incremented BIGINT primary key named id.
type ID struct{}

// Fields of the id mixin.
func (ID) Fields() []*field.Builder {
	return []*field.Builder{
		field.Int64("id").AutoIncrement(),
	}
}

// UUID adds a UUID primary key named id, generated on insert when absent.
type UUID struct{}

// Fields of the uuid mixin.
func (UUID) Fields() []*field.Builder {
	return []*field.Builder{
		field.UUID("id").ID().DefaultFunc(func() any { return uuid.NewString() }),
	}
}

// CreateTime adds createdAt, set on insert and never updated.
type CreateTime struct{}

// Fields of the create time mixin.
func (CreateTime) Fields() []*field.Builder {
	return []*field.Builder{
		field.Time("createdAt").Immutable().DefaultFunc(now),
	}
}

// UpdateTime adds updatedAt, stamped on insert and on updates of entities
// carrying the property.
type UpdateTime struct{}

// Fields of the update time mixin.
func (UpdateTime) Fields() []*field.Builder {
	return []*field.Builder{
		field.Time("updatedAt").DBValue(func(any, map[string]any) any { return now() }),
	}
}

// Time combines CreateTime and UpdateTime.
type Time struct{}

// Fields of the time mixin.
func (Time) Fields() []*field.Builder {
	return append(CreateTime{}.Fields(), UpdateTime{}.Fields()...)
}

func now() any { return time.Now().UTC() }

var (
	_ schema.Mixin = ID{}
	_ schema.Mixin = UUID{}
	_ schema.Mixin = CreateTime{}
	_ schema.Mixin = UpdateTime{}
	_ schema.Mixin = Time{}
)

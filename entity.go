package daoism

import (
	"github.com/syssam/daoism/statement"
)

type (
	// Filter holds per-operator list conditions keyed by property name.
	Filter = statement.Filter
	// ListSettings are the options of List.
	ListSettings = statement.ListSettings
	// Binding is a typed value bound to one statement placeholder.
	Binding = statement.Binding
)

// Values holds property values keyed by property name. A property without a
// key is absent.
type Values map[string]any

// Has reports whether name has a non-nil value.
func (v Values) Has(name string) bool {
	return v[name] != nil
}

// Entity is a domain record with its expanded associations.
type Entity struct {
	Values Values
	// Edges holds association entities keyed by association name: resolved
	// expansions after a read, inline children before an insert. Single
	// valued associations hold at most one entity.
	Edges map[string][]*Entity
}

// NewEntity returns an entity holding values.
func NewEntity(values Values) *Entity {
	if values == nil {
		values = Values{}
	}
	return &Entity{Values: values}
}

// Get returns the value of the named property.
func (e *Entity) Get(name string) any {
	if e == nil {
		return nil
	}
	return e.Values[name]
}

// Set sets the value of the named property.
func (e *Entity) Set(name string, v any) *Entity {
	if e.Values == nil {
		e.Values = Values{}
	}
	e.Values[name] = v
	return e
}

// Edge returns the entities of the named association.
func (e *Entity) Edge(name string) []*Entity {
	if e == nil {
		return nil
	}
	return e.Edges[name]
}

// SetEdge sets the entities of the named association.
func (e *Entity) SetEdge(name string, entities []*Entity) *Entity {
	if e.Edges == nil {
		e.Edges = make(map[string][]*Entity)
	}
	e.Edges[name] = entities
	return e
}

// Record maps storage column names to the values written for one entity.
type Record map[string]any

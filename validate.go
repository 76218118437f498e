package daoism

import (
	"slices"
	"strings"

	"github.com/syssam/daoism/orm"
)

// validate checks that every mandatory property not in skip has a value.
// BOOLEAN properties are exempt: an absent boolean is bound as false.
func (d *DAO) validate(op string, e *Entity, skip ...string) error {
	if e == nil {
		return NewArgumentError(d.table, op, "entity is nil")
	}
	for _, p := range d.orm.MandatoryProperties() {
		if slices.Contains(skip, p.Name) || strings.EqualFold(p.Type, orm.Boolean) {
			continue
		}
		if e.Values[p.Name] == nil {
			return &ValidationError{Table: d.table, Property: p.Name}
		}
	}
	return nil
}

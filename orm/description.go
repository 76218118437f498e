package orm

import (
	"maps"
	"slices"
	"strings"
)

// Description is the declarative metadata for one table.
type Description struct {
	// Name identifies the description in a registry. Defaults to the
	// lower-cased table name.
	Name         string         `yaml:"name,omitempty" json:"name,omitempty"`
	Table        string         `yaml:"table" json:"table"`
	Properties   []*Property    `yaml:"properties" json:"properties"`
	Associations []*Association `yaml:"associations,omitempty" json:"associations,omitempty"`
	// JoinTarget names the property holding the target key when the table
	// joins the two sides of a MANY_TO_MANY association.
	JoinTarget string `yaml:"joinTarget,omitempty" json:"joinTarget,omitempty"`
}

// Property describes one column of the table.
type Property struct {
	Name   string `yaml:"name" json:"name"`
	Column string `yaml:"column,omitempty" json:"column,omitempty"`
	Type   string `yaml:"type,omitempty" json:"type,omitempty"`
	// Length is used for character columns by CREATE TABLE.
	Length int `yaml:"length,omitempty" json:"length,omitempty"`
	// ID marks the primary key.
	ID bool `yaml:"id,omitempty" json:"id,omitempty"`
	// AutoIncrement makes the DAO draw primary key values from the sequence
	// generator before inserting.
	AutoIncrement bool     `yaml:"autoIncrement,omitempty" json:"autoIncrement,omitempty"`
	Mandatory     bool     `yaml:"mandatory,omitempty" json:"mandatory,omitempty"`
	Unique        bool     `yaml:"unique,omitempty" json:"unique,omitempty"`
	AllowedOps    []string `yaml:"allowedOps,omitempty" json:"allowedOps,omitempty"`

	// DBValue converts a domain value to its storage form on write. It
	// receives the whole entity as the second argument.
	DBValue func(value any, entity map[string]any) any `yaml:"-" json:"-"`
	// Value converts a stored value to its domain form on read.
	Value func(raw any) any `yaml:"-" json:"-"`
}

// Allows reports whether op may write this property. A property without
// AllowedOps allows every operation.
func (p *Property) Allows(op string) bool {
	if len(p.AllowedOps) == 0 {
		return true
	}
	return slices.ContainsFunc(p.AllowedOps, func(s string) bool {
		return strings.EqualFold(s, op)
	})
}

// Association describes a relationship to another description.
type Association struct {
	Name string          `yaml:"name" json:"name"`
	Type AssociationType `yaml:"type" json:"type"`
	// JoinKey is the property carrying the join value: on the target for
	// ONE_TO_MANY and MANY_TO_MANY, on the owner for ONE_TO_ONE and MANY_TO_ONE.
	JoinKey string `yaml:"joinKey" json:"joinKey"`
	// Key is the owner-side property the join value is read from. Empty
	// means the owner's primary key.
	Key string `yaml:"key,omitempty" json:"key,omitempty"`
	// Target is the registry name of the associated DAO. Empty means the
	// owning DAO itself.
	Target string `yaml:"target,omitempty" json:"target,omitempty"`
	// Join is the registry name of the join DAO of a MANY_TO_MANY association.
	Join string `yaml:"join,omitempty" json:"join,omitempty"`
	// Defaults are equality conditions merged into the list settings before
	// the join condition when the association is traversed.
	Defaults map[string]any `yaml:"defaults,omitempty" json:"defaults,omitempty"`
}

// KeyOr returns the association key, or pk when none was declared.
func (a *Association) KeyOr(pk string) string {
	if a.Key != "" {
		return a.Key
	}
	return pk
}

// PrimaryKey returns the primary key property, or nil if none is declared.
func (d *Description) PrimaryKey() *Property {
	for _, p := range d.Properties {
		if p.ID {
			return p
		}
	}
	return nil
}

// IsAutoIncrementPrimaryKey reports whether primary key values come from the
// sequence generator.
func (d *Description) IsAutoIncrementPrimaryKey() bool {
	pk := d.PrimaryKey()
	return pk != nil && pk.AutoIncrement
}

// MandatoryProperties returns the mandatory properties in declaration order.
func (d *Description) MandatoryProperties() []*Property {
	var props []*Property
	for _, p := range d.Properties {
		if p.Mandatory {
			props = append(props, p)
		}
	}
	return props
}

// OptionalProperties returns the properties that are not mandatory.
func (d *Description) OptionalProperties() []*Property {
	var props []*Property
	for _, p := range d.Properties {
		if !p.Mandatory {
			props = append(props, p)
		}
	}
	return props
}

// UniqueProperties returns the properties with a uniqueness constraint.
func (d *Description) UniqueProperties() []*Property {
	var props []*Property
	for _, p := range d.Properties {
		if p.Unique {
			props = append(props, p)
		}
	}
	return props
}

// Property returns the property with the given name, or nil.
func (d *Description) Property(name string) *Property {
	for _, p := range d.Properties {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// PropertyByColumn returns the property mapped to the given column. The
// match is case-insensitive.
func (d *Description) PropertyByColumn(column string) *Property {
	for _, p := range d.Properties {
		if strings.EqualFold(p.Column, column) {
			return p
		}
	}
	return nil
}

// Association returns the association with the given name, or nil.
func (d *Description) Association(name string) *Association {
	for _, a := range d.Associations {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// AssociationNames returns the association names in declaration order.
func (d *Description) AssociationNames() []string {
	names := make([]string, 0, len(d.Associations))
	for _, a := range d.Associations {
		names = append(names, a.Name)
	}
	return names
}

// Clone returns a deep copy of the description. Converter functions are
// shared.
func (d *Description) Clone() *Description {
	c := *d
	c.Properties = make([]*Property, len(d.Properties))
	for i, p := range d.Properties {
		cp := *p
		cp.AllowedOps = slices.Clone(p.AllowedOps)
		c.Properties[i] = &cp
	}
	c.Associations = make([]*Association, len(d.Associations))
	for i, a := range d.Associations {
		ca := *a
		ca.Defaults = maps.Clone(a.Defaults)
		c.Associations[i] = &ca
	}
	return &c
}

// Init fills defaults (column names, property types, description name) and
// validates the description.
func (d *Description) Init() error {
	if d.Name == "" {
		d.Name = strings.ToLower(d.Table)
	}
	for _, p := range d.Properties {
		if p.Column == "" {
			p.Column = ColumnName(p.Name)
		}
		if p.Type == "" {
			p.Type = Varchar
		}
		p.Type = strings.ToUpper(p.Type)
	}
	for _, a := range d.Associations {
		a.Type = AssociationType(strings.ToUpper(strings.ReplaceAll(string(a.Type), "-", "_")))
	}
	return d.Validate()
}

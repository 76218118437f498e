package edge

import (
	"maps"

	"github.com/syssam/daoism/orm"
)

// Builder is a fluent builder of one orm.Association.
type Builder struct {
	desc *orm.Association
}

// To returns a builder of a ONE_TO_MANY association from the owner to the
// DAO registered as target. The target property holding the owner key is set
// with Field.
func To(name, target string) *Builder {
	return &Builder{desc: &orm.Association{Name: name, Type: orm.OneToMany, Target: target}}
}

// From returns a builder of a MANY_TO_ONE association: the owner holds the
// key of one target entity in the property set with Field.
func From(name, target string) *Builder {
	return &Builder{desc: &orm.Association{Name: name, Type: orm.ManyToOne, Target: target}}
}

// Unique makes a To association ONE_TO_ONE.
func (b *Builder) Unique() *Builder {
	if b.desc.Type == orm.OneToMany {
		b.desc.Type = orm.OneToOne
	}
	return b
}

// Through makes the association MANY_TO_MANY, joined by the rows of the DAO
// registered as join.
func (b *Builder) Through(join string) *Builder {
	b.desc.Type = orm.ManyToMany
	b.desc.Join = join
	return b
}

// Field sets the join key property.
func (b *Builder) Field(name string) *Builder {
	b.desc.JoinKey = name
	return b
}

// Key sets the owner property the join value is read from. It defaults to
// the owner's primary key.
func (b *Builder) Key(name string) *Builder {
	b.desc.Key = name
	return b
}

// Defaults adds equality conditions applied when the association is listed.
func (b *Builder) Defaults(where map[string]any) *Builder {
	if b.desc.Defaults == nil {
		b.desc.Defaults = make(map[string]any, len(where))
	}
	maps.Copy(b.desc.Defaults, where)
	return b
}

// Descriptor returns the built association.
func (b *Builder) Descriptor() *orm.Association {
	return b.desc
}

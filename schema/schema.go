package schema

import (
	"github.com/syssam/daoism/orm"
	"github.com/syssam/daoism/schema/edge"
	"github.com/syssam/daoism/schema/field"
)

// Mixin is a reusable set of properties shared by several tables.
type Mixin interface {
	Fields() []*field.Builder
}

// Table builds the description of one table.
type Table struct {
	name       string
	table      string
	joinTarget string
	mixins     []Mixin
	fields     []*field.Builder
	edges      []*edge.Builder
}

// New returns a builder of the description of table.
func New(table string) *Table {
	return &Table{table: table}
}

// Name sets the registry name. It defaults to the lower-cased table name.
func (t *Table) Name(name string) *Table {
	t.name = name
	return t
}

// Mixin adds the properties of the mixins ahead of the table's own fields.
func (t *Table) Mixin(mixins ...Mixin) *Table {
	t.mixins = append(t.mixins, mixins...)
	return t
}

// Fields adds properties.
func (t *Table) Fields(fields ...*field.Builder) *Table {
	t.fields = append(t.fields, fields...)
	return t
}

// Edges adds associations.
func (t *Table) Edges(edges ...*edge.Builder) *Table {
	t.edges = append(t.edges, edges...)
	return t
}

// JoinTarget marks the table as the join of a MANY_TO_MANY association whose
// target key is held in prop.
func (t *Table) JoinTarget(prop string) *Table {
	t.joinTarget = prop
	return t
}

// Description returns an initialized description. Each call returns a new
// description; builders are copied, not shared.
func (t *Table) Description() (*orm.Description, error) {
	d := &orm.Description{
		Name:       t.name,
		Table:      t.table,
		JoinTarget: t.joinTarget,
	}
	var fields []*field.Builder
	for _, m := range t.mixins {
		fields = append(fields, m.Fields()...)
	}
	fields = append(fields, t.fields...)
	for _, f := range fields {
		p := *f.Descriptor()
		d.Properties = append(d.Properties, &p)
	}
	for _, e := range t.edges {
		a := *e.Descriptor()
		d.Associations = append(d.Associations, &a)
	}
	if err := d.Init(); err != nil {
		return nil, err
	}
	return d, nil
}

// MustDescription is like Description but panics if the description is
// invalid.
func (t *Table) MustDescription() *orm.Description {
	d, err := t.Description()
	if err != nil {
		panic(err)
	}
	return d
}

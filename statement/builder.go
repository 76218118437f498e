package statement

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/syssam/daoism/dialect"
	"github.com/syssam/daoism/orm"
)

// Builder renders the statements of one description for one dialect.
type Builder struct {
	orm     *orm.Description
	dialect string
}

// New returns a Builder for the initialized description d.
func New(d *orm.Description, dialectName string) *Builder {
	return &Builder{orm: d, dialect: dialect.Normalize(dialectName)}
}

// ORM returns the description the builder renders statements for.
func (b *Builder) ORM() *orm.Description { return b.orm }

// Dialect returns the dialect name.
func (b *Builder) Dialect() string { return b.dialect }

// Find selects one row by primary key. An empty selection selects every
// property; unknown names are ignored.
func (b *Builder) Find(selection []string) Statement {
	w := b.writer()
	pk := b.orm.PrimaryKey()
	w.WriteString("SELECT ")
	w.columns(b.selected(selection))
	w.WriteString(" FROM ")
	w.ident(b.orm.Table)
	w.WriteString(" WHERE ")
	w.ident(pk.Column)
	w.WriteString(" = ")
	w.arg(param(pk, ""))
	return w.stmt()
}

// List selects the rows matching the settings. Filter conditions come first,
// operator by operator, followed by the plain Where conditions; within each
// group properties appear in declaration order.
func (b *Builder) List(s ListSettings) Statement {
	w := b.writer()
	w.WriteString("SELECT ")
	w.columns(b.selected(s.Select))
	w.WriteString(" FROM ")
	w.ident(b.orm.Table)

	var where bool
	and := func() {
		if where {
			w.WriteString(" AND ")
			return
		}
		w.WriteString(" WHERE ")
		where = true
	}
	for _, c := range s.Filter.Conditions() {
		for _, p := range b.orm.Properties {
			v, ok := c.Values[p.Name]
			if !ok {
				continue
			}
			and()
			w.condition(p, c.Operator, v)
		}
	}
	for _, p := range b.orm.Properties {
		v, ok := s.Where[p.Name]
		if !ok {
			continue
		}
		and()
		w.condition(p, "", v)
	}

	var sorted []*orm.Property
	for _, name := range s.Sort {
		if p := b.orm.Property(name); p != nil {
			sorted = append(sorted, p)
		}
	}
	if len(sorted) > 0 {
		w.WriteString(" ORDER BY ")
		for i, p := range sorted {
			if i > 0 {
				w.WriteString(", ")
			}
			w.ident(p.Column)
			if strings.EqualFold(s.Order, "desc") {
				w.WriteString(" DESC")
			}
		}
	}
	w.limit(s.Limit, s.Offset)
	return w.stmt()
}

// Count counts the rows of the table.
func (b *Builder) Count() Statement {
	w := b.writer()
	w.WriteString("SELECT COUNT(*) AS ")
	w.ident("COUNT")
	w.WriteString(" FROM ")
	w.ident(b.orm.Table)
	return w.stmt()
}

// Insert inserts one row. An integer primary key that is not auto-incremented
// and has no value in values is left to the database: the column is omitted
// and, on PostgreSQL, returned with RETURNING.
func (b *Builder) Insert(values map[string]any) Statement {
	w := b.writer()
	pk := b.orm.PrimaryKey()
	generated := b.dbGeneratedKey() && values[pk.Name] == nil
	var props []*orm.Property
	for _, p := range b.orm.Properties {
		if p == pk && generated {
			continue
		}
		props = append(props, p)
	}
	w.WriteString("INSERT INTO ")
	w.ident(b.orm.Table)
	w.WriteString(" (")
	w.columns(props)
	w.WriteString(") VALUES (")
	for i, p := range props {
		if i > 0 {
			w.WriteString(", ")
		}
		w.arg(param(p, ""))
	}
	w.WriteString(")")
	if generated && b.dialect == dialect.Postgres {
		w.WriteString(" RETURNING ")
		w.ident(pk.Column)
	}
	return w.stmt()
}

// Update sets the non-key properties present in values that allow updates,
// matching the row by primary key.
func (b *Builder) Update(values map[string]any) Statement {
	w := b.writer()
	pk := b.orm.PrimaryKey()
	w.WriteString("UPDATE ")
	w.ident(b.orm.Table)
	w.WriteString(" SET ")
	var n int
	for _, p := range b.orm.Properties {
		if p == pk || !p.Allows(orm.OpUpdate) {
			continue
		}
		if _, ok := values[p.Name]; !ok {
			continue
		}
		if n > 0 {
			w.WriteString(", ")
		}
		w.ident(p.Column)
		w.WriteString(" = ")
		w.arg(param(p, ""))
		n++
	}
	if n == 0 {
		// Nothing to set; keep the statement valid.
		w.ident(pk.Column)
		w.WriteString(" = ")
		w.ident(pk.Column)
	}
	w.WriteString(" WHERE ")
	w.ident(pk.Column)
	w.WriteString(" = ")
	w.arg(param(pk, ""))
	return w.stmt()
}

// Delete deletes the rows whose key property equals the bound value.
func (b *Builder) Delete(key string) Statement {
	w := b.writer()
	p := b.orm.Property(key)
	if p == nil {
		p = b.orm.PrimaryKey()
	}
	w.WriteString("DELETE FROM ")
	w.ident(b.orm.Table)
	w.WriteString(" WHERE ")
	w.ident(p.Column)
	w.WriteString(" = ")
	w.arg(param(p, ""))
	return w.stmt()
}

// UniqueCheck selects the rows holding the bound value of p.
func (b *Builder) UniqueCheck(p *orm.Property) Statement {
	w := b.writer()
	w.WriteString("SELECT ")
	w.ident(p.Column)
	w.WriteString(" FROM ")
	w.ident(b.orm.Table)
	w.WriteString(" WHERE ")
	w.ident(p.Column)
	w.WriteString(" = ")
	w.arg(param(p, ""))
	return w.stmt()
}

// CreateTable creates the table with one column per property.
func (b *Builder) CreateTable() Statement {
	w := b.writer()
	pk := b.orm.PrimaryKey()
	generated := b.dbGeneratedKey()
	w.WriteString("CREATE TABLE ")
	w.ident(b.orm.Table)
	w.WriteString(" (")
	for i, p := range b.orm.Properties {
		if i > 0 {
			w.WriteString(", ")
		}
		w.ident(p.Column)
		w.WriteByte(' ')
		w.WriteString(columnType(b.dialect, p, p == pk && generated))
		switch {
		case p == pk:
			w.WriteString(" PRIMARY KEY")
			if generated && b.dialect == dialect.MySQL {
				w.WriteString(" AUTO_INCREMENT")
			}
		case p.Mandatory && !strings.EqualFold(p.Type, orm.Boolean):
			w.WriteString(" NOT NULL")
		}
		if p != pk && p.Unique {
			w.WriteString(" UNIQUE")
		}
	}
	w.WriteString(")")
	return w.stmt()
}

// DropTable drops the table.
func (b *Builder) DropTable() Statement {
	w := b.writer()
	w.WriteString("DROP TABLE ")
	w.ident(b.orm.Table)
	return w.stmt()
}

func (b *Builder) dbGeneratedKey() bool {
	pk := b.orm.PrimaryKey()
	return !pk.AutoIncrement && orm.IsInteger(pk.Type)
}

func (b *Builder) selected(names []string) []*orm.Property {
	if len(names) == 0 {
		return b.orm.Properties
	}
	var props []*orm.Property
	for _, p := range b.orm.Properties {
		if slices.Contains(names, p.Name) {
			props = append(props, p)
		}
	}
	if len(props) == 0 {
		return b.orm.Properties
	}
	return props
}

func param(p *orm.Property, op string) Parameter {
	return Parameter{Name: p.Name, Column: p.Column, Type: p.Type, Operator: op}
}

// writer accumulates SQL text and the parameters of its placeholders.
type writer struct {
	strings.Builder
	dialect string
	params  []Parameter
	n       int
}

func (b *Builder) writer() *writer {
	return &writer{dialect: b.dialect}
}

func (w *writer) stmt() Statement {
	return &stmt{sql: w.String(), params: w.params}
}

func (w *writer) ident(name string) {
	q := `"`
	if w.dialect == dialect.MySQL {
		q = "`"
	}
	w.WriteString(q)
	w.WriteString(strings.ReplaceAll(name, q, q+q))
	w.WriteString(q)
}

func (w *writer) columns(props []*orm.Property) {
	for i, p := range props {
		if i > 0 {
			w.WriteString(", ")
		}
		w.ident(p.Column)
	}
}

func (w *writer) placeholder() {
	w.n++
	if w.dialect == dialect.Postgres {
		w.WriteString("$" + strconv.Itoa(w.n))
		return
	}
	w.WriteString("?")
}

// arg writes one placeholder for p.
func (w *writer) arg(p Parameter) {
	w.placeholder()
	w.params = append(w.params, p)
}

// list writes a parenthesized list of n placeholders declaring p once.
func (w *writer) list(p Parameter, n int) {
	w.WriteString("(")
	for i := 0; i < n; i++ {
		if i > 0 {
			w.WriteString(", ")
		}
		w.placeholder()
	}
	w.WriteString(")")
	w.params = append(w.params, p)
}

func (w *writer) condition(p *orm.Property, op string, v any) {
	w.ident(p.Column)
	switch op {
	case OpEquals, "":
		if vs, ok := Spread(v); ok && op == OpEquals {
			if len(vs) == 0 {
				w.WriteString(" IN (NULL)")
				return
			}
			w.WriteString(" IN ")
			w.list(param(p, op), len(vs))
			return
		}
		if v == nil {
			w.WriteString(" IS NULL")
			return
		}
		w.WriteString(" = ")
	case OpNotEquals:
		if vs, ok := Spread(v); ok {
			if len(vs) == 0 {
				w.WriteString(" IS NOT NULL")
				return
			}
			w.WriteString(" NOT IN ")
			w.list(param(p, op), len(vs))
			return
		}
		if v == nil {
			w.WriteString(" IS NOT NULL")
			return
		}
		w.WriteString(" <> ")
	case OpContains:
		w.WriteString(" LIKE ")
	case OpGreaterThan:
		w.WriteString(" > ")
	case OpLessThan:
		w.WriteString(" < ")
	case OpGreaterThanOrEqual:
		w.WriteString(" >= ")
	case OpLessThanOrEqual:
		w.WriteString(" <= ")
	default:
		panic(fmt.Sprintf("statement: unknown operator %q", op))
	}
	w.arg(param(p, op))
}

func (w *writer) limit(limit, offset int) {
	switch {
	case limit > 0:
		w.WriteString(" LIMIT " + strconv.Itoa(limit))
	case offset > 0 && w.dialect == dialect.MySQL:
		w.WriteString(" LIMIT 18446744073709551615")
	case offset > 0 && w.dialect == dialect.SQLite:
		w.WriteString(" LIMIT -1")
	}
	if offset > 0 {
		w.WriteString(" OFFSET " + strconv.Itoa(offset))
	}
}

package daoism

import (
	"slices"
	"strconv"
	"strings"

	"github.com/syssam/daoism/orm"
)

// toRecord maps entity values to storage columns: mandatory properties
// first, then optional ones. DBValue converters see the whole entity; an
// absent optional property is written as nil.
func (d *DAO) toRecord(e *Entity) Record {
	rec := make(Record, len(d.orm.Properties))
	write := func(p *orm.Property) {
		v := e.Values[p.Name]
		if p.DBValue != nil {
			v = p.DBValue(v, e.Values)
		}
		rec[p.Column] = v
	}
	for _, p := range d.orm.MandatoryProperties() {
		write(p)
	}
	for _, p := range d.orm.OptionalProperties() {
		write(p)
	}
	return rec
}

// toEntity maps a result row to an entity. A non-empty selection restricts
// the mapped properties. Stored nil values leave the property absent.
func (d *DAO) toEntity(row map[string]any, selection []string) *Entity {
	e := NewEntity(make(Values, len(d.orm.Properties)))
	for _, p := range d.orm.Properties {
		if len(selection) > 0 && !slices.Contains(selection, p.Name) {
			continue
		}
		v := normalize(p, lookup(row, p.Column))
		if p.Value != nil {
			v = p.Value(v)
		}
		if v != nil {
			e.Values[p.Name] = v
		}
	}
	return e
}

// lookup returns the value of column, matching the row keys without regard
// to case when there is no exact match.
func lookup(row map[string]any, column string) any {
	if v, ok := row[column]; ok {
		return v
	}
	for k, v := range row {
		if strings.EqualFold(k, column) {
			return v
		}
	}
	return nil
}

// normalize converts driver representations to the declared type: text
// columns reported as bytes become strings and BOOLEAN columns stored as
// integers or strings become bools.
func normalize(p *orm.Property, v any) any {
	typ := strings.ToUpper(p.Type)
	if b, ok := v.([]byte); ok && typ != orm.Blob {
		v = string(b)
	}
	if typ != orm.Boolean {
		return v
	}
	switch b := v.(type) {
	case int64:
		return b != 0
	case int:
		return b != 0
	case string:
		if parsed, err := strconv.ParseBool(b); err == nil {
			return parsed
		}
	}
	return v
}

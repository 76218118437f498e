package daoism

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/syssam/daoism/orm"
	"github.com/syssam/daoism/statement"
)

const (
	opFind  = "find"
	opList  = "list"
	opCount = "count"
)

type findOptions struct {
	expand    []string
	selection []string
}

// FindOption configures Find.
type FindOption func(*findOptions)

// WithExpand resolves the named associations into the Edges of the found
// entity. Names may be comma-delimited.
func WithExpand(names ...string) FindOption {
	return func(o *findOptions) {
		o.expand = append(o.expand, statement.ParseList(names...)...)
	}
}

// WithSelect restricts the properties read. Names may be comma-delimited.
func WithSelect(names ...string) FindOption {
	return func(o *findOptions) {
		o.selection = append(o.selection, statement.ParseList(names...)...)
	}
}

// Find reads the entity with the given primary key. It returns nil and no
// error when no row matches.
func (d *DAO) Find(ctx context.Context, id any, opts ...FindOption) (*Entity, error) {
	var o findOptions
	for _, opt := range opts {
		opt(&o)
	}
	d.log.DebugContext(ctx, "finding entity", "id", id, "expand", o.expand, "select", o.selection)
	if id == nil {
		return nil, NewArgumentError(d.table, opFind, "id is nil")
	}
	pk := d.pk().Name
	if len(o.selection) > 0 && len(o.expand) > 0 && !slices.Contains(o.selection, pk) {
		o.selection = append(o.selection, pk)
	}
	key, err := d.coerceID(opFind, id)
	if err != nil {
		return nil, err
	}
	e, err := d.find(ctx, key, o.selection, len(o.selection) == 0 && len(o.expand) == 0)
	if err != nil {
		d.log.ErrorContext(ctx, "finding entity failed", "id", key, "err", err)
		return nil, err
	}
	if e == nil {
		d.log.DebugContext(ctx, "entity not found", "id", key)
		return nil, nil
	}
	if err := d.hooks.afterFound(ctx, e, nil); err != nil {
		return nil, err
	}
	if err := d.expandAll(ctx, e, o.expand); err != nil {
		d.log.ErrorContext(ctx, "finding entity failed", "id", key, "err", err)
		return nil, err
	}
	return e, nil
}

// find reads one row by key, through the cache when cached is set.
func (d *DAO) find(ctx context.Context, key any, selection []string, cached bool) (*Entity, error) {
	if cached {
		if e := d.cached(ctx, key); e != nil {
			return e, nil
		}
	}
	res, err := d.execute(ctx, opFind, d.builder.Find(selection), []any{key})
	if err != nil {
		return nil, err
	}
	if len(res.rows) == 0 {
		return nil, nil
	}
	if cached {
		d.store(ctx, key, res.rows[0])
	}
	return d.toEntity(res.rows[0], selection), nil
}

// List reads the entities matching the settings. Contains conditions on
// character properties match anywhere in the value; nil Contains values are
// ignored.
func (d *DAO) List(ctx context.Context, settings ListSettings) ([]*Entity, error) {
	s := settings
	s.Expand = statement.ParseList(settings.Expand...)
	s.Select = statement.ParseList(settings.Select...)
	d.log.DebugContext(ctx, "listing entities", "expand", s.Expand, "select", s.Select, "limit", s.Limit, "offset", s.Offset)
	if pk := d.pk().Name; len(s.Select) > 0 && len(s.Expand) > 0 && !slices.Contains(s.Select, pk) {
		s.Select = append(s.Select, pk)
	}
	if s.Filter != nil && len(s.Filter.Contains) > 0 {
		s.Filter = s.Filter.Clone()
		for name, v := range s.Filter.Contains {
			if v == nil {
				delete(s.Filter.Contains, name)
				continue
			}
			if p := d.orm.Property(name); p != nil && orm.IsCharacter(p.Type) {
				s.Filter.Contains[name] = fmt.Sprintf("%%%v%%", v)
			}
		}
	}
	res, err := d.execute(ctx, opList, d.builder.List(s), s)
	if err != nil {
		d.log.ErrorContext(ctx, "listing entities failed", "err", err)
		return nil, err
	}
	entities := make([]*Entity, 0, len(res.rows))
	for _, row := range res.rows {
		e := d.toEntity(row, s.Select)
		if err := d.expandAll(ctx, e, s.Expand); err != nil {
			d.log.ErrorContext(ctx, "listing entities failed", "err", err)
			return nil, err
		}
		if err := d.hooks.afterFound(ctx, e, &s); err != nil {
			return nil, err
		}
		entities = append(entities, e)
	}
	d.log.DebugContext(ctx, "entities found", "count", len(entities))
	return entities, nil
}

// Count returns the number of rows in the table.
func (d *DAO) Count(ctx context.Context) (int, error) {
	res, err := d.execute(ctx, opCount, d.builder.Count(), nil)
	if err != nil {
		d.log.ErrorContext(ctx, "counting entities failed", "err", err)
		return 0, err
	}
	if len(res.rows) == 0 {
		return 0, nil
	}
	n, err := countValue(res.rows[0])
	if err != nil {
		err = &QueryError{Table: d.table, Op: opCount, SQL: d.builder.Count().Build(), Err: err}
		d.log.ErrorContext(ctx, "counting entities failed", "err", err)
		return 0, err
	}
	d.log.DebugContext(ctx, "entities counted", "count", n)
	return n, nil
}

// countValue parses the single column of a count row.
func countValue(row map[string]any) (int, error) {
	for _, v := range row {
		switch v := v.(type) {
		case int64:
			return int(v), nil
		case int:
			return v, nil
		case float64:
			return int(v), nil
		case []byte:
			return strconv.Atoi(strings.TrimSpace(string(v)))
		case string:
			return strconv.Atoi(strings.TrimSpace(v))
		default:
			n, err := parseInt(v)
			return int(n), err
		}
	}
	return 0, nil
}

// expandAll resolves the requested associations of e, in declaration order.
// Names that are not declared are ignored.
func (d *DAO) expandAll(ctx context.Context, e *Entity, names []string) error {
	if len(names) == 0 {
		return nil
	}
	for _, name := range d.orm.AssociationNames() {
		if !slices.Contains(names, name) {
			continue
		}
		related, err := d.Expand(ctx, []string{name}, e)
		if err != nil {
			return err
		}
		e.SetEdge(name, related)
	}
	return nil
}

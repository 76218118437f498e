package daoism

import (
	"context"

	"github.com/syssam/daoism/dialect/sql/sqlgraph"
	"github.com/syssam/daoism/orm"
)

// Insert validates and inserts the entities in order, including the inline
// children held in the Edges of associations that own their dependents. It
// returns the primary keys of the inserted entities.
//
// Auto-increment primary keys are drawn from the sequence generator; other
// absent keys are taken from the keys generated by the database. The
// resolved key is also set on the entity. When a step fails after the row
// was written, the row and its dependents are removed again before the error
// is returned.
func (d *DAO) Insert(ctx context.Context, entities ...*Entity) ([]any, error) {
	d.log.DebugContext(ctx, "inserting entities", "count", len(entities))
	ids := make([]any, 0, len(entities))
	for _, e := range entities {
		id, ok, err := d.insert(ctx, e)
		if err != nil {
			return nil, err
		}
		if ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// InsertOne inserts a single entity and returns its primary key, or nil when
// no row was written.
func (d *DAO) InsertOne(ctx context.Context, e *Entity) (any, error) {
	ids, err := d.Insert(ctx, e)
	if err != nil || len(ids) == 0 {
		return nil, err
	}
	return ids[0], nil
}

func (d *DAO) insert(ctx context.Context, e *Entity) (any, bool, error) {
	pk := d.pk()
	if err := d.validate(orm.OpInsert, e, pk.Name); err != nil {
		return nil, false, err
	}
	for _, a := range d.orm.Associations {
		if a.Type.Cascades() && len(e.Edges[a.Name]) > 0 {
			if _, err := d.dependentTarget(orm.OpInsert, a); err != nil {
				return nil, false, err
			}
		}
	}
	if err := d.hooks.beforeInsertEntity(ctx, e); err != nil {
		return nil, false, err
	}
	for _, p := range d.orm.UniqueProperties() {
		v := e.Values[p.Name]
		if v == nil {
			continue
		}
		res, err := d.execute(ctx, orm.OpInsert, d.builder.UniqueCheck(p), Values{p.Name: v})
		if err != nil {
			return nil, false, err
		}
		if len(res.rows) > 0 {
			return nil, false, &ConstraintError{Table: d.table, Property: p.Name, Value: v}
		}
	}

	rec := d.toRecord(e)
	var written bool
	fail := func(err error) (any, bool, error) {
		id := rec[pk.Column]
		d.log.ErrorContext(ctx, "inserting entity failed", "id", id, "err", err)
		if written && id != nil {
			d.log.DebugContext(ctx, "removing partially inserted entity", "id", id)
			if rerr := d.Remove(ctx, id); rerr != nil {
				d.log.ErrorContext(ctx, "could not remove partially inserted entity", "id", id, "err", rerr)
			}
		}
		return nil, false, err
	}

	if d.orm.IsAutoIncrementPrimaryKey() {
		id, err := d.nextID(ctx)
		if err != nil {
			return fail(err)
		}
		rec[pk.Column] = id
		e.Values[pk.Name] = id
	}
	res, err := d.execute(ctx, orm.OpInsert, d.builder.Insert(e.Values), rec)
	if err != nil {
		if sqlgraph.IsUniqueConstraintError(err) {
			err = &ConstraintError{Table: d.table, Err: err}
		}
		return fail(err)
	}
	if !d.orm.IsAutoIncrementPrimaryKey() && rec[pk.Column] == nil && len(res.keys) > 0 {
		rec[pk.Column] = res.keys[0]
		e.Values[pk.Name] = res.keys[0]
	}
	written = res.affected > 0 || len(res.keys) > 0

	if err := d.hooks.afterInsert(ctx, e, rec); err != nil {
		return fail(err)
	}
	if err := d.hooks.beforeInsertAssociationSets(ctx, e, rec); err != nil {
		return fail(err)
	}
	if !written {
		d.log.DebugContext(ctx, "no changes incurred")
		return nil, false, nil
	}
	for _, a := range d.orm.Associations {
		children := e.Edges[a.Name]
		if !a.Type.Cascades() || len(children) == 0 {
			continue
		}
		if err := d.insertChildren(ctx, e, a, children); err != nil {
			return fail(err)
		}
	}
	d.log.DebugContext(ctx, "entity inserted", "id", rec[pk.Column])
	return rec[pk.Column], true, nil
}

// insertChildren inserts the inline entities of one association, setting
// their join key to the owner's key value.
func (d *DAO) insertChildren(ctx context.Context, e *Entity, a *orm.Association, children []*Entity) error {
	target, err := d.dependentTarget(orm.OpInsert, a)
	if err != nil {
		return err
	}
	if err := d.hooks.beforeInsertAssociationSet(ctx, e, a, children); err != nil {
		return err
	}
	d.log.DebugContext(ctx, "inserting association set", "association", a.Name, "count", len(children))
	joinValue := e.Values[a.KeyOr(d.pk().Name)]
	for _, child := range children {
		child.Set(a.JoinKey, joinValue)
		if err := d.hooks.beforeInsertAssociationSetEntity(ctx, e, a, child); err != nil {
			return err
		}
		if _, err := target.Insert(ctx, child); err != nil {
			return err
		}
	}
	return d.hooks.afterInsertAssociationSet(ctx, e, a, children)
}

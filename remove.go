package daoism

import (
	"context"

	"github.com/syssam/daoism/orm"
	"github.com/syssam/daoism/statement"
)

const opRemove = "remove"

// Remove deletes the entities with the given primary keys, or every entity
// when no key is given. A single slice argument is taken as the list of
// keys. Dependents of associations that own them are removed first,
// recursively.
func (d *DAO) Remove(ctx context.Context, ids ...any) error {
	if len(ids) == 1 {
		if vs, ok := statement.Spread(ids[0]); ok {
			ids = vs
		}
	}
	if len(ids) == 0 {
		pk := d.pk().Name
		all, err := d.List(ctx, ListSettings{Select: []string{pk}})
		if err != nil {
			return err
		}
		ids = make([]any, 0, len(all))
		for _, e := range all {
			ids = append(ids, e.Values[pk])
		}
	}
	d.log.DebugContext(ctx, "deleting entities", "count", len(ids))
	for _, id := range ids {
		if err := d.remove(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (d *DAO) remove(ctx context.Context, raw any) error {
	id, err := d.coerceID(opRemove, raw)
	if err != nil {
		return err
	}
	if err := d.removeEntity(ctx, id); err != nil {
		d.log.ErrorContext(ctx, "deleting entity failed", "id", id, "err", err)
		return err
	}
	return nil
}

func (d *DAO) removeEntity(ctx context.Context, id any) error {
	var cascades []*orm.Association
	for _, a := range d.orm.Associations {
		if !a.Type.Cascades() {
			continue
		}
		if _, err := d.dependentTarget(opRemove, a); err != nil {
			return err
		}
		cascades = append(cascades, a)
	}
	if err := d.hooks.beforeRemoveEntity(ctx, id); err != nil {
		return err
	}
	for _, a := range cascades {
		if err := d.removeDependents(ctx, id, a); err != nil {
			return err
		}
	}
	pk := d.pk()
	res, err := d.execute(ctx, opRemove, d.builder.Delete(pk.Name), Values{pk.Name: id})
	if err != nil {
		return err
	}
	d.evictAll(ctx)
	if res.affected > 0 {
		d.log.DebugContext(ctx, "entity deleted", "id", id)
	} else {
		d.log.DebugContext(ctx, "no changes incurred", "id", id)
	}
	return nil
}

// removeDependents removes the entities of association a that join to id.
func (d *DAO) removeDependents(ctx context.Context, id any, a *orm.Association) error {
	target, err := d.dependentTarget(opRemove, a)
	if err != nil {
		return err
	}
	joinValue := id
	if a.Key != "" {
		owner, err := d.Find(ctx, id)
		if err != nil {
			return err
		}
		if joinValue = owner.Get(a.Key); joinValue == nil {
			// Nothing can join on an absent key.
			return nil
		}
	}
	deps, err := target.List(ctx, ListSettings{Where: map[string]any{a.JoinKey: joinValue}})
	if err != nil || len(deps) == 0 {
		return err
	}
	d.log.DebugContext(ctx, "deleting dependents", "id", id, "association", a.Name, "count", len(deps))
	if err := d.hooks.beforeRemoveAssociationSet(ctx, id, a, deps); err != nil {
		return err
	}
	tpk := target.pk().Name
	for _, dep := range deps {
		if err := d.hooks.beforeRemoveAssociationSetEntity(ctx, id, a, dep); err != nil {
			return err
		}
		if err := target.Remove(ctx, dep.Values[tpk]); err != nil {
			return err
		}
	}
	return nil
}

// coerceID converts a primary key argument to its bound form. VARCHAR and
// CHAR keys are kept as given; other keys are coerced by type, UUIDs to
// their canonical lower-case form.
func (d *DAO) coerceID(op string, id any) (any, error) {
	if id == nil {
		return nil, NewMissingArgumentError(d.table, op, "id")
	}
	pk := d.pk()
	if orm.IsCharacter(pk.Type) {
		return id, nil
	}
	v, err := Coerce(pk.Type, id)
	if err != nil {
		return nil, NewArgumentError(d.table, op, "id %v: %v", id, err)
	}
	return v, nil
}

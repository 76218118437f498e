package daoism

import (
	"context"

	"github.com/syssam/daoism/dialect/sql/sqlgraph"
	"github.com/syssam/daoism/orm"
)

// Update writes the values present in e to the row with the same primary
// key. Mandatory properties that do not allow updates need no value. It
// returns the DAO for chaining.
func (d *DAO) Update(ctx context.Context, e *Entity) (*DAO, error) {
	if e == nil {
		return nil, NewArgumentError(d.table, orm.OpUpdate, "entity is nil")
	}
	pk := d.pk()
	id := e.Values[pk.Name]
	d.log.DebugContext(ctx, "updating entity", "id", id)

	var skip []string
	for _, p := range d.orm.MandatoryProperties() {
		if !p.Allows(orm.OpUpdate) {
			skip = append(skip, p.Name)
		}
	}
	if err := d.validate(orm.OpUpdate, e, skip...); err != nil {
		return nil, err
	}
	st := d.builder.Update(e.Values)
	rec := d.toRecord(e)
	if err := d.hooks.beforeUpdateEntity(ctx, e, rec); err != nil {
		return nil, err
	}
	res, err := d.execute(ctx, orm.OpUpdate, st, rec)
	if err != nil {
		if sqlgraph.IsUniqueConstraintError(err) {
			err = &ConstraintError{Table: d.table, Err: err}
		}
		d.log.ErrorContext(ctx, "updating entity failed", "id", id, "err", err)
		return nil, err
	}
	if res.affected > 0 {
		d.log.DebugContext(ctx, "entity updated", "id", id)
	} else {
		d.log.DebugContext(ctx, "no changes incurred", "id", id)
	}
	d.evictAll(ctx)
	return d, nil
}

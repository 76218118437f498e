package daoism

import (
	"context"
	"fmt"

	"github.com/syssam/daoism/contrib/dataloader"
)

const opListJoins = "listJoins"

var _ JoinDAO = (*DAO)(nil)

// JoinTarget returns the property of join rows holding the target key, or
// "" when the DAO does not describe a join table.
func (d *DAO) JoinTarget() string { return d.joinTarget }

// ListJoins lists the join rows matching settings and returns the target
// entities they point to, in join row order. Join rows whose target does not
// exist are skipped.
func (d *DAO) ListJoins(ctx context.Context, settings ListSettings, jc JoinContext) ([]*Entity, error) {
	if d.joinTarget == "" {
		return nil, fmt.Errorf("%w: daoism: %s: not a join table", ErrInvalidArgument, d.table)
	}
	if jc.Target == nil {
		return nil, NewMissingArgumentError(d.table, opListJoins, "target")
	}
	joins, err := d.List(ctx, settings)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(joins))
	values := make([]any, 0, len(joins))
	for _, j := range joins {
		v := j.Get(d.joinTarget)
		if v == nil {
			continue
		}
		keys = append(keys, fmt.Sprint(v))
		values = append(values, v)
	}
	if len(values) == 0 {
		return []*Entity{}, nil
	}
	source := "-"
	if jc.Source != nil {
		source = jc.Source.Table()
	}
	d.log.DebugContext(ctx, "listing join targets", "source", source, "target", jc.Target.Table(), "count", len(values))

	tpk := jc.Target.pk().Name
	targets, err := jc.Target.List(ctx, ListSettings{Filter: &Filter{Equals: map[string]any{tpk: values}}})
	if err != nil {
		return nil, err
	}
	ordered, errs := dataloader.OrderByKeys(keys, targets, func(e *Entity) string {
		return fmt.Sprint(e.Get(tpk))
	})
	return dataloader.Found(ordered, errs), nil
}


package daoism

import (
	"context"
	"fmt"
	"maps"

	"github.com/syssam/daoism/orm"
)

const opExpand = "expand"

// JoinContext names the DAOs taking part in a MANY_TO_MANY traversal.
type JoinContext struct {
	Source *DAO
	Join   *DAO
	Target *DAO
}

// JoinDAO lists the target entities of a MANY_TO_MANY association through
// the rows of a join table.
type JoinDAO interface {
	ListJoins(ctx context.Context, settings ListSettings, jc JoinContext) ([]*Entity, error)
}

// Expand resolves the association path starting at from, which is an
// *Entity carrying its primary key or a primary key value. It returns the
// entities of the first association; entities of the following path
// segments are attached to the Edges of the entities they were resolved
// from.
func (d *DAO) Expand(ctx context.Context, path []string, from any) ([]*Entity, error) {
	if len(path) == 0 {
		return nil, NewArgumentError(d.table, opExpand, "empty expansion path")
	}
	if from == nil {
		return nil, NewArgumentError(d.table, opExpand, "expansion context is nil")
	}
	name, rest := path[0], path[1:]
	a := d.orm.Association(name)
	if a == nil {
		return nil, &AssociationError{Table: d.table, Association: name}
	}
	d.log.DebugContext(ctx, "expanding association", "association", name, "path", path)

	owner, err := d.contextEntity(ctx, from)
	if err != nil {
		return nil, err
	}
	target, err := d.target(a)
	if err != nil {
		return nil, err
	}

	related := []*Entity{}
	switch a.Type {
	case orm.OneToOne, orm.ManyToOne:
		e, err := d.expandSingle(ctx, a, owner, target)
		if err != nil {
			return nil, err
		}
		if e != nil {
			related = []*Entity{e}
		}
	case orm.OneToMany:
		joinValue := owner.Get(a.KeyOr(d.pk().Name))
		if joinValue == nil {
			break
		}
		settings := ListSettings{Where: maps.Clone(a.Defaults)}
		if settings.Where == nil {
			settings.Where = make(map[string]any, 1)
		}
		settings.Where[a.JoinKey] = joinValue
		if related, err = target.List(ctx, settings); err != nil {
			return nil, err
		}
	case orm.ManyToMany:
		joinValue := owner.Get(a.KeyOr(d.pk().Name))
		if joinValue == nil {
			break
		}
		join, err := d.resolve(a.Join)
		if err != nil {
			return nil, err
		}
		settings := ListSettings{Where: map[string]any{a.JoinKey: joinValue}}
		if related, err = join.ListJoins(ctx, settings, JoinContext{Source: d, Join: join, Target: target}); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: daoism: %s: association %s has type %q", ErrInvalidArgument, d.table, a.Name, a.Type)
	}

	if len(rest) > 0 {
		for _, e := range related {
			nested, err := target.Expand(ctx, rest, e)
			if err != nil {
				return nil, err
			}
			e.SetEdge(rest[0], nested)
		}
	}
	return related, nil
}

// contextEntity returns the entity to traverse from.
func (d *DAO) contextEntity(ctx context.Context, from any) (*Entity, error) {
	pk := d.pk().Name
	if e, ok := from.(*Entity); ok {
		if e.Get(pk) == nil {
			return nil, NewArgumentError(d.table, opExpand, "context entity without %s", pk)
		}
		return e, nil
	}
	e, err := d.Find(ctx, from)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, &NotFoundError{Table: d.table, ID: from}
	}
	return e, nil
}

// expandSingle resolves a ONE_TO_ONE or MANY_TO_ONE association. The join
// value is read from the owner's join key and matched against the target's
// primary key, or against the association key when one is declared.
func (d *DAO) expandSingle(ctx context.Context, a *orm.Association, owner *Entity, target *DAO) (*Entity, error) {
	joinValue := owner.Get(a.JoinKey)
	if joinValue == nil {
		return nil, nil
	}
	if a.Key == "" || a.Key == target.pk().Name {
		return target.Find(ctx, joinValue)
	}
	list, err := target.List(ctx, ListSettings{Where: map[string]any{a.Key: joinValue}, Limit: 1})
	if err != nil || len(list) == 0 {
		return nil, err
	}
	return list[0], nil
}

package daoism

import (
	"context"

	"github.com/syssam/daoism/orm"
)

// Hooks are optional callbacks fired by DAO operations. A nil hook is a
// no-op; a hook returning an error aborts the operation with that error.
type Hooks struct {
	// BeforeInsertEntity runs after validation, before the uniqueness checks
	// and the row of entity are written.
	BeforeInsertEntity func(ctx context.Context, entity *Entity) error
	// AfterInsert runs after the row of entity was inserted. record holds the
	// written values, including the resolved primary key.
	AfterInsert func(ctx context.Context, entity *Entity, record Record) error
	// BeforeInsertAssociationSets runs after AfterInsert, before any inline
	// association entities are inserted.
	BeforeInsertAssociationSets func(ctx context.Context, entity *Entity, record Record) error
	// BeforeInsertAssociationSet runs before the inline entities of one
	// association are inserted.
	BeforeInsertAssociationSet func(ctx context.Context, entity *Entity, assoc *orm.Association, children []*Entity) error
	// BeforeInsertAssociationSetEntity runs before each inline entity is inserted.
	BeforeInsertAssociationSetEntity func(ctx context.Context, entity *Entity, assoc *orm.Association, child *Entity) error
	// AfterInsertAssociationSet runs after the inline entities of one
	// association were inserted.
	AfterInsertAssociationSet func(ctx context.Context, entity *Entity, assoc *orm.Association, children []*Entity) error

	// BeforeUpdateEntity runs before the update statement executes.
	BeforeUpdateEntity func(ctx context.Context, entity *Entity, record Record) error

	// BeforeRemoveEntity runs before the dependents and the row of id are removed.
	BeforeRemoveEntity func(ctx context.Context, id any) error
	// BeforeRemoveAssociationSet runs before the dependents of one association
	// are removed.
	BeforeRemoveAssociationSet func(ctx context.Context, id any, assoc *orm.Association, dependents []*Entity) error
	// BeforeRemoveAssociationSetEntity runs before each dependent is removed.
	BeforeRemoveAssociationSetEntity func(ctx context.Context, id any, assoc *orm.Association, dependent *Entity) error

	// AfterFound runs for every entity read by Find or List. settings is nil
	// for Find.
	AfterFound func(ctx context.Context, entity *Entity, settings *ListSettings) error
}

func (h *Hooks) beforeInsertEntity(ctx context.Context, e *Entity) error {
	if h.BeforeInsertEntity == nil {
		return nil
	}
	return h.BeforeInsertEntity(ctx, e)
}

func (h *Hooks) afterInsert(ctx context.Context, e *Entity, r Record) error {
	if h.AfterInsert == nil {
		return nil
	}
	return h.AfterInsert(ctx, e, r)
}

func (h *Hooks) beforeInsertAssociationSets(ctx context.Context, e *Entity, r Record) error {
	if h.BeforeInsertAssociationSets == nil {
		return nil
	}
	return h.BeforeInsertAssociationSets(ctx, e, r)
}

func (h *Hooks) beforeInsertAssociationSet(ctx context.Context, e *Entity, a *orm.Association, children []*Entity) error {
	if h.BeforeInsertAssociationSet == nil {
		return nil
	}
	return h.BeforeInsertAssociationSet(ctx, e, a, children)
}

func (h *Hooks) beforeInsertAssociationSetEntity(ctx context.Context, e *Entity, a *orm.Association, child *Entity) error {
	if h.BeforeInsertAssociationSetEntity == nil {
		return nil
	}
	return h.BeforeInsertAssociationSetEntity(ctx, e, a, child)
}

func (h *Hooks) afterInsertAssociationSet(ctx context.Context, e *Entity, a *orm.Association, children []*Entity) error {
	if h.AfterInsertAssociationSet == nil {
		return nil
	}
	return h.AfterInsertAssociationSet(ctx, e, a, children)
}

func (h *Hooks) beforeUpdateEntity(ctx context.Context, e *Entity, r Record) error {
	if h.BeforeUpdateEntity == nil {
		return nil
	}
	return h.BeforeUpdateEntity(ctx, e, r)
}

func (h *Hooks) beforeRemoveEntity(ctx context.Context, id any) error {
	if h.BeforeRemoveEntity == nil {
		return nil
	}
	return h.BeforeRemoveEntity(ctx, id)
}

func (h *Hooks) beforeRemoveAssociationSet(ctx context.Context, id any, a *orm.Association, deps []*Entity) error {
	if h.BeforeRemoveAssociationSet == nil {
		return nil
	}
	return h.BeforeRemoveAssociationSet(ctx, id, a, deps)
}

func (h *Hooks) beforeRemoveAssociationSetEntity(ctx context.Context, id any, a *orm.Association, dep *Entity) error {
	if h.BeforeRemoveAssociationSetEntity == nil {
		return nil
	}
	return h.BeforeRemoveAssociationSetEntity(ctx, id, a, dep)
}

func (h *Hooks) afterFound(ctx context.Context, e *Entity, s *ListSettings) error {
	if h.AfterFound == nil {
		return nil
	}
	return h.AfterFound(ctx, e, s)
}

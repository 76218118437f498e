package privacy

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/syssam/daoism"
	"github.com/syssam/daoism/orm"
)

// Policy decision sentinel errors.
//
// Rules return them to steer the evaluation. Use errors.Is to check for
// them:
//
//	if errors.Is(err, privacy.Deny) { ... }
var (
	// Allow terminates the evaluation with an allow decision.
	Allow = errors.New("daoism/privacy: allow rule")

	// Deny terminates the evaluation with a deny decision.
	Deny = errors.New("daoism/privacy: deny rule")

	// Skip continues the evaluation with the next rule.
	Skip = errors.New("daoism/privacy: skip rule")
)

// Allowf returns a formatted wrapped Allow decision.
func Allowf(format string, a ...any) error {
	return fmt.Errorf(format+": %w", append(a, Allow)...)
}

// Denyf returns a formatted wrapped Deny decision.
func Denyf(format string, a ...any) error {
	return fmt.Errorf(format+": %w", append(a, Deny)...)
}

// Skipf returns a formatted wrapped Skip decision.
func Skipf(format string, a ...any) error {
	return fmt.Errorf(format+": %w", append(a, Skip)...)
}

// Operations evaluated by mutation rules.
const (
	OpInsert = orm.OpInsert
	OpUpdate = orm.OpUpdate
	OpRemove = "remove"
)

// Mutation is a write about to be performed by a DAO.
type Mutation struct {
	Op    string
	Table string
	// Entity is the written entity. It is nil for removals.
	Entity *daoism.Entity
	// ID is the primary key of removed and updated entities.
	ID any
}

// Field returns the value of the named property of the written entity.
func (m Mutation) Field(name string) (any, bool) {
	if m.Entity == nil {
		return nil, false
	}
	v, ok := m.Entity.Values[name]
	return v, ok && v != nil
}

// Query is an entity read by Find or List.
type Query struct {
	Table  string
	Entity *daoism.Entity
	// Settings is nil for Find.
	Settings *daoism.ListSettings
}

// Field returns the value of the named property of the read entity.
func (q Query) Field(name string) (any, bool) {
	if q.Entity == nil {
		return nil, false
	}
	v, ok := q.Entity.Values[name]
	return v, ok && v != nil
}

type (
	// QueryRule decides whether a read entity may be returned.
	QueryRule interface {
		EvalQuery(context.Context, Query) error
	}

	// QueryPolicy combines multiple query rules into a single policy.
	QueryPolicy []QueryRule

	// MutationRule decides whether a write may be performed.
	MutationRule interface {
		EvalMutation(context.Context, Mutation) error
	}

	// MutationPolicy combines multiple mutation rules into a single policy.
	MutationPolicy []MutationRule

	// QueryMutationRule groups query and mutation rules.
	QueryMutationRule interface {
		QueryRule
		MutationRule
	}
)

// QueryRuleFunc adapts an ordinary function to a query rule.
type QueryRuleFunc func(context.Context, Query) error

// EvalQuery returns f(ctx, q).
func (f QueryRuleFunc) EvalQuery(ctx context.Context, q Query) error {
	return f(ctx, q)
}

// MutationRuleFunc adapts an ordinary function to a mutation rule.
type MutationRuleFunc func(context.Context, Mutation) error

// EvalMutation returns f(ctx, m).
func (f MutationRuleFunc) EvalMutation(ctx context.Context, m Mutation) error {
	return f(ctx, m)
}

// AlwaysAllowRule returns a rule that always returns an Allow decision.
func AlwaysAllowRule() QueryMutationRule {
	return fixedDecision{Allow}
}

// AlwaysDenyRule returns a rule that always returns a Deny decision.
func AlwaysDenyRule() QueryMutationRule {
	return fixedDecision{Deny}
}

// ContextQueryMutationRule creates a rule from a context evaluation
// function. Returning nil is equivalent to returning Skip.
func ContextQueryMutationRule(eval func(context.Context) error) QueryMutationRule {
	return contextDecision{eval}
}

// OnMutationOperation evaluates rule only for the given operations.
func OnMutationOperation(rule MutationRule, ops ...string) MutationRule {
	return MutationRuleFunc(func(ctx context.Context, m Mutation) error {
		if slices.ContainsFunc(ops, func(op string) bool { return strings.EqualFold(op, m.Op) }) {
			return rule.EvalMutation(ctx, m)
		}
		return Skip
	})
}

// DenyMutationOperationRule returns a rule denying the given operation.
func DenyMutationOperationRule(op string) MutationRule {
	rule := MutationRuleFunc(func(_ context.Context, m Mutation) error {
		return Denyf("daoism/privacy: %s on %s is not allowed", m.Op, m.Table)
	})
	return OnMutationOperation(rule, op)
}

// AllowMutationOperationRule returns a rule allowing the given operation.
func AllowMutationOperationRule(op string) MutationRule {
	rule := MutationRuleFunc(func(context.Context, Mutation) error {
		return Allow
	})
	return OnMutationOperation(rule, op)
}

// Policy groups query and mutation policies. An evaluation in which every
// rule skips allows the operation.
type Policy struct {
	Query    QueryPolicy
	Mutation MutationPolicy
}

// EvalQuery evaluates the query policy, honoring a decision attached to ctx.
func (p Policy) EvalQuery(ctx context.Context, q Query) error {
	if decision, ok := DecisionFromContext(ctx); ok {
		return decision
	}
	return p.Query.EvalQuery(ctx, q)
}

// EvalMutation evaluates the mutation policy, honoring a decision attached
// to ctx.
func (p Policy) EvalMutation(ctx context.Context, m Mutation) error {
	if decision, ok := DecisionFromContext(ctx); ok {
		return decision
	}
	return p.Mutation.EvalMutation(ctx, m)
}

// EvalQuery evaluates a query against a query policy. An Allow decision
// ends the evaluation with a nil error.
func (policies QueryPolicy) EvalQuery(ctx context.Context, q Query) error {
	for _, policy := range policies {
		switch decision := policy.EvalQuery(ctx, q); {
		case decision == nil || errors.Is(decision, Skip):
		case errors.Is(decision, Allow):
			return nil
		default:
			return decision
		}
	}
	return nil
}

// EvalMutation evaluates a mutation against a mutation policy. An Allow
// decision ends the evaluation with a nil error.
func (policies MutationPolicy) EvalMutation(ctx context.Context, m Mutation) error {
	for _, policy := range policies {
		switch decision := policy.EvalMutation(ctx, m); {
		case decision == nil || errors.Is(decision, Skip):
		case errors.Is(decision, Allow):
			return nil
		default:
			return decision
		}
	}
	return nil
}

// Apply returns cfg with hooks enforcing the policy ahead of the hooks
// already configured. Inserts are checked before the row is written, updates
// before the statement runs, removals before dependents are touched and
// reads for every found entity.
func (p Policy) Apply(cfg daoism.Config) daoism.Config {
	table := ""
	if cfg.Description != nil {
		table = cfg.Description.Table
	}
	pk := func(e *daoism.Entity) any {
		if cfg.Description == nil || e == nil {
			return nil
		}
		if id := cfg.Description.PrimaryKey(); id != nil {
			return e.Values[id.Name]
		}
		return nil
	}
	next := cfg.Hooks
	h := next

	h.BeforeInsertEntity = func(ctx context.Context, e *daoism.Entity) error {
		if err := p.EvalMutation(ctx, Mutation{Op: OpInsert, Table: table, Entity: e, ID: pk(e)}); err != nil {
			return err
		}
		if next.BeforeInsertEntity != nil {
			return next.BeforeInsertEntity(ctx, e)
		}
		return nil
	}
	h.BeforeUpdateEntity = func(ctx context.Context, e *daoism.Entity, r daoism.Record) error {
		if err := p.EvalMutation(ctx, Mutation{Op: OpUpdate, Table: table, Entity: e, ID: pk(e)}); err != nil {
			return err
		}
		if next.BeforeUpdateEntity != nil {
			return next.BeforeUpdateEntity(ctx, e, r)
		}
		return nil
	}
	h.BeforeRemoveEntity = func(ctx context.Context, id any) error {
		if err := p.EvalMutation(ctx, Mutation{Op: OpRemove, Table: table, ID: id}); err != nil {
			return err
		}
		if next.BeforeRemoveEntity != nil {
			return next.BeforeRemoveEntity(ctx, id)
		}
		return nil
	}
	h.AfterFound = func(ctx context.Context, e *daoism.Entity, s *daoism.ListSettings) error {
		if err := p.EvalQuery(ctx, Query{Table: table, Entity: e, Settings: s}); err != nil {
			return err
		}
		if next.AfterFound != nil {
			return next.AfterFound(ctx, e, s)
		}
		return nil
	}
	cfg.Hooks = h
	return cfg
}

type decisionCtxKey struct{}

// DecisionContext returns a context carrying a decision that overrides
// every policy evaluated with it. Skip and nil leave parent unchanged.
func DecisionContext(parent context.Context, decision error) context.Context {
	if decision == nil || errors.Is(decision, Skip) {
		return parent
	}
	return context.WithValue(parent, decisionCtxKey{}, decision)
}

// DecisionFromContext retrieves the decision attached to ctx. An Allow
// decision is reported as nil.
func DecisionFromContext(ctx context.Context) (error, bool) {
	decision, ok := ctx.Value(decisionCtxKey{}).(error)
	if ok && errors.Is(decision, Allow) {
		decision = nil
	}
	return decision, ok
}

type fixedDecision struct {
	decision error
}

func (f fixedDecision) EvalQuery(context.Context, Query) error {
	return f.decision
}

func (f fixedDecision) EvalMutation(context.Context, Mutation) error {
	return f.decision
}

type contextDecision struct {
	eval func(context.Context) error
}

func (c contextDecision) EvalQuery(ctx context.Context, _ Query) error {
	return c.eval(ctx)
}

func (c contextDecision) EvalMutation(ctx context.Context, _ Mutation) error {
	return c.eval(ctx)
}

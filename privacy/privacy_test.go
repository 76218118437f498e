package privacy_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/syssam/daoism"
	"github.com/syssam/daoism/dialect"
	"github.com/syssam/daoism/dialect/sql"
	"github.com/syssam/daoism/orm"
	"github.com/syssam/daoism/privacy"
)

func TestDecisionErrors(t *testing.T) {
	tests := []struct {
		name     string
		decision error
		want     error
		message  string
	}{
		{name: "allow", decision: privacy.Allow, want: privacy.Allow},
		{name: "deny", decision: privacy.Deny, want: privacy.Deny},
		{name: "skip", decision: privacy.Skip, want: privacy.Skip},
		{name: "allowf", decision: privacy.Allowf("admin %s", "ann"), want: privacy.Allow, message: "admin ann: daoism/privacy: allow rule"},
		{name: "denyf", decision: privacy.Denyf("blocked %d", 7), want: privacy.Deny, message: "blocked 7: daoism/privacy: deny rule"},
		{name: "skipf", decision: privacy.Skipf("abstain"), want: privacy.Skip, message: "abstain: daoism/privacy: skip rule"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.decision, tt.want)
			if tt.message != "" {
				assert.EqualError(t, tt.decision, tt.message)
			}
		})
	}
}

func TestAlwaysRules(t *testing.T) {
	ctx := context.Background()
	assert.ErrorIs(t, privacy.AlwaysAllowRule().EvalQuery(ctx, privacy.Query{}), privacy.Allow)
	assert.ErrorIs(t, privacy.AlwaysAllowRule().EvalMutation(ctx, privacy.Mutation{}), privacy.Allow)
	assert.ErrorIs(t, privacy.AlwaysDenyRule().EvalQuery(ctx, privacy.Query{}), privacy.Deny)
	assert.ErrorIs(t, privacy.AlwaysDenyRule().EvalMutation(ctx, privacy.Mutation{}), privacy.Deny)
}

func TestOperationRules(t *testing.T) {
	ctx := context.Background()
	deny := privacy.DenyMutationOperationRule(privacy.OpRemove)
	allow := privacy.AllowMutationOperationRule(privacy.OpInsert)

	err := deny.EvalMutation(ctx, privacy.Mutation{Op: privacy.OpRemove, Table: "USERS"})
	assert.ErrorIs(t, err, privacy.Deny)
	assert.Contains(t, err.Error(), "remove on USERS is not allowed")
	assert.ErrorIs(t, deny.EvalMutation(ctx, privacy.Mutation{Op: privacy.OpUpdate}), privacy.Skip)

	assert.ErrorIs(t, allow.EvalMutation(ctx, privacy.Mutation{Op: "INSERT"}), privacy.Allow)
	assert.ErrorIs(t, allow.EvalMutation(ctx, privacy.Mutation{Op: privacy.OpUpdate}), privacy.Skip)
}

func TestDecisionContext(t *testing.T) {
	ctx := context.Background()
	_, ok := privacy.DecisionFromContext(ctx)
	assert.False(t, ok)

	assert.Equal(t, ctx, privacy.DecisionContext(ctx, nil))
	assert.Equal(t, ctx, privacy.DecisionContext(ctx, privacy.Skip))

	decision, ok := privacy.DecisionFromContext(privacy.DecisionContext(ctx, privacy.Allow))
	assert.True(t, ok)
	assert.NoError(t, decision)

	decision, ok = privacy.DecisionFromContext(privacy.DecisionContext(ctx, privacy.Denyf("maintenance")))
	assert.True(t, ok)
	assert.ErrorIs(t, decision, privacy.Deny)
}

func TestPolicy(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")
	skip := privacy.ContextQueryMutationRule(func(context.Context) error { return nil })
	failing := privacy.ContextQueryMutationRule(func(context.Context) error { return boom })

	tests := []struct {
		name  string
		rules []privacy.QueryMutationRule
		ctx   context.Context
		want  error
	}{
		{name: "Empty"},
		{name: "AllSkip", rules: []privacy.QueryMutationRule{skip, skip}},
		{name: "AllowStops", rules: []privacy.QueryMutationRule{skip, privacy.AlwaysAllowRule(), privacy.AlwaysDenyRule()}},
		{name: "DenyStops", rules: []privacy.QueryMutationRule{privacy.AlwaysDenyRule(), privacy.AlwaysAllowRule()}, want: privacy.Deny},
		{name: "OtherError", rules: []privacy.QueryMutationRule{failing}, want: boom},
		{name: "ContextAllow", rules: []privacy.QueryMutationRule{privacy.AlwaysDenyRule()}, ctx: privacy.DecisionContext(ctx, privacy.Allow)},
		{name: "ContextDeny", rules: []privacy.QueryMutationRule{privacy.AlwaysAllowRule()}, ctx: privacy.DecisionContext(ctx, privacy.Deny), want: privacy.Deny},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p privacy.Policy
			for _, r := range tt.rules {
				p.Query = append(p.Query, r)
				p.Mutation = append(p.Mutation, r)
			}
			c := tt.ctx
			if c == nil {
				c = ctx
			}
			if tt.want == nil {
				assert.NoError(t, p.EvalQuery(c, privacy.Query{}))
				assert.NoError(t, p.EvalMutation(c, privacy.Mutation{}))
				return
			}
			assert.ErrorIs(t, p.EvalQuery(c, privacy.Query{}), tt.want)
			assert.ErrorIs(t, p.EvalMutation(c, privacy.Mutation{}), tt.want)
		})
	}
}

func TestRuleFuncs(t *testing.T) {
	ctx := context.Background()
	var gotQ privacy.Query
	var gotM privacy.Mutation
	q := privacy.QueryRuleFunc(func(_ context.Context, q privacy.Query) error { gotQ = q; return privacy.Skip })
	m := privacy.MutationRuleFunc(func(_ context.Context, m privacy.Mutation) error { gotM = m; return privacy.Skip })

	assert.ErrorIs(t, q.EvalQuery(ctx, privacy.Query{Table: "USERS"}), privacy.Skip)
	assert.Equal(t, "USERS", gotQ.Table)
	assert.ErrorIs(t, m.EvalMutation(ctx, privacy.Mutation{Op: privacy.OpUpdate, ID: 3}), privacy.Skip)
	assert.Equal(t, 3, gotM.ID)
}

func TestMutationField(t *testing.T) {
	m := privacy.Mutation{Entity: daoism.NewEntity(daoism.Values{"userId": 7, "note": nil})}
	v, ok := m.Field("userId")
	assert.True(t, ok)
	assert.Equal(t, 7, v)
	_, ok = m.Field("note")
	assert.False(t, ok)
	_, ok = privacy.Mutation{ID: 1}.Field("userId")
	assert.False(t, ok)
}

func TestApply(t *testing.T) {
	ctx := context.Background()
	drv, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	drv.DB().SetMaxOpenConns(1)
	t.Cleanup(func() { drv.Close() })

	var inserted, removed int
	cfg := daoism.Config{
		Description: &orm.Description{
			Table: "NOTES",
			Properties: []*orm.Property{
				{Name: "id", Type: orm.Integer, ID: true},
				{Name: "userId", Type: orm.Varchar, Mandatory: true},
				{Name: "body", Type: orm.Varchar},
			},
		},
		Dialect:  dialect.SQLite,
		Executor: sql.NewExecutor(drv),
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Hooks: daoism.Hooks{
			BeforeInsertEntity: func(context.Context, *daoism.Entity) error { inserted++; return nil },
			BeforeRemoveEntity: func(context.Context, any) error { removed++; return nil },
		},
	}
	policy := privacy.Policy{
		Mutation: privacy.MutationPolicy{
			privacy.DenyIfNoViewer(),
			privacy.HasRole("admin"),
			privacy.IsOwner("userId"),
			privacy.AlwaysDenyRule(),
		},
		Query: privacy.QueryPolicy{
			privacy.DenyIfNoViewer(),
			privacy.IsOwner("userId"),
			privacy.HasRole("admin"),
			privacy.AlwaysDenyRule(),
		},
	}
	d, err := daoism.New(policy.Apply(cfg))
	require.NoError(t, err)
	_, err = d.CreateTable(ctx)
	require.NoError(t, err)

	ann := privacy.WithViewer(ctx, &privacy.SimpleViewer{UserID: "ann"})
	admin := privacy.WithViewer(ctx, &privacy.SimpleViewer{UserID: "root", Roles: []string{"admin"}})
	note := func(owner string) *daoism.Entity {
		return daoism.NewEntity(daoism.Values{"userId": owner, "body": "hi"})
	}

	_, err = d.InsertOne(ctx, note("ann"))
	assert.ErrorIs(t, err, privacy.Deny, "no viewer")
	_, err = d.InsertOne(ann, note("bob"))
	assert.ErrorIs(t, err, privacy.Deny, "not the owner")
	n, err := d.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "denied inserts write nothing")
	assert.Zero(t, inserted, "configured hooks run after the policy")

	annID, err := d.InsertOne(ann, note("ann"))
	require.NoError(t, err)
	bobID, err := d.InsertOne(admin, note("bob"))
	require.NoError(t, err)
	assert.Equal(t, 2, inserted)

	e, err := d.Find(ann, annID)
	require.NoError(t, err)
	assert.Equal(t, "ann", e.Get("userId"))
	_, err = d.Find(ann, bobID)
	assert.ErrorIs(t, err, privacy.Deny)
	all, err := d.List(admin, daoism.ListSettings{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = d.Update(ann, daoism.NewEntity(daoism.Values{"id": bobID, "userId": "ann"}))
	assert.NoError(t, err, "the viewer takes over the note by writing itself as the owner")
	_, err = d.Update(ann, daoism.NewEntity(daoism.Values{"id": bobID, "userId": "bob"}))
	assert.ErrorIs(t, err, privacy.Deny)

	err = d.Remove(ann, annID)
	assert.ErrorIs(t, err, privacy.Deny, "removals carry no entity to own")
	require.NoError(t, d.Remove(privacy.DecisionContext(ctx, privacy.Allow), annID))
	assert.Equal(t, 1, removed)
}

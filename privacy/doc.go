// Package privacy enforces access policies on DAO operations.
//
// A Policy holds ordered rules for writes (Mutation) and reads (Query).
// Each rule returns a decision:
//
//   - Allow: grants access and stops the evaluation
//   - Deny: rejects the operation and stops the evaluation
//   - Skip: continues with the next rule
//
// When every rule skips, the operation is allowed; end a policy with
// AlwaysDenyRule to deny by default.
//
// Policies are enforced through DAO hooks:
//
//	policy := privacy.Policy{
//	    Mutation: privacy.MutationPolicy{
//	        privacy.DenyIfNoViewer(),
//	        privacy.HasRole("admin"),
//	        privacy.IsOwner("userId"),
//	        privacy.AlwaysDenyRule(),
//	    },
//	    Query: privacy.QueryPolicy{
//	        privacy.TenantRule("tenantId"),
//	    },
//	}
//	dao, err := daoism.New(policy.Apply(cfg))
//
// The viewer travels in the context:
//
//	ctx = privacy.WithViewer(ctx, &privacy.SimpleViewer{UserID: "7", Roles: []string{"user"}})
//	_, err = dao.Insert(ctx, post)
//	if errors.Is(err, privacy.Deny) { ... }
//
// Trusted code bypasses every policy with a decision attached to the
// context:
//
//	ctx = privacy.DecisionContext(ctx, privacy.Allow)
package privacy

package privacy

import (
	"context"
	"fmt"
	"slices"
)

// Viewer is the authenticated caller of a DAO operation.
type Viewer interface {
	// GetID returns the viewer's unique identifier.
	GetID() string
	// GetRoles returns the viewer's roles.
	GetRoles() []string
	// GetTenantID returns the viewer's tenant, or "" without multi-tenancy.
	GetTenantID() string
}

type viewerCtxKey struct{}

// WithViewer returns a new context with the viewer attached.
func WithViewer(ctx context.Context, viewer Viewer) context.Context {
	return context.WithValue(ctx, viewerCtxKey{}, viewer)
}

// ViewerFromContext retrieves the viewer from the context, or nil.
func ViewerFromContext(ctx context.Context) Viewer {
	v, _ := ctx.Value(viewerCtxKey{}).(Viewer)
	return v
}

// SimpleViewer is a basic Viewer.
type SimpleViewer struct {
	UserID   string
	Roles    []string
	TenantID string
}

// GetID returns the user ID.
func (v *SimpleViewer) GetID() string {
	return v.UserID
}

// GetRoles returns the user's roles.
func (v *SimpleViewer) GetRoles() []string {
	return v.Roles
}

// GetTenantID returns the tenant ID.
func (v *SimpleViewer) GetTenantID() string {
	return v.TenantID
}

// DenyIfNoViewer denies when the context carries no viewer. It usually
// comes first in a policy.
//
//	privacy.Policy{
//	    Mutation: privacy.MutationPolicy{
//	        privacy.DenyIfNoViewer(),
//	        privacy.HasRole("admin"),
//	        privacy.IsOwner("userId"),
//	        privacy.AlwaysDenyRule(),
//	    },
//	}
func DenyIfNoViewer() QueryMutationRule {
	return ContextQueryMutationRule(func(ctx context.Context) error {
		if ViewerFromContext(ctx) == nil {
			return Denyf("daoism/privacy: viewer required")
		}
		return Skip
	})
}

// HasRole allows when the viewer has role and skips otherwise.
func HasRole(role string) QueryMutationRule {
	return HasAnyRole(role)
}

// HasAnyRole allows when the viewer has one of roles and skips otherwise.
func HasAnyRole(roles ...string) QueryMutationRule {
	return ContextQueryMutationRule(func(ctx context.Context) error {
		viewer := ViewerFromContext(ctx)
		if viewer == nil {
			return Skip
		}
		for _, role := range roles {
			if slices.Contains(viewer.GetRoles(), role) {
				return Allow
			}
		}
		return Skip
	})
}

// fielder is implemented by Query and Mutation.
type fielder interface {
	Field(name string) (any, bool)
}

// fieldRule applies one check to the property of read and written entities.
type fieldRule func(ctx context.Context, f fielder) error

func (r fieldRule) EvalQuery(ctx context.Context, q Query) error {
	return r(ctx, q)
}

func (r fieldRule) EvalMutation(ctx context.Context, m Mutation) error {
	return r(ctx, m)
}

// IsOwner allows when the property field of the entity equals the viewer's
// ID. It skips without a viewer or a value, including on removals.
func IsOwner(field string) QueryMutationRule {
	return fieldRule(func(ctx context.Context, f fielder) error {
		viewer := ViewerFromContext(ctx)
		if viewer == nil {
			return Skip
		}
		v, ok := f.Field(field)
		if !ok {
			return Skip
		}
		if fmt.Sprint(v) == viewer.GetID() {
			return Allow
		}
		return Skip
	})
}

// TenantRule allows when the property field of the entity equals the
// viewer's tenant and denies on a mismatch. It skips without a viewer, a
// tenant or a value.
func TenantRule(field string) QueryMutationRule {
	return fieldRule(func(ctx context.Context, f fielder) error {
		viewer := ViewerFromContext(ctx)
		if viewer == nil || viewer.GetTenantID() == "" {
			return Skip
		}
		v, ok := f.Field(field)
		if !ok {
			return Skip
		}
		if fmt.Sprint(v) == viewer.GetTenantID() {
			return Allow
		}
		return Denyf("daoism/privacy: tenant mismatch")
	})
}

// TenantQueryRule denies reads without a viewer or tenant.
func TenantQueryRule() QueryRule {
	return QueryRuleFunc(func(ctx context.Context, _ Query) error {
		viewer := ViewerFromContext(ctx)
		if viewer == nil {
			return Denyf("daoism/privacy: viewer required for tenant-filtered query")
		}
		if viewer.GetTenantID() == "" {
			return Denyf("daoism/privacy: tenant required")
		}
		return Skip
	})
}

package privacy

import (
	"context"
	"fmt"
	"slices"

	"github.com/syssam/cruddy"
	"github.com/syssam/cruddy/dialect/sql"
)

// Viewer represents the authenticated user making a request.
// This interface should be implemented by application-specific user types.
type Viewer interface {
	// GetID returns the viewer's unique identifier.
	GetID() string
	// GetRoles returns the viewer's roles.
	GetRoles() []string
	// GetTenantID returns the viewer's tenant identifier for multi-tenancy.
	// Returns empty string if not applicable.
	GetTenantID() string
}

// viewerCtxKey is the context key for storing the viewer.
type viewerCtxKey struct{}

// WithViewer returns a new context with the viewer attached.
func WithViewer(ctx context.Context, viewer Viewer) context.Context {
	return context.WithValue(ctx, viewerCtxKey{}, viewer)
}

// ViewerFromContext retrieves the viewer from the context.
// Returns nil if no viewer is present.
func ViewerFromContext(ctx context.Context) Viewer {
	v, _ := ctx.Value(viewerCtxKey{}).(Viewer)
	return v
}

// SimpleViewer is a basic implementation of the Viewer interface.
type SimpleViewer struct {
	UserID   string
	Roles    []string
	TenantID string
}

// GetID returns the user ID.
func (v *SimpleViewer) GetID() string { return v.UserID }

// GetRoles returns the user's roles.
func (v *SimpleViewer) GetRoles() []string { return v.Roles }

// GetTenantID returns the tenant ID.
func (v *SimpleViewer) GetTenantID() string { return v.TenantID }

// DenyIfNoViewer returns a rule that denies access if no viewer is present
// in the context. It is typically the first rule of a policy.
//
//	privacy.Policy{
//	    privacy.DenyIfNoViewer(),
//	    privacy.HasRole("admin"),
//	    privacy.AlwaysDenyRule(),
//	}
func DenyIfNoViewer() Rule {
	return ContextRule(func(ctx context.Context) error {
		if ViewerFromContext(ctx) == nil {
			return Denyf("privacy: viewer required")
		}
		return Skip
	})
}

// HasRole returns a rule that allows access if the viewer has the specified
// role, and skips otherwise.
func HasRole(role string) Rule {
	return HasAnyRole(role)
}

// HasAnyRole returns a rule that allows access if the viewer has any of the
// specified roles, and skips otherwise.
func HasAnyRole(roles ...string) Rule {
	return ContextRule(func(ctx context.Context) error {
		viewer := ViewerFromContext(ctx)
		if viewer == nil {
			return Skip
		}
		viewerRoles := viewer.GetRoles()
		for _, role := range roles {
			if slices.Contains(viewerRoles, role) {
				return Allow
			}
		}
		return Skip
	})
}

// IsOwner returns a rule for create and edit operations that allows access
// if the submitted value of field equals the viewer's ID.
func IsOwner(field string) Rule {
	return OnActions(RuleFunc(func(ctx context.Context, op Operation) error {
		viewer := ViewerFromContext(ctx)
		if viewer == nil {
			return Skip
		}
		value, ok := op.Value(field)
		if !ok {
			return Skip
		}
		if idString(value) == viewer.GetID() {
			return Allow
		}
		return Skip
	}), cruddy.ActionCreate, cruddy.ActionEdit)
}

// OwnerFilter returns a rule restricting queries to the rows whose field
// equals the viewer's ID. It denies queries without a viewer.
func OwnerFilter(field string) Rule {
	return FilterFunc(func(ctx context.Context, q cruddy.Query) error {
		viewer := ViewerFromContext(ctx)
		if viewer == nil {
			return Denyf("privacy: viewer required for owner-filtered query")
		}
		q.Where(sql.FieldEQ(field, viewer.GetID()))
		return Skip
	})
}

// TenantRule returns a rule for create and edit operations that allows
// access if the submitted tenant matches the viewer's tenant, and denies
// a mismatch.
func TenantRule(field string) Rule {
	return OnActions(RuleFunc(func(ctx context.Context, op Operation) error {
		viewer := ViewerFromContext(ctx)
		if viewer == nil {
			return Skip
		}
		viewerTenant := viewer.GetTenantID()
		if viewerTenant == "" {
			return Skip
		}
		value, ok := op.Value(field)
		if !ok {
			return Skip
		}
		if idString(value) == viewerTenant {
			return Allow
		}
		return Denyf("privacy: tenant mismatch")
	}), cruddy.ActionCreate, cruddy.ActionEdit)
}

// TenantFilter returns a rule restricting queries to the viewer's tenant.
// It denies queries if no viewer or tenant is present.
func TenantFilter(field string) Rule {
	return FilterFunc(func(ctx context.Context, q cruddy.Query) error {
		viewer := ViewerFromContext(ctx)
		if viewer == nil {
			return Denyf("privacy: viewer required for tenant-filtered query")
		}
		if viewer.GetTenantID() == "" {
			return Denyf("privacy: tenant required")
		}
		q.Where(sql.FieldEQ(field, viewer.GetTenantID()))
		return Skip
	})
}

func idString(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Package privacy provides the authorization layer evaluated by
// repositories before any record is read or written.
//
// # Core Concepts
//
//   - Operation: the entity, action, target id, submitted input and query
//     of a repository call
//   - Rule: a function of the operation returning Allow, Deny, or Skip
//   - Policy: an ordered list of rules
//   - Viewer: the authenticated user, carried in the context
//
// # Defining Policies
//
//	policy := privacy.Policy{
//	    privacy.DenyIfNoViewer(),                  // Require authentication
//	    privacy.HasRole("admin"),                  // Allow admins
//	    privacy.DenyActions(cruddy.ActionDelete),  // Nobody else deletes
//	    privacy.TenantFilter("tenant_id"),         // Scope reads to the tenant
//	    privacy.TenantRule("tenant_id"),           // Check written tenant
//	}
//	repo := repository.New(drv, users, repository.WithPolicy(policy))
//
// # Rule Evaluation
//
// Rules are evaluated in order until one returns a final decision:
//
//   - Allow: Grants access and stops evaluation
//   - Deny: Denies access and stops evaluation
//   - Skip: Continues to the next rule
//
// If all rules return Skip the operation is allowed; end a policy with
// AlwaysDenyRule to deny by default.
//
// # Filters
//
// Rules built with FilterFunc add predicates to the operation query and
// skip, so that reads, updates and deletes only reach permitted rows.
//
// # Context Integration
//
//	ctx := privacy.WithViewer(ctx, &privacy.SimpleViewer{
//	    UserID: "user-123",
//	    Roles:  []string{"editor"},
//	})
//
// A decision may also be forced for a context, e.g. for system jobs:
//
//	ctx = privacy.DecisionContext(ctx, privacy.Allow)
//
// # Error Handling
//
// Repositories convert a deny decision to a *cruddy.PrivacyError:
//
//	if cruddy.IsPrivacyError(err) { ... }
package privacy

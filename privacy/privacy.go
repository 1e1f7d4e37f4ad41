// Package privacy provides sets of types and helpers for writing privacy
// rules for entities, and deal with their evaluation at runtime.
package privacy

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/syssam/cruddy"
)

// Policy decision sentinel errors.
//
// These errors are used as return values from policy rules to indicate
// how the policy evaluation should proceed. Use errors.Is() to check
// for these values:
//
//	if errors.Is(err, privacy.Allow) { ... }
//	if errors.Is(err, privacy.Deny) { ... }
//	if errors.Is(err, privacy.Skip) { ... }
var (
	// Allow may be returned by rules to indicate that the policy
	// evaluation should terminate with an allow decision.
	Allow = errors.New("cruddy/privacy: allow rule")

	// Deny may be returned by rules to indicate that the policy
	// evaluation should terminate with a deny decision.
	Deny = errors.New("cruddy/privacy: deny rule")

	// Skip may be returned by rules to indicate that the policy
	// evaluation should continue to the next rule in the chain.
	Skip = errors.New("cruddy/privacy: skip rule")
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

// Operation describes the repository operation being authorized.
type Operation struct {
	// Entity is the entity identifier.
	Entity string
	// Action is the operation performed: create, edit, delete or view.
	Action cruddy.Action
	// ID is the primary key of the target record, nil for create and
	// search.
	ID any
	// Input holds the processed values of create and edit operations.
	Input map[string]any
	// Query is the query of view, search, edit and delete operations.
	// Rules may add predicates to it. It is nil for create.
	Query cruddy.Query
}

// Value returns the input value of field.
func (op Operation) Value(field string) (any, bool) {
	v, ok := op.Input[field]
	return v, ok
}

// Rule decides whether an operation is allowed.
type Rule interface {
	Eval(context.Context, Operation) error
}

// RuleFunc type is an adapter which allows the use of ordinary functions as
// rules.
type RuleFunc func(context.Context, Operation) error

// Eval returns f(ctx, op).
func (f RuleFunc) Eval(ctx context.Context, op Operation) error {
	return f(ctx, op)
}

// AlwaysAllowRule returns a rule that always returns an Allow decision.
func AlwaysAllowRule() Rule {
	return fixedDecision{Allow}
}

// AlwaysDenyRule returns a rule that always returns a Deny decision.
func AlwaysDenyRule() Rule {
	return fixedDecision{Deny}
}

// ContextRule creates a rule from a context evaluation function. The
// provided function should return Allow, Deny, Skip, or nil. Returning nil
// is equivalent to returning Skip.
func ContextRule(eval func(context.Context) error) Rule {
	return RuleFunc(func(ctx context.Context, _ Operation) error {
		return eval(ctx)
	})
}

// OnActions evaluates the given rule only on the given actions.
func OnActions(rule Rule, actions ...cruddy.Action) Rule {
	return RuleFunc(func(ctx context.Context, op Operation) error {
		if slices.Contains(actions, op.Action) {
			return rule.Eval(ctx, op)
		}
		return Skip
	})
}

// DenyActions returns a rule denying the given actions.
func DenyActions(actions ...cruddy.Action) Rule {
	return OnActions(RuleFunc(func(_ context.Context, op Operation) error {
		return Denyf("cruddy/privacy: %s is not allowed on %s", op.Action, op.Entity)
	}), actions...)
}

// AllowActions returns a rule allowing the given actions.
func AllowActions(actions ...cruddy.Action) Rule {
	return OnActions(fixedDecision{Allow}, actions...)
}

// Policy is an ordered list of rules. Rules are evaluated in order until one
// returns a decision other than Skip.
type Policy []Rule

// Eval evaluates the policy. It returns nil when the operation is allowed,
// either by an Allow decision or because every rule skipped, and the deny
// decision otherwise.
func (p Policy) Eval(ctx context.Context, op Operation) error {
	if decision, ok := DecisionFromContext(ctx); ok {
		return decision
	}
	for _, rule := range p {
		switch decision := rule.Eval(ctx, op); {
		case decision == nil || errors.Is(decision, Skip):
		case errors.Is(decision, Allow):
			return nil
		default:
			return decision
		}
	}
	return nil
}

// Policies combines multiple policies into a single rule. An Allow from
// one policy stops the evaluation.
type Policies []Policy

// Eval evaluates the policies in order.
func (policies Policies) Eval(ctx context.Context, op Operation) error {
	if decision, ok := DecisionFromContext(ctx); ok {
		return decision
	}
	for _, policy := range policies {
		for _, rule := range policy {
			switch decision := rule.Eval(ctx, op); {
			case decision == nil || errors.Is(decision, Skip):
				continue
			case errors.Is(decision, Allow):
				return nil
			default:
				return decision
			}
		}
	}
	return nil
}

type decisionCtxKey struct{}

// DecisionContext creates a new context from the given parent context with
// a policy decision attach to it.
func DecisionContext(parent context.Context, decision error) context.Context {
	if decision == nil || errors.Is(decision, Skip) {
		return parent
	}
	return context.WithValue(parent, decisionCtxKey{}, decision)
}

// DecisionFromContext retrieves the policy decision from the context.
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

func (f fixedDecision) Eval(context.Context, Operation) error {
	return f.decision
}

// FilterFunc is an adapter that allows using ordinary functions as rules
// that constrain the operation query, e.g. to scope rows to a tenant. It
// skips operations without a query.
//
//	privacy.FilterFunc(func(ctx context.Context, q cruddy.Query) error {
//	    q.Where(sql.FieldEQ("workspace_id", workspaceID(ctx)))
//	    return privacy.Skip
//	})
type FilterFunc func(context.Context, cruddy.Query) error

// Eval calls f(ctx, op.Query) if the operation has a query.
func (f FilterFunc) Eval(ctx context.Context, op Operation) error {
	if op.Query == nil {
		return Skip
	}
	return f(ctx, op.Query)
}

// Authorize evaluates rule for op and converts a deny decision to a
// *cruddy.PrivacyError. A nil rule allows everything.
func Authorize(ctx context.Context, rule Rule, op Operation) error {
	if rule == nil {
		return nil
	}
	if err := rule.Eval(ctx, op); err != nil && !errors.Is(err, Allow) && !errors.Is(err, Skip) {
		return cruddy.NewPrivacyError(op.Entity, op.Action, err.Error())
	}
	return nil
}

var (
	_ Rule = Policy(nil)
	_ Rule = Policies(nil)
	_ Rule = FilterFunc(nil)
)

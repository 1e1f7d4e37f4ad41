// Package validation implements cruddy.Validator with per-field rule sets.
//
// Rules are written the way admin panel schemas usually spell them:
//
//	rs := validation.New()
//	rs.MustSet("email", "required|email|max:255")
//	rs.MustSet("password", "required@create|min:8")
//	rs.MustSet("role", "in:admin,editor")
//
// A rule suffixed with "@action" is only checked for that action. The
// checks themselves are performed by go-playground/validator.
package validation

import (
	"errors"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/syssam/cruddy"
)

// RuleSet holds the rules of an entity's fields.
type RuleSet struct {
	mu    sync.RWMutex
	order []string
	rules map[string][]Rule
	v     *validator.Validate
}

// New returns an empty rule set.
func New() *RuleSet {
	return &RuleSet{
		rules: make(map[string][]Rule),
		v:     validator.New(),
	}
}

// Set parses rules and appends them to the rules of field.
func (rs *RuleSet) Set(field, rules string) error {
	parsed, err := ParseRules(rules)
	if err != nil {
		return err
	}
	rs.Add(field, parsed...)
	return nil
}

// MustSet is like Set but panics on error.
func (rs *RuleSet) MustSet(field, rules string) *RuleSet {
	if err := rs.Set(field, rules); err != nil {
		panic(err)
	}
	return rs
}

// SetFor parses rules and appends them to field, restricted to action.
// Rules carrying their own "@action" suffix are rejected.
func (rs *RuleSet) SetFor(action cruddy.Action, field, rules string) error {
	parsed, err := ParseRules(rules)
	if err != nil {
		return err
	}
	for i := range parsed {
		if parsed[i].Action != "" && parsed[i].Action != action {
			return errors.New("validation: rule " + parsed[i].String() + " conflicts with action " + string(action))
		}
		parsed[i].Action = action
	}
	rs.Add(field, parsed...)
	return nil
}

// Add appends parsed rules to field.
func (rs *RuleSet) Add(field string, rules ...Rule) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if _, ok := rs.rules[field]; !ok {
		rs.order = append(rs.order, field)
	}
	rs.rules[field] = append(rs.rules[field], rules...)
}

// Rules returns the rules of field.
func (rs *RuleSet) Rules(field string) []Rule {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return slices.Clone(rs.rules[field])
}

// Fields returns the fields that have rules, in the order they were added.
func (rs *RuleSet) Fields() []string {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return slices.Clone(rs.order)
}

// RequiredState implements cruddy.Validator. It returns true when the field
// is required for every action, the action name when it is required for a
// single action (comma separated names for several), and false otherwise.
func (rs *RuleSet) RequiredState(id string) any {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	var actions []string
	for _, r := range rs.rules[id] {
		if r.Name != RuleRequired {
			continue
		}
		if r.Action == "" {
			return true
		}
		if !slices.Contains(actions, string(r.Action)) {
			actions = append(actions, string(r.Action))
		}
	}
	if len(actions) == 0 {
		return false
	}
	return strings.Join(actions, ",")
}

// Validate checks input against the rules that apply to action. It returns
// nil, a *cruddy.ValidationError, or a *cruddy.AggregateError holding one
// ValidationError per failed field. Blank values only fail the required
// rule; other rules are skipped for them.
func (rs *RuleSet) Validate(action cruddy.Action, input map[string]any) error {
	rs.mu.RLock()
	order := slices.Clone(rs.order)
	rules := maps.Clone(rs.rules)
	rs.mu.RUnlock()

	var errs []error
	for _, field := range order {
		v := input[field]
		numeric := slices.ContainsFunc(rules[field], func(r Rule) bool {
			return r.Name == RuleNumeric && r.AppliesTo(action)
		})
		for _, r := range rules[field] {
			if !r.AppliesTo(action) {
				continue
			}
			if err := rs.check(field, r, v, numeric); err != nil {
				errs = append(errs, err)
				break
			}
		}
	}
	return cruddy.NewAggregateError(errs...)
}

// check runs r against v. Numeric fields compare min and max against the
// value instead of its length.
func (rs *RuleSet) check(field string, r Rule, v any, numeric bool) error {
	if blank(v) {
		if r.Name == RuleRequired {
			return cruddy.NewValidationError(field, r.Name, errors.New(r.message()))
		}
		return nil
	}
	val := r.value(v, numeric)
	tag := r.tag(val)
	if tag == "" {
		return nil
	}
	if err := rs.v.Var(val, tag); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return cruddy.NewValidationError(field, r.Name, err)
		}
		return cruddy.NewValidationError(field, r.Name, errors.New(r.message()))
	}
	return nil
}

func blank(v any) bool {
	switch v := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []any:
		return len(v) == 0
	case []string:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	}
	return false
}

var _ cruddy.Validator = (*RuleSet)(nil)

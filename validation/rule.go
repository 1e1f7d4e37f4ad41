package validation

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/syssam/cruddy"
)

// Rule is a single validation rule parsed from "name[:arg][@action]".
type Rule struct {
	Name   string
	Arg    string
	Action cruddy.Action // empty for every action
}

// Built-in rule names.
const (
	RuleRequired = "required"
	RuleEmail    = "email"
	RuleMin      = "min"
	RuleMax      = "max"
	RuleIn       = "in"
	RuleNumeric  = "numeric"
	RuleUUID     = "uuid"
	RuleURL      = "url"
	RuleDate     = "date"
)

// String returns the rule in its textual form.
func (r Rule) String() string {
	s := r.Name
	if r.Arg != "" {
		s += ":" + r.Arg
	}
	if r.Action != "" {
		s += "@" + string(r.Action)
	}
	return s
}

// AppliesTo reports whether the rule is checked for action.
func (r Rule) AppliesTo(action cruddy.Action) bool {
	return r.Action == "" || r.Action == action
}

// tag returns the go-playground/validator tag checking the rule against v.
func (r Rule) tag(v any) string {
	switch r.Name {
	case RuleMin, RuleMax:
		if _, isNum := v.(float64); !isNum {
			// Length bounds must be integers.
			f, _ := strconv.ParseFloat(r.Arg, 64)
			if r.Name == RuleMin {
				f = math.Ceil(f)
			} else {
				f = math.Floor(f)
			}
			return r.Name + "=" + strconv.FormatInt(int64(f), 10)
		}
		return r.Name + "=" + r.Arg
	case RuleIn:
		return "oneof=" + strings.Join(strings.Split(r.Arg, ","), " ")
	case RuleDate:
		return "datetime=" + dateLayout(r.Arg)
	case RuleRequired:
		return ""
	default:
		return r.Name
	}
}

// message describes the failure of the rule.
func (r Rule) message() string {
	switch r.Name {
	case RuleRequired:
		return "is required"
	case RuleEmail:
		return "must be a valid e-mail address"
	case RuleMin:
		return "must be at least " + r.Arg
	case RuleMax:
		return "must be at most " + r.Arg
	case RuleIn:
		return "must be one of " + r.Arg
	case RuleNumeric:
		return "must be a number"
	case RuleUUID:
		return "must be a valid UUID"
	case RuleURL:
		return "must be a valid URL"
	case RuleDate:
		return "must be a date formatted as " + dateLayout(r.Arg)
	}
	return "is invalid"
}

// value converts v to a type the rule's validator tag accepts. Numeric
// strings are converted for min and max when numeric is set.
func (r Rule) value(v any, numeric bool) any {
	switch r.Name {
	case RuleMin, RuleMax, RuleNumeric:
		if n, ok := number(v); ok {
			return n
		}
		if s, ok := v.(string); ok && numeric && r.Name != RuleNumeric {
			if n, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
				return n
			}
		}
		switch reflect.ValueOf(v).Kind() {
		case reflect.String, reflect.Slice, reflect.Map, reflect.Array:
			return v
		}
		return fmt.Sprint(v)
	default:
		if s, ok := v.(string); ok {
			return s
		}
		return fmt.Sprint(v)
	}
}

func dateLayout(arg string) string {
	if arg == "" {
		return "2006-01-02"
	}
	return arg
}

func number(v any) (float64, bool) {
	switch v := v.(type) {
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	}
	return 0, false
}

// ParseRules parses pipe separated rules: "required|email|max:255".
// A rule suffixed with "@action" is only checked for that action.
func ParseRules(s string) ([]Rule, error) {
	var rules []Rule
	for part := range strings.SplitSeq(s, "|") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		var r Rule
		if body, action, ok := strings.Cut(part, "@"); ok {
			part, r.Action = body, cruddy.Action(strings.TrimSpace(action))
			if r.Action == "" {
				return nil, fmt.Errorf("validation: rule %q: empty action", part)
			}
		}
		name, arg, _ := strings.Cut(part, ":")
		r.Name, r.Arg = strings.TrimSpace(name), strings.TrimSpace(arg)
		if err := r.check(); err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, nil
}

// check validates the rule arguments. Bad arguments would make the
// validator panic at validation time.
func (r Rule) check() error {
	switch r.Name {
	case RuleMin, RuleMax:
		if _, err := strconv.ParseFloat(r.Arg, 64); err != nil {
			return fmt.Errorf("validation: rule %q: numeric argument expected", r)
		}
	case RuleIn:
		if r.Arg == "" || strings.ContainsAny(r.Arg, " \t") {
			return fmt.Errorf("validation: rule %q: comma separated values without spaces expected", r)
		}
	case RuleRequired, RuleEmail, RuleNumeric, RuleUUID, RuleURL:
		if r.Arg != "" {
			return fmt.Errorf("validation: rule %q: unexpected argument", r)
		}
	case RuleDate:
	default:
		return fmt.Errorf("validation: unknown rule %q", r.Name)
	}
	return nil
}

package field

import (
	"fmt"
	"strings"

	"github.com/syssam/cruddy"
)

// Disabled tells for which actions a field is disabled: never, always, or
// a single named action.
type Disabled struct {
	always bool
	action cruddy.Action
}

var (
	// Never leaves the field enabled for every action.
	Never = Disabled{}
	// Always disables the field for every action.
	Always = Disabled{always: true}
)

// ForAction disables the field for the given action only. An empty action
// is equivalent to Never.
func ForAction(action cruddy.Action) Disabled {
	return Disabled{action: action}
}

// For reports whether the field is disabled when performing action.
func (d Disabled) For(action cruddy.Action) bool {
	return d.always || (d.action != "" && d.action == action)
}

// Action returns the action the field is disabled for, if any.
func (d Disabled) Action() (cruddy.Action, bool) {
	return d.action, !d.always && d.action != ""
}

// Value returns the payload form: false, true or the action name.
func (d Disabled) Value() any {
	switch {
	case d.always:
		return true
	case d.action != "":
		return string(d.action)
	default:
		return false
	}
}

// String implements fmt.Stringer.
func (d Disabled) String() string {
	switch {
	case d.always:
		return "always"
	case d.action != "":
		return "for:" + string(d.action)
	default:
		return "never"
	}
}

// ParseDisabled converts a configuration value (nil, a bool or an action
// name) to a Disabled setting. The strings "true" and "false" are read as
// booleans.
func ParseDisabled(v any) (Disabled, error) {
	switch v := v.(type) {
	case nil:
		return Never, nil
	case bool:
		if v {
			return Always, nil
		}
		return Never, nil
	case cruddy.Action:
		return ForAction(v), nil
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "always":
			return Always, nil
		case "false", "never", "":
			return Never, nil
		}
		return ForAction(cruddy.Action(strings.TrimSpace(v))), nil
	default:
		return Never, fmt.Errorf("field: invalid disabled value %v (%T)", v, v)
	}
}

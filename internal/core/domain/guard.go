package domain

import (
	"fmt"
	"strings"

	"go.trai.ch/zerr"
)

// Condition is one side of a guard. Set is false when the condition was omitted.
type Condition struct {
	Expr string
	Set  bool
}

// Guard is the if/unless pair controlling whether a target or element runs.
type Guard struct {
	If     Condition
	Unless Condition
}

// Evaluate expands both conditions and reports whether execution should proceed.
// When it should not, reason describes which condition gated it out.
func (g Guard) Evaluate(props *PropertyStore) (bool, string, error) {
	if g.If.Set {
		ok, err := evalCondition(props, "if", g.If.Expr)
		if err != nil {
			return false, "", err
		}
		if !ok {
			return false, fmt.Sprintf("if condition '%s' is false", g.If.Expr), nil
		}
	}
	if g.Unless.Set {
		ok, err := evalCondition(props, "unless", g.Unless.Expr)
		if err != nil {
			return false, "", err
		}
		if ok {
			return false, fmt.Sprintf("unless condition '%s' is true", g.Unless.Expr), nil
		}
	}
	return true, "", nil
}

func evalCondition(props *PropertyStore, kind, expr string) (bool, error) {
	expanded, err := props.Expand(expr)
	if err != nil {
		return false, err
	}
	v, ok := ParseBool(expanded)
	if !ok {
		err := zerr.Wrap(ErrInvalidGuard, fmt.Sprintf(
			"'%s' condition '%s' is not a valid boolean value, expected 'true' or 'false'", kind, expanded))
		return false, zerr.With(zerr.With(err, "condition", kind), "value", expanded)
	}
	return v, nil
}

// ParseBool parses the boolean keywords true and false, case-insensitively.
// The second result is false when s is neither.
func ParseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true":
		return true, true
	case "false":
		return false, true
	default:
		return false, false
	}
}

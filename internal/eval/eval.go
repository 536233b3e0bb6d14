// Package eval parses and evaluates the small expression language used by
// conditional directives, #set right-hand sides and inline substitutions.
// It is a dedicated tokenizer, parser and tree-walking evaluator; nothing is
// handed to a general-purpose interpreter, so expressions cannot execute
// arbitrary code.
package eval

import (
	"fmt"
	"math"

	"condcomp/internal/env"
)

// SyntaxError means the expression text could not be parsed.
type SyntaxError struct {
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at offset %d: %s", e.Pos, e.Msg)
}

// RuntimeError means a well-formed expression performed an invalid operation,
// such as property access on undefined.
type RuntimeError struct {
	Msg string
}

func (e *RuntimeError) Error() string { return e.Msg }

// Evaluate parses expr and evaluates it against environment. Unknown
// identifiers resolve to undefined rather than failing.
func Evaluate(expr string, environment *env.Environment) (env.Value, error) {
	n, err := parse(expr)
	if err != nil {
		return nil, err
	}
	return evalNode(n, environment)
}

func evalNode(n node, e *env.Environment) (env.Value, error) {
	switch t := n.(type) {
	case literalNode:
		return t.val, nil
	case identNode:
		return e.Get(t.name), nil
	case unaryNode:
		return evalUnary(t, e)
	case binaryNode:
		return evalBinary(t, e)
	case condNode:
		cond, err := evalNode(t.cond, e)
		if err != nil {
			return nil, err
		}
		if env.Truthy(cond) {
			return evalNode(t.then, e)
		}
		return evalNode(t.els, e)
	case memberNode:
		obj, err := evalNode(t.obj, e)
		if err != nil {
			return nil, err
		}
		return property(obj, t.name)
	case indexNode:
		obj, err := evalNode(t.obj, e)
		if err != nil {
			return nil, err
		}
		idx, err := evalNode(t.index, e)
		if err != nil {
			return nil, err
		}
		return indexValue(obj, idx)
	}
	return nil, &RuntimeError{Msg: "internal: unknown expression node"}
}

func evalUnary(n unaryNode, e *env.Environment) (env.Value, error) {
	v, err := evalNode(n.operand, e)
	if err != nil {
		return nil, err
	}
	switch n.op {
	case "!":
		return !env.Truthy(v), nil
	case "-":
		return -env.Number(v), nil
	default: // "+"
		return env.Number(v), nil
	}
}

func evalBinary(n binaryNode, e *env.Environment) (env.Value, error) {
	left, err := evalNode(n.left, e)
	if err != nil {
		return nil, err
	}

	// Logical operators short-circuit and yield an operand, not a bool.
	switch n.op {
	case "&&":
		if !env.Truthy(left) {
			return left, nil
		}
		return evalNode(n.right, e)
	case "||":
		if env.Truthy(left) {
			return left, nil
		}
		return evalNode(n.right, e)
	}

	right, err := evalNode(n.right, e)
	if err != nil {
		return nil, err
	}

	switch n.op {
	case "+":
		if isString(left) || isString(right) {
			return env.Text(left) + env.Text(right), nil
		}
		return env.Number(left) + env.Number(right), nil
	case "-":
		return env.Number(left) - env.Number(right), nil
	case "*":
		return env.Number(left) * env.Number(right), nil
	case "/":
		// Division by zero yields Infinity or NaN, never an error.
		return env.Number(left) / env.Number(right), nil
	case "%":
		return math.Mod(env.Number(left), env.Number(right)), nil
	case "<", "<=", ">", ">=":
		return compare(n.op, left, right), nil
	case "==":
		return looseEqual(left, right), nil
	case "!=":
		return !looseEqual(left, right), nil
	case "===":
		return strictEqual(left, right), nil
	case "!==":
		return !strictEqual(left, right), nil
	}
	return nil, &RuntimeError{Msg: fmt.Sprintf("internal: unknown operator %q", n.op)}
}

func isString(v env.Value) bool {
	_, ok := v.(string)
	return ok
}

func compare(op string, left, right env.Value) bool {
	if ls, ok := left.(string); ok {
		if rs, ok := right.(string); ok {
			switch op {
			case "<":
				return ls < rs
			case "<=":
				return ls <= rs
			case ">":
				return ls > rs
			default:
				return ls >= rs
			}
		}
	}
	a, b := env.Number(left), env.Number(right)
	if math.IsNaN(a) || math.IsNaN(b) {
		return false
	}
	switch op {
	case "<":
		return a < b
	case "<=":
		return a <= b
	case ">":
		return a > b
	default:
		return a >= b
	}
}

func strictEqual(left, right env.Value) bool {
	switch l := left.(type) {
	case bool:
		r, ok := right.(bool)
		return ok && l == r
	case string:
		r, ok := right.(string)
		return ok && l == r
	case float64:
		r, ok := right.(float64)
		return ok && l == r // NaN never equals itself
	default:
		if env.IsNull(left) {
			return env.IsNull(right)
		}
		return env.IsUndefined(left) && env.IsUndefined(right)
	}
}

func looseEqual(left, right env.Value) bool {
	lNil := env.IsNull(left) || env.IsUndefined(left)
	rNil := env.IsNull(right) || env.IsUndefined(right)
	if lNil || rNil {
		return lNil && rNil
	}
	if ls, ok := left.(string); ok {
		if rs, ok := right.(string); ok {
			return ls == rs
		}
	}
	a, b := env.Number(left), env.Number(right)
	if math.IsNaN(a) || math.IsNaN(b) {
		return false
	}
	return a == b
}

func property(obj env.Value, name string) (env.Value, error) {
	if env.IsUndefined(obj) || env.IsNull(obj) {
		return nil, &RuntimeError{
			Msg: fmt.Sprintf("cannot read property %q of %s", name, env.Render(obj)),
		}
	}
	if s, ok := obj.(string); ok && name == "length" {
		return float64(len(s)), nil
	}
	return env.Undefined, nil
}

func indexValue(obj, idx env.Value) (env.Value, error) {
	if env.IsUndefined(obj) || env.IsNull(obj) {
		return nil, &RuntimeError{
			Msg: fmt.Sprintf("cannot index %s", env.Render(obj)),
		}
	}
	if s, ok := obj.(string); ok {
		if name, ok := idx.(string); ok {
			return property(obj, name)
		}
		i := env.Number(idx)
		if i == math.Trunc(i) && i >= 0 && int(i) < len(s) {
			return string(s[int(i)]), nil
		}
		return env.Undefined, nil
	}
	return env.Undefined, nil
}

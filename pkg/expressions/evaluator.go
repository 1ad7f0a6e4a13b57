// Package expressions evaluates decision-node conditions. Expressions are
// parsed with the Goja parser and executed by a purpose-built AST walker:
// there is no JavaScript runtime and no host-language eval anywhere in the
// path. The grammar is closed: comparison, boolean and arithmetic operators,
// literals, a caller-supplied variable set, and a fixed allowlist of pure
// functions. Identifiers outside the variable set fail evaluation, so names
// like __import__, exec or open are unresolvable by construction, and
// property access is rejected outright, which removes the attribute-traversal
// escape class entirely.
package expressions

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dop251/goja/ast"
	"github.com/dop251/goja/parser"
)

// ConditionEvaluator executes a single expression against a closed variable
// set. The zero value is not usable; construct with NewConditionEvaluator.
type ConditionEvaluator struct {
	functions map[string]func(args []any) (any, error)
}

func NewConditionEvaluator() *ConditionEvaluator {
	e := &ConditionEvaluator{}

	e.functions = map[string]func(args []any) (any, error){
		"len":   funcLen,
		"str":   funcStr,
		"int":   funcInt,
		"float": funcFloat,
		"bool":  funcBool,
	}

	return e
}

// Evaluate parses and executes the expression. Variables are the only
// resolvable names besides the literal aliases True/False/None; anything else
// is an evaluation failure.
func (e *ConditionEvaluator) Evaluate(expression string, variables map[string]any) (any, error) {
	trimmed := strings.TrimSpace(expression)
	if trimmed == "" {
		return nil, fmt.Errorf("empty expression")
	}

	// Wrapping makes a bare expression parseable as a complete program.
	program, err := parser.ParseFile(nil, "", fmt.Sprintf("(%s)", trimmed), 0)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}

	if len(program.Body) != 1 {
		return nil, fmt.Errorf("expected a single expression")
	}

	stmt, ok := program.Body[0].(*ast.ExpressionStatement)
	if !ok {
		return nil, fmt.Errorf("expected a single expression")
	}

	return e.executeNode(stmt.Expression, variables)
}

// EvaluateBool evaluates the expression and coerces the result to a boolean
// using truthiness rules (nil, zero, empty string and empty collections are
// false).
func (e *ConditionEvaluator) EvaluateBool(expression string, variables map[string]any) (bool, error) {
	value, err := e.Evaluate(expression, variables)
	if err != nil {
		return false, err
	}

	return toBool(value), nil
}

func (e *ConditionEvaluator) executeNode(node ast.Node, variables map[string]any) (any, error) {
	switch n := node.(type) {
	case *ast.StringLiteral:
		return n.Value.String(), nil
	case *ast.NumberLiteral:
		return normalizeNumber(n.Value), nil
	case *ast.BooleanLiteral:
		return n.Value, nil
	case *ast.NullLiteral:
		return nil, nil
	case *ast.Identifier:
		return e.executeIdentifier(n, variables)
	case *ast.UnaryExpression:
		return e.executeUnaryExpression(n, variables)
	case *ast.BinaryExpression:
		return e.executeBinaryExpression(n, variables)
	case *ast.ConditionalExpression:
		return e.executeConditionalExpression(n, variables)
	case *ast.CallExpression:
		return e.executeCallExpression(n, variables)
	case *ast.DotExpression, *ast.BracketExpression:
		return nil, fmt.Errorf("property access is not allowed in conditions")
	default:
		return nil, fmt.Errorf("unsupported syntax: %T", node)
	}
}

func (e *ConditionEvaluator) executeIdentifier(node *ast.Identifier, variables map[string]any) (any, error) {
	name := node.Name.String()

	// Python-style literal aliases survive from user-authored templates.
	switch name {
	case "True":
		return true, nil
	case "False":
		return false, nil
	case "None", "null", "undefined":
		return nil, nil
	}

	if variables != nil {
		if value, exists := variables[name]; exists {
			return value, nil
		}
	}

	return nil, fmt.Errorf("name %q is not defined", name)
}

func (e *ConditionEvaluator) executeUnaryExpression(node *ast.UnaryExpression, variables map[string]any) (any, error) {
	operand, err := e.executeNode(node.Operand, variables)
	if err != nil {
		return nil, err
	}

	switch node.Operator.String() {
	case "!":
		return !toBool(operand), nil
	case "-":
		number, ok := toNumber(operand)
		if !ok {
			return nil, fmt.Errorf("cannot negate %T", operand)
		}

		return -number, nil
	case "+":
		number, ok := toNumber(operand)
		if !ok {
			return nil, fmt.Errorf("cannot coerce %T to a number", operand)
		}

		return number, nil
	default:
		return nil, fmt.Errorf("unsupported unary operator: %s", node.Operator.String())
	}
}

func (e *ConditionEvaluator) executeBinaryExpression(node *ast.BinaryExpression, variables map[string]any) (any, error) {
	operator := node.Operator.String()

	left, err := e.executeNode(node.Left, variables)
	if err != nil {
		return nil, err
	}

	// Short-circuiting operators evaluate the right side lazily.
	switch operator {
	case "&&":
		if !toBool(left) {
			return false, nil
		}

		right, err := e.executeNode(node.Right, variables)
		if err != nil {
			return nil, err
		}

		return toBool(right), nil
	case "||":
		if toBool(left) {
			return true, nil
		}

		right, err := e.executeNode(node.Right, variables)
		if err != nil {
			return nil, err
		}

		return toBool(right), nil
	}

	right, err := e.executeNode(node.Right, variables)
	if err != nil {
		return nil, err
	}

	switch operator {
	case "==", "===":
		return looseEquals(left, right), nil
	case "!=", "!==":
		return !looseEquals(left, right), nil
	case "<", "<=", ">", ">=":
		return compareValues(left, right, operator)
	case "+":
		return addValues(left, right)
	case "-", "*", "/", "%":
		return arithmetic(left, right, operator)
	default:
		return nil, fmt.Errorf("unsupported operator: %s", operator)
	}
}

func (e *ConditionEvaluator) executeConditionalExpression(node *ast.ConditionalExpression, variables map[string]any) (any, error) {
	test, err := e.executeNode(node.Test, variables)
	if err != nil {
		return nil, err
	}

	if toBool(test) {
		return e.executeNode(node.Consequent, variables)
	}

	return e.executeNode(node.Alternate, variables)
}

func (e *ConditionEvaluator) executeCallExpression(node *ast.CallExpression, variables map[string]any) (any, error) {
	ident, ok := node.Callee.(*ast.Identifier)
	if !ok {
		return nil, fmt.Errorf("only direct calls to allowlisted functions are permitted")
	}

	name := ident.Name.String()

	fn, ok := e.functions[name]
	if !ok {
		return nil, fmt.Errorf("function %q is not allowed", name)
	}

	args := make([]any, len(node.ArgumentList))
	for i, arg := range node.ArgumentList {
		value, err := e.executeNode(arg, variables)
		if err != nil {
			return nil, err
		}

		args[i] = value
	}

	return fn(args)
}

func funcLen(args []any) (any, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("len expects exactly one argument")
	}

	switch v := args[0].(type) {
	case string:
		return float64(len(v)), nil
	case []any:
		return float64(len(v)), nil
	case []string:
		return float64(len(v)), nil
	case map[string]any:
		return float64(len(v)), nil
	default:
		return nil, fmt.Errorf("len does not support %T", args[0])
	}
}

func funcStr(args []any) (any, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("str expects exactly one argument")
	}

	return stringify(args[0]), nil
}

func funcInt(args []any) (any, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("int expects exactly one argument")
	}

	switch v := args[0].(type) {
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, fmt.Errorf("int cannot parse %q", v)
		}

		return float64(int64(parsed)), nil
	default:
		number, ok := toNumber(args[0])
		if !ok {
			return nil, fmt.Errorf("int does not support %T", args[0])
		}

		return float64(int64(number)), nil
	}
}

func funcFloat(args []any) (any, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("float expects exactly one argument")
	}

	if s, ok := args[0].(string); ok {
		parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil, fmt.Errorf("float cannot parse %q", s)
		}

		return parsed, nil
	}

	number, ok := toNumber(args[0])
	if !ok {
		return nil, fmt.Errorf("float does not support %T", args[0])
	}

	return number, nil
}

func funcBool(args []any) (any, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("bool expects exactly one argument")
	}

	return toBool(args[0]), nil
}

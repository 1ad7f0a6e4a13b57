package expressions

import (
	"fmt"
	"strconv"
)

// normalizeNumber flattens the parser's int64/float64 split so arithmetic and
// comparisons work on one numeric type.
func normalizeNumber(value any) any {
	switch v := value.(type) {
	case int64:
		return float64(v)
	case int:
		return float64(v)
	case float64:
		return v
	default:
		return value
	}
}

func toNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case bool:
		if v {
			return 1, true
		}

		return 0, true
	default:
		return 0, false
	}
}

func toBool(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return len(v) > 0
	case []any:
		return len(v) > 0
	case []string:
		return len(v) > 0
	case map[string]any:
		return len(v) > 0
	default:
		if number, ok := toNumber(value); ok {
			return number != 0
		}

		return true
	}
}

func looseEquals(left, right any) bool {
	if left == nil && right == nil {
		return true
	}

	leftNum, leftOK := toNumber(left)
	rightNum, rightOK := toNumber(right)

	if leftOK && rightOK {
		return leftNum == rightNum
	}

	leftStr, leftIsStr := left.(string)
	rightStr, rightIsStr := right.(string)

	if leftIsStr && rightIsStr {
		return leftStr == rightStr
	}

	return false
}

func compareValues(left, right any, operator string) (bool, error) {
	leftNum, leftOK := toNumber(left)
	rightNum, rightOK := toNumber(right)

	if leftOK && rightOK {
		switch operator {
		case "<":
			return leftNum < rightNum, nil
		case "<=":
			return leftNum <= rightNum, nil
		case ">":
			return leftNum > rightNum, nil
		case ">=":
			return leftNum >= rightNum, nil
		}
	}

	leftStr, leftIsStr := left.(string)
	rightStr, rightIsStr := right.(string)

	if leftIsStr && rightIsStr {
		switch operator {
		case "<":
			return leftStr < rightStr, nil
		case "<=":
			return leftStr <= rightStr, nil
		case ">":
			return leftStr > rightStr, nil
		case ">=":
			return leftStr >= rightStr, nil
		}
	}

	return false, fmt.Errorf("cannot compare %T and %T", left, right)
}

func addValues(left, right any) (any, error) {
	leftNum, leftOK := toNumber(left)
	rightNum, rightOK := toNumber(right)

	if leftOK && rightOK {
		return leftNum + rightNum, nil
	}

	leftStr, leftIsStr := left.(string)
	rightStr, rightIsStr := right.(string)

	if leftIsStr && rightIsStr {
		return leftStr + rightStr, nil
	}

	return nil, fmt.Errorf("cannot add %T and %T", left, right)
}

func arithmetic(left, right any, operator string) (any, error) {
	leftNum, leftOK := toNumber(left)
	rightNum, rightOK := toNumber(right)

	if !leftOK || !rightOK {
		return nil, fmt.Errorf("operator %q requires numbers, got %T and %T", operator, left, right)
	}

	switch operator {
	case "-":
		return leftNum - rightNum, nil
	case "*":
		return leftNum * rightNum, nil
	case "/":
		if rightNum == 0 {
			return nil, fmt.Errorf("division by zero")
		}

		return leftNum / rightNum, nil
	case "%":
		if rightNum == 0 {
			return nil, fmt.Errorf("division by zero")
		}

		return float64(int64(leftNum) % int64(rightNum)), nil
	default:
		return nil, fmt.Errorf("unsupported operator: %s", operator)
	}
}

func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return "None"
	case string:
		return v
	case bool:
		if v {
			return "True"
		}

		return "False"
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}

		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", value)
	}
}

package tools

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/tjfontaine/toolchat/internal/domain"
)

// Validator checks arguments against a declaration before execution.
type Validator interface {
	Validate(args map[string]any, decl domain.ToolDeclaration) error
}

// DefaultValidator covers required fields and primitive type checks.
// Arguments the declaration does not name are ignored.
type DefaultValidator struct{}

// Validate returns an invalid_arguments APIError naming the first bad field.
func (DefaultValidator) Validate(args map[string]any, decl domain.ToolDeclaration) error {
	for _, p := range decl.Parameters {
		value, exists := args[p.Name]
		if !exists || value == nil {
			if p.Required {
				return domain.ErrInvalidArguments(p.Name, "required argument is missing")
			}
			continue
		}

		if err := validateType(value, p.Type); err != nil {
			return domain.ErrInvalidArguments(p.Name, err.Error())
		}
	}
	return nil
}

func validateType(value any, expected domain.ParamType) error {
	switch expected {
	case domain.ParamTypeString:
		if _, ok := value.(string); ok {
			return nil
		}
	case domain.ParamTypeNumber:
		if isNumber(value) {
			return nil
		}
	case domain.ParamTypeInteger:
		if isInteger(value) {
			return nil
		}
	case domain.ParamTypeBoolean:
		if _, ok := value.(bool); ok {
			return nil
		}
	case "":
		return nil
	default:
		return fmt.Errorf("unsupported schema type %q", expected)
	}
	return fmt.Errorf("expected %s but got %T", expected, value)
}

func isNumber(value any) bool {
	switch v := value.(type) {
	case float32:
		return !math.IsNaN(float64(v)) && !math.IsInf(float64(v), 0)
	case float64:
		return !math.IsNaN(v) && !math.IsInf(v, 0)
	case int, int8, int16, int32, int64:
		return true
	case uint, uint8, uint16, uint32, uint64:
		return true
	case json.Number:
		_, err := v.Float64()
		return err == nil
	}
	return false
}

func isInteger(value any) bool {
	switch v := value.(type) {
	case int, int8, int16, int32, int64:
		return true
	case uint, uint8, uint16, uint32, uint64:
		return true
	case float32:
		return math.Trunc(float64(v)) == float64(v)
	case float64:
		return math.Trunc(v) == v
	case json.Number:
		_, err := v.Int64()
		return err == nil
	}
	return false
}

package tools

import (
	"context"

	"github.com/tjfontaine/toolchat/internal/domain"
)

// AddNumbersTool is the addition tool name.
const AddNumbersTool = "addNumbers"

var addNumbersDeclaration = domain.ToolDeclaration{
	Name:        AddNumbersTool,
	Description: "Adds two numbers and returns the result.",
	Parameters: []domain.Parameter{
		{Name: "num1", Type: domain.ParamTypeNumber, Description: "The first number to add.", Required: true},
		{Name: "num2", Type: domain.ParamTypeNumber, Description: "The second number to add.", Required: true},
	},
}

type addArgs struct {
	Num1 float64 `json:"num1"`
	Num2 float64 `json:"num2"`
}

// AddNumbers returns {sum: num1 + num2}.
func AddNumbers() Executor {
	return func(ctx context.Context, args map[string]any) (domain.ToolResult, error) {
		in, err := decodeArgs[addArgs](args)
		if err != nil {
			return nil, err
		}
		return domain.ToolResult{"sum": in.Num1 + in.Num2}, nil
	}
}

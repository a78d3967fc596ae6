package tools

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tjfontaine/toolchat/internal/domain"
)

var echoDeclaration = domain.ToolDeclaration{
	Name:        "echo",
	Description: "Echoes its input.",
	Parameters: []domain.Parameter{
		{Name: "text", Type: domain.ParamTypeString, Required: true},
		{Name: "times", Type: domain.ParamTypeInteger},
		{Name: "loud", Type: domain.ParamTypeBoolean},
	},
}

func echoExecutor(calls *int) Executor {
	return func(ctx context.Context, args map[string]any) (domain.ToolResult, error) {
		*calls++
		return domain.ToolResult{"text": args["text"]}, nil
	}
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()
	calls := 0

	require.NoError(t, r.Register(echoDeclaration, echoExecutor(&calls)))
	assert.Error(t, r.Register(echoDeclaration, echoExecutor(&calls)), "duplicate name")
	assert.Error(t, r.Register(domain.ToolDeclaration{}, echoExecutor(&calls)), "empty name")
	assert.Error(t, r.Register(domain.ToolDeclaration{Name: "noop"}, nil), "nil executor")

	decl, ok := r.Lookup("echo")
	require.True(t, ok)
	assert.Equal(t, echoDeclaration, decl)
}

func TestRegistry_DeclarationsKeepOrder(t *testing.T) {
	r := NewRegistry()
	calls := 0
	for _, name := range []string{"zeta", "alpha", "mid"} {
		require.NoError(t, r.Register(domain.ToolDeclaration{Name: name}, echoExecutor(&calls)))
	}

	var names []string
	for _, d := range r.Declarations() {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, names)
}

func TestRegistry_Dispatch(t *testing.T) {
	tests := []struct {
		name      string
		call      domain.ToolCall
		wantType  domain.ErrorType
		wantParam string
		wantCalls int
	}{
		{
			name:      "valid call",
			call:      domain.ToolCall{Name: "echo", Arguments: map[string]any{"text": "hi", "times": float64(2)}},
			wantCalls: 1,
		},
		{
			name:      "unknown tool",
			call:      domain.ToolCall{Name: "rm", Arguments: map[string]any{"path": "/"}},
			wantType:  domain.ErrorTypeUnknownTool,
			wantParam: "rm",
		},
		{
			name:      "missing required",
			call:      domain.ToolCall{Name: "echo"},
			wantType:  domain.ErrorTypeInvalidArguments,
			wantParam: "text",
		},
		{
			name:      "null required",
			call:      domain.ToolCall{Name: "echo", Arguments: map[string]any{"text": nil}},
			wantType:  domain.ErrorTypeInvalidArguments,
			wantParam: "text",
		},
		{
			name:      "wrong type",
			call:      domain.ToolCall{Name: "echo", Arguments: map[string]any{"text": 42.0}},
			wantType:  domain.ErrorTypeInvalidArguments,
			wantParam: "text",
		},
		{
			name:      "non integral integer",
			call:      domain.ToolCall{Name: "echo", Arguments: map[string]any{"text": "hi", "times": 1.5}},
			wantType:  domain.ErrorTypeInvalidArguments,
			wantParam: "times",
		},
		{
			name:      "wrong optional type",
			call:      domain.ToolCall{Name: "echo", Arguments: map[string]any{"text": "hi", "loud": "yes"}},
			wantType:  domain.ErrorTypeInvalidArguments,
			wantParam: "loud",
		},
		{
			name:      "undeclared arguments ignored",
			call:      domain.ToolCall{Name: "echo", Arguments: map[string]any{"text": "hi", "extra": []any{1}}},
			wantCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry()
			calls := 0
			require.NoError(t, r.Register(echoDeclaration, echoExecutor(&calls)))

			result, err := r.Dispatch(context.Background(), tt.call)
			assert.Equal(t, tt.wantCalls, calls)

			if tt.wantType == "" {
				require.NoError(t, err)
				assert.Equal(t, "hi", result["text"])
				return
			}

			require.Error(t, err)
			apiErr, ok := domain.AsAPIError(err)
			require.True(t, ok, "error should be an APIError: %v", err)
			assert.Equal(t, tt.wantType, apiErr.Type)
			assert.Equal(t, tt.wantParam, apiErr.Param)
		})
	}
}

func TestRegistry_DispatchExecutorFailure(t *testing.T) {
	r := NewRegistry()
	boom := errors.New("disk unavailable")
	require.NoError(t, r.Register(domain.ToolDeclaration{Name: "broken"},
		func(ctx context.Context, args map[string]any) (domain.ToolResult, error) {
			return nil, boom
		}))

	_, err := r.Dispatch(context.Background(), domain.ToolCall{Name: "broken"})
	require.Error(t, err)
	assert.True(t, domain.IsType(err, domain.ErrorTypeServer))
	assert.ErrorIs(t, err, boom)
}

func TestRegistry_DispatchNilResult(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(domain.ToolDeclaration{Name: "quiet"},
		func(ctx context.Context, args map[string]any) (domain.ToolResult, error) {
			return nil, nil
		}))

	result, err := r.Dispatch(context.Background(), domain.ToolCall{Name: "quiet"})
	require.NoError(t, err)
	assert.NotNil(t, result)
	assert.Empty(t, result)
}

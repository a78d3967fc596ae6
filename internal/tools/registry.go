// Package tools holds the tool registry and the built-in tool executors.
package tools

import (
	"context"
	"fmt"
	"sync"

	"github.com/tjfontaine/toolchat/internal/domain"
)

// Executor runs a tool with arguments that already passed validation.
type Executor func(ctx context.Context, args map[string]any) (domain.ToolResult, error)

type entry struct {
	decl domain.ToolDeclaration
	exec Executor
}

// Registry keeps the mapping between tool names and executors. Tools are
// registered at startup; afterwards the registry is only read.
type Registry struct {
	mu        sync.RWMutex
	tools     map[string]entry
	order     []string
	validator Validator
}

// NewRegistry creates a registry backed by the default validator.
func NewRegistry() *Registry {
	return &Registry{
		tools:     make(map[string]entry),
		validator: DefaultValidator{},
	}
}

// Register inserts a tool when its name is not in use.
func (r *Registry) Register(decl domain.ToolDeclaration, exec Executor) error {
	if decl.Name == "" {
		return fmt.Errorf("tool name is empty")
	}
	if exec == nil {
		return fmt.Errorf("tool %s has no executor", decl.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[decl.Name]; exists {
		return fmt.Errorf("tool %s already registered", decl.Name)
	}

	r.tools[decl.Name] = entry{decl: decl, exec: exec}
	r.order = append(r.order, decl.Name)
	return nil
}

// Lookup returns the declaration for name.
func (r *Registry) Lookup(name string) (domain.ToolDeclaration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.tools[name]
	return e.decl, ok
}

// Declarations returns every declaration in registration order.
func (r *Registry) Declarations() []domain.ToolDeclaration {
	r.mu.RLock()
	defer r.mu.RUnlock()

	decls := make([]domain.ToolDeclaration, 0, len(r.order))
	for _, name := range r.order {
		decls = append(decls, r.tools[name].decl)
	}
	return decls
}

// Dispatch validates call against its declaration and runs the executor.
// It fails with an unknown_tool APIError for unregistered names and an
// invalid_arguments APIError when validation fails.
func (r *Registry) Dispatch(ctx context.Context, call domain.ToolCall) (domain.ToolResult, error) {
	r.mu.RLock()
	e, ok := r.tools[call.Name]
	validator := r.validator
	r.mu.RUnlock()

	if !ok {
		return nil, domain.ErrUnknownTool(call.Name)
	}

	args := call.Arguments
	if args == nil {
		args = map[string]any{}
	}

	if validator != nil {
		if err := validator.Validate(args, e.decl); err != nil {
			return nil, err
		}
	}

	result, err := e.exec(ctx, args)
	if err != nil {
		if _, ok := domain.AsAPIError(err); ok {
			return nil, err
		}
		return nil, domain.ErrServer(fmt.Sprintf("tool %s failed", call.Name)).WithCause(err)
	}
	if result == nil {
		result = domain.ToolResult{}
	}
	return result, nil
}

package tools

import (
	"fmt"
	"time"

	"golang.org/x/text/language"

	"github.com/tjfontaine/toolchat/internal/domain"
	"github.com/tjfontaine/toolchat/internal/storage"
)

// Deps are the collaborators of the built-in tools.
type Deps struct {
	Products storage.ProductLookup
	Probe    HostProbe
	Now      func() time.Time
	Locale   language.Tag
}

// RegisterBuiltins registers getProductInfo, addNumbers, getSystemInfo and
// getCurrentTime on r.
func RegisterBuiltins(r *Registry, deps Deps) error {
	if deps.Products == nil {
		return fmt.Errorf("builtin tools need a product lookup")
	}

	builtins := []struct {
		decl domain.ToolDeclaration
		exec Executor
	}{
		{productInfoDeclaration, ProductInfo(deps.Products)},
		{addNumbersDeclaration, AddNumbers()},
		{systemInfoDeclaration, SystemInfo(deps.Probe, deps.Locale)},
		{currentTimeDeclaration, CurrentTime(deps.Locale, deps.Now)},
	}

	for _, b := range builtins {
		if err := r.Register(b.decl, b.exec); err != nil {
			return err
		}
	}
	return nil
}

// NewBuiltinRegistry returns a registry holding only the built-in tools.
func NewBuiltinRegistry(deps Deps) (*Registry, error) {
	r := NewRegistry()
	if err := RegisterBuiltins(r, deps); err != nil {
		return nil, err
	}
	return r, nil
}

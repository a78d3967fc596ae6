// Package frontdoor holds the inbound HTTP surfaces and mounts them on a router.
package frontdoor

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// HandlerRegistration represents a registered HTTP handler.
type HandlerRegistration struct {
	Path    string
	Method  string
	Handler func(http.ResponseWriter, *http.Request)
}

// Mount registers every handler on r.
func Mount(r chi.Router, regs []HandlerRegistration) {
	for _, reg := range regs {
		r.MethodFunc(reg.Method, reg.Path, reg.Handler)
	}
}

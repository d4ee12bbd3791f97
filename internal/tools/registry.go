// Package tools holds the callable tool surface exposed to a chat-style
// agent: an explicit registry of named handlers with metadata, and a minimal
// JSON-RPC server/client pair for invoking them over HTTP.
package tools

import (
	"context"
	"encoding/json"
)

// Handler executes one tool call. Errors are reported to the caller through
// the RPC error channel; operation-level failures should instead be encoded
// in the returned value (the {success, ...} envelope).
type Handler func(ctx context.Context, args json.RawMessage) (any, error)

// Definition is one registered tool: wire metadata plus its handler.
type Definition struct {
	Name        string          `json:"name"`
	DisplayName string          `json:"display_name,omitempty"`
	Description string          `json:"description,omitempty"`
	InputSchema json.RawMessage `json:"inputSchema,omitempty"`
	Handler     Handler         `json:"-"`
}

// Registry maps tool names to definitions. It is populated at startup and
// read-only afterwards.
type Registry struct {
	defs  map[string]Definition
	order []string
}

func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]Definition)}
}

func (r *Registry) Register(def Definition) {
	if _, exists := r.defs[def.Name]; !exists {
		r.order = append(r.order, def.Name)
	}
	r.defs[def.Name] = def
}

func (r *Registry) Get(name string) (Definition, bool) {
	def, ok := r.defs[name]
	return def, ok
}

// All returns definitions in registration order.
func (r *Registry) All() []Definition {
	out := make([]Definition, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.defs[name])
	}
	return out
}

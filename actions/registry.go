// Package actions maps provider-requested action names to handlers and
// produces the JSON results that are fed back into the generation loop.
package actions

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/tailored-agentic-units/relay/core/protocol"
)

// Handler is the function signature for action implementations.
// Handlers receive the request context and the JSON-encoded argument object
// from the provider, and return any JSON-serializable value.
type Handler func(ctx context.Context, args json.RawMessage) (any, error)

type entry struct {
	def     protocol.ActionDef
	handler Handler
}

type registry struct {
	entries map[string]entry
	mu      sync.RWMutex
}

var register = &registry{
	entries: make(map[string]entry),
}

// Register adds a new action to the global registry.
// Returns ErrAlreadyExists if an action with the same name is already
// registered. Use Replace to update an existing action's handler.
// Thread-safe for concurrent registration.
func Register(def protocol.ActionDef, handler Handler) error {
	if def.Name == "" {
		return ErrEmptyName
	}

	register.mu.Lock()
	defer register.mu.Unlock()

	if _, exists := register.entries[def.Name]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, def.Name)
	}

	register.entries[def.Name] = entry{def: def, handler: handler}
	return nil
}

// Replace updates an existing action's definition and handler.
// Returns ErrNotFound if no action with the given name is registered.
// Thread-safe for concurrent access.
func Replace(def protocol.ActionDef, handler Handler) error {
	if def.Name == "" {
		return ErrEmptyName
	}

	register.mu.Lock()
	defer register.mu.Unlock()

	if _, exists := register.entries[def.Name]; !exists {
		return fmt.Errorf("%w: %s", ErrNotFound, def.Name)
	}

	register.entries[def.Name] = entry{def: def, handler: handler}
	return nil
}

// Get retrieves a handler by action name, case-sensitive exact match.
// Returns the handler and true if found, nil and false otherwise.
// Thread-safe for concurrent access.
func Get(name string) (Handler, bool) {
	register.mu.RLock()
	defer register.mu.RUnlock()

	e, exists := register.entries[name]
	if !exists {
		return nil, false
	}
	return e.handler, true
}

// List returns the definitions of all registered actions.
// Thread-safe for concurrent access.
func List() []protocol.ActionDef {
	register.mu.RLock()
	defer register.mu.RUnlock()

	defs := make([]protocol.ActionDef, 0, len(register.entries))
	for _, e := range register.entries {
		defs = append(defs, e.def)
	}
	return defs
}

// Invoke dispatches an action call to the registered handler by name and
// returns the JSON-encoded result. Invoke never fails past this boundary:
// an unknown name or a handler error is reported to the provider as an
// error-shaped result object, not as a Go error, so one bad action call
// cannot abort the turn.
// Thread-safe for concurrent execution.
func Invoke(ctx context.Context, name string, args json.RawMessage) string {
	register.mu.RLock()
	e, exists := register.entries[name]
	register.mu.RUnlock()

	if !exists {
		return errorResult("tool not found")
	}

	value, err := e.handler(ctx, args)
	if err != nil {
		return errorResult(err.Error())
	}

	data, err := json.Marshal(value)
	if err != nil {
		return errorResult(fmt.Sprintf("unserializable result from %s: %v", name, err))
	}

	return string(data)
}

func errorResult(message string) string {
	data, _ := json.Marshal(struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}{Status: "error", Message: message})
	return string(data)
}

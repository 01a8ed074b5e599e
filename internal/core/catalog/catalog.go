// Package catalog is the static registry of valid wire event names. Every
// name a dispatcher call may use is registered here at process start;
// lookups of unregistered names fail, and duplicate registrations panic at
// initialization so typos surface before any dispatch is attempted.
package catalog

import (
	"fmt"
	"sort"
	"sync"

	"github.com/munchmtxi/realtime-gateway/internal/core/domain"
	"github.com/samber/lo"
)

// Namespace groups events by role and feature area. Role is empty for
// shared, entity-scoped namespaces (ride, chat, wallet, ...).
type Namespace struct {
	Role    domain.Role
	Feature string
}

// Prefix returns the wire-name prefix for the namespace:
// "{role}:{feature}" for role-scoped namespaces, "{feature}" for shared.
func (n Namespace) Prefix() string {
	if n.Role == "" {
		return n.Feature
	}
	return n.Role.String() + ":" + n.Feature
}

// Spec declares one event within a namespace.
type Spec struct {
	// Short is the event name without the namespace prefix.
	Short string
	// Description is a human-readable summary.
	Description string
	// Payload lists the documented payload field names. This is a
	// contract for integrators, not runtime validation.
	Payload []string
}

// Definition is a registered event, keyed by its globally-unique wire name.
type Definition struct {
	Name        string
	Namespace   Namespace
	Description string
	Payload     []string
}

var (
	mu          sync.RWMutex
	definitions = map[string]Definition{}
)

// Register adds the given events under a namespace. It panics on an empty
// short name or a name collision; registration happens only from package
// init functions, so a panic here is an initialization failure, never a
// dispatch-time one.
func Register(ns Namespace, specs ...Spec) {
	mu.Lock()
	defer mu.Unlock()

	if ns.Feature == "" {
		panic("catalog: namespace feature must not be empty")
	}
	if ns.Role != "" && !ns.Role.Valid() {
		panic(fmt.Sprintf("catalog: unknown role %q in namespace", ns.Role))
	}

	for _, spec := range specs {
		if spec.Short == "" {
			panic(fmt.Sprintf("catalog: empty event name in namespace %q", ns.Prefix()))
		}
		name := ns.Prefix() + ":" + spec.Short
		if _, exists := definitions[name]; exists {
			panic(fmt.Sprintf("catalog: duplicate event %q", name))
		}
		definitions[name] = Definition{
			Name:        name,
			Namespace:   ns,
			Description: spec.Description,
			Payload:     spec.Payload,
		}
	}
}

// Lookup returns the definition for a wire name, if registered.
func Lookup(name string) (Definition, bool) {
	mu.RLock()
	defer mu.RUnlock()
	def, ok := definitions[name]
	return def, ok
}

// Known reports whether a wire name is registered.
func Known(name string) bool {
	_, ok := Lookup(name)
	return ok
}

// MustEvent returns its argument if registered and panics otherwise. Static
// event references go through it from package-level variables, so a name
// that drifted from the catalog fails at initialization rather than
// producing an unroutable dispatch.
func MustEvent(name string) string {
	if !Known(name) {
		panic(fmt.Sprintf("catalog: event %q referenced but never registered", name))
	}
	return name
}

// Names returns every registered wire name, sorted.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := lo.Keys(definitions)
	sort.Strings(names)
	return names
}

// NamesFor returns the wire names registered under a namespace, sorted.
func NamesFor(ns Namespace) []string {
	mu.RLock()
	defer mu.RUnlock()
	names := lo.FilterMap(lo.Values(definitions), func(def Definition, _ int) (string, bool) {
		return def.Name, def.Namespace == ns
	})
	sort.Strings(names)
	return names
}

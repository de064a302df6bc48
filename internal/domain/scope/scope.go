// Where: internal/domain/scope/scope.go
// What: Layered, immutable variable scopes.
// Why: Resolve placeholders per image/version without sharing mutable maps across work items.
package scope

import "github.com/poruru-code/cargo-builder/internal/domain/manifest"

// Layer names used by the cargo planner.
const (
	LayerGlobal  = "global"
	LayerImage   = "image"
	LayerVersion = "version"
)

// Layer is one named set of assignments.
type Layer struct {
	Name string
	Vars manifest.Vars
}

// Scope is an ordered stack of layers; later layers override earlier ones.
// A Scope is never mutated: Merge and WithDefault return new values.
type Scope struct {
	values map[string]string
	origin map[string]string
}

// Merge stacks overrides on top of base.
func Merge(base Scope, overrides ...Layer) Scope {
	next := Scope{
		values: make(map[string]string, len(base.values)),
		origin: make(map[string]string, len(base.origin)),
	}
	for k, v := range base.values {
		next.values[k] = v
		next.origin[k] = base.origin[k]
	}
	for _, layer := range overrides {
		for _, item := range layer.Vars {
			next.values[item.Key] = item.Value
			next.origin[item.Key] = layer.Name
		}
	}
	return next
}

// New builds a scope from layers in order.
func New(layers ...Layer) Scope {
	return Merge(Scope{}, layers...)
}

// WithDefault sets key only when no layer has assigned it yet.
func (s Scope) WithDefault(layer, key, value string) Scope {
	if _, ok := s.values[key]; ok {
		return s
	}
	return Merge(s, Layer{Name: layer, Vars: manifest.Vars{{Key: key, Value: value}}})
}

// Lookup returns the effective value of key.
func (s Scope) Lookup(key string) (string, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Origin returns the name of the layer that supplied key.
func (s Scope) Origin(key string) (string, bool) {
	o, ok := s.origin[key]
	return o, ok
}

// Map returns a copy of the effective assignments.
func (s Scope) Map() map[string]string {
	out := make(map[string]string, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// Format resolves placeholders in tmpl against this scope.
func (s Scope) Format(tmpl string) (string, error) {
	return Format(tmpl, s)
}

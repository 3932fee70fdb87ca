// Package paginate drives token-based pagination of remote admin
// operations from static, declarative per-operation configuration.
package paginate

import (
	"fmt"
	"sync"
)

// Spec declares how one operation paginates: which response fields carry
// the continuation tokens, which request fields they feed, and where the
// page's results live. Token fields are addressed with gjson paths.
type Spec struct {
	// InputToken names the request parameters that receive the
	// continuation tokens of the previous page
	InputToken []string `json:"input_token"`

	// OutputToken names the response fields holding the continuation
	// tokens, position-matched with InputToken
	OutputToken []string `json:"output_token"`

	// LimitKey names the request parameter carrying the page size.
	// Empty means the operation has no page-size control.
	LimitKey string `json:"limit_key,omitempty"`

	// MoreResults names a boolean response field that signals further
	// pages. Empty means exhaustion is signaled by a missing token.
	MoreResults string `json:"more_results,omitempty"`

	// ResultKey names the response field holding the page's items
	ResultKey string `json:"result_key,omitempty"`
}

// Validate checks the spec's internal consistency.
func (s Spec) Validate() error {
	if len(s.InputToken) == 0 {
		return fmt.Errorf("spec has no input token")
	}
	if len(s.InputToken) != len(s.OutputToken) {
		return fmt.Errorf("spec has %d input tokens but %d output tokens",
			len(s.InputToken), len(s.OutputToken))
	}
	return nil
}

// Registry maps operation names to their pagination specs.
type Registry struct {
	mu    sync.RWMutex
	specs map[string]Spec
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{specs: make(map[string]Spec)}
}

// Register adds or replaces the spec of an operation.
func (r *Registry) Register(operation string, spec Spec) error {
	if err := spec.Validate(); err != nil {
		return fmt.Errorf("register %s: %w", operation, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.specs[operation] = spec
	return nil
}

// Lookup returns the spec of an operation.
func (r *Registry) Lookup(operation string) (Spec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	spec, ok := r.specs[operation]
	return spec, ok
}

// Operations returns the registered operation names.
func (r *Registry) Operations() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.specs))
	for name := range r.specs {
		names = append(names, name)
	}
	return names
}

// defaultRegistry holds the built-in pagination table for the paged admin
// operations this toolkit fronts.
var defaultRegistry = func() *Registry {
	r := NewRegistry()
	table := map[string]Spec{
		"ListJobsByPipeline": {
			InputToken:  []string{"PageToken"},
			OutputToken: []string{"NextPageToken"},
			ResultKey:   "Jobs",
		},
		"ListJobsByStatus": {
			InputToken:  []string{"PageToken"},
			OutputToken: []string{"NextPageToken"},
			ResultKey:   "Jobs",
		},
		"ListPipelines": {
			InputToken:  []string{"PageToken"},
			OutputToken: []string{"NextPageToken"},
			ResultKey:   "Pipelines",
		},
		"ListPresets": {
			InputToken:  []string{"PageToken"},
			OutputToken: []string{"NextPageToken"},
			ResultKey:   "Presets",
		},
	}
	for op, spec := range table {
		if err := r.Register(op, spec); err != nil {
			panic(err)
		}
	}
	return r
}()

// Register adds a spec to the default registry.
func Register(operation string, spec Spec) error {
	return defaultRegistry.Register(operation, spec)
}

// Lookup returns a spec from the default registry.
func Lookup(operation string) (Spec, bool) {
	return defaultRegistry.Lookup(operation)
}

// Package quality tracks patients whose records carried malformed inputs.
package quality

// Registry is an insertion-ordered set of patient identifiers with at least
// one malformed scoring input. Add is idempotent, so re-evaluating a patient
// never produces a duplicate entry. The pipeline is strictly sequential, so
// the registry needs no locking.
type Registry struct {
	seen  map[string]struct{}
	order []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		seen: make(map[string]struct{}),
	}
}

// Add records an identifier. Repeated adds of the same identifier are no-ops.
func (r *Registry) Add(id string) {
	if _, ok := r.seen[id]; ok {
		return
	}
	r.seen[id] = struct{}{}
	r.order = append(r.order, id)
}

// Has reports whether an identifier was recorded.
func (r *Registry) Has(id string) bool {
	_, ok := r.seen[id]
	return ok
}

// IDs returns the recorded identifiers in first-seen order.
func (r *Registry) IDs() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Size returns the number of distinct identifiers recorded.
func (r *Registry) Size() int {
	return len(r.order)
}

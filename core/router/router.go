package router

import "fmt"

// Params maps capture names declared in a pattern to the path segments
// they matched.
type Params map[string]string

// Get returns the value captured for name.
func (p Params) Get(name string) (string, bool) {
	v, ok := p[name]
	return v, ok
}

// Match is the result of a successful Resolve.
type Match[T any] struct {
	Value   T
	Pattern string
	Params  Params
}

// Router maps path patterns to values of type T.
//
// Inserts are not safe for concurrent use. Once the route set is final
// the router is read-only and Resolve may be called from any goroutine.
type Router[T any] struct {
	tree *node[T]
}

// New creates an empty router.
func New[T any]() *Router[T] {
	return &Router[T]{tree: &node[T]{}}
}

// Insert registers value under pattern. Pattern segments that start with
// ':' capture one path segment under the following name.
//
// A pattern that would match exactly the same paths as an existing one is
// rejected with ErrRouteConflict and the router is left unchanged.
func (r *Router[T]) Insert(pattern string, value T) error {
	return r.tree.insertRoute(pattern, value)
}

// Resolve finds the value registered for path.
// Literal segments are preferred over captures.
func (r *Router[T]) Resolve(path string) (Match[T], error) {
	ep, params := r.tree.findRoute(path)
	if ep == nil {
		return Match[T]{}, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return Match[T]{
		Value:   ep.value,
		Pattern: ep.pattern,
		Params:  params,
	}, nil
}

// Patterns lists every registered pattern in lexical order.
func (r *Router[T]) Patterns() []string {
	return r.tree.patterns()
}

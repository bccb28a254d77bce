// Package router provides the path routing trie used by the capsule server.
//
// Patterns are absolute paths whose segments are either literal text or a
// capture written as ":name". A capture matches exactly one non-empty path
// segment.
//
//	r := router.New[string]()
//	_ = r.Insert("/", "index")
//	_ = r.Insert("/users/:id", "user")
//	_ = r.Insert("/users/me", "me")
//
//	m, err := r.Resolve("/users/42")
//	// m.Value == "user", m.Params["id"] == "42"
//
// # Precedence
//
// Literal segments always win over captures at the same position. When a
// literal branch leads to a dead end the lookup backtracks and tries the
// capture instead, so "/users/me/posts" still reaches "/users/:id/posts".
//
// # Conflicts
//
// Two patterns that differ only in capture names ("/a/:x" and "/a/:y")
// match the same paths. Insert reports the second one with ErrRouteConflict
// rather than letting one of them silently shadow the other.
package router

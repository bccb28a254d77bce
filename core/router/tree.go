package router

// Radix tree implementation based on the original work by
// Armon Dadgar in https://github.com/armon/go-radix/blob/master/radix.go
// (MIT licensed). Heavily modified for use as a capsule path routing tree.

import (
	"fmt"
	"sort"
	"strings"
)

// paramPrefix marks a capture segment in a route pattern: /users/:id
const paramPrefix = ':'

// routeParams holds capture values collected while walking the tree.
type routeParams struct {
	Values []string
}

type nodeTyp uint8

const (
	ntStatic nodeTyp = iota // /home
	ntParam                 // /:user
)

type node[T any] struct {
	// value registered on the leaf node
	endpoint *endpoint[T]

	// prefix is the common prefix we ignore
	prefix string

	// child nodes should be stored in-order for iteration,
	// in groups of the node type.
	children [ntParam + 1]nodes[T]

	// node type: static, param
	typ nodeTyp

	// first byte of the prefix
	label byte
}

type endpoint[T any] struct {
	value     T
	pattern   string
	paramKeys []string
}

func (n *node[T]) insertRoute(pattern string, value T) error {
	paramKeys, err := patParamKeys(pattern)
	if err != nil {
		return err
	}

	var parent *node[T]
	search := pattern

	for {
		// Handle key exhaustion
		if len(search) == 0 {
			return n.setEndpoint(value, pattern, paramKeys)
		}

		// We're going to be searching for a wild node next,
		// in this case, we need to get the end of the segment
		label := search[0]
		var segTyp nodeTyp
		var segEndIdx int
		if label == paramPrefix {
			segTyp, _, _, segEndIdx = patNextSegment(search)
		}

		// Look for the edge to attach to
		parent = n
		n = n.getEdge(segTyp, label)

		// No edge, create one
		if n == nil {
			child := &node[T]{label: label, prefix: search}
			hn := parent.addChild(child, search)
			return hn.setEndpoint(value, pattern, paramKeys)
		}

		// Found an edge to match the pattern
		if n.typ > ntStatic {
			// Captures always run to the end of the segment, so two
			// captures at the same position share one node.
			search = search[segEndIdx:]
			continue
		}

		// Static nodes fall below here.
		// Determine longest prefix of the search key on match.
		commonPrefix := longestPrefix(search, n.prefix)
		if commonPrefix == len(n.prefix) {
			// the common prefix is as long as the current node's prefix we're attempting to insert.
			// keep the search going.
			search = search[commonPrefix:]
			continue
		}

		// Split the node
		child := &node[T]{
			typ:    ntStatic,
			prefix: search[:commonPrefix],
		}
		parent.replaceChild(search[0], child)

		// Restore the existing node
		n.label = n.prefix[commonPrefix]
		n.prefix = n.prefix[commonPrefix:]
		child.addChild(n, n.prefix)

		// If the new key is a subset, set the value on this node and finish.
		search = search[commonPrefix:]
		if len(search) == 0 {
			return child.setEndpoint(value, pattern, paramKeys)
		}

		// Create a new edge for the node
		subchild := &node[T]{
			typ:    ntStatic,
			label:  search[0],
			prefix: search,
		}
		hn := child.addChild(subchild, search)
		return hn.setEndpoint(value, pattern, paramKeys)
	}
}

// addChild appends the new `child` node to the tree using the `pattern` as the trie key.
// For a URL router like ours, we split the static, param nodes as well as the
// static segments surrounding them.
func (n *node[T]) addChild(child *node[T], prefix string) *node[T] {
	search := prefix

	// handler leaf node added to the tree is the child.
	// this may be overridden later down the flow
	hn := child

	// Parse next segment
	segTyp, _, segStartIdx, segEndIdx := patNextSegment(search)

	if segTyp == ntParam {
		if segStartIdx == 0 {
			// Route starts with a capture
			child.typ = ntParam
			child.prefix = ""

			if segEndIdx < len(search) {
				// add static edge for the remaining part, split the end.
				search = search[segEndIdx:]

				nn := &node[T]{
					typ:    ntStatic,
					label:  search[0],
					prefix: search,
				}
				hn = child.addChild(nn, search)
			}
		} else {
			// Route has some static prefix before the capture
			child.typ = ntStatic
			child.prefix = search[:segStartIdx]

			search = search[segStartIdx:]

			nn := &node[T]{
				typ:   ntParam,
				label: search[0],
			}
			hn = child.addChild(nn, search)
		}
	}

	n.children[child.typ] = append(n.children[child.typ], child)
	n.children[child.typ].sort()
	return hn
}

func (n *node[T]) replaceChild(label byte, child *node[T]) {
	for i := 0; i < len(n.children[child.typ]); i++ {
		if n.children[child.typ][i].label == label {
			n.children[child.typ][i] = child
			n.children[child.typ][i].label = label
			return
		}
	}
	panic(ErrMissingChild)
}

func (n *node[T]) getEdge(ntyp nodeTyp, label byte) *node[T] {
	nds := n.children[ntyp]
	for i := range nds {
		if nds[i].label == label {
			return nds[i]
		}
	}
	return nil
}

func (n *node[T]) setEndpoint(value T, pattern string, paramKeys []string) error {
	if n.endpoint != nil {
		return fmt.Errorf("%w: %q overlaps %q", ErrRouteConflict, pattern, n.endpoint.pattern)
	}
	n.endpoint = &endpoint[T]{
		value:     value,
		pattern:   pattern,
		paramKeys: paramKeys,
	}
	return nil
}

func (n *node[T]) findRoute(path string) (*endpoint[T], Params) {
	rctx := &routeParams{}

	// Find the routing handlers for the path
	rn := n.findRouteRecursive(path, rctx)
	if rn == nil {
		return nil, nil
	}

	ep := rn.endpoint
	params := make(Params, len(ep.paramKeys))
	for i, key := range ep.paramKeys {
		if i < len(rctx.Values) {
			params[key] = rctx.Values[i]
		}
	}
	return ep, params
}

// Recursive edge traversal by checking all nodeTyp groups along the way.
// Static edges are tried before captures, and a capture that leads to a
// dead end is undone so the caller can keep looking.
func (n *node[T]) findRouteRecursive(path string, rctx *routeParams) *node[T] {
	nn := n
	search := path

	for t, nds := range nn.children {
		ntyp := nodeTyp(t)
		if len(nds) == 0 {
			continue
		}

		var xn *node[T]
		xsearch := search

		var label byte
		if search != "" {
			label = search[0]
		}

		switch ntyp {
		case ntStatic:
			xn = nds.findEdge(label)
			if xn == nil || !strings.HasPrefix(xsearch, xn.prefix) {
				continue
			}
			xsearch = xsearch[len(xn.prefix):]

		case ntParam:
			// a capture consumes one non-empty segment
			p := strings.IndexByte(xsearch, '/')
			if p < 0 {
				p = len(xsearch)
			}
			if p == 0 {
				continue
			}

			xn = nds[0]
			rctx.Values = append(rctx.Values, xsearch[:p])
			xsearch = xsearch[p:]
		}

		if len(xsearch) == 0 && xn.isLeaf() {
			return xn
		}

		// recursively find the next node..
		fin := xn.findRouteRecursive(xsearch, rctx)
		if fin != nil {
			return fin
		}

		// Did not find final handler, let's remove the param here if it was set
		if xn.typ == ntParam && len(rctx.Values) > 0 {
			rctx.Values = rctx.Values[:len(rctx.Values)-1]
		}
	}

	return nil
}

func (n *node[T]) isLeaf() bool {
	return n.endpoint != nil
}

func (n *node[T]) patterns() []string {
	var out []string
	n.walk(func(ep *endpoint[T]) {
		out = append(out, ep.pattern)
	})
	sort.Strings(out)
	return out
}

func (n *node[T]) walk(fn func(ep *endpoint[T])) {
	if n.endpoint != nil {
		fn(n.endpoint)
	}
	for _, ns := range n.children {
		for _, cn := range ns {
			cn.walk(fn)
		}
	}
}

// patNextSegment returns the next segment details from a pattern:
// node type, param key, segment start index, segment end index.
func patNextSegment(pattern string) (nodeTyp, string, int, int) {
	ps := strings.IndexByte(pattern, paramPrefix)
	if ps < 0 {
		return ntStatic, "", 0, len(pattern)
	}

	pe := strings.IndexByte(pattern[ps:], '/')
	if pe < 0 {
		pe = len(pattern)
	} else {
		pe += ps
	}

	return ntParam, pattern[ps+1 : pe], ps, pe
}

// patParamKeys validates the pattern and returns its capture names in order.
func patParamKeys(pattern string) ([]string, error) {
	if pattern == "" || pattern[0] != '/' {
		return nil, fmt.Errorf("%w: %q must begin with '/'", ErrInvalidPattern, pattern)
	}

	var keys []string
	for i := 0; i < len(pattern); i++ {
		if pattern[i] != paramPrefix {
			continue
		}
		if pattern[i-1] != '/' {
			return nil, fmt.Errorf("%w: %q has a capture in the middle of a segment", ErrInvalidPattern, pattern)
		}

		_, key, _, end := patNextSegment(pattern[i:])
		if key == "" {
			return nil, fmt.Errorf("%w: %q has an unnamed capture", ErrInvalidPattern, pattern)
		}
		if strings.IndexByte(key, paramPrefix) >= 0 {
			return nil, fmt.Errorf("%w: %q has a capture in the middle of a segment", ErrInvalidPattern, pattern)
		}
		for _, k := range keys {
			if k == key {
				return nil, fmt.Errorf("%w: %q declares %q twice", ErrDuplicateParam, pattern, key)
			}
		}
		keys = append(keys, key)
		i += end - 1
	}
	return keys, nil
}

// longestPrefix finds the length of the shared prefix
// of two strings
func longestPrefix(k1, k2 string) int {
	maxLen := min(len(k1), len(k2))
	var i int
	for i = 0; i < maxLen; i++ {
		if k1[i] != k2[i] {
			break
		}
	}
	return i
}

type nodes[T any] []*node[T]

// sort the list of nodes by label
func (ns nodes[T]) sort()              { sort.Sort(ns) }
func (ns nodes[T]) Len() int           { return len(ns) }
func (ns nodes[T]) Swap(i, j int)      { ns[i], ns[j] = ns[j], ns[i] }
func (ns nodes[T]) Less(i, j int) bool { return ns[i].label < ns[j].label }

func (ns nodes[T]) findEdge(label byte) *node[T] {
	num := len(ns)
	idx := 0
	i, j := 0, num-1
	for i <= j {
		idx = i + (j-i)/2
		if label > ns[idx].label {
			i = idx + 1
		} else if label < ns[idx].label {
			j = idx - 1
		} else {
			i = num // breaks cond
		}
	}
	if ns[idx].label != label {
		return nil
	}
	return ns[idx]
}

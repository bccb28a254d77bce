package router

import "errors"

var (
	ErrInvalidPattern = errors.New("invalid route path pattern")
	ErrDuplicateParam = errors.New("duplicate parameter name")
	ErrRouteConflict  = errors.New("route conflicts with an existing route")
	ErrNotFound       = errors.New("route not found")
	ErrMissingChild   = errors.New("missing child node")
)

package static

import "errors"

var (
	ErrNotFound    = errors.New("file not found")
	ErrUnknownMIME = errors.New("file mimetype could not be guessed")
	ErrRead        = errors.New("file read error")
)

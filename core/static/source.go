package static

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DefaultDir is the directory assets are served from when nothing else is
// configured.
const DefaultDir = "static"

// Asset is a resolved file ready to be sent.
type Asset struct {
	Name string
	MIME string
	Body []byte
}

// Source resolves sanitized asset names.
//
// Implementations report failures by wrapping ErrNotFound, ErrUnknownMIME
// or ErrRead, checked in that order.
type Source interface {
	Open(ctx context.Context, name string) (Asset, error)
}

// Dir serves assets from a directory on disk.
type Dir string

// Open implements Source.
func (d Dir) Open(_ context.Context, name string) (Asset, error) {
	clean := Sanitize(name)
	if clean == "" {
		return Asset{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	path := filepath.Join(string(d), clean)
	if err := validatePathSecurity(string(d), path); err != nil {
		return Asset{}, errors.Join(ErrNotFound, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return Asset{}, errors.Join(ErrNotFound, err)
	}
	defer f.Close()

	return readAsset(f, clean)
}

type fsSource struct {
	fsys fs.FS
}

// FS serves assets from the root of fsys.
func FS(fsys fs.FS) Source {
	return fsSource{fsys: fsys}
}

// Open implements Source.
func (s fsSource) Open(_ context.Context, name string) (Asset, error) {
	clean := Sanitize(name)
	if clean == "" || !fs.ValidPath(clean) {
		return Asset{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	f, err := s.fsys.Open(clean)
	if err != nil {
		return Asset{}, errors.Join(ErrNotFound, err)
	}
	defer f.Close()

	return readAsset(f, clean)
}

func readAsset(f fs.File, name string) (Asset, error) {
	info, err := f.Stat()
	if err != nil {
		return Asset{}, errors.Join(ErrRead, err)
	}
	if info.IsDir() {
		return Asset{}, fmt.Errorf("%w: %q is a directory", ErrNotFound, name)
	}

	mimeType := GuessMIME(name)
	if mimeType == "" {
		return Asset{}, fmt.Errorf("%w: %q", ErrUnknownMIME, name)
	}

	body, err := io.ReadAll(f)
	if err != nil {
		return Asset{}, errors.Join(ErrRead, err)
	}

	return Asset{Name: name, MIME: mimeType, Body: body}, nil
}

// validatePathSecurity ensures the requested path is within the root directory.
func validatePathSecurity(root, requestPath string) error {
	cleanPath := filepath.Clean(requestPath)
	cleanRoot := filepath.Clean(root)

	if !strings.HasPrefix(cleanPath, cleanRoot+string(filepath.Separator)) && cleanPath != cleanRoot {
		return fmt.Errorf("invalid path: outside root directory")
	}
	return nil
}

type sourceKey struct{}

// WithSource returns a copy of ctx carrying src.
func WithSource(ctx context.Context, src Source) context.Context {
	return context.WithValue(ctx, sourceKey{}, src)
}

// FromContext returns the Source stored by WithSource, or Dir(DefaultDir).
func FromContext(ctx context.Context) Source {
	if ctx != nil {
		if src, ok := ctx.Value(sourceKey{}).(Source); ok && src != nil {
			return src
		}
	}
	return Dir(DefaultDir)
}

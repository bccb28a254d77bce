package static_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catb00mer/fluffer/core/static"
)

func TestSanitize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain", "index.gmi", "index.gmi"},
		{"traversal", "../../etc/passwd", "....etcpasswd"},
		{"backslashes", `..\secret.txt`, "..secret.txt"},
		{"dots only", "..", ""},
		{"single dot", ".", ""},
		{"reserved device", "con.txt", ""},
		{"reserved upper", "LPT1", ""},
		{"trailing dots and spaces", "notes.txt. .", "notes.txt"},
		{"control characters", "a\x00b\x1fc.gmi", "abc.gmi"},
		{"illegal characters", `w<h>a:t*?|".gmi`, "what.gmi"},
		{"unicode kept", "ŝafo.gmi", "ŝafo.gmi"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, static.Sanitize(tt.input))
		})
	}

	t.Run("truncates long names", func(t *testing.T) {
		long := ""
		for range 300 {
			long += "a"
		}
		assert.Len(t, static.Sanitize(long), 255)
	})
}

func TestGuessMIME(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		expected string
	}{
		{"index.gmi", "text/gemini"},
		{"page.GEMINI", "text/gemini"},
		{"notes.txt", "text/plain"},
		{"image.png", "image/png"},
		{"noextension", ""},
		{"archive.unknownext", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, static.GuessMIME(tt.name))
		})
	}
}

func TestDir(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "index.gmi"), []byte("# Hi\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "blob.unknownext"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(root, "sub.gmi"), 0o755))

	src := static.Dir(root)
	ctx := context.Background()

	t.Run("existing file", func(t *testing.T) {
		asset, err := src.Open(ctx, "index.gmi")
		require.NoError(t, err)
		assert.Equal(t, "text/gemini", asset.MIME)
		assert.Equal(t, []byte("# Hi\n"), asset.Body)
		assert.Equal(t, "index.gmi", asset.Name)
	})

	t.Run("traversal is flattened", func(t *testing.T) {
		_, err := src.Open(ctx, "../index.gmi")
		assert.ErrorIs(t, err, static.ErrNotFound)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := src.Open(ctx, "missing.gmi")
		assert.ErrorIs(t, err, static.ErrNotFound)
	})

	t.Run("empty after sanitizing", func(t *testing.T) {
		_, err := src.Open(ctx, "..")
		assert.ErrorIs(t, err, static.ErrNotFound)
	})

	t.Run("directory", func(t *testing.T) {
		_, err := src.Open(ctx, "sub.gmi")
		assert.ErrorIs(t, err, static.ErrNotFound)
	})

	t.Run("unknown mime", func(t *testing.T) {
		_, err := src.Open(ctx, "blob.unknownext")
		assert.ErrorIs(t, err, static.ErrUnknownMIME)
	})
}

func TestFS(t *testing.T) {
	t.Parallel()

	src := static.FS(fstest.MapFS{
		"about.gmi": &fstest.MapFile{Data: []byte("about")},
		"logo":      &fstest.MapFile{Data: []byte("png")},
	})
	ctx := context.Background()

	asset, err := src.Open(ctx, "about.gmi")
	require.NoError(t, err)
	assert.Equal(t, "text/gemini", asset.MIME)
	assert.Equal(t, "about", string(asset.Body))

	_, err = src.Open(ctx, "logo")
	assert.ErrorIs(t, err, static.ErrUnknownMIME)

	_, err = src.Open(ctx, "nope.gmi")
	assert.ErrorIs(t, err, static.ErrNotFound)
}

func TestContextSource(t *testing.T) {
	t.Parallel()

	assert.Equal(t, static.Dir(static.DefaultDir), static.FromContext(context.Background()))

	ctx := static.WithSource(context.Background(), static.Dir("/srv/capsule"))
	assert.Equal(t, static.Dir("/srv/capsule"), static.FromContext(ctx))
}

// Package static resolves capsule assets by name.
//
// A Source turns a requested file name into its bytes and MIME type. Names
// are sanitized to a single path element before lookup, so a request can
// never escape the asset root.
//
// # Features
//
//   - Directory and fs.FS (including embed.FS) sources
//   - Filename sanitization that strips separators, reserved names and
//     control characters
//   - MIME detection by extension with text/gemini registered for .gmi
//   - Context plumbing so responses find the configured source
//
// # Basic Usage
//
//	import "github.com/catb00mer/fluffer/core/static"
//
//	src := static.Dir("static")
//	asset, err := src.Open(ctx, "index.gmi")
//	switch {
//	case errors.Is(err, static.ErrNotFound):
//		// no such file
//	case errors.Is(err, static.ErrUnknownMIME):
//		// extension not recognised
//	case err != nil:
//		// read failure
//	}
//	fmt.Println(asset.MIME) // text/gemini
//
// # Embedded Assets
//
//	//go:embed assets
//	var assets embed.FS
//
//	sub, _ := fs.Sub(assets, "assets")
//	src := static.FS(sub)
//
// # Context
//
// WithSource stores a Source on a context and FromContext retrieves it,
// falling back to Dir(DefaultDir) when none was set.
package static

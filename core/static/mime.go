package static

import (
	"mime"
	"path/filepath"
	"strings"
)

// MIMEGemtext is the media type of Gemini documents.
const MIMEGemtext = "text/gemini"

// extra covers types the platform table often lacks.
var extra = map[string]string{
	".gmi":    MIMEGemtext,
	".gemini": MIMEGemtext,
	".txt":    "text/plain",
	".md":     "text/markdown",
	".csv":    "text/csv",
	".ico":    "image/x-icon",
}

// GuessMIME returns the media type for name's extension, or "" when it is
// unknown.
func GuessMIME(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return ""
	}
	if t, ok := extra[ext]; ok {
		return t
	}
	return mime.TypeByExtension(ext)
}

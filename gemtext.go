package fluffer

import (
	"bytes"
	"unicode/utf8"
)

var crlf = []byte("\r\n")

// Gemtext returns the body of an encoded response when it is a successful
// gemtext document.
func Gemtext(b []byte) (string, bool) {
	line, body, ok := bytes.Cut(b, crlf)
	if !ok || !isGemtextHeader(line) || !utf8.Valid(body) {
		return "", false
	}
	return string(body), true
}

// GemtextOrStatus returns the body of a successful gemtext response, or a
// preformatted block showing the status line of anything else. It lets one
// handler embed the output of another.
func GemtextOrStatus(b []byte) string {
	line, body, ok := bytes.Cut(b, crlf)
	switch {
	case !ok:
		return fence("invalid gemini response")
	case !utf8.Valid(line):
		return fence("invalid utf8")
	case !isGemtextHeader(line):
		return fence("Response :: " + string(line))
	case !utf8.Valid(body):
		return fence("invalid utf8")
	}
	return string(body)
}

func isGemtextHeader(line []byte) bool {
	rest, ok := bytes.CutPrefix(line, []byte("20 "+MIMEGemtext))
	return ok && (len(rest) == 0 || rest[0] == ';' || rest[0] == ' ')
}

func fence(s string) string {
	return "```\n" + s + "\n```"
}

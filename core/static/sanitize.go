package static

import (
	"strings"
	"unicode/utf8"
)

// maxNameLength caps sanitized names in bytes.
const maxNameLength = 255

var windowsReserved = map[string]struct{}{
	"CON": {}, "PRN": {}, "AUX": {}, "NUL": {},
	"COM1": {}, "COM2": {}, "COM3": {}, "COM4": {}, "COM5": {},
	"COM6": {}, "COM7": {}, "COM8": {}, "COM9": {},
	"LPT1": {}, "LPT2": {}, "LPT3": {}, "LPT4": {}, "LPT5": {},
	"LPT6": {}, "LPT7": {}, "LPT8": {}, "LPT9": {},
}

// Sanitize reduces name to a single safe path element.
//
// Path separators, characters that are illegal in file names on common
// platforms and control characters are removed. Names made only of dots,
// reserved device names and trailing dots or spaces are dropped. The
// result may be empty.
func Sanitize(name string) string {
	s := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', '?', '<', '>', ':', '*', '|', '"':
			return -1
		}
		if r < 0x20 || (r >= 0x7f && r <= 0x9f) || r == utf8.RuneError {
			return -1
		}
		return r
	}, name)

	if strings.Trim(s, ".") == "" {
		return ""
	}

	base, _, _ := strings.Cut(s, ".")
	if _, ok := windowsReserved[strings.ToUpper(base)]; ok {
		return ""
	}

	s = strings.TrimRight(s, ". ")
	return truncate(s, maxNameLength)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

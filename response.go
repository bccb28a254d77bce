package fluffer

import (
	"context"
	"strings"

	"golang.org/x/text/language"

	"github.com/catb00mer/fluffer/core/static"
)

// Gemini status codes.
const (
	StatusInput               = 10
	StatusSensitiveInput      = 11
	StatusSuccess             = 20
	StatusRedirectTemporary   = 30
	StatusRedirectPermanent   = 31
	StatusTemporaryFailure    = 40
	StatusServerUnavailable   = 41
	StatusCGIError            = 42
	StatusProxyError          = 43
	StatusSlowDown            = 44
	StatusPermanentFailure    = 50
	StatusNotFound            = 51
	StatusGone                = 52
	StatusProxyRequestRefused = 53
	StatusBadRequest          = 59
	StatusCertificateRequired = 60
	StatusNotAuthorised       = 61
	StatusNotValid            = 62
)

// MIMEGemtext is the media type of gemtext documents.
const MIMEGemtext = static.MIMEGemtext

// Header is a response without a body.
type Header struct {
	Status int
	Meta   string
}

// Render implements Response.
func (h Header) Render(context.Context) []byte {
	return header(h.Status, h.Meta)
}

// Reply is a response with a body.
type Reply struct {
	Status int
	Meta   string
	Body   []byte
}

// Render implements Response.
func (r Reply) Render(context.Context) []byte {
	return append(header(r.Status, r.Meta), r.Body...)
}

// Text is a gemtext document.
func Text(body string) Reply {
	return Reply{Status: StatusSuccess, Meta: MIMEGemtext, Body: []byte(body)}
}

// Document is a successful response of any media type.
func Document(mime string, body []byte) Reply {
	return Reply{Status: StatusSuccess, Meta: mime, Body: body}
}

// Lang is a gemtext document in the given language. Tags that parse as
// BCP 47 are sent in canonical form, so "EN_us" becomes "en-US". Anything
// else is sent as given.
func Lang(lang, body string) Reply {
	if tag, err := language.Parse(lang); err == nil {
		lang = tag.String()
	}
	return Reply{Status: StatusSuccess, Meta: MIMEGemtext + "; lang=" + lang, Body: []byte(body)}
}

// Input asks the client to resend the request with a query.
func Input(prompt string) Header {
	return Header{Status: StatusInput, Meta: prompt}
}

// SensitiveInput is Input for values the client should not echo.
func SensitiveInput(prompt string) Header {
	return Header{Status: StatusSensitiveInput, Meta: prompt}
}

func RedirectTemporary(url string) Header {
	return Header{Status: StatusRedirectTemporary, Meta: url}
}

func RedirectPermanent(url string) Header {
	return Header{Status: StatusRedirectPermanent, Meta: url}
}

// GoUp redirects to the parent of the requested path.
func GoUp() Header {
	return Header{Status: StatusRedirectTemporary, Meta: ".."}
}

func FailureTemporary(msg string) Header {
	return Header{Status: StatusTemporaryFailure, Meta: msg}
}

func FailurePermanent(msg string) Header {
	return Header{Status: StatusPermanentFailure, Meta: msg}
}

func NotFound(msg string) Header {
	return Header{Status: StatusNotFound, Meta: msg}
}

// CertificateRequired asks the client to repeat the request with a
// certificate.
func CertificateRequired(msg string) Header {
	return Header{Status: StatusCertificateRequired, Meta: msg}
}

// Static returns a handler that always answers with the same document.
func Static[S any](body string) HandlerFunc[S] {
	doc := Text(body)
	return func(*Context[S]) any {
		return doc
	}
}

// Link formats a gemtext link line.
func Link(url, label string) string {
	if label = strings.TrimSpace(label); label == "" {
		return "=> " + url
	}
	return "=> " + url + " " + label
}

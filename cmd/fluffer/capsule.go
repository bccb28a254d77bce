package main

import (
	"fmt"
	"strings"

	"github.com/catb00mer/fluffer"
	"github.com/catb00mer/fluffer/core/logger"
	"github.com/catb00mer/fluffer/core/trust"
)

// state is shared by every request of the served capsule.
type state struct {
	trust trust.Store
}

type capsuleContext = *fluffer.Context[state]

// newCapsule builds the app behind `fluffer serve`: files from the static
// source plus a couple of identity and utility pages under /_/.
func newCapsule(st state, opts ...fluffer.Option) *fluffer.App[state] {
	app := fluffer.New(st, opts...)
	app.
		Route("/", func(capsuleContext) any { return fluffer.File("index.gmi") }).
		Route("/:file", func(c capsuleContext) any { return fluffer.File(c.Parameter("file")) }).
		Route("/_/whoami", whoami).
		Route("/_/qr", qrcode)
	return app
}

// whoami pins the client certificate to its subject name on first use and
// reports what it knows about it afterwards.
func whoami(c capsuleContext) any {
	name, ok := c.SubjectName().Get()
	if !ok {
		return fluffer.CertificateRequired("Choose a certificate to continue.")
	}
	if c.IsExpired() {
		return fluffer.Header{Status: fluffer.StatusNotValid, Meta: "Certificate has expired."}
	}

	verdict, err := c.Trust(c.State.trust, name)
	if err != nil {
		c.Logger().ErrorContext(c, "trust check failed", logger.Error(err))
		return fluffer.FailureTemporary("Trust store unavailable.")
	}
	if verdict == trust.Mismatch {
		return fluffer.Header{Status: fluffer.StatusNotValid, Meta: "Certificate does not match the one first seen for " + name + "."}
	}

	fingerprint := c.Fingerprint().OrElse("")

	var b strings.Builder
	fmt.Fprintf(&b, "# Hello, %s\n\n", name)
	fmt.Fprintf(&b, "* Fingerprint: %s\n", fingerprint)
	fmt.Fprintf(&b, "* Trust: %s\n", verdict)
	b.WriteString(fluffer.Link("/", "Back home"))
	b.WriteString("\n")
	return b.String()
}

func qrcode(c capsuleContext) any {
	text, ok := c.Input().Get()
	if !ok {
		return fluffer.Input("Text to encode")
	}
	return fluffer.QRCode(text)
}

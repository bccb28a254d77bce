package main

import (
	"bytes"
	"context"
	"crypto/x509"
	"net/url"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-acme/lego/v4/certcrypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catb00mer/fluffer"
	"github.com/catb00mer/fluffer/core/keypair"
	"github.com/catb00mer/fluffer/core/trust"
)

func clientCert(t *testing.T, name string, validity time.Duration) *x509.Certificate {
	t.Helper()

	certPEM, _, err := keypair.GeneratePEM([]string{name}, validity)
	require.NoError(t, err)
	cert, err := certcrypto.ParsePEMCertificate(certPEM)
	require.NoError(t, err)
	return cert
}

func render(st state, rawURL string, cert *x509.Certificate, h fluffer.HandlerFunc[state]) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		panic(err)
	}
	c := fluffer.NewContext(context.Background(), st, u, nil, cert, nil)
	return string(fluffer.Encode(c, h(c)))
}

func TestCapsuleRoutes(t *testing.T) {
	t.Parallel()

	app := newCapsule(state{trust: trust.NewMemoryStore()}, fluffer.WithProvisioner(keypair.Existing))
	assert.ElementsMatch(t, []string{"/", "/:file", "/_/whoami", "/_/qr"}, app.Routes())
}

func TestWhoami(t *testing.T) {
	t.Parallel()

	st := state{trust: trust.NewMemoryStore()}
	alice := clientCert(t, "alice", time.Hour)

	assert.Equal(t, "60 Choose a certificate to continue.\r\n", render(st, "gemini://localhost/_/whoami", nil, whoami))

	first := render(st, "gemini://localhost/_/whoami", alice, whoami)
	assert.Contains(t, first, "# Hello, alice")
	assert.Contains(t, first, "* Trust: first-use")

	again := render(st, "gemini://localhost/_/whoami", alice, whoami)
	assert.Contains(t, again, "* Trust: trusted")

	impostor := clientCert(t, "alice", time.Hour)
	assert.Equal(t,
		"62 Certificate does not match the one first seen for alice.\r\n",
		render(st, "gemini://localhost/_/whoami", impostor, whoami),
	)

	expired := clientCert(t, "bob", time.Nanosecond)
	assert.Equal(t, "62 Certificate has expired.\r\n", render(st, "gemini://localhost/_/whoami", expired, whoami))
}

func TestQRCodePage(t *testing.T) {
	t.Parallel()

	st := state{}
	assert.Equal(t, "10 Text to encode\r\n", render(st, "gemini://localhost/_/qr", nil, qrcode))
	assert.Contains(t, render(st, "gemini://localhost/_/qr?hello", nil, qrcode), "```qr code\n")
}

func TestKeygenCommand(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	certFile := filepath.Join(dir, "cert.pem")
	keyFile := filepath.Join(dir, "key.pem")

	var out bytes.Buffer
	app := App()
	app.Writer = &out

	err := app.Run([]string{"fluffer", "keygen", "--domain", "localhost", "--cert", certFile, "--key", keyFile})
	require.NoError(t, err)
	assert.Equal(t, keypair.Present, keypair.Check(certFile, keyFile))
	assert.Contains(t, out.String(), certFile)

	err = App().Run([]string{"fluffer", "keygen", "--cert", filepath.Join(dir, "c2.pem"), "--key", filepath.Join(dir, "k2.pem")})
	assert.ErrorIs(t, err, keypair.ErrNoDomains)
}

func TestServeRejectsUnknownLogFormat(t *testing.T) {
	t.Parallel()

	err := App().Run([]string{"fluffer", "--log-format", "xml", "serve"})
	assert.ErrorContains(t, err, `unknown log format "xml"`)
}

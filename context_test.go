package fluffer_test

import (
	"context"
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
	"net"
	"net/url"
	"testing"
	"time"

	"github.com/go-acme/lego/v4/certcrypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catb00mer/fluffer"
	"github.com/catb00mer/fluffer/core/keypair"
	"github.com/catb00mer/fluffer/core/trust"
)

func newCert(t *testing.T, name string, validity time.Duration) (*x509.Certificate, string) {
	t.Helper()

	certPEM, _, err := keypair.GeneratePEM([]string{name}, validity)
	require.NoError(t, err)
	cert, err := certcrypto.ParsePEMCertificate(certPEM)
	require.NoError(t, err)
	return cert, string(certPEM)
}

func newTestContext(cert *x509.Certificate, rawURL string, params map[string]string) *fluffer.Context[fluffer.Stateless] {
	u, err := url.Parse(rawURL)
	if err != nil {
		panic(err)
	}
	remote := &net.TCPAddr{IP: net.IPv4(192, 0, 2, 1), Port: 50000}
	return fluffer.NewContext(context.Background(), fluffer.Stateless{}, u, params, cert, remote)
}

func TestContextAnonymous(t *testing.T) {
	t.Parallel()

	c := newTestContext(nil, "gemini://localhost/page/3", map[string]string{"p": "3"})

	assert.Nil(t, c.Certificate())
	assert.True(t, c.IsExpired())
	assert.False(t, c.SubjectName().IsSome())
	assert.False(t, c.CertificatePEM().IsSome())
	assert.False(t, c.Fingerprint().IsSome())
	assert.False(t, c.Verify("not a certificate"))

	assert.Equal(t, "3", c.Parameter("p"))
	assert.PanicsWithError(t, `parameter not declared by route: "undeclared"`, func() {
		c.Parameter("undeclared")
	})

	_, err := c.Trust(trust.NewMemoryStore(), "alice")
	assert.ErrorIs(t, err, trust.ErrNoCertificate)
}

func TestContextIdentity(t *testing.T) {
	t.Parallel()

	cert, certPEM := newCert(t, "alice", time.Hour)
	_, otherPEM := newCert(t, "mallory", time.Hour)
	c := newTestContext(cert, "gemini://localhost/", nil)

	name, ok := c.SubjectName().Get()
	require.True(t, ok)
	assert.Equal(t, "alice", name)

	assert.False(t, c.IsExpired())

	pem, ok := c.CertificatePEM().Get()
	require.True(t, ok)
	assert.Equal(t, certPEM, pem)

	sum := sha256.Sum256(cert.Raw)
	assert.Equal(t, fluffer.Some(hex.EncodeToString(sum[:])), c.Fingerprint())

	assert.True(t, c.Verify(certPEM), "self-signed certificate verifies against itself")
	assert.False(t, c.Verify(otherPEM))
	assert.False(t, c.Verify("-----BEGIN CERTIFICATE-----\nZm9v\n-----END CERTIFICATE-----\n"))
	assert.False(t, c.Verify(""))
}

func TestContextExpired(t *testing.T) {
	t.Parallel()

	cert, _ := newCert(t, "old", time.Nanosecond)
	c := newTestContext(cert, "gemini://localhost/", nil)
	assert.True(t, c.IsExpired())
}

func TestContextTrust(t *testing.T) {
	t.Parallel()

	store := trust.NewMemoryStore()
	alice, _ := newCert(t, "alice", time.Hour)
	impostor, _ := newCert(t, "alice", time.Hour)

	v, err := newTestContext(alice, "gemini://localhost/", nil).Trust(store, "alice")
	require.NoError(t, err)
	assert.Equal(t, trust.FirstUse, v)

	v, err = newTestContext(alice, "gemini://localhost/", nil).Trust(store, "alice")
	require.NoError(t, err)
	assert.Equal(t, trust.Trusted, v)

	v, err = newTestContext(impostor, "gemini://localhost/", nil).Trust(store, "alice")
	require.NoError(t, err)
	assert.Equal(t, trust.Mismatch, v)
}

func TestContextInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		url  string
		want fluffer.Optional[string]
	}{
		{name: "no query", url: "gemini://localhost/search", want: fluffer.None[string]()},
		{name: "encoded", url: "gemini://localhost/search?hello%20world", want: fluffer.Some("hello world")},
		{name: "plus is literal", url: "gemini://localhost/calc?1+1%3D2", want: fluffer.Some("1+1=2")},
		{name: "bad escape", url: "gemini://localhost/search?%zz", want: fluffer.None[string]()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, newTestContext(nil, tt.url, nil).Input())
		})
	}
}

func TestContextEmbed(t *testing.T) {
	t.Parallel()

	c := newTestContext(nil, "gemini://localhost/", map[string]string{"name": "bob"})

	greeting := func(c *fluffer.Context[fluffer.Stateless]) any {
		return "Hi " + c.Parameter("name")
	}
	denied := func(*fluffer.Context[fluffer.Stateless]) any {
		return fluffer.CertificateRequired("Log in first")
	}

	assert.Equal(t, "Hi bob", c.Embed(greeting))
	assert.Equal(t, "```\nResponse :: 60 Log in first\n```", c.Embed(denied))
	assert.Equal(t, "192.0.2.1:50000", c.RemoteAddr().String())
	assert.Equal(t, map[string]string{"name": "bob"}, c.Parameters())
}

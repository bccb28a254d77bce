package keypair_test

import (
	"bytes"
	"context"
	"crypto/tls"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-acme/lego/v4/certcrypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catb00mer/fluffer/core/keypair"
)

func paths(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	return filepath.Join(dir, "cert.pem"), filepath.Join(dir, "key.pem")
}

func TestParseDomains(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"localhost", "domain.tld", "127.0.0.1"}, keypair.ParseDomains(" localhost, domain.tld,,127.0.0.1 \n"))
	assert.Empty(t, keypair.ParseDomains(" , "))
}

func TestGeneratePEM(t *testing.T) {
	t.Parallel()

	certPEM, keyPEM, err := keypair.GeneratePEM([]string{"localhost", "127.0.0.1"}, time.Hour)
	require.NoError(t, err)

	cert, err := certcrypto.ParsePEMCertificate(certPEM)
	require.NoError(t, err)
	assert.Equal(t, "localhost", cert.Subject.CommonName)
	assert.Equal(t, []string{"localhost"}, cert.DNSNames)
	require.Len(t, cert.IPAddresses, 1)
	assert.Equal(t, "127.0.0.1", cert.IPAddresses[0].String())
	assert.WithinDuration(t, time.Now().Add(time.Hour), cert.NotAfter, time.Minute)

	_, err = tls.X509KeyPair(certPEM, keyPEM)
	require.NoError(t, err)

	_, _, err = keypair.GeneratePEM(nil, time.Hour)
	assert.ErrorIs(t, err, keypair.ErrNoDomains)
}

func TestCheck(t *testing.T) {
	t.Parallel()

	certFile, keyFile := paths(t)
	assert.Equal(t, keypair.Missing, keypair.Check(certFile, keyFile))

	require.NoError(t, os.WriteFile(certFile, []byte("x"), 0o644))
	assert.Equal(t, keypair.Incomplete, keypair.Check(certFile, keyFile))

	require.NoError(t, os.WriteFile(keyFile, []byte("x"), 0o600))
	assert.Equal(t, keypair.Present, keypair.Check(certFile, keyFile))
}

func TestPrompt(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("generates on yes", func(t *testing.T) {
		t.Parallel()

		certFile, keyFile := paths(t)
		var out bytes.Buffer
		p := &keypair.Prompt{In: strings.NewReader("y\nlocalhost,example.org\n"), Out: &out}

		require.NoError(t, p.Ensure(ctx, certFile, keyFile))
		assert.Equal(t, keypair.Present, keypair.Check(certFile, keyFile))
		assert.Contains(t, out.String(), "Missing certificate files")

		_, err := tls.LoadX509KeyPair(certFile, keyFile)
		require.NoError(t, err)

		info, err := os.Stat(keyFile)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	})

	t.Run("declined", func(t *testing.T) {
		t.Parallel()

		certFile, keyFile := paths(t)
		p := &keypair.Prompt{In: strings.NewReader("n\n"), Out: &bytes.Buffer{}}

		assert.ErrorIs(t, p.Ensure(ctx, certFile, keyFile), keypair.ErrGenerationStopped)
		assert.Equal(t, keypair.Missing, keypair.Check(certFile, keyFile))
	})

	t.Run("closed input", func(t *testing.T) {
		t.Parallel()

		certFile, keyFile := paths(t)
		p := &keypair.Prompt{In: strings.NewReader(""), Out: &bytes.Buffer{}}

		assert.ErrorIs(t, p.Ensure(ctx, certFile, keyFile), keypair.ErrGenerationStopped)
	})

	t.Run("no domains", func(t *testing.T) {
		t.Parallel()

		certFile, keyFile := paths(t)
		p := &keypair.Prompt{In: strings.NewReader("y\n\n"), Out: &bytes.Buffer{}}

		assert.ErrorIs(t, p.Ensure(ctx, certFile, keyFile), keypair.ErrNoDomains)
	})

	t.Run("half keypair is fatal", func(t *testing.T) {
		t.Parallel()

		certFile, keyFile := paths(t)
		require.NoError(t, os.WriteFile(keyFile, []byte("x"), 0o600))
		p := &keypair.Prompt{In: strings.NewReader("y\nlocalhost\n"), Out: &bytes.Buffer{}}

		assert.ErrorIs(t, p.Ensure(ctx, certFile, keyFile), keypair.ErrIncompleteKeypair)
		assert.NoFileExists(t, certFile)
	})

	t.Run("present pair untouched", func(t *testing.T) {
		t.Parallel()

		certFile, keyFile := paths(t)
		require.NoError(t, keypair.Generate(certFile, keyFile, []string{"localhost"}))
		before, err := os.ReadFile(certFile)
		require.NoError(t, err)

		p := &keypair.Prompt{In: strings.NewReader(""), Out: &bytes.Buffer{}}
		require.NoError(t, p.Ensure(ctx, certFile, keyFile))

		after, err := os.ReadFile(certFile)
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})
}

func TestExisting(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	certFile, keyFile := paths(t)

	assert.ErrorIs(t, keypair.Existing.Ensure(ctx, certFile, keyFile), keypair.ErrLoad)

	require.NoError(t, os.WriteFile(certFile, []byte("x"), 0o644))
	assert.ErrorIs(t, keypair.Existing.Ensure(ctx, certFile, keyFile), keypair.ErrIncompleteKeypair)

	require.NoError(t, os.WriteFile(keyFile, []byte("x"), 0o600))
	assert.NoError(t, keypair.Existing.Ensure(ctx, certFile, keyFile))
}

func TestWatcher(t *testing.T) {
	t.Parallel()

	certFile, keyFile := paths(t)

	_, err := keypair.NewWatcher(certFile, keyFile)
	require.ErrorIs(t, err, keypair.ErrLoad)

	require.NoError(t, keypair.Generate(certFile, keyFile, []string{"first.example"}))

	w, err := keypair.NewWatcher(certFile, keyFile, keypair.WithDebounce(10*time.Millisecond))
	require.NoError(t, err)

	first, err := w.GetCertificate(nil)
	require.NoError(t, err)
	require.NotNil(t, first)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// give the watcher time to register the directory
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, keypair.Generate(certFile, keyFile, []string{"second.example"}))

	assert.Eventually(t, func() bool {
		cur, _ := w.GetCertificate(nil)
		return !bytes.Equal(cur.Certificate[0], first.Certificate[0])
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

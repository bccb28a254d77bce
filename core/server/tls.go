package server

import (
	"crypto/tls"
	"fmt"
	"os"

	"github.com/go-acme/lego/v4/certcrypto"
)

// DefaultTLSConfig returns the capsule TLS configuration: TLS 1.2+ with
// forward secret cipher suites. Client certificates are requested but
// never required or verified, since Gemini clients identify themselves
// with self-signed certificates.
func DefaultTLSConfig() *tls.Config {
	return &tls.Config{
		MinVersion: tls.VersionTLS12,
		ClientAuth: tls.RequestClientCert,
		CipherSuites: []uint16{
			// TLS 1.3 suites are selected automatically

			// TLS 1.2 cipher suites (ECDHE only for forward secrecy)
			tls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
			tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
			tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
			tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
			tls.TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305_SHA256,
			tls.TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305_SHA256,
		},
		CurvePreferences: []tls.CurveID{
			tls.X25519,
			tls.CurveP256,
		},
	}
}

// ModernTLSConfig is DefaultTLSConfig restricted to TLS 1.3.
func ModernTLSConfig() *tls.Config {
	cfg := DefaultTLSConfig()
	cfg.MinVersion = tls.VersionTLS13
	cfg.CipherSuites = nil
	return cfg
}

// TLSConfigOption represents a functional option for customizing TLS configuration.
type TLSConfigOption func(*tls.Config)

// WithTLSMinVersion sets the minimum TLS version.
func WithTLSMinVersion(version uint16) TLSConfigOption {
	return func(cfg *tls.Config) {
		cfg.MinVersion = version
	}
}

// WithTLSGetCertificate serves certificates from fn instead of the
// statically loaded pair.
func WithTLSGetCertificate(fn func(*tls.ClientHelloInfo) (*tls.Certificate, error)) TLSConfigOption {
	return func(cfg *tls.Config) {
		cfg.GetCertificate = fn
		cfg.Certificates = nil
	}
}

// NewTLSConfig creates a new TLS configuration with the given options,
// starting from DefaultTLSConfig.
func NewTLSConfig(opts ...TLSConfigOption) *tls.Config {
	cfg := DefaultTLSConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// LoadTLSConfig loads the keypair from disk into a NewTLSConfig.
func LoadTLSConfig(certFile, keyFile string, opts ...TLSConfigOption) (*tls.Config, error) {
	pair, err := LoadKeyPair(certFile, keyFile)
	if err != nil {
		return nil, err
	}

	cfg := DefaultTLSConfig()
	cfg.Certificates = []tls.Certificate{pair}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg, nil
}

// LoadKeyPair reads a PEM certificate and private key, reporting which
// file is at fault.
func LoadKeyPair(certFile, keyFile string) (tls.Certificate, error) {
	if certFile == "" || keyFile == "" {
		return tls.Certificate{}, ErrEmptyCertPath
	}

	certPEM, err := os.ReadFile(certFile)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("%w: %s: %w", ErrCertificate, certFile, err)
	}
	if _, err := certcrypto.ParsePEMCertificate(certPEM); err != nil {
		return tls.Certificate{}, fmt.Errorf("%w: %s: %w", ErrCertificate, certFile, err)
	}

	keyPEM, err := os.ReadFile(keyFile)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("%w: %s: %w", ErrPrivateKey, keyFile, err)
	}

	pair, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("%w: %s: %w", ErrPrivateKey, keyFile, err)
	}
	return pair, nil
}

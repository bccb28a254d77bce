package keypair

import (
	"crypto"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"errors"
	"fmt"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-acme/lego/v4/certcrypto"
)

// DefaultValidity is how long generated certificates stay valid.
const DefaultValidity = 10 * 365 * 24 * time.Hour

// ParseDomains splits a comma separated list, trimming blanks.
func ParseDomains(list string) []string {
	var out []string
	for _, d := range strings.Split(list, ",") {
		if d = strings.TrimSpace(d); d != "" {
			out = append(out, d)
		}
	}
	return out
}

// GeneratePEM creates a self-signed certificate covering domains and
// returns the PEM encoded certificate and private key. IP literals are
// placed in the IP SAN list, everything else in the DNS list.
func GeneratePEM(domains []string, validity time.Duration) (certPEM, keyPEM []byte, err error) {
	domains = ParseDomains(strings.Join(domains, ","))
	if len(domains) == 0 {
		return nil, nil, ErrNoDomains
	}
	if validity <= 0 {
		validity = DefaultValidity
	}

	key, err := certcrypto.GeneratePrivateKey(certcrypto.EC256)
	if err != nil {
		return nil, nil, errors.Join(ErrGenerate, err)
	}
	signer, ok := key.(crypto.Signer)
	if !ok {
		return nil, nil, fmt.Errorf("%w: unexpected key type %T", ErrGenerate, key)
	}

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return nil, nil, errors.Join(ErrGenerate, err)
	}

	now := time.Now()
	tmpl := &x509.Certificate{
		SerialNumber:          serial,
		Subject:               pkix.Name{CommonName: domains[0]},
		NotBefore:             now.Add(-time.Hour),
		NotAfter:              now.Add(validity),
		KeyUsage:              x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
	}
	for _, d := range domains {
		if ip := net.ParseIP(d); ip != nil {
			tmpl.IPAddresses = append(tmpl.IPAddresses, ip)
			continue
		}
		tmpl.DNSNames = append(tmpl.DNSNames, d)
	}

	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, signer.Public(), signer)
	if err != nil {
		return nil, nil, errors.Join(ErrGenerate, err)
	}

	return certcrypto.PEMEncode(certcrypto.DERCertificateBytes(der)), certcrypto.PEMEncode(key), nil
}

// Generate writes a fresh self-signed keypair for domains to certFile and
// keyFile. The key file is only readable by its owner.
func Generate(certFile, keyFile string, domains []string) error {
	certPEM, keyPEM, err := GeneratePEM(domains, DefaultValidity)
	if err != nil {
		return err
	}
	return WriteFiles(certFile, keyFile, certPEM, keyPEM)
}

// WriteFiles stores PEM data, creating parent directories as needed.
func WriteFiles(certFile, keyFile string, certPEM, keyPEM []byte) error {
	for _, dir := range []string{filepath.Dir(certFile), filepath.Dir(keyFile)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Join(ErrWrite, err)
		}
	}
	if err := os.WriteFile(keyFile, keyPEM, 0o600); err != nil {
		return errors.Join(ErrWrite, err)
	}
	if err := os.WriteFile(certFile, certPEM, 0o644); err != nil {
		return errors.Join(ErrWrite, err)
	}
	return nil
}

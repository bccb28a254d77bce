package fluffer

import (
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
	"time"
	"unicode/utf8"

	"github.com/go-acme/lego/v4/certcrypto"

	"github.com/catb00mer/fluffer/core/logger"
	"github.com/catb00mer/fluffer/core/trust"
)

// Certificate returns the client certificate, or nil for anonymous
// clients.
func (c *Context[S]) Certificate() *x509.Certificate {
	return c.cert
}

// CertificatePEM returns the client certificate in PEM form.
func (c *Context[S]) CertificatePEM() Optional[string] {
	if c.cert == nil {
		return None[string]()
	}
	pem := certcrypto.PEMEncode(certcrypto.DERCertificateBytes(c.cert.Raw))
	if len(pem) == 0 {
		c.logger.DebugContext(c, "certificate could not be encoded")
		return None[string]()
	}
	return Some(string(pem))
}

// SubjectName returns the value of the first attribute of the certificate
// subject, usually the common name the client chose.
func (c *Context[S]) SubjectName() Optional[string] {
	if c.cert == nil || len(c.cert.Subject.Names) == 0 {
		return None[string]()
	}
	name, ok := c.cert.Subject.Names[0].Value.(string)
	if !ok || !utf8.ValidString(name) {
		return None[string]()
	}
	return Some(name)
}

// Fingerprint returns the hex SHA-256 of the certificate.
func (c *Context[S]) Fingerprint() Optional[string] {
	if c.cert == nil {
		return None[string]()
	}
	sum := sha256.Sum256(c.cert.Raw)
	return Some(hex.EncodeToString(sum[:]))
}

// Verify reports whether the client certificate was signed by the key of
// the PEM certificate other. Every failure, including a missing client
// certificate, reports false.
func (c *Context[S]) Verify(other string) bool {
	if c.cert == nil {
		return false
	}
	signer, err := certcrypto.ParsePEMCertificate([]byte(other))
	if err != nil {
		c.logger.DebugContext(c, "verify: parse certificate", logger.Error(err))
		return false
	}
	err = signer.CheckSignature(c.cert.SignatureAlgorithm, c.cert.RawTBSCertificate, c.cert.Signature)
	return err == nil
}

// IsExpired reports whether the certificate is past its expiry. Anonymous
// clients count as expired.
func (c *Context[S]) IsExpired() bool {
	if c.cert == nil {
		return true
	}
	return !time.Now().Before(c.cert.NotAfter)
}

// Trust pins the client certificate to name on first use and checks it on
// later requests.
func (c *Context[S]) Trust(store trust.Store, name string) (trust.Verdict, error) {
	fp, ok := c.Fingerprint().Get()
	if !ok {
		return trust.Unchecked, trust.ErrNoCertificate
	}
	v, err := trust.Check(c, store, name, fp)
	if err == nil {
		c.logger.InfoContext(c, "identity checked",
			logger.Key("name", name),
			logger.Key("verdict", v.String()),
			logger.Fingerprint(fp),
		)
	}
	return v, err
}

package letsencrypt

import (
	"context"
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-acme/lego/v4/certcrypto"
	"github.com/go-acme/lego/v4/certificate"
	"github.com/go-acme/lego/v4/challenge"
	"github.com/go-acme/lego/v4/challenge/http01"
	"github.com/go-acme/lego/v4/lego"
	"github.com/go-acme/lego/v4/registration"

	"github.com/catb00mer/fluffer/core/keypair"
)

var _ keypair.Provisioner = (*Provisioner)(nil)

// Option configures the provisioner.
type Option func(*config) error

// WithCADirectoryURL overrides the ACME directory URL (defaults to Let's Encrypt production).
func WithCADirectoryURL(url string) Option {
	return func(cfg *config) error {
		cfg.caDirURL = strings.TrimSpace(url)
		return nil
	}
}

// WithHTTP01Address selects the bind address for the HTTP-01 challenge server (host:port).
// Leave empty to listen on all interfaces on port 80.
func WithHTTP01Address(addr string) Option {
	return func(cfg *config) error {
		cfg.http01Address = strings.TrimSpace(addr)
		return nil
	}
}

// WithHTTP01ProxyHeader sets the header the challenge server inspects for host matching when behind a proxy.
func WithHTTP01ProxyHeader(header string) Option {
	return func(cfg *config) error {
		cfg.proxyHeader = strings.TrimSpace(header)
		return nil
	}
}

// WithCertificateKeyType overrides the key type of the issued certificate.
func WithCertificateKeyType(keyType certcrypto.KeyType) Option {
	return func(cfg *config) error {
		cfg.certificateKeyType = keyType
		return nil
	}
}

// WithBundle toggles whether the issuer chain is appended to the leaf (default true).
func WithBundle(bundle bool) Option {
	return func(cfg *config) error {
		cfg.bundle = bundle
		return nil
	}
}

// WithIssuerFile also writes the issuer certificate to path.
func WithIssuerFile(path string) Option {
	return func(cfg *config) error {
		cfg.issuerFile = strings.TrimSpace(path)
		return nil
	}
}

// Provisioner obtains a CA-signed certificate over ACME when the capsule's
// keypair is missing.
type Provisioner struct {
	cfg             config
	clientFactory   clientFactory
	accountKeyMaker func() (crypto.PrivateKey, error)
}

type config struct {
	domains            []string
	email              string
	caDirURL           string
	certificateKeyType certcrypto.KeyType
	bundle             bool
	issuerFile         string
	http01Address      string
	http01Host         string
	http01Port         string
	proxyHeader        string
}

const (
	defaultDirectoryURL = lego.LEDirectoryProduction
	defaultHTTPPort     = "80"
)

// New constructs a Provisioner for domains, registering the ACME account
// under email.
func New(domains []string, email string, opts ...Option) (*Provisioner, error) {
	cfg := config{
		domains:            append([]string(nil), domains...),
		email:              strings.TrimSpace(email),
		caDirURL:           defaultDirectoryURL,
		certificateKeyType: certcrypto.EC256,
		bundle:             true,
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}

	return &Provisioner{
		cfg:           cfg,
		clientFactory: defaultClientFactory,
		accountKeyMaker: func() (crypto.PrivateKey, error) {
			return ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
		},
	}, nil
}

// Domains returns the names the certificate is requested for.
func (p *Provisioner) Domains() []string {
	return append([]string(nil), p.cfg.domains...)
}

// Ensure implements keypair.Provisioner. An existing keypair is left alone.
func (p *Provisioner) Ensure(ctx context.Context, certFile, keyFile string) error {
	switch keypair.Check(certFile, keyFile) {
	case keypair.Present:
		return nil
	case keypair.Incomplete:
		return fmt.Errorf("%w: %s, %s", keypair.ErrIncompleteKeypair, certFile, keyFile)
	}
	return p.Obtain(ctx, certFile, keyFile)
}

// Obtain requests a fresh certificate and writes it to certFile and keyFile,
// replacing whatever is there.
func (p *Provisioner) Obtain(ctx context.Context, certFile, keyFile string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	accountKey, err := p.accountKeyMaker()
	if err != nil {
		return errors.Join(ErrAccountKey, err)
	}

	user := &accountUser{email: p.cfg.email, key: accountKey}

	legoCfg := lego.NewConfig(user)
	legoCfg.CADirURL = p.cfg.caDirURL
	legoCfg.Certificate.KeyType = p.cfg.certificateKeyType

	client, err := p.clientFactory(legoCfg)
	if err != nil {
		return errors.Join(ErrClient, err)
	}

	provider := http01.NewProviderServer(p.cfg.http01Host, p.cfg.http01Port)
	if p.cfg.proxyHeader != "" {
		provider.SetProxyHeader(p.cfg.proxyHeader)
	}
	if err := client.SetHTTP01Provider(provider); err != nil {
		return errors.Join(ErrClient, err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	reg, err := client.Register(registration.RegisterOptions{TermsOfServiceAgreed: true})
	if err != nil {
		return errors.Join(ErrRegister, err)
	}
	user.registration = reg

	if err := ctx.Err(); err != nil {
		return err
	}

	res, err := client.Obtain(certificate.ObtainRequest{
		Domains:        p.cfg.domains,
		Bundle:         p.cfg.bundle,
		EmailAddresses: []string{p.cfg.email},
	})
	if err != nil {
		return errors.Join(ErrObtain, err)
	}

	return p.write(res, certFile, keyFile)
}

func (p *Provisioner) write(res *certificate.Resource, certFile, keyFile string) error {
	if res == nil || len(res.PrivateKey) == 0 || len(res.Certificate) == 0 {
		return ErrEmptyResource
	}

	for _, path := range []string{certFile, keyFile, p.cfg.issuerFile} {
		if path == "" {
			continue
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return errors.Join(keypair.ErrWrite, err)
		}
	}

	if err := os.WriteFile(keyFile, res.PrivateKey, 0o600); err != nil {
		return errors.Join(keypair.ErrWrite, err)
	}
	if err := os.WriteFile(certFile, res.Certificate, 0o644); err != nil {
		return errors.Join(keypair.ErrWrite, err)
	}
	if p.cfg.issuerFile != "" && len(res.IssuerCertificate) > 0 {
		if err := os.WriteFile(p.cfg.issuerFile, res.IssuerCertificate, 0o644); err != nil {
			return errors.Join(keypair.ErrWrite, err)
		}
	}
	return nil
}

func (cfg *config) applyDefaults() error {
	if len(cfg.domains) == 0 {
		return fmt.Errorf("%w: at least one domain is required", ErrInvalidConfig)
	}
	for i := range cfg.domains {
		cfg.domains[i] = strings.TrimSpace(cfg.domains[i])
		if cfg.domains[i] == "" {
			return fmt.Errorf("%w: domain entries cannot be empty", ErrInvalidConfig)
		}
	}

	if cfg.email == "" {
		return fmt.Errorf("%w: email is required", ErrInvalidConfig)
	}
	if cfg.caDirURL == "" {
		cfg.caDirURL = defaultDirectoryURL
	}

	if cfg.http01Address != "" {
		host, port, err := net.SplitHostPort(cfg.http01Address)
		if err != nil {
			return fmt.Errorf("%w: http-01 address %q: %w", ErrInvalidConfig, cfg.http01Address, err)
		}
		cfg.http01Host = host
		cfg.http01Port = port
	}
	if cfg.http01Port == "" {
		cfg.http01Port = defaultHTTPPort
	}

	if cfg.certificateKeyType == "" {
		cfg.certificateKeyType = certcrypto.EC256
	}
	if cfg.proxyHeader != "" {
		cfg.proxyHeader = http.CanonicalHeaderKey(cfg.proxyHeader)
	}
	return nil
}

type clientFactory func(*lego.Config) (acmeClient, error)

type acmeClient interface {
	Register(options registration.RegisterOptions) (*registration.Resource, error)
	SetHTTP01Provider(provider challenge.Provider) error
	Obtain(request certificate.ObtainRequest) (*certificate.Resource, error)
}

func defaultClientFactory(cfg *lego.Config) (acmeClient, error) {
	client, err := lego.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return &legoClientAdapter{client: client}, nil
}

type legoClientAdapter struct {
	client *lego.Client
}

func (l *legoClientAdapter) Register(options registration.RegisterOptions) (*registration.Resource, error) {
	return l.client.Registration.Register(options)
}

func (l *legoClientAdapter) SetHTTP01Provider(provider challenge.Provider) error {
	return l.client.Challenge.SetHTTP01Provider(provider)
}

func (l *legoClientAdapter) Obtain(request certificate.ObtainRequest) (*certificate.Resource, error) {
	return l.client.Certificate.Obtain(request)
}

type accountUser struct {
	email        string
	registration *registration.Resource
	key          crypto.PrivateKey
}

func (u *accountUser) GetEmail() string                        { return u.email }
func (u *accountUser) GetRegistration() *registration.Resource { return u.registration }
func (u *accountUser) GetPrivateKey() crypto.PrivateKey        { return u.key }

// Package letsencrypt provisions capsule certificates from an ACME
// certificate authority such as Let's Encrypt.
//
// Gemini clients pin server certificates on first use, so most capsules run
// on self-signed keypairs. Capsules that also want a CA-signed certificate
// can use Provisioner in place of the interactive prompt. It implements
// keypair.Provisioner and only contacts the CA when neither file exists.
//
//	p, err := letsencrypt.New([]string{"gemini.example.com"}, "admin@example.com",
//		letsencrypt.WithHTTP01Address(":80"),
//	)
//	if err != nil {
//		return err
//	}
//	app := fluffer.New(state, fluffer.WithProvisioner(p))
//
// # Challenges
//
// Ownership is proven with the HTTP-01 challenge, so port 80 of every
// domain must reach the process while Ensure runs. Behind a reverse proxy,
// WithHTTP01ProxyHeader selects the header carrying the original host.
//
// # Staging
//
// Point the provisioner at the staging directory while testing to avoid
// production rate limits:
//
//	letsencrypt.New(domains, email, letsencrypt.WithCADirectoryURL(lego.LEDirectoryStaging))
//
// Obtain always requests a new certificate and overwrites the files. Pair
// it with keypair.Watcher to pick up renewals without a restart.
package letsencrypt

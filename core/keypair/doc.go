// Package keypair provisions and reloads the capsule's TLS keypair.
//
// Before a server loads cert.pem and key.pem a Provisioner gets the chance
// to create them. Prompt asks an operator on the terminal and generates a
// self-signed certificate; Existing only checks that both files are there.
// Either way a lone certificate or a lone key is an error, since silently
// replacing one half would leave the other unusable.
//
//	p := keypair.Interactive()
//	if err := p.Ensure(ctx, "cert.pem", "key.pem"); err != nil {
//		log.Fatal(err)
//	}
//
// Watcher serves the loaded certificate through tls.Config.GetCertificate
// and swaps it when the files change on disk:
//
//	w, err := keypair.NewWatcher("cert.pem", "key.pem")
//	if err != nil {
//		return err
//	}
//	go w.Run(ctx)
//	cfg.GetCertificate = w.GetCertificate
package keypair

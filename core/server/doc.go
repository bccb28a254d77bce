// Package server provides the TLS accept loop behind the capsule server.
//
// Every accepted connection is wrapped in TLS and handed to a ConnHandler
// on its own goroutine. A failure on one connection, including a panic in
// the handler, never stops the loop.
//
// # Basic Usage
//
//	cfg, err := server.LoadTLSConfig("cert.pem", "key.pem")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	srv := server.New("127.0.0.1:1965",
//		server.WithTLS(cfg),
//		server.WithLogger(log),
//	)
//
//	err = srv.ListenAndServe(ctx, func(ctx context.Context, conn net.Conn) {
//		defer conn.Close()
//		// handshake, read, respond
//	})
//
// # TLS
//
// DefaultTLSConfig requests client certificates without verifying them.
// LoadKeyPair separates certificate failures (ErrCertificate) from key
// failures (ErrPrivateKey) so startup errors name the broken file.
//
// # Shutdown
//
// Canceling the context closes the listener. In-flight connections get
// the shutdown timeout to finish before they are closed, after which
// Serve returns nil.
package server

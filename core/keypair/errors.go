package keypair

import "errors"

var (
	ErrIncompleteKeypair = errors.New("only one of the certificate and key files exists")
	ErrGenerationStopped = errors.New("certificate generation declined")
	ErrNoDomains         = errors.New("at least one domain is required")
	ErrGenerate          = errors.New("failed to generate keypair")
	ErrWrite             = errors.New("failed to write keypair")
	ErrLoad              = errors.New("failed to load keypair")
)

package letsencrypt

import "errors"

var (
	ErrInvalidConfig = errors.New("invalid acme configuration")
	ErrAccountKey    = errors.New("failed to generate acme account key")
	ErrClient        = errors.New("failed to create acme client")
	ErrRegister      = errors.New("failed to register acme account")
	ErrObtain        = errors.New("failed to obtain certificate")
	ErrEmptyResource = errors.New("acme server returned an empty certificate")
)

package provisioning

import "errors"

var (
	// ErrExternalLookup wraps failures of the identity-provider lookup by email.
	ErrExternalLookup = errors.New("identity provider lookup failed")
	// ErrAccountCreation wraps a per-email creation failure.
	ErrAccountCreation = errors.New("account creation failed")
	// ErrObserver wraps a validate handler failure that aborted a batch.
	ErrObserver = errors.New("import observer failed")
)

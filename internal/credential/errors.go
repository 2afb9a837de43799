package credential

import "errors"

// Verification and registration failures. Login failures are deliberately
// collapsed into ErrCredentialRejected so callers cannot distinguish a wrong
// password from a disabled or unknown account.
var (
	ErrCredentialRejected   = errors.New("invalid credentials or access denied")
	ErrIdentifierGeneration = errors.New("failed to generate client id")
	ErrDuplicateCompanyName = errors.New("company name already exists")
	ErrRegistrationFailed   = errors.New("failed to create account")
)

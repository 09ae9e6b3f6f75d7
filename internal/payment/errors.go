package payment

import "errors"

var (
	// ErrInvalidSignature means the notification could not be proven to come from the provider.
	ErrInvalidSignature = errors.New("invalid payment signature")
	// ErrMisconfiguredSecret means a signing or API secret is absent from configuration.
	ErrMisconfiguredSecret = errors.New("payment secret not configured")
	// ErrInvalidPayload means a verified payload is missing the data needed to enroll.
	ErrInvalidPayload = errors.New("invalid payment payload")
)

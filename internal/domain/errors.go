package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")

	// ErrVerificationFailed covers both an email mismatch and a code mismatch
	// during ticket confirmation. Deliberately undifferentiated: the response
	// must not reveal which of the two fields was wrong.
	ErrVerificationFailed = errors.New("verification failed")

	// ErrExpired means the confirmation code's validity window has passed.
	// Distinct from ErrVerificationFailed so clients know to request a new code.
	ErrExpired = errors.New("expired")

	// ErrNotificationFailed means the outbound email or SMS could not be sent.
	ErrNotificationFailed = errors.New("notification failed")
)

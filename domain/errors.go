package domain

import "errors"

var (
	// ErrInvalidInput is returned for malformed request shapes or values.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthenticated is returned when credentials are missing or invalid.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrForbidden is returned for a wrong role or a non-owner caller.
	ErrForbidden = errors.New("forbidden")

	ErrNotFound = errors.New("not found")

	// ErrNoSeatsAvailable is returned when accepting a request on a full ride.
	ErrNoSeatsAvailable = errors.New("no available seats left")

	// ErrAlreadyDecided is returned when a request is no longer pending.
	ErrAlreadyDecided = errors.New("request already decided")

	// ErrTransactionFailed is returned when the accept transaction could not
	// be committed. Nothing was changed and the call may be retried.
	ErrTransactionFailed = errors.New("transaction failed")

	ErrEmailTaken          = errors.New("email already registered")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrNotVerified         = errors.New("email not verified")
	ErrInvalidVerification = errors.New("invalid or expired verification link")
	ErrRateLimited         = errors.New("too many attempts")
)

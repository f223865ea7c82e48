package errors

import (
	"errors"
)

// Conflict errors surfaced at registration time. These identify the offending
// field on purpose: registration is the one place where telling the user what
// collided is legitimate UX rather than an enumeration aid.
var (
	ErrEmailAlreadyInUse = errors.New("email already registered")
	ErrPhoneAlreadyInUse = errors.New("phone number already registered")
)

// Authentication errors. Login failures are deliberately uniform so callers
// cannot tell a missing account from a wrong password.
var (
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrEmailNotVerified     = errors.New("please verify your email before logging in")
	ErrMissingRefreshToken  = errors.New("refresh token not found")
	ErrInvalidSession       = errors.New("invalid session")
	ErrTokenExpired         = errors.New("token expired")
	ErrTokenInvalid         = errors.New("invalid token")
	ErrPurposeMismatch      = errors.New("token purpose mismatch")
	ErrTokenRevoked         = errors.New("token revoked")
	ErrInvalidOrExpiredCode = errors.New("invalid or expired verification code")
	ErrPhoneAlreadyVerified = errors.New("phone number already verified")
)

// Not-found errors.
var (
	ErrUserNotFound             = errors.New("user not found")
	ErrDeviceNotFound           = errors.New("device not found")
	ErrNoActiveDeviceFound      = errors.New("no active device found for current session")
	ErrDeviceDeactivationFailed = errors.New("failed to deactivate device")
)

// ErrInvalidOrExpiredToken covers one-time verification/reset tokens: a bad
// signature, an expired token, a missing account and an already-verified
// account all look identical to the caller.
var ErrInvalidOrExpiredToken = errors.New("invalid or expired token")

// ErrMissingSigningSecret means no secret is configured for the requested
// token purpose; issuing is impossible.
var ErrMissingSigningSecret = errors.New("signing secret unavailable")

// ErrInternal hides persistence and delivery failures from the caller; the
// detail is logged server-side only.
var ErrInternal = errors.New("internal error")

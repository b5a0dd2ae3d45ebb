package service

import "errors"

// Sentinel errors for the identity services; the transport layer maps them to
// gRPC codes. Token-codec failures (bad signature, expiry, wrong type) are
// returned as the security package's own sentinels and are not duplicated here.
var (
	ErrEmailAlreadyRegistered = errors.New("email already registered")
	// ErrBadCredentials covers both unknown accounts and wrong passwords so the
	// two cases are indistinguishable to a caller.
	ErrBadCredentials    = errors.New("invalid credentials")
	ErrAccountDeleted    = errors.New("account is deleted")
	ErrAccountUnverified = errors.New("account mail address not verified")
	ErrMustResetPassword = errors.New("password reset required before login")
	ErrSessionNotFound   = errors.New("session not found")
	ErrSessionRevoked    = errors.New("session revoked or expired")
	ErrOtpInvalid        = errors.New("one-time code invalid")
	ErrOtpExpired        = errors.New("one-time code expired")
)

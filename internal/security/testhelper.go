package security

import "time"

// testSecret is a fixed 32-byte shared secret for unit tests only.
const testSecret = "unit-test-secret-0123456789abcdef"

// NewTestTokenProvider returns a TokenProvider with a fixed secret and short
// TTLs. For unit tests only; callers must not use in production.
func NewTestTokenProvider() (*TokenProvider, error) {
	return NewTokenProvider([]byte(testSecret), "test-issuer", 15*time.Minute, 24*time.Hour, time.Hour)
}

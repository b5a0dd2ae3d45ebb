package domain

import "time"

// Purpose scopes a one-time code to the account-state transition it gates.
// A code issued for one purpose can never satisfy another.
type Purpose string

const (
	PurposeMailVerify    Purpose = "mail_verify"
	PurposePhoneVerify   Purpose = "phone_verify"
	PurposePasswordReset Purpose = "password_reset"
	PurposeMailChange    Purpose = "mail_change"
	PurposePhoneChange   Purpose = "phone_change"
)

// Valid reports whether p is a known purpose.
func (p Purpose) Valid() bool {
	switch p {
	case PurposeMailVerify, PurposePhoneVerify, PurposePasswordReset, PurposeMailChange, PurposePhoneChange:
		return true
	}
	return false
}

// Code is one outstanding verification challenge, keyed by (contact, purpose).
// Only the hash of the code value is stored.
type Code struct {
	Contact   string
	Purpose   Purpose
	CodeHash  string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the code is past its expiry at the given instant.
func (c *Code) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

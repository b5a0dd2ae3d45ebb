package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"biblio/backend/internal/audit"
	"biblio/backend/internal/notify"
	"biblio/backend/internal/otp"
	otpdomain "biblio/backend/internal/otp/domain"
	"biblio/backend/internal/security"
	"biblio/backend/internal/session"
	userdomain "biblio/backend/internal/user/domain"
	userrepo "biblio/backend/internal/user/repository"
)

// CredentialService orchestrates every credential-state transition that is
// gated by a one-time code: password reset, mail/phone verification, and
// mail/phone change. Codes are issued through the otp store and delivered
// over mail or SMS depending on the contact.
type CredentialService struct {
	users    userrepo.Repository
	codes    *otp.Store
	registry *session.Registry
	hasher   *security.Hasher
	tokens   *security.TokenProvider
	mail     notify.Sender
	sms      notify.Sender
	audit    audit.AuditLogger
}

// NewCredentialService returns a CredentialService with the given dependencies.
// auditLogger may be nil; audit events are then skipped.
func NewCredentialService(
	users userrepo.Repository,
	codes *otp.Store,
	registry *session.Registry,
	hasher *security.Hasher,
	tokens *security.TokenProvider,
	mail notify.Sender,
	sms notify.Sender,
	auditLogger audit.AuditLogger,
) *CredentialService {
	return &CredentialService{
		users:    users,
		codes:    codes,
		registry: registry,
		hasher:   hasher,
		tokens:   tokens,
		mail:     mail,
		sms:      sms,
		audit:    auditLogger,
	}
}

// RequestPasswordReset issues a reset code for the account matching contact
// (mail address or phone number) and sends it over the matching transport.
// An unknown contact succeeds without issuing anything, so the call leaks no
// account-existence signal. Delivery failures are logged, never returned: the
// code is already persisted and redeemable.
func (s *CredentialService) RequestPasswordReset(ctx context.Context, contact string) error {
	contact = strings.TrimSpace(contact)
	user, err := s.lookupByContact(ctx, contact)
	if err != nil {
		return err
	}
	if user == nil {
		return nil
	}
	code, err := s.codes.Issue(ctx, contact, otpdomain.PurposePasswordReset)
	if err != nil {
		return err
	}
	s.deliver(contact, "Password reset code",
		fmt.Sprintf("Your password reset code is %s. It expires shortly; ignore this message if you did not request it.", code))
	s.logEvent(ctx, user.ID, "password_reset_requested", "credential", "")
	return nil
}

// ResetPassword redeems a reset code and replaces the account password. On
// success the forced-reset flag is cleared and every session of the account is
// closed, so stolen tokens die with the old password.
func (s *CredentialService) ResetPassword(ctx context.Context, contact, code, newPassword string) error {
	contact = strings.TrimSpace(contact)
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	if err := s.redeem(ctx, contact, otpdomain.PurposePasswordReset, code); err != nil {
		return err
	}
	user, err := s.lookupByContact(ctx, contact)
	if err != nil {
		return err
	}
	if user == nil {
		// The code was redeemable, so the account vanished between issue and
		// redeem. Treat it like a bad code.
		return ErrOtpInvalid
	}
	hashed, err := s.hasher.Hash([]byte(newPassword))
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hashed); err != nil {
		return err
	}
	if user.MustResetPassword {
		if err := s.users.SetMustResetPassword(ctx, user.ID, false); err != nil {
			return err
		}
	}
	if err := s.registry.CloseAllByUser(ctx, user.ID); err != nil {
		return err
	}
	s.logEvent(ctx, user.ID, "password_reset", "credential", "all sessions closed")
	return nil
}

// RequestMailVerification issues a verification code for an unverified
// account and mails it together with a signed verification link token.
// Already-verified accounts succeed without issuing anything.
func (s *CredentialService) RequestMailVerification(ctx context.Context, email string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil || user.Verified {
		return nil
	}
	code, err := s.codes.Issue(ctx, email, otpdomain.PurposeMailVerify)
	if err != nil {
		return err
	}
	linkToken, _, err := s.tokens.Mint(user.ID, "", security.TypeVerifyMail, s.tokens.NewSessionID())
	if err != nil {
		return err
	}
	s.deliver(email, "Confirm your mail address",
		fmt.Sprintf("Your verification code is %s.\n\nAlternatively, open the confirmation link with this token: %s", code, linkToken))
	s.logEvent(ctx, user.ID, "mail_verification_requested", "credential", "")
	return nil
}

// ConfirmMailVerification redeems a verification code and marks the account's
// mail address as confirmed.
func (s *CredentialService) ConfirmMailVerification(ctx context.Context, email, code string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	if err := s.redeem(ctx, email, otpdomain.PurposeMailVerify, code); err != nil {
		return err
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrOtpInvalid
	}
	if err := s.users.SetVerified(ctx, user.ID, true); err != nil {
		return err
	}
	s.logEvent(ctx, user.ID, "mail_verified", "credential", "")
	return nil
}

// ConfirmMailVerificationToken marks the token's subject account as confirmed.
// The token must be a mail-verification token; its embedded expiry is
// authoritative. Used by the link flow, where the caller holds no code.
func (s *CredentialService) ConfirmMailVerificationToken(ctx context.Context, token string) error {
	claims, err := s.tokens.Verify(token, false)
	if err != nil {
		return err
	}
	if claims.Type() != security.TypeVerifyMail {
		return security.ErrInvalidTokenType
	}
	user, err := s.users.GetByID(ctx, claims.Subject)
	if err != nil {
		return err
	}
	if user == nil || user.Deleted {
		return ErrAccountDeleted
	}
	if user.Verified {
		return nil
	}
	if err := s.users.SetVerified(ctx, user.ID, true); err != nil {
		return err
	}
	s.logEvent(ctx, user.ID, "mail_verified", "credential", "via link token")
	return nil
}

// RequestMailChange issues a change code for the account's prospective mail
// address and mails it there, proving the caller controls the new address.
func (s *CredentialService) RequestMailChange(ctx context.Context, userID, newEmail string) error {
	newEmail = strings.TrimSpace(strings.ToLower(newEmail))
	if err := validateEmail(newEmail); err != nil {
		return err
	}
	taken, err := s.users.GetByEmail(ctx, newEmail)
	if err != nil {
		return err
	}
	if taken != nil {
		return ErrEmailAlreadyRegistered
	}
	code, err := s.codes.Issue(ctx, newEmail, otpdomain.PurposeMailChange)
	if err != nil {
		return err
	}
	s.deliver(newEmail, "Confirm your new mail address",
		fmt.Sprintf("Your confirmation code is %s.", code))
	s.logEvent(ctx, userID, "mail_change_requested", "credential", "")
	return nil
}

// ConfirmMailChange redeems the change code sent to newEmail and moves the
// account to it. The address is confirmed by the redeem itself, so the
// account stays verified.
func (s *CredentialService) ConfirmMailChange(ctx context.Context, userID, newEmail, code string) error {
	newEmail = strings.TrimSpace(strings.ToLower(newEmail))
	if err := s.redeem(ctx, newEmail, otpdomain.PurposeMailChange, code); err != nil {
		return err
	}
	if err := s.users.UpdateEmail(ctx, userID, newEmail); err != nil {
		return err
	}
	if err := s.users.SetVerified(ctx, userID, true); err != nil {
		return err
	}
	s.logEvent(ctx, userID, "mail_changed", "credential", "")
	return nil
}

// RequestPhoneChange issues a change code for the prospective phone number
// and sends it there by SMS.
func (s *CredentialService) RequestPhoneChange(ctx context.Context, userID, newPhone string) error {
	newPhone = strings.TrimSpace(newPhone)
	if newPhone == "" {
		return errors.New("phone number is required")
	}
	code, err := s.codes.Issue(ctx, newPhone, otpdomain.PurposePhoneChange)
	if err != nil {
		return err
	}
	s.deliver(newPhone, "", fmt.Sprintf("Your confirmation code is %s.", code))
	s.logEvent(ctx, userID, "phone_change_requested", "credential", "")
	return nil
}

// ConfirmPhoneChange redeems the change code sent to newPhone and moves the
// account to it.
func (s *CredentialService) ConfirmPhoneChange(ctx context.Context, userID, newPhone, code string) error {
	newPhone = strings.TrimSpace(newPhone)
	if err := s.redeem(ctx, newPhone, otpdomain.PurposePhoneChange, code); err != nil {
		return err
	}
	if err := s.users.UpdatePhone(ctx, userID, newPhone); err != nil {
		return err
	}
	s.logEvent(ctx, userID, "phone_changed", "credential", "")
	return nil
}

// IssueTemporaryPassword replaces the account password with a generated one,
// flags the account for a forced reset, closes every session, and mails the
// temporary password. Used by librarian desks for walk-in lockouts.
func (s *CredentialService) IssueTemporaryPassword(ctx context.Context, email string) (string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if user == nil || user.Deleted {
		return "", ErrBadCredentials
	}
	temp, err := security.RandomPassword(12)
	if err != nil {
		return "", err
	}
	hashed, err := s.hasher.Hash([]byte(temp))
	if err != nil {
		return "", err
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hashed); err != nil {
		return "", err
	}
	if err := s.users.SetMustResetPassword(ctx, user.ID, true); err != nil {
		return "", err
	}
	if err := s.registry.CloseAllByUser(ctx, user.ID); err != nil {
		return "", err
	}
	s.deliver(email, "Temporary password",
		fmt.Sprintf("Your temporary password is %s. You must choose a new password on first use.", temp))
	s.logEvent(ctx, user.ID, "temporary_password_issued", "credential", "")
	return temp, nil
}

// redeem verifies and consumes a one-time code, mapping store errors to the
// service sentinels.
func (s *CredentialService) redeem(ctx context.Context, contact string, purpose otpdomain.Purpose, code string) error {
	ok, err := s.codes.Verify(ctx, contact, purpose, code)
	if err != nil {
		switch {
		case errors.Is(err, otp.ErrCodeExpired):
			return ErrOtpExpired
		case errors.Is(err, otp.ErrCodeNotFound):
			return ErrOtpInvalid
		}
		return err
	}
	if !ok {
		return ErrOtpInvalid
	}
	return nil
}

// lookupByContact finds a user by mail address or phone number. Contacts with
// an @ are mail addresses; everything else is treated as a phone number.
func (s *CredentialService) lookupByContact(ctx context.Context, contact string) (*userdomain.User, error) {
	if contact == "" {
		return nil, nil
	}
	if strings.Contains(contact, "@") {
		return s.users.GetByEmail(ctx, strings.ToLower(contact))
	}
	return s.users.GetByPhone(ctx, contact)
}

// deliver sends over mail or SMS depending on the contact form. Best-effort:
// failures are logged and not returned.
func (s *CredentialService) deliver(contact, subject, body string) {
	sender := s.sms
	if strings.Contains(contact, "@") {
		sender = s.mail
	}
	if sender == nil {
		log.Printf("credential: no transport for %s, delivery skipped", contact)
		return
	}
	if err := sender.Send(contact, subject, body); err != nil {
		log.Printf("credential: delivery to %s failed: %v", contact, err)
	}
}

func (s *CredentialService) logEvent(ctx context.Context, userID, action, resource, metadata string) {
	if s.audit != nil {
		s.audit.LogEvent(ctx, userID, action, resource, metadata)
	}
}

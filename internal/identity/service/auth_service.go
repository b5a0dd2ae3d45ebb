package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"biblio/backend/internal/audit"
	"biblio/backend/internal/security"
	"biblio/backend/internal/session"
	userdomain "biblio/backend/internal/user/domain"
	userrepo "biblio/backend/internal/user/repository"
)

// AuthResult holds the outcome of Register (user_id only), Login, or Refresh.
type AuthResult struct {
	AccessToken  string
	RefreshToken string
	// ExpiresAt is the access token expiry.
	ExpiresAt time.Time
	UserID    string
}

// AuthService implements register, login, refresh, and logout. Every issued
// token gets its own registry session, so access and refresh tokens are
// revocable independently.
type AuthService struct {
	users    userrepo.Repository
	registry *session.Registry
	hasher   *security.Hasher
	tokens   *security.TokenProvider
	audit    audit.AuditLogger
}

// NewAuthService returns an AuthService with the given dependencies.
// auditLogger may be nil; audit events are then skipped.
func NewAuthService(
	users userrepo.Repository,
	registry *session.Registry,
	hasher *security.Hasher,
	tokens *security.TokenProvider,
	auditLogger audit.AuditLogger,
) *AuthService {
	return &AuthService{
		users:    users,
		registry: registry,
		hasher:   hasher,
		tokens:   tokens,
		audit:    auditLogger,
	}
}

// Register creates an unverified member account with the given email and password.
// Returns AuthResult with UserID only; the account cannot log in until its mail
// address is confirmed, so the caller follows up with a verification code.
func (s *AuthService) Register(ctx context.Context, email, name, password string) (*AuthResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailAlreadyRegistered
	}
	hashed, err := s.hasher.Hash([]byte(password))
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	user := &userdomain.User{
		ID:           uuid.New().String(),
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: hashed,
		Roles:        []userdomain.Role{userdomain.RoleMember},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	s.logEvent(ctx, user.ID, "register", "user", "")
	return &AuthResult{UserID: user.ID}, nil
}

// Login authenticates with email/password and returns an access/refresh token
// pair. Account status (deleted, unverified, forced reset) is checked only
// after the password matches, so status details leak nothing to guessers.
// Each token is minted under its own fresh session id and both are registered.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, ErrBadCredentials
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || user.PasswordHash == "" {
		return nil, ErrBadCredentials
	}
	if err := s.hasher.Compare(user.PasswordHash, []byte(password)); err != nil {
		return nil, ErrBadCredentials
	}
	switch {
	case user.Deleted:
		return nil, ErrAccountDeleted
	case !user.Verified:
		return nil, ErrAccountUnverified
	case user.MustResetPassword:
		return nil, ErrMustResetPassword
	}
	res, err := s.issuePair(ctx, user)
	if err != nil {
		return nil, err
	}
	s.logEvent(ctx, user.ID, "login", "session", "")
	return res, nil
}

// Refresh exchanges a live refresh token for a new token pair. The used
// refresh session is closed and both new tokens get fresh session ids, so a
// replayed refresh token fails with ErrSessionRevoked. The old access token is
// left to run out its own expiry.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	if refreshToken == "" {
		return nil, security.ErrBadSignature
	}
	claims, err := s.tokens.Verify(refreshToken, true)
	if err != nil {
		return nil, err
	}
	sess, err := s.registry.Get(ctx, claims.SessionID())
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrSessionNotFound
	}
	if !sess.Live(time.Now().UTC()) {
		return nil, ErrSessionRevoked
	}
	user, err := s.users.GetByID(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}
	if user == nil || user.Deleted {
		return nil, ErrAccountDeleted
	}
	if err := s.registry.Close(ctx, claims.SessionID()); err != nil {
		return nil, err
	}
	res, err := s.issuePair(ctx, user)
	if err != nil {
		return nil, err
	}
	s.logEvent(ctx, user.ID, "token_refreshed", "session", "")
	return res, nil
}

// Logout closes the session named by the token. The token's signature must
// verify, but closing a missing or already-closed session succeeds, and an
// expired token is treated as already logged out.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := s.tokens.Verify(token, false)
	if err != nil {
		if errors.Is(err, security.ErrTokenExpired) {
			return nil
		}
		return err
	}
	if claims.Type() == security.TypeVerifyMail {
		return security.ErrInvalidTokenType
	}
	if err := s.registry.Close(ctx, claims.SessionID()); err != nil {
		return err
	}
	s.logEvent(ctx, claims.Subject, "logout", "session", "")
	return nil
}

// issuePair mints an access and a refresh token for user, each under its own
// fresh session id, and registers both sessions.
func (s *AuthService) issuePair(ctx context.Context, user *userdomain.User) (*AuthResult, error) {
	scope := userdomain.ScopeString(user.Roles)

	accessSID := s.tokens.NewSessionID()
	accessToken, accessExp, err := s.tokens.Mint(user.ID, scope, security.TypeAccess, accessSID)
	if err != nil {
		return nil, err
	}
	refreshSID := s.tokens.NewSessionID()
	refreshToken, refreshExp, err := s.tokens.Mint(user.ID, "", security.TypeRefresh, refreshSID)
	if err != nil {
		return nil, err
	}
	if err := s.registry.Open(ctx, accessSID, user.ID, accessExp); err != nil {
		return nil, err
	}
	if err := s.registry.Open(ctx, refreshSID, user.ID, refreshExp); err != nil {
		return nil, err
	}
	return &AuthResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    accessExp,
		UserID:       user.ID,
	}, nil
}

func (s *AuthService) logEvent(ctx context.Context, userID, action, resource, metadata string) {
	if s.audit != nil {
		s.audit.LogEvent(ctx, userID, action, resource, metadata)
	}
}

func validateEmail(email string) error {
	if email == "" {
		return errors.New("email is required")
	}
	const simpleEmail = `^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`
	ok, _ := regexp.MatchString(simpleEmail, email)
	if !ok {
		return errors.New("invalid email format")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < security.MinPasswordLength {
		return errors.New("password too short")
	}
	var hasLetter, hasNumber bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z':
			hasLetter = true
		case r >= '0' && r <= '9':
			hasNumber = true
		}
	}
	if !hasLetter || !hasNumber {
		return errors.New("password must contain letters and numbers")
	}
	return nil
}

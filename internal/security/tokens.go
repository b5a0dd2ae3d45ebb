package security

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Sentinel errors for token verification; callers map them to their own taxonomy.
var (
	// ErrBadSignature is returned when a token is malformed or its MAC does not verify.
	ErrBadSignature = errors.New("bad token signature")
	// ErrTokenExpired is returned when a token's effective expiry has passed.
	ErrTokenExpired = errors.New("token expired")
	// ErrInvalidTokenType is returned when a token's typ claim does not match the expected use.
	ErrInvalidTokenType = errors.New("invalid token type")
)

// TokenType tags what a token is for. The verification chain accepts only
// TypeAccess; TypeRefresh mints new access tokens; TypeVerifyMail backs
// mail-verification links.
type TokenType string

const (
	TypeAccess     TokenType = "ACCESS"
	TypeRefresh    TokenType = "REFRESH"
	TypeVerifyMail TokenType = "VERIFY_MAIL"
)

// Claims are the signed claims carried by every token. The jti registered
// claim doubles as the session id mirrored in the session registry.
type Claims struct {
	jwt.RegisteredClaims
	Scope string `json:"scope,omitempty"`
	Typ   string `json:"typ"`
}

// Type returns the token's type tag.
func (c *Claims) Type() TokenType { return TokenType(c.Typ) }

// SessionID returns the session id embedded in the token (the jti claim).
func (c *Claims) SessionID() string { return c.ID }

// TokenProvider issues and validates HS256-signed tokens with a single shared
// secret per deployment. Built once at startup; immutable afterwards.
type TokenProvider struct {
	secret []byte
	issuer string
	ttls   map[TokenType]time.Duration
}

// MinSecretLen is the minimum shared-secret length accepted by NewTokenProvider.
const MinSecretLen = 32

// NewTokenProvider returns a TokenProvider signing with secret. The per-type
// TTL table drives both minting and the recomputed refresh expiry.
func NewTokenProvider(secret []byte, issuer string, accessTTL, refreshTTL, mailTTL time.Duration) (*TokenProvider, error) {
	if len(secret) < MinSecretLen {
		return nil, errors.New("token secret must be at least 32 bytes")
	}
	if strings.TrimSpace(issuer) == "" {
		return nil, errors.New("token issuer is required")
	}
	if accessTTL <= 0 || refreshTTL <= 0 || mailTTL <= 0 {
		return nil, errors.New("token TTLs must be positive")
	}
	return &TokenProvider{
		secret: secret,
		issuer: issuer,
		ttls: map[TokenType]time.Duration{
			TypeAccess:     accessTTL,
			TypeRefresh:    refreshTTL,
			TypeVerifyMail: mailTTL,
		},
	}, nil
}

// RefreshTTL returns the configured refresh token lifetime.
func (p *TokenProvider) RefreshTTL() time.Duration { return p.ttls[TypeRefresh] }

// NewSessionID returns a fresh random session id suitable for the jti claim.
func (p *TokenProvider) NewSessionID() string { return uuid.New().String() }

// Mint issues a signed token of the given type for subject (the user's stable
// id), carrying scope and sessionID as the jti. Returns the compact token and
// its expiry.
func (p *TokenProvider) Mint(subject, scope string, typ TokenType, sessionID string) (string, time.Time, error) {
	ttl, ok := p.ttls[typ]
	if !ok {
		return "", time.Time{}, ErrInvalidTokenType
	}
	now := time.Now().UTC()
	expiresAt := now.Add(ttl)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			Subject:   subject,
			Issuer:    p.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Scope: scope,
		Typ:   string(typ),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(p.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Verify parses and validates a compact token string.
//
// For access-style validation (asRefresh false) the embedded exp claim is
// authoritative. For refresh tokens (asRefresh true) the effective expiry is
// recomputed as iat + the configured refresh TTL, so a refresh token never
// outlives the server's current refresh policy regardless of the exp it was
// minted with; asRefresh also requires typ to be REFRESH.
func (p *TokenProvider) Verify(tokenStr string, asRefresh bool) (*Claims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(p.issuer),
		jwt.WithIssuedAt(),
	}
	if asRefresh {
		// Expiry is re-derived below; skip the parser's exp check so a stale
		// embedded claim cannot shorten or extend the policy window.
		options = append(options, jwt.WithoutClaimsValidation())
	}
	parser := jwt.NewParser(options...)
	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return p.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		default:
			return nil, ErrBadSignature
		}
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrBadSignature
	}

	if asRefresh {
		if claims.Type() != TypeRefresh {
			return nil, ErrInvalidTokenType
		}
		if claims.Issuer != p.issuer {
			return nil, ErrBadSignature
		}
		if claims.IssuedAt == nil {
			return nil, ErrBadSignature
		}
		effective := claims.IssuedAt.Time.Add(p.ttls[TypeRefresh])
		if time.Now().UTC().After(effective) {
			return nil, ErrTokenExpired
		}
	}
	return claims, nil
}

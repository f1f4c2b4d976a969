package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const visitorIssuer = "storefront"

var (
	// ErrVisitorTokenInvalid is returned for tokens that fail signature,
	// expiry or claim checks.
	ErrVisitorTokenInvalid = errors.New("invalid visitor token")
	// ErrVisitorSecretTooShort guards against weak HMAC keys.
	ErrVisitorSecretTooShort = errors.New("visitor secret must be at least 32 bytes")
)

// MinVisitorSecretLen is the minimum HMAC key length for visitor tokens.
const MinVisitorSecretLen = 32

// VisitorClaims identifies one browser across requests. It carries no
// account data; the backend session cookie is kept server side.
type VisitorClaims struct {
	jwt.RegisteredClaims
}

// VisitorID returns the subject of the claims.
func (c *VisitorClaims) VisitorID() string {
	return c.Subject
}

// VisitorSigner issues and validates the signed visitor cookie value.
type VisitorSigner struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// NewVisitorSigner creates a signer using an HS256 key.
func NewVisitorSigner(secret []byte, ttl time.Duration) (*VisitorSigner, error) {
	if len(secret) < MinVisitorSecretLen {
		return nil, ErrVisitorSecretTooShort
	}
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &VisitorSigner{key: secret, ttl: ttl, now: time.Now}, nil
}

// TTL is the lifetime of issued tokens.
func (s *VisitorSigner) TTL() time.Duration {
	return s.ttl
}

// Issue creates a token for a freshly generated visitor ID.
func (s *VisitorSigner) Issue() (token string, visitorID string, err error) {
	visitorID = uuid.NewString()
	token, err = s.IssueFor(visitorID)
	return token, visitorID, err
}

// IssueFor creates a token for an existing visitor ID. Used to slide the
// expiry window forward.
func (s *VisitorSigner) IssueFor(visitorID string) (string, error) {
	if _, err := uuid.Parse(visitorID); err != nil {
		return "", fmt.Errorf("visitor id: %w", err)
	}

	now := s.now()
	claims := VisitorClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    visitorIssuer,
			Subject:   visitorID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("sign visitor token: %w", err)
	}
	return signed, nil
}

// Parse validates a token and returns its visitor ID.
func (s *VisitorSigner) Parse(token string) (string, error) {
	if token == "" {
		return "", ErrVisitorTokenInvalid
	}

	claims := &VisitorClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(visitorIssuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrVisitorTokenInvalid, err)
	}

	if _, err := uuid.Parse(claims.VisitorID()); err != nil {
		return "", fmt.Errorf("%w: subject is not a visitor id", ErrVisitorTokenInvalid)
	}
	return claims.VisitorID(), nil
}

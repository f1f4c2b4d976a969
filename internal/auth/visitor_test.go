package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func TestNewVisitorSigner_RejectsShortSecret(t *testing.T) {
	_, err := NewVisitorSigner([]byte("short"), time.Hour)
	assert.ErrorIs(t, err, ErrVisitorSecretTooShort)
}

func TestVisitorSigner_IssueAndParse(t *testing.T) {
	s, err := NewVisitorSigner(testSecret, time.Hour)
	require.NoError(t, err)

	token, id, err := s.Issue()
	require.NoError(t, err)
	_, err = uuid.Parse(id)
	require.NoError(t, err)

	got, err := s.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestVisitorSigner_Expired(t *testing.T) {
	s, err := NewVisitorSigner(testSecret, time.Minute)
	require.NoError(t, err)

	issued := time.Now().Add(-time.Hour)
	s.now = func() time.Time { return issued }
	token, _, err := s.Issue()
	require.NoError(t, err)

	s.now = time.Now
	_, err = s.Parse(token)
	assert.ErrorIs(t, err, ErrVisitorTokenInvalid)
}

func TestVisitorSigner_WrongKey(t *testing.T) {
	a, err := NewVisitorSigner(testSecret, time.Hour)
	require.NoError(t, err)
	b, err := NewVisitorSigner([]byte(strings.Repeat("z", 32)), time.Hour)
	require.NoError(t, err)

	token, _, err := a.Issue()
	require.NoError(t, err)

	_, err = b.Parse(token)
	assert.ErrorIs(t, err, ErrVisitorTokenInvalid)
}

func TestVisitorSigner_RejectsOtherAlgorithms(t *testing.T) {
	s, err := NewVisitorSigner(testSecret, time.Hour)
	require.NoError(t, err)

	claims := VisitorClaims{RegisteredClaims: jwt.RegisteredClaims{
		Issuer:    visitorIssuer,
		Subject:   uuid.NewString(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(testSecret)
	require.NoError(t, err)

	_, err = s.Parse(token)
	assert.ErrorIs(t, err, ErrVisitorTokenInvalid)
}

func TestVisitorSigner_RejectsNonUUIDSubject(t *testing.T) {
	s, err := NewVisitorSigner(testSecret, time.Hour)
	require.NoError(t, err)

	_, err = s.IssueFor("not-a-uuid")
	assert.Error(t, err)

	claims := VisitorClaims{RegisteredClaims: jwt.RegisteredClaims{
		Issuer:    visitorIssuer,
		Subject:   "alice",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	require.NoError(t, err)

	_, err = s.Parse(token)
	assert.ErrorIs(t, err, ErrVisitorTokenInvalid)
}

func TestVisitorSigner_Empty(t *testing.T) {
	s, err := NewVisitorSigner(testSecret, time.Hour)
	require.NoError(t, err)
	_, err = s.Parse("")
	assert.ErrorIs(t, err, ErrVisitorTokenInvalid)
}

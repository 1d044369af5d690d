package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueParse(t *testing.T) {
	iss := NewIssuer("secret", time.Hour)
	token, err := iss.Issue("alice", "01HX")
	require.NoError(t, err)

	claims, err := iss.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.User)
	assert.Equal(t, "01HX", claims.OID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestParseRejectsExpired(t *testing.T) {
	iss := NewIssuer("secret", time.Hour)
	iss.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := iss.Issue("alice", "01HX")
	require.NoError(t, err)

	_, err = NewIssuer("secret", time.Hour).Parse(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsForeignSecretAndAlg(t *testing.T) {
	token, err := NewIssuer("other", time.Hour).Issue("alice", "01HX")
	require.NoError(t, err)
	_, err = NewIssuer("secret", time.Hour).Parse(token)
	require.ErrorIs(t, err, ErrInvalidToken)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{User: "x", OID: "y"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = NewIssuer("secret", time.Hour).Parse(none)
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = NewIssuer("secret", time.Hour).Parse("garbage")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestDefaultTTL(t *testing.T) {
	assert.Equal(t, DefaultTokenTTL, NewIssuer("s", 0).ttl)
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", hash)

	require.NoError(t, CheckPassword(hash, "hunter2"))
	require.ErrorIs(t, CheckPassword(hash, "hunter3"), ErrInvalidCredentials)
}

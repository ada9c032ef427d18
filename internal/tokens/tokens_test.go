package tokens

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIssueVerifyRoundTrip(t *testing.T) {
	svc := &Service{Secret: []byte("test-secret"), TTL: time.Hour}

	raw, err := svc.Issue(42, "jane@example.com", []string{"Admin", "User"})
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	claims, err := svc.Verify(raw)
	require.NoError(t, err)

	id, err := claims.UserID()
	require.NoError(t, err)
	require.Equal(t, uint(42), id)
	require.Equal(t, "jane@example.com", claims.Email)
	require.Equal(t, []string{"Admin", "User"}, claims.Roles)
	require.NotNil(t, claims.ExpiresAt)
	require.NotEmpty(t, claims.ID)
}

func TestIssueWithoutExpiry(t *testing.T) {
	svc := &Service{Secret: []byte("test-secret"), TTL: 0}

	raw, err := svc.Issue(7, "joe@example.com", nil)
	require.NoError(t, err)

	claims, err := svc.Verify(raw)
	require.NoError(t, err)
	require.Nil(t, claims.ExpiresAt)
}

func TestVerifyExpired(t *testing.T) {
	svc := &Service{Secret: []byte("test-secret"), TTL: -time.Minute}

	raw, err := svc.Issue(7, "joe@example.com", nil)
	require.NoError(t, err)

	_, err = svc.Verify(raw)
	require.ErrorIs(t, err, ErrExpired)
}

func TestVerifyWrongKey(t *testing.T) {
	issuer := &Service{Secret: []byte("key-one"), TTL: time.Hour}
	verifier := &Service{Secret: []byte("key-two"), TTL: time.Hour}

	raw, err := issuer.Issue(7, "joe@example.com", nil)
	require.NoError(t, err)

	_, err = verifier.Verify(raw)
	require.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifyMalformed(t *testing.T) {
	svc := &Service{Secret: []byte("test-secret"), TTL: time.Hour}

	for _, raw := range []string{"", "garbage", "a.b", "a.b.c"} {
		_, err := svc.Verify(raw)
		require.ErrorIs(t, err, ErrMalformed, "input %q", raw)
	}
}

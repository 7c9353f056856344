package identity

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "unit-test-secret"

func signToken(t *testing.T, secret, sub string, expiresIn time.Duration) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub,
		"exp": time.Now().Add(expiresIn).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func writeTokenFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "token")
	require.NoError(t, os.WriteFile(path, []byte(contents+"\n"), 0o600))
	return path
}

func TestTokenFileProvider_ValidToken(t *testing.T) {
	// ARRANGE
	token := signToken(t, testSecret, "volunteer-42", time.Hour)
	provider := NewTokenFileProvider(writeTokenFile(t, token), testSecret)

	// ACT
	ownerID, ok := provider.CurrentIdentity()

	// ASSERT
	assert.True(t, ok)
	assert.Equal(t, "volunteer-42", ownerID)
}

func TestTokenFileProvider_MissingFile(t *testing.T) {
	provider := NewTokenFileProvider(filepath.Join(t.TempDir(), "absent"), testSecret)

	_, ok := provider.CurrentIdentity()

	assert.False(t, ok)
}

func TestTokenFileProvider_WrongSecret(t *testing.T) {
	token := signToken(t, "some-other-secret", "volunteer-42", time.Hour)
	provider := NewTokenFileProvider(writeTokenFile(t, token), testSecret)

	_, ok := provider.CurrentIdentity()

	assert.False(t, ok)
}

func TestTokenFileProvider_ExpiredToken(t *testing.T) {
	token := signToken(t, testSecret, "volunteer-42", -time.Minute)
	provider := NewTokenFileProvider(writeTokenFile(t, token), testSecret)

	_, ok := provider.CurrentIdentity()

	assert.False(t, ok)
}

func TestVerifyToken_MissingSubject(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = VerifyToken(signed, testSecret)

	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyToken_GarbageInput(t *testing.T) {
	_, err := VerifyToken("not.a.token", testSecret)

	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestStatic(t *testing.T) {
	ownerID, ok := Static("coordinator-7").CurrentIdentity()
	assert.True(t, ok)
	assert.Equal(t, "coordinator-7", ownerID)

	_, ok = Static("").CurrentIdentity()
	assert.False(t, ok)
}

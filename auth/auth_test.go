package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	InitAuth(nil, "test-signing-key", nil)
	m.Run()
}

func TestTokenRoundTrip(t *testing.T) {
	userID := "64a2f0c4b1d2e3f4a5b6c7d8"

	authToken, refreshToken, err := CreateTokens(userID)
	assert.NoError(t, err)
	assert.NotEmpty(t, authToken)
	assert.NotEmpty(t, refreshToken)
	assert.NotEqual(t, authToken, refreshToken)

	parsed, err := ParseToken(authToken)
	assert.NoError(t, err)
	assert.Equal(t, userID, parsed)

	parsed, err = ParseToken(refreshToken)
	assert.NoError(t, err)
	assert.Equal(t, userID, parsed)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	_, err := ParseToken("not.a.token")
	assert.Error(t, err)

	_, err = ParseToken("")
	assert.Error(t, err)
}

func TestParseTokenRejectsWrongKey(t *testing.T) {
	token, err := CreateAuthToken("someone")
	assert.NoError(t, err)

	saved := jwtSigningKey
	jwtSigningKey = "a-different-key"
	defer func() { jwtSigningKey = saved }()

	_, err = ParseToken(token)
	assert.Error(t, err)
}

func TestRefreshTokenMintsNewPair(t *testing.T) {
	userID := "64a2f0c4b1d2e3f4a5b6c7d8"

	_, refreshToken, err := CreateTokens(userID)
	assert.NoError(t, err)

	newAuth, newRefresh, err := RefreshToken(refreshToken)
	assert.NoError(t, err)

	parsed, err := ParseToken(newAuth)
	assert.NoError(t, err)
	assert.Equal(t, userID, parsed)

	parsed, err = ParseToken(newRefresh)
	assert.NoError(t, err)
	assert.Equal(t, userID, parsed)
}

func TestRefreshTokenRejectsInvalid(t *testing.T) {
	_, _, err := RefreshToken("bogus")
	assert.Error(t, err)
}

func TestSignUpValidation(t *testing.T) {
	ctx := context.Background()

	_, _, err := SignUp(ctx, "x", "user@example.com", "Test1234")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, _, err = SignUp(ctx, "Test User", "not-an-email", "Test1234")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, _, err = SignUp(ctx, "Test User", "user@example.com", "short")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, _, err = SignUp(ctx, "Test User", "user@example.com", "allletters")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestChangePasswordRejectsMalformedID(t *testing.T) {
	err := ChangePassword(context.Background(), "not-an-object-id", "old", "New12345")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDeleteAccountRejectsMalformedID(t *testing.T) {
	err := DeleteAccount(context.Background(), "not-an-object-id", "Test1234")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGenerateToken(t *testing.T) {
	token, err := generateToken()
	assert.NoError(t, err)
	assert.Len(t, token, 8)

	other, err := generateToken()
	assert.NoError(t, err)
	assert.NotEqual(t, token, other)
}

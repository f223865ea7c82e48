package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HakiMohamed/LocationsGuard/config"
	"github.com/HakiMohamed/LocationsGuard/internal/auth/domain"
	autherror "github.com/HakiMohamed/LocationsGuard/internal/errors"
)

func testTokenConfig() *config.Config {
	return &config.Config{
		AccessTokenSecret:       "access-secret-key-123",
		RefreshTokenSecret:      "refresh-secret-key-456",
		VerificationTokenSecret: "verification-secret-789",
		ResetTokenSecret:        "reset-secret-012",
		PhoneTokenSecret:        "phone-secret-345",
		AccessExpiryMin:         15,
		RefreshExpiryMin:        10080,
		VerificationExpiryMin:   1440,
		ResetExpiryMin:          30,
		PhoneExpiryMin:          10,
	}
}

func testUser() *domain.User {
	return &domain.User{
		ID:    "user-123",
		Email: "test@example.com",
		Role:  domain.RoleUser,
	}
}

func TestTokenService_GeneratePair(t *testing.T) {
	ts := NewTokenService(testTokenConfig())

	accessToken, refreshToken, err := ts.GeneratePair(testUser())

	require.NoError(t, err)
	assert.NotEmpty(t, accessToken)
	assert.NotEmpty(t, refreshToken)
	assert.NotEqual(t, accessToken, refreshToken)

	accessClaims, err := ts.Verify(PurposeAccess, accessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-123", accessClaims.Subject)
	assert.Equal(t, "test@example.com", accessClaims.Email)
	assert.Equal(t, domain.RoleUser, accessClaims.Role)
	assert.Equal(t, PurposeAccess, accessClaims.Purpose)

	refreshClaims, err := ts.Verify(PurposeRefresh, refreshToken)
	require.NoError(t, err)
	assert.Equal(t, "user-123", refreshClaims.Subject)
	assert.Equal(t, PurposeRefresh, refreshClaims.Purpose)
	// Role travels only in the access token.
	assert.Empty(t, refreshClaims.Role)
}

func TestTokenService_IssueAndVerify_AllPurposes(t *testing.T) {
	ts := NewTokenService(testTokenConfig())
	user := testUser()

	purposes := []Purpose{
		PurposeAccess,
		PurposeRefresh,
		PurposeEmailVerification,
		PurposePasswordReset,
		PurposePhoneVerification,
	}

	for _, purpose := range purposes {
		t.Run(string(purpose), func(t *testing.T) {
			token, err := ts.Issue(purpose, user)
			require.NoError(t, err)

			claims, err := ts.Verify(purpose, token)
			require.NoError(t, err)
			assert.Equal(t, purpose, claims.Purpose)
			assert.Equal(t, user.ID, claims.Subject)
		})
	}
}

func TestTokenService_Verify_PurposeMismatch(t *testing.T) {
	cfg := testTokenConfig()
	// Same secret for both purposes: only the purpose claim can tell the
	// tokens apart, and it must.
	cfg.RefreshTokenSecret = cfg.AccessTokenSecret
	ts := NewTokenService(cfg)

	accessToken, err := ts.Issue(PurposeAccess, testUser())
	require.NoError(t, err)

	_, err = ts.Verify(PurposeRefresh, accessToken)
	assert.ErrorIs(t, err, autherror.ErrPurposeMismatch)
}

func TestTokenService_Verify_WrongSecret(t *testing.T) {
	ts := NewTokenService(testTokenConfig())

	// An email-verification token checked as a refresh token fails on the
	// signature alone: the secrets differ.
	verificationToken, err := ts.Issue(PurposeEmailVerification, testUser())
	require.NoError(t, err)

	_, err = ts.Verify(PurposeRefresh, verificationToken)
	assert.ErrorIs(t, err, autherror.ErrTokenInvalid)
}

func TestTokenService_Verify_Expired(t *testing.T) {
	cfg := testTokenConfig()
	cfg.AccessExpiryMin = -1
	ts := NewTokenService(cfg)

	token, err := ts.Issue(PurposeAccess, testUser())
	require.NoError(t, err)

	_, err = ts.Verify(PurposeAccess, token)
	assert.ErrorIs(t, err, autherror.ErrTokenExpired)
}

func TestTokenService_Verify_Malformed(t *testing.T) {
	ts := NewTokenService(testTokenConfig())

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "garbage", token: "not-a-jwt"},
		{name: "truncated", token: "eyJhbGciOiJIUzI1NiJ9.broken"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ts.Verify(PurposeAccess, tt.token)
			assert.ErrorIs(t, err, autherror.ErrTokenInvalid)
		})
	}
}

func TestTokenService_Verify_RejectsNoneAlgorithm(t *testing.T) {
	ts := NewTokenService(testTokenConfig())

	claims := TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-123",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Purpose: PurposeAccess,
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = ts.Verify(PurposeAccess, unsigned)
	assert.ErrorIs(t, err, autherror.ErrTokenInvalid)
}

func TestTokenService_Issue_MissingSecret(t *testing.T) {
	cfg := testTokenConfig()
	cfg.PhoneTokenSecret = ""
	ts := NewTokenService(cfg)

	_, err := ts.Issue(PurposePhoneVerification, testUser())
	assert.ErrorIs(t, err, autherror.ErrMissingSigningSecret)
}

func TestTokenService_TTLs(t *testing.T) {
	ts := NewTokenService(testTokenConfig())

	assert.Equal(t, 15*time.Minute, ts.AccessTokenTTL())
	assert.Equal(t, 10080*time.Minute, ts.RefreshTokenTTL())
}

package service

//go:generate mockgen -destination=../../../mocks/mock_token_generator.go -package=mocks github.com/HakiMohamed/LocationsGuard/internal/auth/service TokenGenerator

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/HakiMohamed/LocationsGuard/config"
	"github.com/HakiMohamed/LocationsGuard/internal/auth/domain"
	autherror "github.com/HakiMohamed/LocationsGuard/internal/errors"
)

// Purpose tags every token with the single verification context it is valid
// for. Each purpose signs with its own secret, so a leaked refresh secret
// cannot forge access tokens and vice versa.
type Purpose string

const (
	PurposeAccess            Purpose = "access"
	PurposeRefresh           Purpose = "refresh"
	PurposeEmailVerification Purpose = "email-verification"
	PurposePasswordReset     Purpose = "password-reset"
	PurposePhoneVerification Purpose = "phone-verification"
)

type TokenGenerator interface {
	GeneratePair(user *domain.User) (accessToken, refreshToken string, err error)
	Issue(purpose Purpose, user *domain.User) (string, error)
	Verify(purpose Purpose, tokenString string) (*TokenClaims, error)
	AccessTokenTTL() time.Duration
	RefreshTokenTTL() time.Duration
}

type TokenClaims struct {
	jwt.RegisteredClaims
	Email   string  `json:"email"`
	Role    string  `json:"role,omitempty"`
	Purpose Purpose `json:"purpose"`
}

type TokenService struct {
	secrets map[Purpose]string
	ttls    map[Purpose]time.Duration
}

func NewTokenService(cfg *config.Config) *TokenService {
	return &TokenService{
		secrets: map[Purpose]string{
			PurposeAccess:            cfg.AccessTokenSecret,
			PurposeRefresh:           cfg.RefreshTokenSecret,
			PurposeEmailVerification: cfg.VerificationTokenSecret,
			PurposePasswordReset:     cfg.ResetTokenSecret,
			PurposePhoneVerification: cfg.PhoneTokenSecret,
		},
		ttls: map[Purpose]time.Duration{
			PurposeAccess:            time.Duration(cfg.AccessExpiryMin) * time.Minute,
			PurposeRefresh:           time.Duration(cfg.RefreshExpiryMin) * time.Minute,
			PurposeEmailVerification: time.Duration(cfg.VerificationExpiryMin) * time.Minute,
			PurposePasswordReset:     time.Duration(cfg.ResetExpiryMin) * time.Minute,
			PurposePhoneVerification: time.Duration(cfg.PhoneExpiryMin) * time.Minute,
		},
	}
}

// GeneratePair mints the access+refresh tokens returned on login and refresh.
// Role travels only in the access token; the refresh token carries identity
// alone, matching what the refresh path needs.
func (ts *TokenService) GeneratePair(user *domain.User) (string, string, error) {
	accessToken, err := ts.Issue(PurposeAccess, user)
	if err != nil {
		return "", "", err
	}

	refreshToken, err := ts.Issue(PurposeRefresh, user)
	if err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

func (ts *TokenService) Issue(purpose Purpose, user *domain.User) (string, error) {
	secret, ok := ts.secrets[purpose]
	if !ok || secret == "" {
		return "", fmt.Errorf("issue %s token: %w", purpose, autherror.ErrMissingSigningSecret)
	}

	now := time.Now()
	claims := TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ts.ttls[purpose])),
		},
		Email:   user.Email,
		Purpose: purpose,
	}
	if purpose == PurposeAccess {
		claims.Role = user.Role
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// Verify parses the token against the purpose's secret and checks that the
// embedded purpose claim matches the context it is presented to. Expiry is
// evaluated against wall-clock time now, not issuance.
func (ts *TokenService) Verify(purpose Purpose, tokenString string) (*TokenClaims, error) {
	secret, ok := ts.secrets[purpose]
	if !ok || secret == "" {
		return nil, fmt.Errorf("verify %s token: %w", purpose, autherror.ErrMissingSigningSecret)
	}

	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, autherror.ErrTokenExpired
		}
		return nil, autherror.ErrTokenInvalid
	}

	if !token.Valid {
		return nil, autherror.ErrTokenInvalid
	}

	if claims.Purpose != purpose {
		return nil, autherror.ErrPurposeMismatch
	}

	return claims, nil
}

func (ts *TokenService) AccessTokenTTL() time.Duration {
	return ts.ttls[PurposeAccess]
}

func (ts *TokenService) RefreshTokenTTL() time.Duration {
	return ts.ttls[PurposeRefresh]
}

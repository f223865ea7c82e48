package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/HakiMohamed/LocationsGuard/config"
	"github.com/HakiMohamed/LocationsGuard/internal/auth/domain"
	"github.com/HakiMohamed/LocationsGuard/internal/auth/dto"
	"github.com/HakiMohamed/LocationsGuard/internal/auth/fingerprint"
	"github.com/HakiMohamed/LocationsGuard/internal/auth/handler"
	"github.com/HakiMohamed/LocationsGuard/internal/auth/revocation"
	"github.com/HakiMohamed/LocationsGuard/internal/auth/service"
	autherror "github.com/HakiMohamed/LocationsGuard/internal/errors"
	"github.com/HakiMohamed/LocationsGuard/internal/mocks"
)

const testAccessToken = "access-token"

type handlerFixture struct {
	repo     *mocks.MockUserRepository
	tokens   *mocks.MockTokenGenerator
	mailer   *mocks.MockMailer
	sms      *mocks.MockSmsSender
	registry *revocation.Registry
	app      *fiber.App
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	repo := mocks.NewMockUserRepository(ctrl)
	tokens := mocks.NewMockTokenGenerator(ctrl)
	mailer := mocks.NewMockMailer(ctrl)
	sms := mocks.NewMockSmsSender(ctrl)
	tokens.EXPECT().RefreshTokenTTL().Return(7 * 24 * time.Hour).AnyTimes()

	registry := revocation.NewRegistry(time.Minute)
	t.Cleanup(registry.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{BcryptCost: bcrypt.MinCost, PhoneExpiryMin: 10}

	devices := service.NewDeviceService(repo, fingerprint.NewEngine())
	users := service.NewUserService(repo, tokens, devices, registry, mailer, logger, cfg)
	verification := service.NewVerificationService(repo, tokens, mailer, sms, logger, cfg)

	app := fiber.New()
	handler.RegisterRoutes(app, handler.NewAuthHandler(users, devices, verification, tokens), tokens, registry)

	return &handlerFixture{
		repo:     repo,
		tokens:   tokens,
		mailer:   mailer,
		sms:      sms,
		registry: registry,
		app:      app,
	}
}

func (f *handlerFixture) expectAuthenticated(userID string) {
	f.tokens.EXPECT().Verify(service.PurposeAccess, testAccessToken).Return(&service.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: userID},
		Email:            "alice@x.com",
		Role:             domain.RoleUser,
		Purpose:          service.PurposeAccess,
	}, nil)
}

func jsonRequest(method, target string, payload any) *http.Request {
	var body bytes.Buffer
	if payload != nil {
		_ = json.NewEncoder(&body).Encode(payload)
	}

	req := httptest.NewRequest(method, target, &body)
	req.Header.Set("Content-Type", "application/json")

	return req
}

func authedRequest(method, target string, payload any) *http.Request {
	req := jsonRequest(method, target, payload)
	req.Header.Set("Authorization", "Bearer "+testAccessToken)

	return req
}

func refreshCookie(t *testing.T, resp *http.Response) *http.Cookie {
	t.Helper()

	for _, cookie := range resp.Cookies() {
		if cookie.Name == "refresh_token" {
			return cookie
		}
	}

	return nil
}

func hashedUser(t *testing.T, password string) *domain.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	return &domain.User{
		ID:              "user-123",
		Email:           "alice@x.com",
		PasswordHash:    string(hash),
		Role:            domain.RoleUser,
		IsEmailVerified: true,
	}
}

func TestRegisterEndpoint(t *testing.T) {
	f := newHandlerFixture(t)

	t.Run("success", func(t *testing.T) {
		f.repo.EXPECT().GetByEmail(gomock.Any(), "alice@x.com").Return(nil, nil)
		f.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
		f.tokens.EXPECT().Issue(service.PurposeEmailVerification, gomock.Any()).Return("verify-token", nil)
		f.mailer.EXPECT().SendEmailVerification(gomock.Any(), gomock.Any(), "verify-token").Return(nil)

		resp, err := f.app.Test(jsonRequest("POST", "/auth/register",
			dto.RegisterInput{Email: "alice@x.com", Password: "Secret123!"}))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	})

	t.Run("missing fields", func(t *testing.T) {
		resp, err := f.app.Test(jsonRequest("POST", "/auth/register", dto.RegisterInput{Email: "alice@x.com"}))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("duplicate email reports field", func(t *testing.T) {
		f.repo.EXPECT().GetByEmail(gomock.Any(), "alice@x.com").
			Return(&domain.User{ID: "existing"}, nil)

		resp, err := f.app.Test(jsonRequest("POST", "/auth/register",
			dto.RegisterInput{Email: "alice@x.com", Password: "Secret123!"}))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

		var body map[string]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "email", body["field"])
	})
}

func TestLoginEndpoint(t *testing.T) {
	f := newHandlerFixture(t)

	t.Run("success sets refresh cookie", func(t *testing.T) {
		user := hashedUser(t, "Secret123!")

		f.repo.EXPECT().GetByEmail(gomock.Any(), "alice@x.com").Return(user, nil)
		f.tokens.EXPECT().GeneratePair(user).Return("new-access", "new-refresh", nil)
		f.repo.EXPECT().UpsertDevice(gomock.Any(), user.ID, gomock.Any()).
			DoAndReturn(func(_ any, _ string, d *domain.Device) (*domain.Device, bool, error) {
				reconciled := *d
				reconciled.IsActive = true
				return &reconciled, false, nil
			})
		f.repo.EXPECT().UpdateLastLogin(gomock.Any(), user.ID, gomock.Any()).Return(nil)

		resp, err := f.app.Test(jsonRequest("POST", "/auth/login",
			dto.LoginInput{Email: "alice@x.com", Password: "Secret123!"}))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		cookie := refreshCookie(t, resp)
		require.NotNil(t, cookie)
		assert.Equal(t, "new-refresh", cookie.Value)
		assert.True(t, cookie.HttpOnly)
		assert.True(t, cookie.Secure)

		var body map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "new-access", body["access_token"])
		// The refresh token travels only in the cookie.
		assert.NotContains(t, body, "refresh_token")
	})

	t.Run("wrong password", func(t *testing.T) {
		f.repo.EXPECT().GetByEmail(gomock.Any(), "alice@x.com").Return(hashedUser(t, "Secret123!"), nil)

		resp, err := f.app.Test(jsonRequest("POST", "/auth/login",
			dto.LoginInput{Email: "alice@x.com", Password: "wrong"}))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("unverified email", func(t *testing.T) {
		user := hashedUser(t, "Secret123!")
		user.IsEmailVerified = false
		f.repo.EXPECT().GetByEmail(gomock.Any(), "alice@x.com").Return(user, nil)

		resp, err := f.app.Test(jsonRequest("POST", "/auth/login",
			dto.LoginInput{Email: "alice@x.com", Password: "Secret123!"}))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})
}

func TestRefreshEndpoint(t *testing.T) {
	f := newHandlerFixture(t)

	t.Run("rotates the cookie", func(t *testing.T) {
		user := hashedUser(t, "Secret123!")

		f.tokens.EXPECT().Verify(service.PurposeRefresh, "old-refresh").Return(&service.TokenClaims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: user.ID},
			Purpose:          service.PurposeRefresh,
		}, nil)
		f.repo.EXPECT().GetByID(gomock.Any(), user.ID).Return(user, nil)
		f.tokens.EXPECT().GeneratePair(user).Return("new-access", "new-refresh", nil)
		f.repo.EXPECT().RotateRefreshToken(gomock.Any(), user.ID, "old-refresh", "new-refresh", gomock.Any()).
			Return(&domain.Device{DeviceID: "device-1", IsActive: true}, nil)

		req := jsonRequest("POST", "/auth/refresh", nil)
		req.AddCookie(&http.Cookie{Name: "refresh_token", Value: "old-refresh"})

		resp, err := f.app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		cookie := refreshCookie(t, resp)
		require.NotNil(t, cookie)
		assert.Equal(t, "new-refresh", cookie.Value)
	})

	t.Run("missing cookie", func(t *testing.T) {
		resp, err := f.app.Test(jsonRequest("POST", "/auth/refresh", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("stale token after concurrent rotation", func(t *testing.T) {
		user := hashedUser(t, "Secret123!")

		f.tokens.EXPECT().Verify(service.PurposeRefresh, "stale-refresh").Return(&service.TokenClaims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: user.ID},
			Purpose:          service.PurposeRefresh,
		}, nil)
		f.repo.EXPECT().GetByID(gomock.Any(), user.ID).Return(user, nil)
		f.tokens.EXPECT().GeneratePair(user).Return("new-access", "new-refresh", nil)
		f.repo.EXPECT().RotateRefreshToken(gomock.Any(), user.ID, "stale-refresh", "new-refresh", gomock.Any()).
			Return(nil, nil)

		req := jsonRequest("POST", "/auth/refresh", nil)
		req.AddCookie(&http.Cookie{Name: "refresh_token", Value: "stale-refresh"})

		resp, err := f.app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})
}

func TestLogoutEndpoint(t *testing.T) {
	f := newHandlerFixture(t)

	t.Run("removes device and blacklists the token", func(t *testing.T) {
		f.expectAuthenticated("user-123")
		f.repo.EXPECT().GetActiveDeviceByFingerprint(gomock.Any(), "user-123", gomock.Any()).
			Return(&domain.Device{DeviceID: "device-1"}, nil)
		f.repo.EXPECT().RemoveDevice(gomock.Any(), "user-123", "device-1").Return(nil)

		resp, err := f.app.Test(authedRequest("POST", "/auth/logout", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.True(t, f.registry.IsRevoked(testAccessToken))

		cookie := refreshCookie(t, resp)
		require.NotNil(t, cookie)
		assert.Empty(t, cookie.Value)
	})

	t.Run("revoked token is rejected", func(t *testing.T) {
		// Still a valid signature, but the registry now knows it.
		f.expectAuthenticated("user-123")

		resp, err := f.app.Test(authedRequest("POST", "/auth/logout", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("missing bearer token", func(t *testing.T) {
		resp, err := f.app.Test(jsonRequest("POST", "/auth/logout", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})
}

func TestDeviceEndpoints(t *testing.T) {
	f := newHandlerFixture(t)

	t.Run("list devices", func(t *testing.T) {
		f.expectAuthenticated("user-123")
		f.repo.EXPECT().ListDevices(gomock.Any(), "user-123").Return([]domain.Device{
			{DeviceID: "d-1", Name: "MacBook", IsActive: true},
			{DeviceID: "d-2", Name: "iPhone"},
		}, nil)

		resp, err := f.app.Test(authedRequest("GET", "/auth/devices", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var body dto.DeviceListOutput
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, 2, body.Total)
		assert.Equal(t, 1, body.Active)
	})

	t.Run("deactivate one", func(t *testing.T) {
		f.expectAuthenticated("user-123")
		f.repo.EXPECT().DeactivateDevice(gomock.Any(), "user-123", "d-1").Return(nil)

		resp, err := f.app.Test(authedRequest("DELETE", "/auth/devices/d-1", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	})

	t.Run("deactivate unknown device", func(t *testing.T) {
		f.expectAuthenticated("user-123")
		f.repo.EXPECT().DeactivateDevice(gomock.Any(), "user-123", "d-404").
			Return(autherror.ErrDeviceNotFound)

		resp, err := f.app.Test(authedRequest("DELETE", "/auth/devices/d-404", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})

	t.Run("deactivate already inactive device", func(t *testing.T) {
		f.expectAuthenticated("user-123")
		f.repo.EXPECT().DeactivateDevice(gomock.Any(), "user-123", "d-1").
			Return(autherror.ErrDeviceDeactivationFailed)

		resp, err := f.app.Test(authedRequest("DELETE", "/auth/devices/d-1", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	})

	t.Run("deactivate all except current", func(t *testing.T) {
		f.expectAuthenticated("user-123")
		f.repo.EXPECT().DeactivateAllDevices(gomock.Any(), "user-123", gomock.Not("")).Return(nil)

		resp, err := f.app.Test(authedRequest("DELETE", "/auth/devices?exceptCurrent=true", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	})
}

func TestVerifyEmailEndpoint(t *testing.T) {
	f := newHandlerFixture(t)

	t.Run("success", func(t *testing.T) {
		f.tokens.EXPECT().Verify(service.PurposeEmailVerification, "verify-token").
			Return(&service.TokenClaims{
				RegisteredClaims: jwt.RegisteredClaims{Subject: "user-123"},
				Email:            "alice@x.com",
				Purpose:          service.PurposeEmailVerification,
			}, nil)
		f.repo.EXPECT().MarkEmailVerified(gomock.Any(), "user-123", "alice@x.com").Return(true, nil)

		resp, err := f.app.Test(jsonRequest("GET", "/auth/verify-email?token=verify-token", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("missing token", func(t *testing.T) {
		resp, err := f.app.Test(jsonRequest("GET", "/auth/verify-email", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("expired token", func(t *testing.T) {
		f.tokens.EXPECT().Verify(service.PurposeEmailVerification, "expired").
			Return(nil, autherror.ErrTokenExpired)

		resp, err := f.app.Test(jsonRequest("GET", "/auth/verify-email?token=expired", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}

func TestPasswordResetEndpoints(t *testing.T) {
	f := newHandlerFixture(t)

	t.Run("request is generic for unknown email", func(t *testing.T) {
		f.repo.EXPECT().GetByEmail(gomock.Any(), "nobody@x.com").Return(nil, nil)

		resp, err := f.app.Test(jsonRequest("POST", "/auth/request-password-reset",
			dto.RequestPasswordResetInput{Email: "nobody@x.com"}))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("reset succeeds", func(t *testing.T) {
		f.tokens.EXPECT().Verify(service.PurposePasswordReset, "reset-token").
			Return(&service.TokenClaims{
				RegisteredClaims: jwt.RegisteredClaims{Subject: "user-123"},
				Email:            "alice@x.com",
				Purpose:          service.PurposePasswordReset,
			}, nil)
		f.repo.EXPECT().ResetPassword(gomock.Any(), "user-123", "alice@x.com", gomock.Any()).Return(nil)

		resp, err := f.app.Test(jsonRequest("POST", "/auth/reset-password",
			dto.ResetPasswordInput{Token: "reset-token", NewPassword: "NewSecret456!"}))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("reset without token", func(t *testing.T) {
		resp, err := f.app.Test(jsonRequest("POST", "/auth/reset-password",
			dto.ResetPasswordInput{NewPassword: "NewSecret456!"}))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}

func TestPhoneVerificationEndpoints(t *testing.T) {
	f := newHandlerFixture(t)

	t.Run("initiate", func(t *testing.T) {
		f.expectAuthenticated("user-123")
		f.repo.EXPECT().GetByID(gomock.Any(), "user-123").Return(&domain.User{ID: "user-123"}, nil)
		f.repo.EXPECT().SetPhoneVerification(gomock.Any(), "user-123", "+212600000001", gomock.Any(), gomock.Any()).
			Return(nil)
		f.sms.EXPECT().SendVerificationCode(gomock.Any(), "+212600000001", gomock.Any()).Return(nil)

		resp, err := f.app.Test(authedRequest("POST", "/auth/verify-phone/initiate",
			dto.InitiatePhoneVerificationInput{PhoneNumber: "+212600000001"}))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("verify with wrong code", func(t *testing.T) {
		f.expectAuthenticated("user-123")
		f.repo.EXPECT().ConsumePhoneVerification(gomock.Any(), "user-123", "000000").Return(false, nil)

		resp, err := f.app.Test(authedRequest("POST", "/auth/verify-phone/verify",
			dto.VerifyPhoneInput{Code: "000000"}))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}

func TestGetUserEndpoint(t *testing.T) {
	f := newHandlerFixture(t)

	f.expectAuthenticated("user-123")
	f.repo.EXPECT().GetByID(gomock.Any(), "user-123").Return(&domain.User{
		ID:              "user-123",
		Email:           "alice@x.com",
		Role:            domain.RoleUser,
		IsEmailVerified: true,
	}, nil)

	resp, err := f.app.Test(authedRequest("GET", "/auth/user", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body dto.UserOutput
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "alice@x.com", body.Email)
	assert.True(t, body.IsEmailVerified)
}

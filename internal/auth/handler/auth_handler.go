package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/HakiMohamed/LocationsGuard/internal/auth/dto"
	"github.com/HakiMohamed/LocationsGuard/internal/auth/fingerprint"
	"github.com/HakiMohamed/LocationsGuard/internal/auth/service"
	autherror "github.com/HakiMohamed/LocationsGuard/internal/errors"
)

const refreshCookieName = "refresh_token"

type AuthHandler struct {
	userService         *service.UserService
	deviceService       *service.DeviceService
	verificationService *service.VerificationService
	tokenService        service.TokenGenerator
	refreshCookieMaxAge int
}

func NewAuthHandler(userService *service.UserService, deviceService *service.DeviceService,
	verificationService *service.VerificationService, tokenService service.TokenGenerator) *AuthHandler {
	return &AuthHandler{
		userService:         userService,
		deviceService:       deviceService,
		verificationService: verificationService,
		tokenService:        tokenService,
		refreshCookieMaxAge: int(tokenService.RefreshTokenTTL().Seconds()),
	}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var input dto.RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "invalid input")
	}

	if input.Email == "" || input.Password == "" {
		return badRequest(c, "email and password are required")
	}

	if _, err := h.userService.Register(c.Context(), input); err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Registration successful. Please check your email to verify your account.",
	})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input dto.LoginInput
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "invalid input")
	}

	input.Signals = requestSignals(c)

	out, err := h.userService.Login(c.Context(), input)
	if err != nil {
		return respondError(c, err)
	}

	h.setRefreshCookie(c, out.RefreshToken)

	return c.Status(fiber.StatusOK).JSON(out)
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	refreshToken := c.Cookies(refreshCookieName)

	out, err := h.userService.Refresh(c.Context(), refreshToken, requestSignals(c))
	if err != nil {
		return respondError(c, err)
	}

	h.setRefreshCookie(c, out.RefreshToken)

	return c.Status(fiber.StatusOK).JSON(out)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	userID := c.Locals(localsUserID).(string)
	accessToken := c.Locals(localsAccessToken).(string)

	if err := h.userService.Logout(c.Context(), userID, accessToken, requestSignals(c)); err != nil {
		return respondError(c, err)
	}

	h.clearRefreshCookie(c)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Logged out successfully and device removed",
	})
}

func (h *AuthHandler) LogoutAllDevices(c *fiber.Ctx) error {
	userID := c.Locals(localsUserID).(string)
	exceptCurrent := c.QueryBool("exceptCurrent")

	err := h.userService.LogoutAllDevices(c.Context(), userID, exceptCurrent, requestSignals(c))
	if err != nil {
		return respondError(c, err)
	}

	if !exceptCurrent {
		h.clearRefreshCookie(c)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Logged out from all devices",
	})
}

func (h *AuthHandler) GetDevices(c *fiber.Ctx) error {
	userID := c.Locals(localsUserID).(string)

	out, err := h.deviceService.List(c.Context(), userID)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(out)
}

func (h *AuthHandler) DeactivateDevice(c *fiber.Ctx) error {
	userID := c.Locals(localsUserID).(string)
	deviceID := c.Params("deviceId")

	if err := h.deviceService.Deactivate(c.Context(), userID, deviceID); err != nil {
		return respondError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AuthHandler) DeactivateAllDevices(c *fiber.Ctx) error {
	userID := c.Locals(localsUserID).(string)
	exceptCurrent := c.QueryBool("exceptCurrent")

	err := h.userService.LogoutAllDevices(c.Context(), userID, exceptCurrent, requestSignals(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AuthHandler) VerifyEmail(c *fiber.Ctx) error {
	token := c.Query("token")
	if token == "" {
		return badRequest(c, "token is required")
	}

	if err := h.verificationService.VerifyEmail(c.Context(), token); err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Email verified successfully",
	})
}

func (h *AuthHandler) ResendVerification(c *fiber.Ctx) error {
	var input dto.ResendVerificationInput
	if err := c.BodyParser(&input); err != nil || input.Email == "" {
		return badRequest(c, "email is required")
	}

	if err := h.verificationService.ResendVerification(c.Context(), input.Email); err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "If the email exists and is not verified, a new verification link will be sent.",
	})
}

func (h *AuthHandler) RequestPasswordReset(c *fiber.Ctx) error {
	var input dto.RequestPasswordResetInput
	if err := c.BodyParser(&input); err != nil || input.Email == "" {
		return badRequest(c, "email is required")
	}

	if err := h.verificationService.RequestPasswordReset(c.Context(), input.Email); err != nil {
		return respondError(c, err)
	}

	// Same answer whether or not the account exists.
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "If the email exists, a password reset link will be sent.",
	})
}

func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var input dto.ResetPasswordInput
	if err := c.BodyParser(&input); err != nil || input.Token == "" || input.NewPassword == "" {
		return badRequest(c, "token and newPassword are required")
	}

	if err := h.verificationService.ResetPassword(c.Context(), input.Token, input.NewPassword); err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Password reset successful",
	})
}

func (h *AuthHandler) InitiatePhoneVerification(c *fiber.Ctx) error {
	userID := c.Locals(localsUserID).(string)

	var input dto.InitiatePhoneVerificationInput
	if err := c.BodyParser(&input); err != nil || input.PhoneNumber == "" {
		return badRequest(c, "phoneNumber is required")
	}

	err := h.verificationService.InitiatePhoneVerification(c.Context(), userID, input.PhoneNumber)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Verification code sent successfully",
	})
}

func (h *AuthHandler) VerifyPhone(c *fiber.Ctx) error {
	userID := c.Locals(localsUserID).(string)

	var input dto.VerifyPhoneInput
	if err := c.BodyParser(&input); err != nil || input.Code == "" {
		return badRequest(c, "code is required")
	}

	if err := h.verificationService.VerifyPhone(c.Context(), userID, input.Code); err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Phone number verified successfully",
	})
}

func (h *AuthHandler) GetUser(c *fiber.Ctx) error {
	userID := c.Locals(localsUserID).(string)

	out, err := h.userService.GetUserByID(c.Context(), userID)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(out)
}

func (h *AuthHandler) setRefreshCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   h.refreshCookieMaxAge,
		HTTPOnly: true,
		Secure:   true,
		SameSite: fiber.CookieSameSiteNoneMode,
	})
}

func (h *AuthHandler) clearRefreshCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   true,
		SameSite: fiber.CookieSameSiteNoneMode,
	})
}

func requestSignals(c *fiber.Ctx) fingerprint.Signals {
	return fingerprint.Signals{
		UserAgent:    c.Get(fiber.HeaderUserAgent),
		RemoteIP:     c.IP(),
		ForwardedFor: c.Get(fiber.HeaderXForwardedFor),
	}
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": message})
}

// respondError maps domain errors onto status codes. Unknown errors come out
// as an opaque 500: storage detail never reaches the caller.
func respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, autherror.ErrEmailAlreadyInUse):
		return conflict(c, err, "email")
	case errors.Is(err, autherror.ErrPhoneAlreadyInUse):
		return conflict(c, err, "phoneNumber")
	case errors.Is(err, autherror.ErrInvalidCredentials),
		errors.Is(err, autherror.ErrEmailNotVerified),
		errors.Is(err, autherror.ErrMissingRefreshToken),
		errors.Is(err, autherror.ErrInvalidSession),
		errors.Is(err, autherror.ErrTokenRevoked),
		errors.Is(err, autherror.ErrTokenExpired),
		errors.Is(err, autherror.ErrTokenInvalid),
		errors.Is(err, autherror.ErrPurposeMismatch):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, autherror.ErrInvalidOrExpiredToken),
		errors.Is(err, autherror.ErrInvalidOrExpiredCode),
		errors.Is(err, autherror.ErrPhoneAlreadyVerified):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, autherror.ErrUserNotFound),
		errors.Is(err, autherror.ErrDeviceNotFound),
		errors.Is(err, autherror.ErrNoActiveDeviceFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, autherror.ErrDeviceDeactivationFailed):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}
}

func conflict(c *fiber.Ctx, err error, field string) error {
	return c.Status(fiber.StatusConflict).JSON(fiber.Map{
		"error": err.Error(),
		"field": field,
	})
}

func bearerToken(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return ""
	}

	token, found := strings.CutPrefix(header, "Bearer ")
	if !found {
		return ""
	}

	return strings.TrimSpace(token)
}

package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/HakiMohamed/LocationsGuard/config"
	"github.com/HakiMohamed/LocationsGuard/internal/auth/domain"
	"github.com/HakiMohamed/LocationsGuard/internal/auth/dto"
	"github.com/HakiMohamed/LocationsGuard/internal/auth/fingerprint"
	"github.com/HakiMohamed/LocationsGuard/internal/auth/revocation"
	autherror "github.com/HakiMohamed/LocationsGuard/internal/errors"
)

// UserService orchestrates the register/login/refresh/logout session flows on
// top of the token, device and fingerprint components.
type UserService struct {
	repo         domain.UserRepository
	tokenService TokenGenerator
	devices      *DeviceService
	registry     *revocation.Registry
	mailer       domain.Mailer
	logger       *slog.Logger
	bcryptCost   int
}

func NewUserService(repo domain.UserRepository, tokenService TokenGenerator, devices *DeviceService,
	registry *revocation.Registry, mailer domain.Mailer, logger *slog.Logger, cfg *config.Config) *UserService {
	return &UserService{
		repo:         repo,
		tokenService: tokenService,
		devices:      devices,
		registry:     registry,
		mailer:       mailer,
		logger:       logger,
		bcryptCost:   cfg.BcryptCost,
	}
}

// Register creates an unverified account and mails a verification link.
// Registration never logs the user in. When the verification mail cannot be
// dispatched the created record is rolled back so the address is not left
// claimed by an account its owner can never verify.
func (s *UserService) Register(ctx context.Context, input dto.RegisterInput) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		s.logger.Error("register: lookup failed", "error", err)
		return nil, autherror.ErrInternal
	}
	if existing != nil {
		return nil, autherror.ErrEmailAlreadyInUse
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.bcryptCost)
	if err != nil {
		s.logger.Error("register: hashing failed", "error", err)
		return nil, autherror.ErrInternal
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hashedPassword),
		Role:         domain.RoleUser,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		PhoneNumber:  input.PhoneNumber,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, autherror.ErrEmailAlreadyInUse) || errors.Is(err, autherror.ErrPhoneAlreadyInUse) {
			return nil, err
		}
		s.logger.Error("register: create failed", "error", err)
		return nil, autherror.ErrInternal
	}

	verificationToken, err := s.tokenService.Issue(PurposeEmailVerification, user)
	if err != nil {
		s.logger.Error("register: token issue failed", "error", err)
		s.rollbackRegistration(ctx, user.ID)
		return nil, autherror.ErrInternal
	}

	if err := s.mailer.SendEmailVerification(ctx, user, verificationToken); err != nil {
		s.logger.Error("register: verification mail failed", "email", user.Email, "error", err)
		s.rollbackRegistration(ctx, user.ID)
		return nil, autherror.ErrInternal
	}

	return user, nil
}

func (s *UserService) rollbackRegistration(ctx context.Context, userID string) {
	if err := s.repo.Delete(ctx, userID); err != nil {
		s.logger.Error("register: rollback failed", "userId", userID, "error", err)
	}
}

// Login validates credentials, reconciles the caller's device and mints a
// fresh token pair. A missing account and a wrong password produce the same
// error so the endpoint cannot be used to enumerate accounts.
func (s *UserService) Login(ctx context.Context, input dto.LoginInput) (*dto.LoginOutput, error) {
	user, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(input.Email)))
	if err != nil {
		s.logger.Error("login: lookup failed", "error", err)
		return nil, autherror.ErrInternal
	}

	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)) != nil {
		return nil, autherror.ErrInvalidCredentials
	}

	// Reject before any device write: an unverified login must leave no trace.
	if !user.IsEmailVerified {
		return nil, autherror.ErrEmailNotVerified
	}

	accessToken, refreshToken, err := s.tokenService.GeneratePair(user)
	if err != nil {
		s.logger.Error("login: token generation failed", "error", err)
		return nil, autherror.ErrInternal
	}

	device, created, err := s.devices.Reconcile(ctx, user.ID, input.Signals, refreshToken)
	if err != nil {
		s.logger.Error("login: device reconciliation failed", "error", err)
		return nil, autherror.ErrInternal
	}

	if err := s.repo.UpdateLastLogin(ctx, user.ID, device.IP); err != nil {
		s.logger.Error("login: last-login update failed", "error", err)
		return nil, autherror.ErrInternal
	}

	if created {
		// Best effort: a failed notification never fails the login.
		if err := s.mailer.SendNewDeviceNotification(ctx, user, &domain.Device{
			Name: device.Name, Type: device.Type, LastIP: device.IP, LastLogin: device.LastLogin,
		}); err != nil {
			s.logger.Warn("login: new-device mail failed", "email", user.Email, "error", err)
		}
	}

	return &dto.LoginOutput{
		User:         toUserOutput(user),
		AccessToken:  accessToken,
		Device:       *device,
		RefreshToken: refreshToken,
	}, nil
}

// Refresh rotates the token pair bound to the caller's device. The device
// rebind is a compare-and-swap on the presented refresh token: of two
// concurrent calls with the same token, exactly one succeeds and the other
// observes an invalid session.
func (s *UserService) Refresh(ctx context.Context, refreshToken string, signals fingerprint.Signals) (*dto.RefreshOutput, error) {
	if refreshToken == "" {
		return nil, autherror.ErrMissingRefreshToken
	}

	claims, err := s.tokenService.Verify(PurposeRefresh, refreshToken)
	if err != nil {
		return nil, autherror.ErrInvalidSession
	}

	user, err := s.repo.GetByID(ctx, claims.Subject)
	if err != nil {
		return nil, autherror.ErrInvalidSession
	}

	accessToken, newRefreshToken, err := s.tokenService.GeneratePair(user)
	if err != nil {
		s.logger.Error("refresh: token generation failed", "error", err)
		return nil, autherror.ErrInternal
	}

	ip := s.devices.fingerprints.Describe(signals).IP

	device, err := s.repo.RotateRefreshToken(ctx, user.ID, refreshToken, newRefreshToken, ip)
	if err != nil {
		s.logger.Error("refresh: rotation failed", "error", err)
		return nil, autherror.ErrInternal
	}
	if device == nil {
		// The presented token is no longer the latest one for any device:
		// either it was already rotated by a concurrent call or the device
		// was logged out.
		return nil, autherror.ErrInvalidSession
	}

	return &dto.RefreshOutput{
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
	}, nil
}

// Logout removes the caller's current device record entirely and blacklists
// the presented access token for its remaining natural lifetime.
func (s *UserService) Logout(ctx context.Context, userID, accessToken string, signals fingerprint.Signals) error {
	device, err := s.devices.Current(ctx, userID, signals)
	if err != nil {
		s.logger.Error("logout: device lookup failed", "error", err)
		return autherror.ErrInternal
	}
	if device == nil {
		return autherror.ErrNoActiveDeviceFound
	}

	if err := s.devices.Remove(ctx, userID, device.DeviceID); err != nil {
		if errors.Is(err, autherror.ErrDeviceNotFound) {
			return autherror.ErrNoActiveDeviceFound
		}
		s.logger.Error("logout: device removal failed", "error", err)
		return autherror.ErrInternal
	}

	s.registry.Revoke(accessToken)

	return nil
}

// LogoutAllDevices deactivates every device, optionally sparing the caller's
// current one.
func (s *UserService) LogoutAllDevices(ctx context.Context, userID string, exceptCurrent bool, signals fingerprint.Signals) error {
	var except *fingerprint.Signals
	if exceptCurrent {
		except = &signals
	}

	if err := s.devices.DeactivateAll(ctx, userID, except); err != nil {
		s.logger.Error("logout all: deactivation failed", "error", err)
		return autherror.ErrInternal
	}

	return nil
}

func (s *UserService) GetUserByID(ctx context.Context, userID string) (*dto.UserOutput, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, autherror.ErrUserNotFound) {
			return nil, err
		}
		s.logger.Error("get user: lookup failed", "error", err)
		return nil, autherror.ErrInternal
	}

	out := toUserOutput(user)

	return &out, nil
}

func toUserOutput(user *domain.User) dto.UserOutput {
	return dto.UserOutput{
		ID:              user.ID,
		Email:           user.Email,
		FirstName:       user.FirstName,
		LastName:        user.LastName,
		Role:            user.Role,
		PhoneNumber:     user.PhoneNumber,
		IsEmailVerified: user.IsEmailVerified,
		IsPhoneVerified: user.IsPhoneVerified,
	}
}

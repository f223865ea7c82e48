package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/HakiMohamed/LocationsGuard/config"
	"github.com/HakiMohamed/LocationsGuard/internal/auth/domain"
	autherror "github.com/HakiMohamed/LocationsGuard/internal/errors"
)

const phoneCodeLength = 6

// VerificationService implements the one-time-token flows: email
// verification, password reset and phone verification codes.
type VerificationService struct {
	repo         domain.UserRepository
	tokenService TokenGenerator
	mailer       domain.Mailer
	sms          domain.SmsSender
	logger       *slog.Logger
	bcryptCost   int
	phoneCodeTTL time.Duration
}

func NewVerificationService(repo domain.UserRepository, tokenService TokenGenerator,
	mailer domain.Mailer, sms domain.SmsSender, logger *slog.Logger, cfg *config.Config) *VerificationService {
	return &VerificationService{
		repo:         repo,
		tokenService: tokenService,
		mailer:       mailer,
		sms:          sms,
		logger:       logger,
		bcryptCost:   cfg.BcryptCost,
		phoneCodeTTL: time.Duration(cfg.PhoneExpiryMin) * time.Minute,
	}
}

// VerifyEmail consumes an email-verification token. The conditional flip in
// the store makes a second use of the same token fail: the account is already
// verified by then, so nothing matches.
func (s *VerificationService) VerifyEmail(ctx context.Context, token string) error {
	claims, err := s.tokenService.Verify(PurposeEmailVerification, token)
	if err != nil {
		return autherror.ErrInvalidOrExpiredToken
	}

	verified, err := s.repo.MarkEmailVerified(ctx, claims.Subject, claims.Email)
	if err != nil {
		s.logger.Error("verify email: update failed", "error", err)
		return autherror.ErrInternal
	}
	if !verified {
		return autherror.ErrInvalidOrExpiredToken
	}

	return nil
}

// ResendVerification re-issues the verification mail for an unverified
// account. The outcome is identical whether or not the email exists.
func (s *VerificationService) ResendVerification(ctx context.Context, email string) error {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		s.logger.Error("resend verification: lookup failed", "error", err)
		return autherror.ErrInternal
	}
	if user == nil || user.IsEmailVerified {
		return nil
	}

	token, err := s.tokenService.Issue(PurposeEmailVerification, user)
	if err != nil {
		s.logger.Error("resend verification: token issue failed", "error", err)
		return autherror.ErrInternal
	}

	if err := s.mailer.SendEmailVerification(ctx, user, token); err != nil {
		s.logger.Error("resend verification: mail failed", "email", user.Email, "error", err)
		return autherror.ErrInternal
	}

	return nil
}

// RequestPasswordReset mails a reset link when the account exists. Callers
// always receive the same generic answer, so the endpoint cannot confirm
// whether an email is registered.
func (s *VerificationService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		s.logger.Error("password reset request: lookup failed", "error", err)
		return autherror.ErrInternal
	}
	if user == nil {
		return nil
	}

	token, err := s.tokenService.Issue(PurposePasswordReset, user)
	if err != nil {
		s.logger.Error("password reset request: token issue failed", "error", err)
		return autherror.ErrInternal
	}

	if err := s.mailer.SendPasswordResetLink(ctx, user, token); err != nil {
		s.logger.Error("password reset request: mail failed", "email", user.Email, "error", err)
		return autherror.ErrInternal
	}

	return nil
}

// ResetPassword replaces the password hash and force-logs-out every device.
// A reset must leave zero standing sessions anywhere.
func (s *VerificationService) ResetPassword(ctx context.Context, token, newPassword string) error {
	claims, err := s.tokenService.Verify(PurposePasswordReset, token)
	if err != nil {
		return autherror.ErrInvalidOrExpiredToken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		s.logger.Error("password reset: hashing failed", "error", err)
		return autherror.ErrInternal
	}

	err = s.repo.ResetPassword(ctx, claims.Subject, claims.Email, string(hashedPassword))
	if err != nil {
		if errors.Is(err, autherror.ErrUserNotFound) {
			return autherror.ErrInvalidOrExpiredToken
		}
		s.logger.Error("password reset: update failed", "error", err)
		return autherror.ErrInternal
	}

	return nil
}

// InitiatePhoneVerification stores a short-lived numeric code on the account
// and dispatches it by SMS.
func (s *VerificationService) InitiatePhoneVerification(ctx context.Context, userID, phoneNumber string) error {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, autherror.ErrUserNotFound) {
			return err
		}
		s.logger.Error("phone verification: lookup failed", "error", err)
		return autherror.ErrInternal
	}

	if user.IsPhoneVerified && user.PhoneNumber == phoneNumber {
		return autherror.ErrPhoneAlreadyVerified
	}

	code, err := generateVerificationCode(phoneCodeLength)
	if err != nil {
		s.logger.Error("phone verification: code generation failed", "error", err)
		return autherror.ErrInternal
	}

	expiresAt := time.Now().Add(s.phoneCodeTTL)
	if err := s.repo.SetPhoneVerification(ctx, userID, phoneNumber, code, expiresAt); err != nil {
		if errors.Is(err, autherror.ErrPhoneAlreadyInUse) {
			return err
		}
		s.logger.Error("phone verification: store failed", "error", err)
		return autherror.ErrInternal
	}

	if err := s.sms.SendVerificationCode(ctx, phoneNumber, code); err != nil {
		s.logger.Error("phone verification: sms failed", "error", err)
		return autherror.ErrInternal
	}

	return nil
}

// VerifyPhone consumes the code; the store clears it on success so a code is
// single-use.
func (s *VerificationService) VerifyPhone(ctx context.Context, userID, code string) error {
	ok, err := s.repo.ConsumePhoneVerification(ctx, userID, code)
	if err != nil {
		s.logger.Error("phone verification: consume failed", "error", err)
		return autherror.ErrInternal
	}
	if !ok {
		return autherror.ErrInvalidOrExpiredCode
	}

	return nil
}

func generateVerificationCode(length int) (string, error) {
	max := big.NewInt(1)
	for i := 0; i < length; i++ {
		max.Mul(max, big.NewInt(10))
	}

	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%0*d", length, n), nil
}

package domain

import (
	"context"
	"time"
)

//go:generate mockgen -destination=../../mocks/mock_user_repository.go -package=mocks github.com/HakiMohamed/LocationsGuard/internal/auth/domain UserRepository

type UserRepository interface {
	// GetByEmail returns (nil, nil) when no user carries the email.
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	Create(ctx context.Context, user *User) error
	Delete(ctx context.Context, id string) error
	UpdateLastLogin(ctx context.Context, userID, ip string) error

	// MarkEmailVerified flips the verified flag only when the account still
	// matches the token's email claim and is not yet verified. Returns false
	// when nothing matched, which makes a second use of the same token fail.
	MarkEmailVerified(ctx context.Context, userID, email string) (bool, error)

	// ResetPassword replaces the password hash and deactivates every device
	// in a single transaction.
	ResetPassword(ctx context.Context, userID, email, passwordHash string) error

	SetPhoneVerification(ctx context.Context, userID, phoneNumber, code string, expiresAt time.Time) error
	// ConsumePhoneVerification marks the phone verified and clears the code
	// when the code matches and has not expired. Returns false otherwise.
	ConsumePhoneVerification(ctx context.Context, userID, code string) (bool, error)

	// UpsertDevice reconciles a device by (userID, fingerprint) in one atomic
	// statement, preserving the existing deviceId on a match. The bool
	// reports whether a new device record was created.
	UpsertDevice(ctx context.Context, userID string, device *Device) (*Device, bool, error)
	ListDevices(ctx context.Context, userID string) ([]Device, error)
	// GetActiveDeviceByFingerprint returns (nil, nil) when no active device
	// matches the fingerprint.
	GetActiveDeviceByFingerprint(ctx context.Context, userID, fingerprint string) (*Device, error)
	// RotateRefreshToken swaps the stored refresh token in a single
	// compare-and-swap keyed on the previous token value. Returns (nil, nil)
	// when no device holds oldToken anymore, meaning a concurrent rotation
	// already won.
	RotateRefreshToken(ctx context.Context, userID, oldToken, newToken, ip string) (*Device, error)
	DeactivateDevice(ctx context.Context, userID, deviceID string) error
	DeactivateAllDevices(ctx context.Context, userID, exceptFingerprint string) error
	RemoveDevice(ctx context.Context, userID, deviceID string) error
}

//go:generate mockgen -destination=../../mocks/mock_mailer.go -package=mocks github.com/HakiMohamed/LocationsGuard/internal/auth/domain Mailer,SmsSender

type Mailer interface {
	SendEmailVerification(ctx context.Context, user *User, token string) error
	SendPasswordResetLink(ctx context.Context, user *User, token string) error
	SendNewDeviceNotification(ctx context.Context, user *User, device *Device) error
}

type SmsSender interface {
	SendVerificationCode(ctx context.Context, phoneNumber, code string) error
}

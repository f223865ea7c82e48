package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/HakiMohamed/LocationsGuard/internal/auth/domain"
	autherror "github.com/HakiMohamed/LocationsGuard/internal/errors"
)

const uniqueViolation = "23505"

// DB is the subset of pgxpool.Pool the repository needs; pgxmock satisfies it
// in tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

type Repository struct {
	db DB
}

func NewUserRepository(db DB) *Repository {
	return &Repository{db: db}
}

const userColumns = `id, email, password_hash, role, first_name, last_name, phone_number,
		is_email_verified, is_phone_verified, last_login, last_login_ip, created_at, updated_at`

func (r *Repository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE lower(email) = lower($1)
		LIMIT 1;
	`

	user, err := scanUser(r.db.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = $1
		LIMIT 1;
	`

	user, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, autherror.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return user, nil
}

func (r *Repository) Create(ctx context.Context, user *domain.User) error {
	var phone *string
	if user.PhoneNumber != "" {
		phone = &user.PhoneNumber
	}

	_, err := r.db.Exec(ctx, `
		INSERT INTO users (id, email, password_hash, role, first_name, last_name, phone_number,
			is_email_verified, is_phone_verified, created_at, updated_at)
		VALUES ($1, lower($2), $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, user.ID, user.Email, user.PasswordHash, user.Role, user.FirstName, user.LastName, phone,
		user.IsEmailVerified, user.IsPhoneVerified, user.CreatedAt, user.UpdatedAt)

	if err != nil {
		return mapUniqueViolation(err)
	}

	return nil
}

// mapUniqueViolation translates a 23505 into the field-specific conflict
// error so registration can tell the user which field collided.
func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return fmt.Errorf("failed to create user: %w", err)
	}

	if strings.Contains(pgErr.ConstraintName, "phone") {
		return autherror.ErrPhoneAlreadyInUse
	}

	return autherror.ErrEmailAlreadyInUse
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	return nil
}

func (r *Repository) UpdateLastLogin(ctx context.Context, userID, ip string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE users
		SET last_login = now(), last_login_ip = $2, updated_at = now()
		WHERE id = $1
	`, userID, ip)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}

	return nil
}

func (r *Repository) MarkEmailVerified(ctx context.Context, userID, email string) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE users
		SET is_email_verified = TRUE, updated_at = now()
		WHERE id = $1 AND lower(email) = lower($2) AND is_email_verified = FALSE
	`, userID, email)
	if err != nil {
		return false, fmt.Errorf("failed to mark email verified: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// ResetPassword replaces the hash and deactivates every device in one
// transaction: a reset must leave zero standing sessions.
func (r *Repository) ResetPassword(ctx context.Context, userID, email, passwordHash string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin reset transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
		UPDATE users
		SET password_hash = $3, updated_at = now()
		WHERE id = $1 AND lower(email) = lower($2)
	`, userID, email, passwordHash)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return autherror.ErrUserNotFound
	}

	_, err = tx.Exec(ctx, `
		UPDATE devices
		SET is_active = FALSE, refresh_token = NULL, last_logout = now()
		WHERE user_id = $1 AND is_active = TRUE
	`, userID)
	if err != nil {
		return fmt.Errorf("failed to deactivate devices: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit reset transaction: %w", err)
	}

	return nil
}

func (r *Repository) SetPhoneVerification(ctx context.Context, userID, phoneNumber, code string, expiresAt time.Time) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE users
		SET phone_number = $2, phone_verification_code = $3,
			phone_verification_code_expires = $4, updated_at = now()
		WHERE id = $1
	`, userID, phoneNumber, code, expiresAt)
	if err != nil {
		return mapUniqueViolation(err)
	}
	if tag.RowsAffected() == 0 {
		return autherror.ErrUserNotFound
	}

	return nil
}

func (r *Repository) ConsumePhoneVerification(ctx context.Context, userID, code string) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE users
		SET is_phone_verified = TRUE, phone_verification_code = NULL,
			phone_verification_code_expires = NULL, updated_at = now()
		WHERE id = $1 AND phone_verification_code = $2
			AND phone_verification_code_expires > now()
	`, userID, code)
	if err != nil {
		return false, fmt.Errorf("failed to consume phone verification: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

const deviceColumns = `device_id, fingerprint, name, type, browser, os, refresh_token,
		last_ip, known_ips, is_active, last_login, last_logout`

// UpsertDevice reconciles by (user_id, fingerprint) in a single statement.
// A concurrent first login from the same device cannot create a duplicate
// row: one insert wins, the other turns into the update arm. xmax = 0
// distinguishes the two outcomes.
func (r *Repository) UpsertDevice(ctx context.Context, userID string, d *domain.Device) (*domain.Device, bool, error) {
	query := `
		INSERT INTO devices (device_id, user_id, fingerprint, name, type, browser, os,
			refresh_token, last_ip, known_ips, is_active, last_login)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, ARRAY[$9], TRUE, now())
		ON CONFLICT (user_id, fingerprint) DO UPDATE SET
			name = EXCLUDED.name,
			type = EXCLUDED.type,
			browser = EXCLUDED.browser,
			os = EXCLUDED.os,
			refresh_token = EXCLUDED.refresh_token,
			last_ip = EXCLUDED.last_ip,
			known_ips = CASE
				WHEN devices.known_ips @> ARRAY[EXCLUDED.last_ip]
				THEN devices.known_ips
				ELSE array_append(devices.known_ips, EXCLUDED.last_ip)
			END,
			is_active = TRUE,
			last_login = now(),
			last_logout = NULL
		RETURNING ` + deviceColumns + `, (xmax = 0) AS created;
	`

	row := r.db.QueryRow(ctx, query,
		d.DeviceID, userID, d.Fingerprint, d.Name, d.Type, d.Browser, d.OS,
		d.RefreshToken, d.LastIP)

	device, created, err := scanDeviceWithCreated(row)
	if err != nil {
		return nil, false, fmt.Errorf("failed to upsert device: %w", err)
	}

	return device, created, nil
}

func (r *Repository) ListDevices(ctx context.Context, userID string) ([]domain.Device, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+deviceColumns+`
		FROM devices
		WHERE user_id = $1
		ORDER BY last_login DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}
	defer rows.Close()

	var devices []domain.Device
	for rows.Next() {
		device, err := scanDevice(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan device: %w", err)
		}
		devices = append(devices, *device)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}

	return devices, nil
}

func (r *Repository) GetActiveDeviceByFingerprint(ctx context.Context, userID, fp string) (*domain.Device, error) {
	query := `
		SELECT ` + deviceColumns + `
		FROM devices
		WHERE user_id = $1 AND fingerprint = $2 AND is_active = TRUE
		LIMIT 1;
	`

	device, err := scanDevice(r.db.QueryRow(ctx, query, userID, fp))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get device by fingerprint: %w", err)
	}

	return device, nil
}

// RotateRefreshToken is the compare-and-swap at the heart of rotation: the
// update is keyed on the previous token value, so of two concurrent refresh
// calls presenting the same token exactly one matches a row. The loser gets
// (nil, nil).
func (r *Repository) RotateRefreshToken(ctx context.Context, userID, oldToken, newToken, ip string) (*domain.Device, error) {
	query := `
		UPDATE devices
		SET refresh_token = $3,
			last_login = now(),
			last_ip = $4,
			known_ips = CASE
				WHEN known_ips @> ARRAY[$4]
				THEN known_ips
				ELSE array_append(known_ips, $4)
			END
		WHERE user_id = $1 AND refresh_token = $2 AND is_active = TRUE
		RETURNING ` + deviceColumns + `;
	`

	device, err := scanDevice(r.db.QueryRow(ctx, query, userID, oldToken, newToken, ip))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to rotate refresh token: %w", err)
	}

	return device, nil
}

func (r *Repository) DeactivateDevice(ctx context.Context, userID, deviceID string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE devices
		SET is_active = FALSE, refresh_token = NULL, last_logout = now()
		WHERE user_id = $1 AND device_id = $2 AND is_active = TRUE
	`, userID, deviceID)
	if err != nil {
		return fmt.Errorf("failed to deactivate device: %w", err)
	}

	if tag.RowsAffected() > 0 {
		return nil
	}

	// Distinguish an absent device from one that was already inactive.
	var exists bool
	err = r.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM devices WHERE user_id = $1 AND device_id = $2)
	`, userID, deviceID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check device existence: %w", err)
	}

	if !exists {
		return autherror.ErrDeviceNotFound
	}

	return autherror.ErrDeviceDeactivationFailed
}

func (r *Repository) DeactivateAllDevices(ctx context.Context, userID, exceptFingerprint string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE devices
		SET is_active = FALSE, refresh_token = NULL, last_logout = now()
		WHERE user_id = $1 AND is_active = TRUE AND ($2 = '' OR fingerprint <> $2)
	`, userID, exceptFingerprint)
	if err != nil {
		return fmt.Errorf("failed to deactivate devices: %w", err)
	}

	return nil
}

func (r *Repository) RemoveDevice(ctx context.Context, userID, deviceID string) error {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM devices
		WHERE user_id = $1 AND device_id = $2
	`, userID, deviceID)
	if err != nil {
		return fmt.Errorf("failed to remove device: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return autherror.ErrDeviceNotFound
	}

	return nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		user        domain.User
		phone       *string
		lastLoginIP *string
	)

	err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Role,
		&user.FirstName, &user.LastName, &phone,
		&user.IsEmailVerified, &user.IsPhoneVerified,
		&user.LastLogin, &lastLoginIP, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if phone != nil {
		user.PhoneNumber = *phone
	}
	if lastLoginIP != nil {
		user.LastLoginIP = *lastLoginIP
	}

	return &user, nil
}

func scanDevice(row pgx.Row) (*domain.Device, error) {
	device, _, err := scanDeviceFields(row, false)
	return device, err
}

func scanDeviceWithCreated(row pgx.Row) (*domain.Device, bool, error) {
	return scanDeviceFields(row, true)
}

func scanDeviceFields(row pgx.Row, withCreated bool) (*domain.Device, bool, error) {
	var (
		device       domain.Device
		refreshToken *string
		created      bool
	)

	dest := []any{&device.DeviceID, &device.Fingerprint, &device.Name, &device.Type,
		&device.Browser, &device.OS, &refreshToken,
		&device.LastIP, &device.KnownIPs, &device.IsActive,
		&device.LastLogin, &device.LastLogout}
	if withCreated {
		dest = append(dest, &created)
	}

	if err := row.Scan(dest...); err != nil {
		return nil, false, err
	}

	if refreshToken != nil {
		device.RefreshToken = *refreshToken
	}

	return &device, created, nil
}

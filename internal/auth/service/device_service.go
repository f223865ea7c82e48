package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/HakiMohamed/LocationsGuard/internal/auth/domain"
	"github.com/HakiMohamed/LocationsGuard/internal/auth/dto"
	"github.com/HakiMohamed/LocationsGuard/internal/auth/fingerprint"
)

// DeviceService is the ledger of devices a user has logged in from. All of
// its mutations are single conditional statements at the storage layer, so
// concurrent logins and logouts from the same device cannot duplicate or
// half-update a record.
type DeviceService struct {
	repo         domain.UserRepository
	fingerprints *fingerprint.Engine
}

func NewDeviceService(repo domain.UserRepository, fingerprints *fingerprint.Engine) *DeviceService {
	return &DeviceService{repo: repo, fingerprints: fingerprints}
}

// Reconcile matches the request signals to an existing device by fingerprint
// and rebinds it to the new refresh token, or records a brand-new device. The
// bool reports whether a new record was created. The deviceId is preserved on
// a match; the candidate id below only survives an insert.
func (s *DeviceService) Reconcile(ctx context.Context, userID string, signals fingerprint.Signals, refreshToken string) (*dto.DeviceOutput, bool, error) {
	descriptor := s.fingerprints.Describe(signals)

	candidate := &domain.Device{
		DeviceID:     uuid.NewString(),
		Fingerprint:  s.fingerprints.Fingerprint(signals),
		Name:         descriptor.Name,
		Type:         descriptor.Type,
		Browser:      descriptor.Browser,
		OS:           descriptor.OS,
		RefreshToken: refreshToken,
		LastIP:       descriptor.IP,
	}

	device, created, err := s.repo.UpsertDevice(ctx, userID, candidate)
	if err != nil {
		return nil, false, err
	}

	out := toDeviceOutput(device)

	return &out, created, nil
}

func (s *DeviceService) List(ctx context.Context, userID string) (*dto.DeviceListOutput, error) {
	devices, err := s.repo.ListDevices(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := &dto.DeviceListOutput{
		Devices: make([]dto.DeviceOutput, 0, len(devices)),
		Total:   len(devices),
	}
	for i := range devices {
		out.Devices = append(out.Devices, toDeviceOutput(&devices[i]))
		if devices[i].IsActive {
			out.Active++
		}
	}

	return out, nil
}

// Current resolves the caller's device record from its request signals.
// Returns (nil, nil) when no active device matches the fingerprint.
func (s *DeviceService) Current(ctx context.Context, userID string, signals fingerprint.Signals) (*domain.Device, error) {
	return s.repo.GetActiveDeviceByFingerprint(ctx, userID, s.fingerprints.Fingerprint(signals))
}

func (s *DeviceService) Deactivate(ctx context.Context, userID, deviceID string) error {
	return s.repo.DeactivateDevice(ctx, userID, deviceID)
}

// DeactivateAll logs out every device, or every device except the caller's
// current one when exceptCurrent carries the caller's signals.
func (s *DeviceService) DeactivateAll(ctx context.Context, userID string, exceptCurrent *fingerprint.Signals) error {
	exceptFingerprint := ""
	if exceptCurrent != nil {
		exceptFingerprint = s.fingerprints.Fingerprint(*exceptCurrent)
	}

	return s.repo.DeactivateAllDevices(ctx, userID, exceptFingerprint)
}

// Remove deletes the device record entirely, for logout-and-forget flows.
func (s *DeviceService) Remove(ctx context.Context, userID, deviceID string) error {
	return s.repo.RemoveDevice(ctx, userID, deviceID)
}

func toDeviceOutput(d *domain.Device) dto.DeviceOutput {
	return dto.DeviceOutput{
		DeviceID:   d.DeviceID,
		Name:       d.Name,
		Type:       d.Type,
		Browser:    d.Browser,
		OS:         d.OS,
		IP:         d.LastIP,
		IsActive:   d.IsActive,
		LastLogin:  d.LastLogin,
		LastLogout: d.LastLogout,
	}
}

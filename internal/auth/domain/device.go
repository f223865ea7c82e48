package domain

import "time"

// Device is one browser/device combination a user has logged in from,
// identified by a server-computed fingerprint. At most one device exists per
// (user, fingerprint) pair; the unique index on the devices table enforces it.
type Device struct {
	DeviceID     string
	Fingerprint  string
	Name         string
	Type         string
	Browser      string
	OS           string
	RefreshToken string
	LastIP       string
	KnownIPs     []string
	IsActive     bool
	LastLogin    time.Time
	LastLogout   *time.Time
}

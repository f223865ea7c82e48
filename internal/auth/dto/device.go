package dto

import "time"

// DeviceOutput is the external projection of a device. The refresh token and
// fingerprint never appear here.
type DeviceOutput struct {
	DeviceID   string     `json:"deviceId"`
	Name       string     `json:"name"`
	Type       string     `json:"type"`
	Browser    string     `json:"browser,omitempty"`
	OS         string     `json:"os,omitempty"`
	IP         string     `json:"ip"`
	IsActive   bool       `json:"isActive"`
	LastLogin  time.Time  `json:"lastLogin"`
	LastLogout *time.Time `json:"lastLogout,omitempty"`
}

type DeviceListOutput struct {
	Devices []DeviceOutput `json:"devices"`
	Total   int            `json:"total"`
	Active  int            `json:"active"`
}

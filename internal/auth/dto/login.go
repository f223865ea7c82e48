package dto

import "github.com/HakiMohamed/LocationsGuard/internal/auth/fingerprint"

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`

	Signals fingerprint.Signals `json:"-"`
}

type LoginOutput struct {
	User        UserOutput   `json:"user"`
	AccessToken string       `json:"access_token"`
	Device      DeviceOutput `json:"device"`

	// RefreshToken travels only in the http-only cookie, never in a body.
	RefreshToken string `json:"-"`
}

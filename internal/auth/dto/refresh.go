package dto

type RefreshOutput struct {
	AccessToken string `json:"access_token"`

	// RefreshToken travels only in the http-only cookie, never in a body.
	RefreshToken string `json:"-"`
}

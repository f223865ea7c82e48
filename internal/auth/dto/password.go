package dto

type RequestPasswordResetInput struct {
	Email string `json:"email"`
}

type ResetPasswordInput struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

type ResendVerificationInput struct {
	Email string `json:"email"`
}

type InitiatePhoneVerificationInput struct {
	PhoneNumber string `json:"phoneNumber"`
}

type VerifyPhoneInput struct {
	Code string `json:"code"`
}

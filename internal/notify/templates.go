package notify

import (
	"fmt"

	"github.com/HakiMohamed/LocationsGuard/internal/auth/domain"
)

func verificationEmailBody(firstName, verificationURL string) string {
	return fmt.Sprintf(`
		<h1>Welcome to LocationsGuard!</h1>
		<p>Hi %s,</p>
		<p>Please verify your email address by clicking the link below:</p>
		<p><a href="%s">Verify Email</a></p>
		<p>Or copy and paste this link in your browser:</p>
		<p>%s</p>
		<p>This link will expire in 24 hours.</p>
	`, firstName, verificationURL, verificationURL)
}

func passwordResetBody(firstName, resetURL string) string {
	return fmt.Sprintf(`
		<h1>Password reset</h1>
		<p>Hi %s,</p>
		<p>We received a request to reset your password. Click the link below to choose a new one:</p>
		<p><a href="%s">Reset Password</a></p>
		<p>If you did not request this, you can safely ignore this email.</p>
	`, firstName, resetURL)
}

func newDeviceBody(firstName string, device *domain.Device) string {
	return fmt.Sprintf(`
		<h1>New device login</h1>
		<p>Hi %s,</p>
		<p>Your account was just used to sign in from a device we had not seen before:</p>
		<ul>
			<li>Device: %s</li>
			<li>Type: %s</li>
			<li>IP address: %s</li>
			<li>Time: %s</li>
		</ul>
		<p>If this was you, no action is needed. Otherwise, reset your password immediately.</p>
	`, firstName, device.Name, device.Type, device.LastIP, device.LastLogin.Format("2006-01-02 15:04:05 MST"))
}

package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	ua "github.com/mileusna/useragent"
)

const (
	DeviceTypeDesktop = "desktop"
	DeviceTypeMobile  = "mobile"
	DeviceTypeTablet  = "tablet"
)

// Signals are the raw request inputs a fingerprint is derived from. The
// transport layer fills them in; the engine itself never touches a request.
type Signals struct {
	UserAgent    string
	RemoteIP     string
	ForwardedFor string // raw X-Forwarded-For header value, may be empty
}

// Descriptor is the human-readable side of a device, safe to show to users.
type Descriptor struct {
	Name    string
	Type    string
	Browser string
	OS      string
	IP      string
}

// Engine derives a stable device identity from request signals. It is pure:
// identical signals always produce identical output, and no I/O happens here.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// Fingerprint digests the user agent, client IP and the parsed browser/OS
// into an opaque hex hash. The separator keeps field boundaries unambiguous
// so distinct signal sets cannot collide by concatenation.
func (e *Engine) Fingerprint(s Signals) string {
	parsed := ua.Parse(s.UserAgent)

	canonical := strings.Join([]string{
		s.UserAgent,
		e.clientIP(s),
		parsed.Name + parsed.Version,
		parsed.OS + parsed.OSVersion,
	}, "|")

	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}

// Describe parses the same signals into display metadata.
func (e *Engine) Describe(s Signals) Descriptor {
	parsed := ua.Parse(s.UserAgent)

	return Descriptor{
		Name:    deviceName(parsed),
		Type:    deviceType(parsed),
		Browser: strings.TrimSpace(orUnknown(parsed.Name) + " " + parsed.Version),
		OS:      strings.TrimSpace(orUnknown(parsed.OS) + " " + parsed.OSVersion),
		IP:      e.clientIP(s),
	}
}

// clientIP honors X-Forwarded-For, taking the first hop, and falls back to
// the direct remote address.
func (e *Engine) clientIP(s Signals) string {
	if s.ForwardedFor != "" {
		first, _, _ := strings.Cut(s.ForwardedFor, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if s.RemoteIP != "" {
		return s.RemoteIP
	}
	return "0.0.0.0"
}

func deviceName(parsed ua.UserAgent) string {
	var parts []string
	if parsed.Device != "" {
		parts = append(parts, parsed.Device)
	}
	if parsed.OS != "" {
		parts = append(parts, "("+parsed.OS+")")
	}
	if len(parts) == 0 {
		return "Unknown Device"
	}
	return strings.Join(parts, " ")
}

func deviceType(parsed ua.UserAgent) string {
	switch {
	case parsed.Mobile:
		return DeviceTypeMobile
	case parsed.Tablet:
		return DeviceTypeTablet
	default:
		return DeviceTypeDesktop
	}
}

func orUnknown(v string) string {
	if v == "" {
		return "Unknown"
	}
	return v
}

package checkout

import (
	"regexp"
	"strings"

	apperrors "github.com/ssbags/storefront/pkg/errors"
)

// Platform is the device class the hand-off link is built for.
type Platform string

const (
	PlatformDesktop Platform = "desktop"
	PlatformAndroid Platform = "android"
	PlatformIOS     Platform = "ios"
)

// Mobile reports whether the platform has the WhatsApp app scheme.
func (p Platform) Mobile() bool {
	return p == PlatformAndroid || p == PlatformIOS
}

// ParsePlatform accepts desktop, android or ios in any case. Empty means desktop.
func ParsePlatform(s string) (Platform, error) {
	switch Platform(strings.ToLower(strings.TrimSpace(s))) {
	case "", PlatformDesktop:
		return PlatformDesktop, nil
	case PlatformAndroid:
		return PlatformAndroid, nil
	case PlatformIOS:
		return PlatformIOS, nil
	default:
		return "", apperrors.InvalidInput("unknown platform " + s + " (use desktop, android or ios)")
	}
}

var (
	androidUA = regexp.MustCompile(`(?i)Android`)
	iosUA     = regexp.MustCompile(`(?i)iPhone|iPad|iPod`)
)

// PlatformFromUserAgent classifies a browser user-agent string.
func PlatformFromUserAgent(ua string) Platform {
	switch {
	case androidUA.MatchString(ua):
		return PlatformAndroid
	case iosUA.MatchString(ua):
		return PlatformIOS
	default:
		return PlatformDesktop
	}
}

package browser

import (
	"math/rand/v2"

	surfer "github.com/avct/uasurfer"
	"github.com/go-rod/rod/lib/proto"
)

var userAgents = []string{
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 14_4_1) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
}

const (
	acceptLanguage = "en-US,en;q=0.9"
	timezone       = "America/New_York"
	viewportWidth  = 1366
	viewportHeight = 768
)

// stealthScript hides the most common automation tells before any page script runs
const stealthScript = `(() => {
	Object.defineProperty(navigator, 'webdriver', { get: () => undefined });
	Object.defineProperty(navigator, 'languages', { get: () => ['en-US', 'en'] });
	Object.defineProperty(navigator, 'plugins', { get: () => [1, 2, 3, 4, 5] });
	window.chrome = window.chrome || { runtime: {} };
})();`

// Persona is the browser fingerprint presented for one attempt
type Persona struct {
	UserAgent string
	Platform  string
}

// RandomPersona picks a user agent from the rotation
func RandomPersona() Persona {
	return NewPersona(userAgents[rand.IntN(len(userAgents))])
}

// NewPersona derives navigator.platform from a user agent
func NewPersona(ua string) Persona {
	return Persona{UserAgent: ua, Platform: navigatorPlatform(ua)}
}

func navigatorPlatform(ua string) string {
	switch surfer.Parse(ua).OS.Platform {
	case surfer.PlatformMac:
		return "MacIntel"
	case surfer.PlatformWindows:
		return "Win32"
	case surfer.PlatformLinux:
		return "Linux x86_64"
	default:
		return ""
	}
}

func (p Persona) userAgentOverride() *proto.NetworkSetUserAgentOverride {
	return &proto.NetworkSetUserAgentOverride{
		UserAgent:      p.UserAgent,
		AcceptLanguage: acceptLanguage,
		Platform:       p.Platform,
	}
}

func extraHeaders() []string {
	return []string{
		"Accept-Language", acceptLanguage,
		"Upgrade-Insecure-Requests", "1",
	}
}

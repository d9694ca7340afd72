package browser

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/go-rod/rod/lib/proto"
	"github.com/layer-3/cookiecheck/core"
)

// CookieParams builds the cookies injected into a fresh context. The session
// cookie is scoped to the registrable domain and the secondary one to the
// exact host, matching how the site sets them.
func CookieParams(baseURL string, cookies core.CookiePair) ([]*proto.NetworkCookieParam, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Hostname() == "" {
		return nil, fmt.Errorf("invalid base url %q", baseURL)
	}
	host := u.Hostname()
	cookies = cookies.Normalize()

	params := []*proto.NetworkCookieParam{
		newCookie(core.SessionCookieName, cookies.Session, "."+strings.TrimPrefix(host, "www.")),
	}
	if cookies.Secondary != "" {
		params = append(params, newCookie(core.SecondaryCookieName, cookies.Secondary, "."+host))
	}
	return params, nil
}

func newCookie(name, value, domain string) *proto.NetworkCookieParam {
	return &proto.NetworkCookieParam{
		Name:     name,
		Value:    value,
		Domain:   domain,
		Path:     "/",
		Secure:   true,
		HTTPOnly: true,
		SameSite: proto.NetworkCookieSameSiteNone,
	}
}

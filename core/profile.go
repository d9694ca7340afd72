package core

import (
	"net/url"
	"strings"

	"golang.org/x/net/html/atom"
)

const minNameLength = 3

var (
	identityRegion = Any(
		Class("global-nav__me-content"),
		Class("feed-identity-module"),
		Class("profile-card"),
		Attr("data-control-name", "identity_welcome_message"),
	)

	profileHeading = Any(
		All(Tag(atom.H1), Class("text-heading-xlarge")),
		Within(Class("pv-text-details__left-panel"), Tag(atom.H1)),
	)

	identityLink = Any(
		Within(identityRegion, All(Tag(atom.A), AttrContains("href", "/in/"))),
		All(Tag(atom.A), Attr("data-control-name", "identity_welcome_message"), AttrContains("href", "/in/")),
		Within(Class("global-nav__me"), All(Tag(atom.A), AttrContains("href", "/in/"))),
	)

	nameCandidates = []Matcher{
		Within(identityRegion, Class("text-heading-small")),
		Within(identityRegion, Class("t-16", "t-black", "t-bold")),
		Within(identityRegion, Class("feed-identity-module__actor-meta")),
		Within(identityRegion, Tag(atom.Strong)),
	}
)

// ExtractProfile reads identity fields from a snapshot. base is the site
// origin used to build the canonical profile URL.
func ExtractProfile(p *PageState, base string) Profile {
	var prof Profile
	if p == nil || p.Root == nil {
		return prof
	}

	if link := p.Find(identityLink); link != nil {
		href, _ := attr(link, "href")
		prof.Username = usernameFromHref(href)
	}
	if prof.Username == "" && p.URL != nil {
		prof.Username = usernameFromPath(p.URL.Path)
	}

	for _, m := range nameCandidates {
		if name := Text(p.Find(m)); len(name) >= minNameLength {
			prof.FullName = name
			break
		}
	}
	if prof.FullName == "" {
		if name := Text(p.Find(profileHeading)); len(name) >= minNameLength {
			prof.FullName = name
		}
	}

	if prof.Username != "" {
		prof.ProfileURL = CanonicalProfileURL(base, prof.Username)
	}
	return prof
}

// CanonicalProfileURL builds the public profile URL for a username
func CanonicalProfileURL(base, username string) string {
	return strings.TrimRight(base, "/") + "/in/" + url.PathEscape(username)
}

func usernameFromHref(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return usernameFromPath(u.Path)
}

func usernameFromPath(path string) string {
	idx := strings.Index(path, "/in/")
	if idx < 0 {
		return ""
	}
	rest := path[idx+len("/in/"):]
	if slash := strings.IndexByte(rest, '/'); slash >= 0 {
		rest = rest[:slash]
	}
	if rest == "" || strings.EqualFold(rest, "me") {
		return ""
	}
	return rest
}

// HasStructure reports whether the snapshot carries any identity region
func HasStructure(p *PageState) bool {
	return ProfileStructure.Detect(p)
}

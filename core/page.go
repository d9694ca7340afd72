package core

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// PageState is a parsed snapshot of the page a browser context is showing
type PageState struct {
	URL  *url.URL
	Root *html.Node
}

// ParsePage parses a URL and an HTML document into a PageState
func ParsePage(rawURL, document string) (*PageState, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	root, err := html.Parse(strings.NewReader(document))
	if err != nil {
		return nil, err
	}
	return &PageState{URL: u, Root: root}, nil
}

// Path returns the lowercased URL path
func (p *PageState) Path() string {
	if p == nil || p.URL == nil {
		return ""
	}
	return strings.ToLower(p.URL.Path)
}

// Find returns the first node matching m in document order
func (p *PageState) Find(m Matcher) *html.Node {
	if p == nil || p.Root == nil {
		return nil
	}
	return findFirst(p.Root, m)
}

// Has reports whether any node matches m
func (p *PageState) Has(m Matcher) bool {
	return p.Find(m) != nil
}

// Matcher is a predicate over element nodes
type Matcher func(n *html.Node) bool

func findFirst(n *html.Node, m Matcher) *html.Node {
	if n.Type == html.ElementNode && m(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, m); found != nil {
			return found
		}
	}
	return nil
}

func findAll(n *html.Node, m Matcher, out []*html.Node) []*html.Node {
	if n.Type == html.ElementNode && m(n) {
		out = append(out, n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = findAll(c, m, out)
	}
	return out
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// Tag matches elements with the given tag
func Tag(a atom.Atom) Matcher {
	return func(n *html.Node) bool { return n.DataAtom == a }
}

// ID matches an element id
func ID(id string) Matcher {
	return func(n *html.Node) bool {
		v, ok := attr(n, "id")
		return ok && v == id
	}
}

// Class matches elements carrying every listed class
func Class(classes ...string) Matcher {
	return func(n *html.Node) bool {
		v, ok := attr(n, "class")
		if !ok {
			return false
		}
		have := strings.Fields(v)
		for _, want := range classes {
			found := false
			for _, h := range have {
				if h == want {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
		return true
	}
}

// Attr matches an attribute equal to val
func Attr(key, val string) Matcher {
	return func(n *html.Node) bool {
		v, ok := attr(n, key)
		return ok && v == val
	}
}

// AttrContains matches an attribute containing substr, case-insensitively
func AttrContains(key, substr string) Matcher {
	substr = strings.ToLower(substr)
	return func(n *html.Node) bool {
		v, ok := attr(n, key)
		return ok && strings.Contains(strings.ToLower(v), substr)
	}
}

// All matches when every matcher does
func All(ms ...Matcher) Matcher {
	return func(n *html.Node) bool {
		for _, m := range ms {
			if !m(n) {
				return false
			}
		}
		return true
	}
}

// Any matches when at least one matcher does
func Any(ms ...Matcher) Matcher {
	return func(n *html.Node) bool {
		for _, m := range ms {
			if m(n) {
				return true
			}
		}
		return false
	}
}

// Within matches nodes that have an ancestor matching outer
func Within(outer, inner Matcher) Matcher {
	return func(n *html.Node) bool {
		if !inner(n) {
			return false
		}
		for p := n.Parent; p != nil; p = p.Parent {
			if p.Type == html.ElementNode && outer(p) {
				return true
			}
		}
		return false
	}
}

// Text returns the whitespace-collapsed text content of n
func Text(n *html.Node) string {
	if n == nil {
		return ""
	}
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
			b.WriteByte(' ')
		}
		if c.Type == html.ElementNode && (c.DataAtom == atom.Script || c.DataAtom == atom.Style) {
			return
		}
		for ch := c.FirstChild; ch != nil; ch = ch.NextSibling {
			walk(ch)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

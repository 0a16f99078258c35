// Package routes classifies inbound method+path pairs into typed wiki
// operations.
//
// Patterns are declarative: literal segments match verbatim, ":name"
// segments match one non-empty path component and bind it as a parameter.
// Patterns compile once into anchored regular expressions and are immutable
// afterwards, so a single Router is safe to share across requests.
package routes

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"
)

// Pattern is a compiled path pattern.
type Pattern struct {
	names []string
	re    *regexp.Regexp
}

// Compile builds a matcher from a pattern such as
// "/webs/:web_name/pages/:page_name". It fails on placeholder names that do
// not form a valid capture group, including duplicates.
func Compile(pattern string) (*Pattern, error) {
	var names []string
	var b strings.Builder
	b.WriteByte('^')
	for _, part := range strings.Split(pattern, "/")[1:] {
		b.WriteByte('/')
		if strings.HasPrefix(part, ":") {
			name := part[1:]
			for _, seen := range names {
				if seen == name {
					return nil, fmt.Errorf("invalid pattern %q: duplicate parameter %q", pattern, name)
				}
			}
			names = append(names, name)
			fmt.Fprintf(&b, "(?P<%s>[^/]+)", name)
		} else {
			b.WriteString(regexp.QuoteMeta(part))
		}
	}
	b.WriteByte('$')
	re, err := regexp.Compile(b.String())
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	return &Pattern{names: names, re: re}, nil
}

// MustCompile is Compile for statically known patterns; it panics on error.
func MustCompile(pattern string) *Pattern {
	p, err := Compile(pattern)
	if err != nil {
		panic(err)
	}
	return p
}

// Match tests path against the pattern. On success it returns one captured
// value per declared parameter, in a map keyed by parameter name; otherwise
// nil. A match that binds fewer values than the pattern declares is treated
// as no match.
func (p *Pattern) Match(path string) map[string]string {
	m := p.re.FindStringSubmatch(path)
	if m == nil {
		return nil
	}
	params := make(map[string]string, len(p.names))
	for i, name := range p.re.SubexpNames() {
		if name != "" && i < len(m) && m[i] != "" {
			params[name] = m[i]
		}
	}
	if len(params) != len(p.names) {
		return nil
	}
	return params
}

// Kind identifies the wiki operation a request maps to.
type Kind int

// Route kinds, one per REST operation. KindInvalid means no rule matched.
const (
	KindInvalid Kind = iota
	KindListWebs
	KindCreateWeb
	KindListPages
	KindCreatePage
	KindShowPage
	KindUpdatePage
	KindListAttachments
	KindCreateAttachment
	KindServeAttachment
	KindListPageVersions
	KindShowPageVersion
)

// String returns the route kind name, for logging.
func (k Kind) String() string {
	switch k {
	case KindListWebs:
		return "ListWebs"
	case KindCreateWeb:
		return "CreateWeb"
	case KindListPages:
		return "ListPages"
	case KindCreatePage:
		return "CreatePage"
	case KindShowPage:
		return "ShowPage"
	case KindUpdatePage:
		return "UpdatePage"
	case KindListAttachments:
		return "ListAttachments"
	case KindCreateAttachment:
		return "CreateAttachment"
	case KindServeAttachment:
		return "ServeAttachment"
	case KindListPageVersions:
		return "ListPageVersions"
	case KindShowPageVersion:
		return "ShowPageVersion"
	}
	return "Invalid"
}

// Route is a classified request: the operation kind plus its extracted path
// parameters. Fields not applicable to the kind are empty.
type Route struct {
	Kind           Kind
	WebName        string
	PageName       string
	AttachmentName string
	VersionHash    string
}

type rule struct {
	method  string
	pattern *Pattern
	kind    Kind
}

// Router holds the ordered rule table. Rules are evaluated in declaration
// order and the first match wins, so more specific path shapes are listed
// before their prefixes (ServeAttachment before ListAttachments, and the
// version pair likewise).
type Router struct {
	rules []rule
}

// New builds the router for the wiki REST surface.
func New() *Router {
	websPath := MustCompile("/webs")
	pagesPath := MustCompile("/webs/:web_name/pages")
	pagePath := MustCompile("/webs/:web_name/pages/:page_name")
	attachmentPath := MustCompile("/webs/:web_name/pages/:page_name/attachments/:attachment_name")
	attachmentsPath := MustCompile("/webs/:web_name/pages/:page_name/attachments")
	versionPath := MustCompile("/webs/:web_name/pages/:page_name/versions/:version_hash")
	versionsPath := MustCompile("/webs/:web_name/pages/:page_name/versions")

	return &Router{rules: []rule{
		{http.MethodGet, attachmentPath, KindServeAttachment},
		{http.MethodGet, attachmentsPath, KindListAttachments},
		{http.MethodGet, versionPath, KindShowPageVersion},
		{http.MethodGet, versionsPath, KindListPageVersions},
		{http.MethodGet, pagePath, KindShowPage},
		{http.MethodGet, pagesPath, KindListPages},
		{http.MethodGet, websPath, KindListWebs},
		{http.MethodPost, attachmentsPath, KindCreateAttachment},
		{http.MethodPost, pagesPath, KindCreatePage},
		{http.MethodPost, websPath, KindCreateWeb},
		{http.MethodPut, pagePath, KindUpdatePage},
	}}
}

// Route classifies a method and path. Pure function: no state beyond the
// compiled rule table.
func (r *Router) Route(method, path string) Route {
	for _, rl := range r.rules {
		if rl.method != method {
			continue
		}
		params := rl.pattern.Match(path)
		if params == nil {
			continue
		}
		return Route{
			Kind:           rl.kind,
			WebName:        params["web_name"],
			PageName:       params["page_name"],
			AttachmentName: params["attachment_name"],
			VersionHash:    params["version_hash"],
		}
	}
	return Route{Kind: KindInvalid}
}

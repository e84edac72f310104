package urlfilter

import (
	"net/url"
	"path"
	"strings"
)

// defaultIgnoredSchemes are browser-internal pages that are never classified.
var defaultIgnoredSchemes = []string{"about", "chrome", "chrome-extension", "chrome-search", "devtools", "edge", "view-source"}

type hostPattern struct {
	pattern   string
	matchPath bool // true = match against host+path; false = match against hostname only
	glob      bool
}

// Filter checks URLs against the ignore rules.
// Patterns without '/' match the hostname only ("localhost", "*.internal.example.com").
// Patterns with '/' match host+path ("mail.example.com/inbox"); a pattern
// without glob characters also matches everything below that path.
type Filter struct {
	schemes  map[string]bool
	patterns []hostPattern
}

// New creates a Filter from raw pattern strings.
// Blank lines and lines starting with '#' are skipped.
func New(rawPatterns []string) *Filter {
	f := &Filter{schemes: make(map[string]bool, len(defaultIgnoredSchemes))}
	for _, s := range defaultIgnoredSchemes {
		f.schemes[s] = true
	}
	for _, raw := range rawPatterns {
		raw = strings.ToLower(strings.TrimSpace(raw))
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}
		f.patterns = append(f.patterns, hostPattern{
			pattern:   strings.TrimSuffix(raw, "/"),
			matchPath: strings.Contains(raw, "/"),
			glob:      strings.ContainsAny(raw, "*?["),
		})
	}
	return f
}

// Ignored reports whether rawURL must not be classified. Empty and
// unparsable URLs are ignored.
func (f *Filter) Ignored(rawURL string) bool {
	if rawURL == "" {
		return true
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return true
	}
	if f.schemes[strings.ToLower(u.Scheme)] {
		return true
	}

	host := strings.ToLower(u.Hostname())
	hostPath := host + strings.TrimSuffix(u.EscapedPath(), "/")
	for _, p := range f.patterns {
		target := host
		if p.matchPath {
			target = hostPath
		}
		matched, err := path.Match(p.pattern, target)
		if err != nil {
			// Bad pattern, skip rather than fail.
			continue
		}
		if matched {
			return true
		}
		if p.matchPath && !p.glob && strings.HasPrefix(target, p.pattern+"/") {
			return true
		}
	}
	return false
}

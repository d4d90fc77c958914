package sanitize

import (
	"net/url"
	"regexp"
	"strings"
	"sync"
)

// Field length limits matching the column constraints in internal/db.
const (
	MaxDisplayName = 100
	MaxBio         = 500
	MaxAvatarURL   = 2048
	MaxLabel       = 100
	MaxURL         = 2048
	MaxTemplateLen = 65536
	MinSlugLen     = 2
	MaxSlugLen     = 48
)

// DefaultSlugToken is used when slug derivation produces an empty result.
const DefaultSlugToken = "page"

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#039;",
)

// EscapeHTML escapes text for insertion into HTML text content.
// It is not idempotent: escaping twice double-encodes, so callers must
// escape each raw value exactly once.
func EscapeHTML(text string) string {
	return htmlEscaper.Replace(text)
}

// EscapeAttr escapes a value for use inside an HTML attribute. Literal
// newlines are folded to spaces so a value cannot break out of the attribute.
func EscapeAttr(text string) string {
	return strings.ReplaceAll(EscapeHTML(text), "\n", " ")
}

// IsSafeURL reports whether a stored URL may be rendered or followed.
// Only absolute http and https URLs qualify; anything unparsable or carrying
// another scheme (javascript:, data:, file:, ...) is rejected.
func IsSafeURL(raw string) bool {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return false
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

// IsSafeRedirectPath reports whether a path is safe as an internal redirect
// target: a single leading slash, no protocol-relative form, no backslash and
// no colon that could smuggle a scheme.
func IsSafeRedirectPath(path string) bool {
	return strings.HasPrefix(path, "/") &&
		!strings.HasPrefix(path, "//") &&
		!strings.Contains(path, `\`) &&
		!strings.Contains(path, ":")
}

var (
	slugInvalidRun = regexp.MustCompile(`[^a-z0-9-]+`)
	slugDashRun    = regexp.MustCompile(`-+`)
	slugPattern    = regexp.MustCompile(`^[a-z0-9-]+$`)
)

// SlugFromString derives a slug from arbitrary input: lowercased, runs of
// disallowed characters replaced by a hyphen, hyphen runs collapsed, edges
// trimmed. Falls back to DefaultSlugToken when nothing survives.
func SlugFromString(input string) string {
	s := strings.ToLower(strings.TrimSpace(input))
	s = slugInvalidRun.ReplaceAllString(s, "-")
	s = slugDashRun.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return DefaultSlugToken
	}
	return s
}

// SlugFromEmail derives a candidate slug from the local part of an email.
func SlugFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	if local == "" {
		local = "user"
	}
	return SlugFromString(local)
}

// IsValidSlug reports whether a slug is acceptable for a page: matching the
// slug pattern, within length bounds and not reserved.
func IsValidSlug(slug string) bool {
	if len(slug) < MinSlugLen || len(slug) > MaxSlugLen {
		return false
	}
	if !slugPattern.MatchString(slug) {
		return false
	}
	return !IsReservedSlug(slug)
}

// Baseline reserved set: every literal path segment the app routes plus the
// static legal pages of the public site. The router merges its live route
// table on top at startup via ReserveSlugs.
var (
	reservedMu    sync.RWMutex
	reservedSlugs = map[string]struct{}{
		"login":            {},
		"logout":           {},
		"dashboard":        {},
		"auth":             {},
		"api":              {},
		"admin":            {},
		"go":               {},
		"static":           {},
		"ping":             {},
		"mentions-legales": {},
		"confidentialite":  {},
		"conditions":       {},
		"contact":          {},
		"favicon.ico":      {},
		"robots.txt":       {},
	}
)

// IsReservedSlug reports whether a slug collides with a system route,
// case-insensitively.
func IsReservedSlug(slug string) bool {
	reservedMu.RLock()
	defer reservedMu.RUnlock()
	_, ok := reservedSlugs[strings.ToLower(strings.TrimSpace(slug))]
	return ok
}

// ReserveSlugs adds route segments to the reserved set. Called by the router
// with its registered top-level segments so the set cannot drift from the
// real route table.
func ReserveSlugs(slugs ...string) {
	reservedMu.Lock()
	defer reservedMu.Unlock()
	for _, s := range slugs {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			reservedSlugs[s] = struct{}{}
		}
	}
}

var botPattern = regexp.MustCompile(`(?i)bot|crawler|spider|slurp|preview|facebookexternalhit|whatsapp|telegram|discord|embedly|quora link preview`)

// IsBotUserAgent classifies a user agent for click stats. A missing UA
// counts as a bot.
func IsBotUserAgent(userAgent string) bool {
	if strings.TrimSpace(userAgent) == "" {
		return true
	}
	return botPattern.MatchString(userAgent)
}

// ReferrerToDomain reduces a referrer URL to its hostname, or "" when absent
// or unparsable. Path and query are never retained.
func ReferrerToDomain(referrer string) string {
	if strings.TrimSpace(referrer) == "" {
		return ""
	}
	u, err := url.Parse(referrer)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

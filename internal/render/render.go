// Package render merges a trusted template skeleton with untrusted page data.
//
// Templates are authored by privileged users and substituted verbatim; every
// piece of page- or link-supplied data passes through internal/sanitize
// exactly once before it reaches the output. The TrustedHTML type marks the
// boundary: only template skeletons and fragments built here carry it.
package render

import (
	"strings"
	"unicode"

	"github.com/linkhub/internal/sanitize"
)

// TrustedHTML is markup that is safe to emit as-is: either an admin-authored
// template skeleton or a fragment assembled by this package from escaped
// values. Raw user data must never be converted to TrustedHTML directly.
type TrustedHTML string

// PageData is the untrusted profile data substituted into a template.
// Empty strings stand in for absent values.
type PageData struct {
	DisplayName string
	Bio         string
	AvatarURL   string
}

// LinkData is one link row as needed for public rendering.
type LinkData struct {
	Label string
	URL   string
	Type  string
	Icon  string
}

// Recognized placeholders. Substitution is literal and case-sensitive;
// unrecognized tokens are left untouched.
const (
	placeholderDisplayName = "{{display_name}}"
	placeholderBio         = "{{bio}}"
	placeholderAvatarURL   = "{{avatar_url}}"
	placeholderAvatarBlock = "{{avatar_block}}"
	placeholderLinks       = "{{links}}"
)

// Render substitutes the five recognized placeholders in tpl with escaped
// page data and the pre-built links fragment. There is no templating logic
// beyond token substitution.
func Render(tpl TrustedHTML, page PageData, links TrustedHTML) TrustedHTML {
	avatarURL := ""
	if sanitize.IsSafeURL(page.AvatarURL) {
		avatarURL = sanitize.EscapeAttr(strings.TrimSpace(page.AvatarURL))
	}

	r := strings.NewReplacer(
		placeholderDisplayName, sanitize.EscapeHTML(page.DisplayName),
		placeholderBio, sanitize.EscapeHTML(page.Bio),
		placeholderAvatarURL, avatarURL,
		placeholderAvatarBlock, string(avatarBlock(page)),
		placeholderLinks, string(links),
	)
	return TrustedHTML(r.Replace(string(tpl)))
}

// avatarBlock builds ready-made avatar markup so templates need no
// conditionals: an <img> when a safe URL exists, an initials badge when only
// a display name exists, otherwise nothing.
func avatarBlock(page PageData) TrustedHTML {
	if sanitize.IsSafeURL(page.AvatarURL) {
		var b strings.Builder
		b.WriteString(`<img class="avatar" src="`)
		b.WriteString(sanitize.EscapeAttr(strings.TrimSpace(page.AvatarURL)))
		b.WriteString(`" alt="`)
		b.WriteString(sanitize.EscapeAttr(page.DisplayName))
		b.WriteString(`">`)
		return TrustedHTML(b.String())
	}

	initial := firstInitial(page.DisplayName)
	if initial == "" {
		return ""
	}
	return TrustedHTML(`<div class="avatar avatar--initials">` + sanitize.EscapeHTML(initial) + `</div>`)
}

func firstInitial(name string) string {
	for _, r := range strings.TrimSpace(name) {
		return string(unicode.ToUpper(r))
	}
	return ""
}

// iconClass maps the free-text type/icon hints to a presentational CSS
// class. Unknown values degrade to the generic link icon.
var iconClasses = map[string]string{
	"website":   "icon--website",
	"social":    "icon--social",
	"mail":      "icon--mail",
	"phone":     "icon--phone",
	"instagram": "icon--instagram",
	"facebook":  "icon--facebook",
	"youtube":   "icon--youtube",
	"twitter":   "icon--twitter",
	"linkedin":  "icon--linkedin",
	"tiktok":    "icon--tiktok",
}

func iconClass(link LinkData) string {
	if cls, ok := iconClasses[strings.ToLower(strings.TrimSpace(link.Icon))]; ok {
		return cls
	}
	if cls, ok := iconClasses[strings.ToLower(strings.TrimSpace(link.Type))]; ok {
		return cls
	}
	return "icon--link"
}

// BuildLinksHTML renders the fragment substituted for {{links}}. The caller
// supplies links already filtered to active rows and sorted by sort order;
// this function does not re-filter. Links whose URL fails the safety check
// are dropped from the output entirely. An empty input yields an empty
// fragment.
func BuildLinksHTML(links []LinkData) TrustedHTML {
	var b strings.Builder
	for _, link := range links {
		if !sanitize.IsSafeURL(link.URL) {
			continue
		}
		b.WriteString(`<li class="link-item"><a class="link" href="`)
		b.WriteString(sanitize.EscapeAttr(strings.TrimSpace(link.URL)))
		b.WriteString(`" target="_blank" rel="noopener noreferrer"><span class="icon `)
		b.WriteString(iconClass(link))
		b.WriteString(`"></span><span class="label">`)
		b.WriteString(sanitize.EscapeHTML(link.Label))
		b.WriteString(`</span></a></li>`)
	}
	return TrustedHTML(b.String())
}

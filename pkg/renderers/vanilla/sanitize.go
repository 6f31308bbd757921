package vanilla

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	iconPolicy = newIconPolicy()
	helpPolicy = newHelpPolicy()
)

// newIconPolicy permits the small markup surface section icons use: icon-font
// <i>/<span> tags plus inline SVG, stripped of anything scriptable.
func newIconPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("i", "span", "svg", "path", "use")
	p.AllowAttrs("class", "aria-hidden").OnElements("i", "span", "svg")
	p.AllowAttrs("viewBox", "width", "height", "fill", "xmlns").OnElements("svg")
	p.AllowAttrs("d", "fill").OnElements("path")
	p.AllowAttrs("href").OnElements("use")
	return p
}

// newHelpPolicy permits the inline formatting help text may carry.
func newHelpPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("em", "strong", "code", "br")
	p.AllowAttrs("href").OnElements("a")
	p.AllowStandardURLs()
	p.RequireNoFollowOnLinks(true)
	return p
}

// sanitizeIcon returns safe icon markup. A bare class string such as
// "fas fa-user" is wrapped in an <i> tag; anything containing markup is run
// through the icon policy.
func sanitizeIcon(icon string) string {
	icon = strings.TrimSpace(icon)
	if icon == "" {
		return ""
	}
	if !strings.Contains(icon, "<") {
		return iconPolicy.Sanitize(`<i class="` + icon + `" aria-hidden="true"></i>`)
	}
	return iconPolicy.Sanitize(icon)
}

func sanitizeHelpText(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	return helpPolicy.Sanitize(text)
}

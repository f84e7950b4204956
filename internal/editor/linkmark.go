package editor

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// LinkMentionMark is the mark type for inline link previews.
const LinkMentionMark = "linkMention"

// LinkTitle derives a display title from href: the host without a leading
// "www.". Hrefs that do not parse as absolute URLs come back unchanged.
func LinkTitle(href string) string {
	parsed, err := url.Parse(href)
	if err != nil || parsed.Host == "" {
		return href
	}
	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		return href
	}
	return strings.TrimPrefix(host, "www.")
}

// NewLinkMention builds a linkMention mark. An empty title is stored as null.
func NewLinkMention(href, title string) Mark {
	attrs := map[string]any{"href": href, "title": nil}
	if title != "" {
		attrs["title"] = title
	}
	return Mark{Type: LinkMentionMark, Attrs: attrs}
}

// linkDisplayText is the derived label for a link without its own text:
// the title, unless it is missing or just repeats the href.
func linkDisplayText(href, title string) string {
	if title == "" || title == href {
		return LinkTitle(href)
	}
	return title
}

// renderLinkMention wraps inner, the already rendered link text, in an
// anchor. Empty text, or text that is just the href, shows the derived
// label instead. Script hrefs lose the anchor and keep the text.
func renderLinkMention(mark Mark, inner, text string) string {
	href := mark.attr("href")
	if strings.TrimSpace(text) == "" || text == href {
		inner = html.EscapeString(linkDisplayText(href, mark.attr("title")))
	}
	if !safeHref(href) {
		return inner
	}
	return `<a href="` + html.EscapeString(href) + `" class="notion-link" rel="noopener noreferrer" target="_blank">` +
		inner + `</a>`
}

// safeHref rejects empty and script URLs, on import and on render.
func safeHref(href string) bool {
	href = strings.ToLower(strings.Join(strings.Fields(href), ""))
	return href != "" && !strings.Contains(href, "javascript:") && !strings.HasPrefix(href, "vbscript:") &&
		!strings.HasPrefix(href, "data:text/html")
}

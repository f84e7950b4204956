package editor

import (
	"golang.org/x/net/html"
)

// MentionNode is the node type of an atomic inline mention.
const MentionNode = "mention"

const mentionClass = "notion-mention"

// NewMention builds a mention node. An empty url is stored as null.
func NewMention(text, url string) Node {
	attrs := map[string]any{"text": text, "url": nil}
	if url != "" {
		attrs["url"] = url
	}
	return Node{Type: MentionNode, Attrs: attrs}
}

// RenderMention serializes a mention node to its non-editable span.
func RenderMention(node Node) string {
	out := `<span class="` + mentionClass + `"`
	if url := node.attr("url"); url != "" {
		out += ` data-url="` + html.EscapeString(url) + `"`
	}
	return out + ` contenteditable="false">` + html.EscapeString(node.attr("text")) + `</span>`
}

func isMentionElement(n *html.Node) bool {
	return n.Type == html.ElementNode && n.Data == "span" && attrValue(n, "class") == mentionClass
}

func parseMention(n *html.Node) Node {
	return NewMention(textContent(n), attrValue(n, "data-url"))
}

package editor

import (
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// ToHTML renders a document tree to HTML.
func ToHTML(doc Node) string {
	return renderNode(doc)
}

// RenderJSON renders stored content. Nil content renders as "".
func RenderJSON(raw json.RawMessage) (string, error) {
	doc, err := Decode(raw)
	if err != nil {
		return "", err
	}
	return ToHTML(doc), nil
}

func renderNode(node Node) string {
	switch node.Type {
	case "doc":
		return renderContent(node.Content)
	case "paragraph":
		return fmt.Sprintf("<p>%s</p>\n", renderContent(node.Content))
	case "heading":
		level := headingLevel(node.Attrs["level"])
		return fmt.Sprintf("<h%d>%s</h%d>\n", level, renderContent(node.Content), level)
	case "bulletList":
		return fmt.Sprintf("<ul>\n%s</ul>\n", renderContent(node.Content))
	case "orderedList":
		return fmt.Sprintf("<ol>\n%s</ol>\n", renderContent(node.Content))
	case "listItem":
		return fmt.Sprintf("<li>%s</li>\n", renderContent(node.Content))
	case "blockquote":
		return fmt.Sprintf("<blockquote>\n%s</blockquote>\n", renderContent(node.Content))
	case "codeBlock":
		// Code is shown verbatim, marks and all.
		return fmt.Sprintf("<pre><code>%s</code></pre>\n", html.EscapeString(rawText(node.Content)))
	case "text":
		return renderTextWithMarks(node.Text, node.Marks)
	case MentionNode:
		return RenderMention(node)
	case "hardBreak":
		return "<br>"
	case "table":
		return fmt.Sprintf("<table>\n%s</table>\n", renderContent(node.Content))
	case "tableRow":
		return fmt.Sprintf("<tr>\n%s</tr>\n", renderContent(node.Content))
	case "tableCell":
		return fmt.Sprintf("<td>%s</td>\n", renderContent(node.Content))
	case "tableHeader":
		return fmt.Sprintf("<th>%s</th>\n", renderContent(node.Content))
	case "horizontalRule":
		return "<hr>\n"
	default:
		return renderContent(node.Content)
	}
}

func renderContent(content []Node) string {
	var result strings.Builder
	for i := 0; i < len(content); {
		link, ok := linkMentionOf(content[i])
		if !ok {
			result.WriteString(renderNode(content[i]))
			i++
			continue
		}
		// Consecutive text carrying the same link becomes one anchor.
		var inner, text strings.Builder
		j := i
		for ; j < len(content); j++ {
			next, ok := linkMentionOf(content[j])
			if !ok || !sameLink(link, next) {
				break
			}
			inner.WriteString(renderTextWithMarks(content[j].Text, withoutMark(content[j].Marks, LinkMentionMark)))
			text.WriteString(content[j].Text)
		}
		result.WriteString(renderLinkMention(link, inner.String(), text.String()))
		i = j
	}
	return result.String()
}

func renderTextWithMarks(text string, marks []Mark) string {
	if text == "" {
		return ""
	}

	htmlText := html.EscapeString(text)

	// The first mark ends up outermost.
	for i := len(marks) - 1; i >= 0; i-- {
		mark := marks[i]
		switch mark.Type {
		case "bold":
			htmlText = "<strong>" + htmlText + "</strong>"
		case "italic":
			htmlText = "<em>" + htmlText + "</em>"
		case "code":
			htmlText = "<code>" + htmlText + "</code>"
		case "link":
			if href := mark.attr("href"); safeHref(href) {
				htmlText = fmt.Sprintf(`<a href="%s">%s</a>`, html.EscapeString(href), htmlText)
			}
		case LinkMentionMark:
			htmlText = renderLinkMention(mark, htmlText, text)
		case "strike":
			htmlText = "<s>" + htmlText + "</s>"
		case "underline":
			htmlText = "<u>" + htmlText + "</u>"
		}
	}

	return htmlText
}

func linkMentionOf(node Node) (Mark, bool) {
	if node.Type != "text" {
		return Mark{}, false
	}
	for _, mark := range node.Marks {
		if mark.Type == LinkMentionMark {
			return mark, true
		}
	}
	return Mark{}, false
}

func sameLink(a, b Mark) bool {
	return a.attr("href") == b.attr("href") && a.attr("title") == b.attr("title")
}

func withoutMark(marks []Mark, markType string) []Mark {
	kept := make([]Mark, 0, len(marks))
	for _, mark := range marks {
		if mark.Type != markType {
			kept = append(kept, mark)
		}
	}
	return kept
}

func headingLevel(value any) int {
	level := 1
	switch v := value.(type) {
	case float64:
		level = int(v)
	case int:
		level = v
	}
	if level < 1 || level > 6 {
		return 1
	}
	return level
}

func rawText(content []Node) string {
	var b strings.Builder
	for _, child := range content {
		if child.Type == "text" {
			b.WriteString(child.Text)
			continue
		}
		b.WriteString(rawText(child.Content))
	}
	return b.String()
}

package editor

import (
	"encoding/json"
	"strings"
	"unicode/utf8"
)

// PlainText flattens a document to text, one line per block.
func PlainText(doc Node) string {
	var b strings.Builder
	writePlain(&b, doc)
	return strings.TrimRight(b.String(), "\n")
}

func writePlain(b *strings.Builder, node Node) {
	switch node.Type {
	case "text":
		b.WriteString(node.Text)
		return
	case MentionNode:
		b.WriteString(node.attr("text"))
		return
	case "hardBreak":
		b.WriteByte('\n')
		return
	}

	for _, child := range node.Content {
		writePlain(b, child)
	}
	if isTextBlock(node.Type) && b.Len() > 0 && !strings.HasSuffix(b.String(), "\n") {
		b.WriteByte('\n')
	}
}

func isTextBlock(nodeType string) bool {
	switch nodeType {
	case "paragraph", "heading", "codeBlock":
		return true
	}
	return false
}

// Excerpt returns at most limit runes of the document's text with
// whitespace collapsed, ending in an ellipsis when cut.
func Excerpt(doc Node, limit int) string {
	text := strings.Join(strings.Fields(PlainText(doc)), " ")
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return strings.TrimRight(string(runes[:limit]), " ") + "…"
}

// ExcerptJSON is Excerpt over stored content; undecodable content has no
// excerpt.
func ExcerptJSON(raw json.RawMessage, limit int) string {
	doc, err := Decode(raw)
	if err != nil {
		return ""
	}
	return Excerpt(doc, limit)
}

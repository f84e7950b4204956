package editor

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// FromHTML parses external markup, such as pasted HTML, into a document.
// Unknown elements contribute their children; script and style contribute
// nothing.
func FromHTML(markup string) (Node, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(markup), body)
	if err != nil {
		return Node{}, fmt.Errorf("parse html: %w", err)
	}

	p := &parser{}
	for _, n := range nodes {
		p.block(n)
	}
	p.flush()
	return Node{Type: "doc", Content: p.blocks}, nil
}

// parser collects block nodes, wrapping stray inline content in paragraphs.
type parser struct {
	blocks []Node
	inline []Node
}

func (p *parser) flush() {
	content := trimInline(p.inline)
	p.inline = nil
	if len(content) == 0 {
		return
	}
	p.blocks = append(p.blocks, Node{Type: "paragraph", Content: content})
}

func (p *parser) emit(block Node) {
	p.flush()
	p.blocks = append(p.blocks, block)
}

func (p *parser) block(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		p.inline = appendInline(p.inline, n, nil)
		return
	case html.ElementNode:
	default:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			p.block(c)
		}
		return
	}

	switch n.DataAtom {
	case atom.Script, atom.Style, atom.Template, atom.Head:
		return
	case atom.P:
		p.emit(Node{Type: "paragraph", Content: parseInline(n)})
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		level := int(n.Data[1] - '0')
		p.emit(Node{Type: "heading", Attrs: map[string]any{"level": level}, Content: parseInline(n)})
	case atom.Ul:
		p.emit(Node{Type: "bulletList", Content: parseItems(n)})
	case atom.Ol:
		p.emit(Node{Type: "orderedList", Content: parseItems(n)})
	case atom.Blockquote:
		p.emit(Node{Type: "blockquote", Content: parseBlocks(n)})
	case atom.Pre:
		code := Node{Type: "codeBlock"}
		if text := strings.TrimSuffix(textContent(n), "\n"); text != "" {
			code.Content = []Node{{Type: "text", Text: text}}
		}
		p.emit(code)
	case atom.Hr:
		p.emit(Node{Type: "horizontalRule"})
	case atom.Table:
		p.emit(Node{Type: "table", Content: parseRows(n)})
	case atom.Div, atom.Section, atom.Article, atom.Main, atom.Header, atom.Footer, atom.Body, atom.Html:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			p.block(c)
		}
	default:
		p.inline = appendInline(p.inline, n, nil)
	}
}

func parseBlocks(n *html.Node) []Node {
	p := &parser{}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		p.block(c)
	}
	p.flush()
	if len(p.blocks) == 0 {
		return []Node{{Type: "paragraph"}}
	}
	return p.blocks
}

func parseItems(list *html.Node) []Node {
	var items []Node
	for c := list.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.Li {
			items = append(items, Node{Type: "listItem", Content: parseBlocks(c)})
		}
	}
	return items
}

func parseRows(table *html.Node) []Node {
	var rows []Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.DataAtom {
			case atom.Thead, atom.Tbody, atom.Tfoot:
				walk(c)
			case atom.Tr:
				rows = append(rows, Node{Type: "tableRow", Content: parseCells(c)})
			}
		}
	}
	walk(table)
	return rows
}

func parseCells(row *html.Node) []Node {
	var cells []Node
	for c := row.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.DataAtom {
		case atom.Td:
			cells = append(cells, Node{Type: "tableCell", Content: parseBlocks(c)})
		case atom.Th:
			cells = append(cells, Node{Type: "tableHeader", Content: parseBlocks(c)})
		}
	}
	return cells
}

func parseInline(n *html.Node) []Node {
	var out []Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = appendInline(out, c, nil)
	}
	return trimInline(out)
}

// appendInline converts n to inline nodes carrying marks.
func appendInline(out []Node, n *html.Node, marks []Mark) []Node {
	switch n.Type {
	case html.TextNode:
		return appendText(out, collapseSpace(n.Data), marks)
	case html.ElementNode:
	default:
		return out
	}

	if isMentionElement(n) {
		return append(out, parseMention(n))
	}

	var mark *Mark
	switch n.DataAtom {
	case atom.Script, atom.Style, atom.Template:
		return out
	case atom.Br:
		return append(out, Node{Type: "hardBreak"})
	case atom.Img:
		return out
	case atom.Strong, atom.B:
		mark = &Mark{Type: "bold"}
	case atom.Em, atom.I:
		mark = &Mark{Type: "italic"}
	case atom.Code:
		mark = &Mark{Type: "code"}
	case atom.S, atom.Strike, atom.Del:
		mark = &Mark{Type: "strike"}
	case atom.U:
		mark = &Mark{Type: "underline"}
	case atom.A:
		if href := attrValue(n, "href"); safeHref(href) {
			title := strings.TrimSpace(collapseSpace(textContent(n)))
			if title == "" {
				title = LinkTitle(href)
			}
			m := NewLinkMention(href, title)
			mark = &m
		}
	}

	childMarks := marks
	if mark != nil {
		childMarks = append(append([]Mark(nil), marks...), *mark)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = appendInline(out, c, childMarks)
	}
	// An anchor with no text still carries its link.
	if mark != nil && mark.Type == LinkMentionMark && n.FirstChild == nil {
		out = appendText(out, mark.attr("title"), childMarks)
	}
	return out
}

// appendText merges adjacent text with identical marks.
func appendText(out []Node, text string, marks []Mark) []Node {
	last := len(out) - 1
	if last >= 0 && out[last].Type == "text" && strings.HasSuffix(out[last].Text, " ") {
		text = strings.TrimPrefix(text, " ")
	}
	if text == "" {
		return out
	}
	if last >= 0 && out[last].Type == "text" && sameMarks(out[last].Marks, marks) {
		out[last].Text += text
		return out
	}
	return append(out, Node{Type: "text", Text: text, Marks: marks})
}

// trimInline drops leading and trailing whitespace of a block's inline run.
func trimInline(nodes []Node) []Node {
	for len(nodes) > 0 && nodes[0].Type == "text" {
		nodes[0].Text = strings.TrimLeft(nodes[0].Text, " ")
		if nodes[0].Text != "" {
			break
		}
		nodes = nodes[1:]
	}
	for len(nodes) > 0 && nodes[len(nodes)-1].Type == "text" {
		last := len(nodes) - 1
		nodes[last].Text = strings.TrimRight(nodes[last].Text, " ")
		if nodes[last].Text != "" {
			break
		}
		nodes = nodes[:last]
	}
	return nodes
}

func sameMarks(a, b []Mark) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Type != b[i].Type || a[i].attr("href") != b[i].attr("href") || a[i].attr("title") != b[i].attr("title") {
			return false
		}
	}
	return true
}

func collapseSpace(s string) string {
	var b strings.Builder
	space := false
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r', '\f':
			space = true
			continue
		}
		if space {
			b.WriteByte(' ')
			space = false
		}
		b.WriteRune(r)
	}
	if space {
		b.WriteByte(' ')
	}
	return b.String()
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(textContent(c))
	}
	return b.String()
}

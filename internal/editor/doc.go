// Package editor models the rich-text content the note editor produces:
// ProseMirror JSON documents, the mention node, the linkMention mark and
// the slash command menu.
package editor

import (
	"bytes"
	"encoding/json"
	"errors"
)

// ErrInvalidContent is returned for content that is neither null nor a
// JSON object.
var ErrInvalidContent = errors.New("content must be a JSON object or null")

// Node is a node in a ProseMirror document tree.
type Node struct {
	Type    string         `json:"type"`
	Attrs   map[string]any `json:"attrs,omitempty"`
	Content []Node         `json:"content,omitempty"`
	Text    string         `json:"text,omitempty"`
	Marks   []Mark         `json:"marks,omitempty"`
}

// Mark is a formatting mark on a text node.
type Mark struct {
	Type  string         `json:"type"`
	Attrs map[string]any `json:"attrs,omitempty"`
}

func (n Node) attr(key string) string {
	value, _ := n.Attrs[key].(string)
	return value
}

func (m Mark) attr(key string) string {
	value, _ := m.Attrs[key].(string)
	return value
}

// ValidateDoc checks stored content and returns it compacted. Empty input
// and JSON null both mean "no content" and yield nil. Values are kept
// byte for byte, so large integers survive.
func ValidateDoc(raw json.RawMessage) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	if trimmed[0] != '{' || !json.Valid(trimmed) {
		return nil, ErrInvalidContent
	}
	var compacted bytes.Buffer
	if err := json.Compact(&compacted, trimmed); err != nil {
		return nil, ErrInvalidContent
	}
	return json.RawMessage(compacted.Bytes()), nil
}

// Decode reads stored content into a document tree. Nil content decodes to
// an empty doc.
func Decode(raw json.RawMessage) (Node, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Node{Type: "doc"}, nil
	}
	var doc Node
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return Node{}, ErrInvalidContent
	}
	return doc, nil
}

// Encode marshals a document tree for storage.
func Encode(doc Node) (json.RawMessage, error) {
	encoded, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(encoded), nil
}

// Package export renders a note as a standalone HTML document for download.
package export

import (
	"encoding/json"
	"fmt"
	"html/template"
	"strings"
	"time"

	"adnote/api/internal/editor"
)

// UntitledName is shown for notes without a title.
const UntitledName = "Untitled"

// Note is the content being exported.
type Note struct {
	Title     string
	Content   json.RawMessage
	UpdatedAt time.Time
}

// Result contains the export output
type Result struct {
	Data     []byte
	Filename string
	MimeType string
}

// HTML renders note as a complete HTML page.
func HTML(note Note) (*Result, error) {
	body, err := editor.RenderJSON(note.Content)
	if err != nil {
		return nil, fmt.Errorf("render content: %w", err)
	}

	title := strings.TrimSpace(note.Title)
	if title == "" {
		title = UntitledName
	}

	page, err := RenderNoteHTML(TemplateData{
		Title:       title,
		ContentHTML: template.HTML(body),
		UpdatedAt:   note.UpdatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("render template: %w", err)
	}

	return &Result{
		Data:     []byte(page),
		Filename: sanitizeFilename(note.Title) + ".html",
		MimeType: "text/html; charset=utf-8",
	}, nil
}

// sanitizeFilename creates a safe filename from a title
func sanitizeFilename(title string) string {
	var result strings.Builder
	for _, r := range title {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			result.WriteRune(r)
		case r == ' ':
			result.WriteByte('-')
		case r == '-', r == '_':
			result.WriteRune(r)
		}
	}

	name := result.String()
	if len(name) > 50 {
		name = name[:50]
	}
	if name == "" {
		name = "note"
	}
	return name
}

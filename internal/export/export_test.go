package export

import (
	"encoding/json"
	"html/template"
	"strings"
	"testing"
	"time"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Hello World", "Hello-World"},
		{"My Note v1.2", "My-Note-v12"},
		{"Special!@#$%Chars", "SpecialChars"},
		{"", "note"},
		{"Very Long Title That Exceeds Fifty Characters Limit", "Very-Long-Title-That-Exceeds-Fifty-Characters-Limi"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := sanitizeFilename(tt.input)
			if result != tt.expected {
				t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestRenderNoteHTML(t *testing.T) {
	html, err := RenderNoteHTML(TemplateData{
		Title:       "Test <Note>",
		ContentHTML: template.HTML("<p>This is the content.</p>"),
		UpdatedAt:   time.Date(2026, 3, 4, 10, 30, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("RenderNoteHTML() error = %v", err)
	}

	if !strings.Contains(html, "Test &lt;Note&gt;") {
		t.Error("title should be escaped")
	}
	if !strings.Contains(html, "<p>This is the content.</p>") {
		t.Error("content HTML should be rendered unescaped")
	}
	if !strings.Contains(html, "Mar 4, 2026 10:30 UTC") {
		t.Error("HTML missing last edited date")
	}
}

func TestHTMLExport(t *testing.T) {
	result, err := HTML(Note{
		Title:   "Weekly Plan",
		Content: json.RawMessage(`{"type":"doc","content":[{"type":"paragraph","content":[{"type":"text","text":"Ship it"}]}]}`),
	})
	if err != nil {
		t.Fatalf("HTML() error = %v", err)
	}
	if result.Filename != "Weekly-Plan.html" {
		t.Errorf("unexpected filename %q", result.Filename)
	}
	if !strings.HasPrefix(result.MimeType, "text/html") {
		t.Errorf("unexpected mime type %q", result.MimeType)
	}
	page := string(result.Data)
	if !strings.Contains(page, "<p>Ship it</p>") {
		t.Error("page missing rendered content")
	}
	if strings.Contains(page, "Last edited") {
		t.Error("zero UpdatedAt should not render a date")
	}
}

func TestHTMLExportUntitledEmpty(t *testing.T) {
	result, err := HTML(Note{})
	if err != nil {
		t.Fatalf("HTML() error = %v", err)
	}
	if !strings.Contains(string(result.Data), "<title>Untitled</title>") {
		t.Error("expected Untitled title")
	}
	if result.Filename != "note.html" {
		t.Errorf("unexpected filename %q", result.Filename)
	}
}

func TestHTMLExportRejectsBadContent(t *testing.T) {
	if _, err := HTML(Note{Content: json.RawMessage(`[1,2]`)}); err == nil {
		t.Fatal("expected error for non-object content")
	}
}

package htmlsanitize_test

import (
	"strings"
	"testing"

	"github.com/bemyforce/bemyforce/internal/app/system/htmlsanitize"
)

func TestSanitize_Empty(t *testing.T) {
	if result := htmlsanitize.Sanitize(""); result != "" {
		t.Errorf("expected empty string, got %q", result)
	}
}

func TestSanitize_KeepsInlineFormatting(t *testing.T) {
	input := "<b>Bold</b> and <i>italic</i>"
	if result := htmlsanitize.Sanitize(input); result != input {
		t.Errorf("expected inline formatting preserved, got %q", result)
	}
}

func TestSanitize_RemovesScript(t *testing.T) {
	result := htmlsanitize.Sanitize("Hello<script>alert('xss')</script>")
	if result != "Hello" {
		t.Errorf("expected script removed, got %q", result)
	}
}

func TestSanitize_RemovesJavascriptHref(t *testing.T) {
	input := `<a href="javascript:alert('xss')">Click</a>`
	if result := htmlsanitize.Sanitize(input); strings.Contains(result, "javascript:") {
		t.Errorf("expected javascript: href to be removed, got %q", result)
	}
}

func TestSanitize_RemovesOnclick(t *testing.T) {
	input := `<span onclick="alert('xss')">Click</span>`
	if result := htmlsanitize.Sanitize(input); strings.Contains(result, "onclick") {
		t.Errorf("expected onclick removed, got %q", result)
	}
}

func TestPlainText_StripsAllMarkup(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"Won the marathon", "Won the marathon"},
		{"<b>Won</b> the marathon", "Won the marathon"},
		{"  padded  ", "padded"},
		{"<script>alert(1)</script>Title", "Title"},
		{"Mom's 5k & fun run", "Mom's 5k & fun run"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := htmlsanitize.PlainText(tt.in); got != tt.want {
				t.Errorf("PlainText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSanitizeBlocks_NestedValues(t *testing.T) {
	blocks := []map[string]any{
		{
			"type": "paragraph",
			"data": map[string]any{"text": "Hi<script>x()</script>"},
		},
		{
			"type": "list",
			"data": map[string]any{
				"style": "unordered",
				"items": []any{"<b>one</b>", `<img src=x onerror="y()">`},
			},
		},
		{"type": "delimiter"},
	}

	htmlsanitize.SanitizeBlocks(blocks)

	if got := blocks[0]["data"].(map[string]any)["text"]; got != "Hi" {
		t.Errorf("paragraph text: got %q", got)
	}
	items := blocks[1]["data"].(map[string]any)["items"].([]any)
	if items[0] != "<b>one</b>" {
		t.Errorf("list item 0: got %q", items[0])
	}
	if strings.Contains(items[1].(string), "onerror") {
		t.Errorf("list item 1 kept onerror: %q", items[1])
	}
}

// internal/app/system/htmlsanitize/htmlsanitize.go
package htmlsanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	ugc    = bluemonday.UGCPolicy()
	strict = bluemonday.StrictPolicy()
)

// Sanitize keeps safe inline formatting (bold, links, lists) and strips
// scripts, event handlers and javascript: URLs. Used for rich-text block
// content produced by the editor.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return ugc.Sanitize(s)
}

// PlainText strips all markup and returns unescaped text. Used for titles
// and moderation reasons, which clients render as text.
func PlainText(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}

// SanitizeBlocks walks editor blocks and sanitizes every string value in
// each block's data in place.
func SanitizeBlocks(blocks []map[string]any) {
	for _, b := range blocks {
		if data, ok := b["data"].(map[string]any); ok {
			sanitizeValue(data)
		}
	}
}

func sanitizeValue(v any) any {
	switch t := v.(type) {
	case string:
		return Sanitize(t)
	case map[string]any:
		for k, inner := range t {
			t[k] = sanitizeValue(inner)
		}
		return t
	case []any:
		for i, inner := range t {
			t[i] = sanitizeValue(inner)
		}
		return t
	}
	return v
}

package needs

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestSanitizeDescription(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want map[string]any
	}{
		{
			name: "keeps editor metadata",
			raw:  `{"time":1700000000000,"version":"2.28.0","blocks":[{"id":"b1","type":"paragraph","data":{"text":"Hi <script>x</script><b>there</b>"}}]}`,
			want: map[string]any{
				"time":    float64(1700000000000),
				"version": "2.28.0",
				"blocks": []any{map[string]any{
					"id": "b1", "type": "paragraph",
					"data": map[string]any{"text": "Hi <b>there</b>"},
				}},
			},
		},
		{
			name: "keeps unknown top-level keys",
			raw:  `{"blocks":[{"type":"paragraph","data":{"text":"ok<script>alert(1)</script>"}}],"theme":{"dark":true}}`,
			want: map[string]any{
				"theme": map[string]any{"dark": true},
				"blocks": []any{map[string]any{
					"type": "paragraph",
					"data": map[string]any{"text": "ok"},
				}},
			},
		},
		{
			name: "drops non-object blocks",
			raw:  `{"blocks":["<b>loose</b>",{"type":"paragraph","data":{"text":"kept"}}]}`,
			want: map[string]any{
				"blocks": []any{map[string]any{
					"type": "paragraph",
					"data": map[string]any{"text": "kept"},
				}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got map[string]any
			if err := json.Unmarshal([]byte(sanitizeDescription(tt.raw)), &got); err != nil {
				t.Fatalf("output is not JSON: %v", err)
			}
			gotJSON, _ := json.Marshal(got)
			wantJSON, _ := json.Marshal(tt.want)
			if string(gotJSON) != string(wantJSON) {
				t.Errorf("got %s, want %s", gotJSON, wantJSON)
			}
		})
	}
}

func TestSanitizeDescription_PassThrough(t *testing.T) {
	for _, raw := range []string{`{}`, `{"blocks":[]}`, `{"text":"<b>plain</b>"}`, `not json`} {
		if got := sanitizeDescription(raw); got != raw {
			t.Errorf("sanitizeDescription(%q) = %q, want unchanged", raw, got)
		}
	}
	if got := sanitizeDescription(`{"blocks":[{"data":{"text":"<script>x</script>"}}]}`); strings.Contains(got, "script") {
		t.Errorf("script survived: %s", got)
	}
}

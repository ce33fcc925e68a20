package inputval

import (
	"strings"
	"testing"
)

type postInput struct {
	Title       string   `json:"title" validate:"notblank,max=200" label:"Title"`
	Description string   `json:"description" validate:"required,json" label:"Description"`
	Interests   []string `json:"interests" validate:"required,min=1,dive,objectid" label:"Interests"`
}

func TestValidate_OK(t *testing.T) {
	in := postInput{
		Title:       "Won the relay",
		Description: `{"blocks":[]}`,
		Interests:   []string{"64b7f0f0f0f0f0f0f0f0f0f0"},
	}
	if res := Validate(in); res.HasErrors() {
		t.Fatalf("expected no errors, got %v", res.All())
	}
}

func TestValidate_FirstFailingField(t *testing.T) {
	tests := []struct {
		name    string
		in      postInput
		field   string
		message string
	}{
		{
			name:    "blank title",
			in:      postInput{Title: "   ", Description: "{}", Interests: []string{"64b7f0f0f0f0f0f0f0f0f0f0"}},
			field:   "title",
			message: "Title is required",
		},
		{
			name:    "long title",
			in:      postInput{Title: strings.Repeat("a", 201), Description: "{}", Interests: []string{"64b7f0f0f0f0f0f0f0f0f0f0"}},
			field:   "title",
			message: "Title must be at most 200 characters",
		},
		{
			name:    "bad json",
			in:      postInput{Title: "ok", Description: "{not json", Interests: []string{"64b7f0f0f0f0f0f0f0f0f0f0"}},
			field:   "description",
			message: "Description must be valid JSON",
		},
		{
			name:    "no interests",
			in:      postInput{Title: "ok", Description: "{}", Interests: []string{}},
			field:   "interests",
			message: "At least one interest is required",
		},
		{
			name:    "invalid interest id",
			in:      postInput{Title: "ok", Description: "{}", Interests: []string{"nope"}},
			field:   "interests",
			message: "Interests contains an invalid id",
		},
		{
			name:    "title reported before description",
			in:      postInput{Title: "", Description: "bad"},
			field:   "title",
			message: "Title is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Validate(tt.in)
			if !res.HasErrors() {
				t.Fatal("expected errors")
			}
			first := res.FirstField()
			if first.Field != tt.field {
				t.Errorf("field: got %q, want %q", first.Field, tt.field)
			}
			if res.First() != tt.message {
				t.Errorf("message: got %q, want %q", res.First(), tt.message)
			}
		})
	}
}

func TestResult_Empty(t *testing.T) {
	var r Result
	if r.HasErrors() {
		t.Error("empty result has no errors")
	}
	if r.First() != "" {
		t.Error("First on empty result should be empty")
	}
	if len(r.All()) != 0 {
		t.Error("All on empty result should be empty")
	}
}

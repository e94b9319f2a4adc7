package services

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"bare object", `{"a":1}`, `{"a":1}`},
		{"leading prose", `Here you go: {"a":1}`, `{"a":1}`},
		{"trailing prose", `{"a":1} hope that helps`, `{"a":1}`},
		{"fenced", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"nested braces", `{"a":{"b":2}}`, `{"a":{"b":2}}`},
		{"brace inside string", `{"a":"}"}`, `{"a":"}"}`},
		{"escaped quote", `{"a":"say \"hi\""}`, `{"a":"say \"hi\""}`},
		{"no object", "sorry, cannot help", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractJSONObject(tt.in); got != tt.want {
				t.Errorf("extractJSONObject(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestRepairJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"already valid", `{"title":"x","slides":[]}`},
		{"trailing comma", `{"slides":[{"title":"a"},]}`},
		{"single quotes", `{'title': 'x'}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repairJSON(tt.in)
			if err != nil {
				t.Fatalf("repairJSON(%q) err = %v", tt.in, err)
			}
			if !json.Valid([]byte(got)) {
				t.Errorf("repaired output still invalid: %q", got)
			}
		})
	}
}

func TestBuildUserPrompt(t *testing.T) {
	t.Run("explicit slide count", func(t *testing.T) {
		p := buildUserPrompt(PlanRequest{Text: "body", NumSlides: 8, Guidance: "for execs"})
		if !strings.Contains(p, "exactly 8 slides") {
			t.Errorf("prompt = %q", p)
		}
		if !strings.Contains(p, "for execs") {
			t.Errorf("guidance missing from %q", p)
		}
		if !strings.Contains(p, "body") {
			t.Errorf("source text missing from %q", p)
		}
	})

	t.Run("auto count with notes", func(t *testing.T) {
		p := buildUserPrompt(PlanRequest{Text: "body", IncludeNotes: true})
		if !strings.Contains(p, "sensible slide count") {
			t.Errorf("prompt = %q", p)
		}
		if !strings.Contains(p, "speaker notes") {
			t.Errorf("notes request missing from %q", p)
		}
	})
}

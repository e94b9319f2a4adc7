package parser

import (
	"strings"
	"testing"
)

func TestScrubSensitive(t *testing.T) {
	tests := []struct {
		name string
		in   string
		keep string
	}{
		{"email", "reach admin@corp.io for access", "reach"},
		{"url", "docs at https://internal.corp.io/wiki page", "docs at"},
		{"api key", "token sk-abcdefghijklmnop1234 rotated", "rotated"},
		{"hex secret", "digest deadbeefdeadbeefdeadbeefdeadbeef stored", "stored"},
		{"phone", "call +1 415-555-0133 anytime", "call"},
		{"card", "card 4111 1111 1111 1111 on file", "on file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scrubSensitive(tt.in)
			if !strings.Contains(got, RedactionMarker) {
				t.Errorf("scrubSensitive(%q) = %q, no marker", tt.in, got)
			}
			if !strings.Contains(got, tt.keep) {
				t.Errorf("scrubSensitive(%q) = %q, lost surrounding text", tt.in, got)
			}
		})
	}
}

func TestScrubSensitiveLeavesPlainText(t *testing.T) {
	in := "Order 1234 ships in 5 days"
	if got := scrubSensitive(in); got != in {
		t.Errorf("scrubSensitive(%q) = %q", in, got)
	}
}

func TestStripMarkup(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"image removed", "see ![chart](img.png) here", "see  here"},
		{"link label kept", "read [the guide](https://x.io/g) first", "read the guide first"},
		{"html dropped", "bold <b>text</b> stays", "bold text stays"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripMarkup(tt.in); got != tt.want {
				t.Errorf("stripMarkup(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			"latin terminators",
			"First point. Second point! Third?",
			[]string{"First point.", "Second point!", "Third?"},
		},
		{
			"abbreviations survive",
			"Release v1.2 ships today. Notes follow.",
			[]string{"Release v1.2 ships today.", "Notes follow."},
		},
		{
			"cjk terminators",
			"これはペンです。That is all. 終わり。",
			[]string{"これはペンです。", "That is all.", "終わり。"},
		},
		{
			"dangling tail kept",
			"One. and then some",
			[]string{"One.", "and then some"},
		},
		{"empty", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitSentences(tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("splitSentences(%q) = %v, want %v", tt.in, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("sentence[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestDetectArchetype(t *testing.T) {
	tests := []struct {
		name, guidance, want string
	}{
		{"investor", "investor pitch", "investor_pitch"},
		{"sop", "standard operating procedure for the lab", "sop"},
		{"research", "research talk with results", "research_talk"},
		{"empty", "", ""},
		{"no match", "for the onboarding session", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := detectArchetype(tt.guidance)
			name := ""
			if got != nil {
				name = got.name
			}
			if name != tt.want {
				t.Errorf("detectArchetype(%q) = %q, want %q", tt.guidance, name, tt.want)
			}
		})
	}
}

func TestBucketSentenceStable(t *testing.T) {
	sections := []string{"Problem", "Solution", "Market"}
	s := "no hint words in this one at all"
	first := bucketSentence(s, sections)
	for i := 0; i < 5; i++ {
		if got := bucketSentence(s, sections); got != first {
			t.Fatalf("bucket changed between calls: %d vs %d", got, first)
		}
	}
	if got := bucketSentence("the market demand is huge", sections); got != 2 {
		t.Errorf("hinted sentence bucket = %d, want 2", got)
	}
}

package outline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Limits bounds every outline produced or accepted by the service. Constructed
// from config per process; tests build their own.
type Limits struct {
	MaxBulletsPerSlide int
	MaxTitleChars      int
	MaxBulletChars     int
	MaxNotesChars      int
	MaxTotalSlides     int
}

func DefaultLimits() Limits {
	return Limits{
		MaxBulletsPerSlide: 7,
		MaxTitleChars:      200,
		MaxBulletChars:     200,
		MaxNotesChars:      600,
		MaxTotalSlides:     60,
	}
}

// Slide is one slide of the outline exchange format shared by the LLM planner,
// the heuristic parser and the deck builder.
type Slide struct {
	Title   string   `json:"title"`
	Bullets []string `json:"bullets"`
	Layout  string   `json:"layout"`
	Notes   string   `json:"notes,omitempty"`
}

type Outline struct {
	Title               string  `json:"title"`
	Slides              []Slide `json:"slides"`
	EstimatedSlideCount int     `json:"estimated_slide_count"`
}

// Canonical layout names the builder understands.
const (
	LayoutAuto               = "auto"
	LayoutTitleAndContent    = "Title and Content"
	LayoutTwoContent         = "Two Content"
	LayoutContentWithCaption = "Content with Caption"
	LayoutPictureWithCaption = "Picture with Caption"
	LayoutBlank              = "Blank"
)

// SubBulletPrefix marks a bullet as a second-level item. The parser emits it
// for nested markdown lists and the deck builder turns it into an indent level.
const SubBulletPrefix = "  • "

var CanonicalLayouts = []string{
	LayoutAuto,
	LayoutTitleAndContent,
	LayoutTwoContent,
	LayoutContentWithCaption,
	LayoutPictureWithCaption,
	LayoutBlank,
}

// Alias table for near-miss layout spellings. Keys are normalized (lowercase,
// hyphens/underscores folded to spaces, whitespace collapsed).
var layoutAliases = map[string]string{
	"auto":                 LayoutAuto,
	"title and content":    LayoutTitleAndContent,
	"two content":          LayoutTwoContent,
	"twocontents":          LayoutTwoContent,
	"two contents":         LayoutTwoContent,
	"content with caption": LayoutContentWithCaption,
	"picture with caption": LayoutPictureWithCaption,
	"blank":                LayoutBlank,
}

var wsRe = regexp.MustCompile(`\s+`)

// CanonicalLayout resolves any layout spelling to a canonical name, defaulting
// to "auto" for anything unrecognized.
func CanonicalLayout(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.NewReplacer("-", " ", "_", " ").Replace(key)
	key = wsRe.ReplaceAllString(key, " ")
	key = strings.TrimSpace(key)
	if key == "" {
		return LayoutAuto
	}
	if canon, ok := layoutAliases[key]; ok {
		return canon
	}
	return LayoutAuto
}

// StripControls removes control characters except tab and newline.
func StripControls(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '\t' || r == '\n' || r >= 32 {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CollapseWS trims and collapses all interior whitespace runs to single spaces.
func CollapseWS(s string) string {
	return wsRe.ReplaceAllString(strings.TrimSpace(s), " ")
}

// CleanText strips controls, collapses whitespace and clamps to limit runes,
// marking truncation with an ellipsis. Idempotent: cleaning cleaned text is a
// no-op, so re-validating an outline changes nothing.
func CleanText(s string, limit int) string {
	s = CollapseWS(StripControls(s))
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	cut := limit - 1
	if cut < 0 {
		cut = 0
	}
	return strings.TrimRight(string(runes[:cut]), " ") + "…"
}

func dedupKeepOrder(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		if !seen[it] {
			seen[it] = true
			out = append(out, it)
		}
	}
	return out
}

// rawSlide and rawOutline accept any JSON-shaped producer output; field types
// stay loose so coercion happens in one place. Unknown fields are rejected.
type rawSlide struct {
	Title   any             `json:"title"`
	Bullets json.RawMessage `json:"bullets"`
	Layout  any             `json:"layout"`
	Notes   any             `json:"notes"`
}

type rawOutline struct {
	Title               any             `json:"title"`
	Slides              json.RawMessage `json:"slides"`
	EstimatedSlideCount json.RawMessage `json:"estimated_slide_count"`
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%g", t)
	case bool:
		return fmt.Sprintf("%t", t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

func decodeStrict(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// coerceBullets accepts a list of mixed types or a single string; every element
// is stringified and split on line breaks, then cleaned, deduplicated and
// capped.
func coerceBullets(raw json.RawMessage, lim Limits) []string {
	var lines []string
	if len(raw) > 0 {
		var list []any
		var single any
		if err := json.Unmarshal(raw, &list); err == nil {
			for _, item := range list {
				lines = append(lines, strings.Split(stringify(item), "\n")...)
			}
		} else if err := json.Unmarshal(raw, &single); err == nil {
			lines = append(lines, strings.Split(stringify(single), "\n")...)
		}
	}

	cleaned := make([]string, 0, len(lines))
	for _, ln := range lines {
		c := CleanText(ln, lim.MaxBulletChars)
		if c != "" {
			cleaned = append(cleaned, c)
		}
	}
	cleaned = dedupKeepOrder(cleaned)
	if len(cleaned) > lim.MaxBulletsPerSlide {
		cleaned = cleaned[:lim.MaxBulletsPerSlide]
	}
	return cleaned
}

// Validate is the contract boundary between untrusted outline producers and
// the builder. It coerces any JSON-shaped candidate into a bounded Outline,
// deterministic and idempotent; only structurally alien input (invalid JSON,
// unknown fields, a non-object/non-list slides value) is an error.
func Validate(data []byte, lim Limits) (*Outline, error) {
	var raw rawOutline
	if err := decodeStrict(data, &raw); err != nil {
		return nil, fmt.Errorf("outline shape: %w", err)
	}

	var rawSlides []rawSlide
	if len(raw.Slides) > 0 {
		if err := decodeStrict(raw.Slides, &rawSlides); err != nil {
			// A single slide-shaped object is accepted and wrapped.
			var one rawSlide
			if err2 := decodeStrict(raw.Slides, &one); err2 != nil {
				return nil, fmt.Errorf("outline slides: %w", err)
			}
			rawSlides = []rawSlide{one}
		}
	}

	slides := make([]Slide, 0, len(rawSlides))
	for _, rs := range rawSlides {
		title := CleanText(stringify(rs.Title), lim.MaxTitleChars)
		bullets := coerceBullets(rs.Bullets, lim)
		// Slides with neither title text nor bullets are dropped.
		if title == "" && len(bullets) == 0 {
			continue
		}
		if title == "" {
			title = "Slide"
		}
		s := Slide{
			Title:   title,
			Bullets: bullets,
			Layout:  CanonicalLayout(stringify(rs.Layout)),
		}
		if notes := CleanText(stringify(rs.Notes), lim.MaxNotesChars); notes != "" {
			s.Notes = notes
		}
		slides = append(slides, s)
	}

	if len(slides) == 0 {
		slides = []Slide{{Title: "Overview", Bullets: []string{}, Layout: LayoutAuto}}
	}
	if len(slides) > lim.MaxTotalSlides {
		slides = slides[:lim.MaxTotalSlides]
	}

	title := CleanText(stringify(raw.Title), lim.MaxTitleChars)
	if title == "" {
		title = "Presentation"
	}

	// The declared estimate, numeric or not, is replaced whenever inconsistent;
	// keeping it equal to the real count is an invariant downstream relies on.
	return &Outline{
		Title:               title,
		Slides:              slides,
		EstimatedSlideCount: len(slides),
	}, nil
}

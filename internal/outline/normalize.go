package outline

import (
	"fmt"
	"strings"
)

const (
	continuationSuffix = " (cont.)"
	splitKeep          = 3 // bullets kept on a slide when splitting for growth
	mergedBulletCap    = 8
)

// NormalizeCount reshapes an outline to a slide-count band: grow to min by
// splitting dense slides then padding, cap at max, and when target is non-zero
// hit exactly target (merging continuation slides back first when shrinking).
// Re-running with the same arguments on compliant input is a no-op.
func NormalizeCount(o *Outline, target, min, max int) *Outline {
	if o == nil {
		return nil
	}
	if max < 1 {
		max = 1
	}
	if min < 1 {
		min = 1
	}
	if min > max {
		min = max
	}
	if target > max {
		target = max
	}

	slides := append([]Slide(nil), o.Slides...)

	if target <= 0 {
		if len(slides) < min {
			slides = growBySplitting(slides, min)
			slides = padTo(slides, min)
		}
		if len(slides) > max {
			slides = slides[:max]
		}
	} else {
		if len(slides) < target {
			slides = growBySplitting(slides, target)
			slides = padTo(slides, target)
		} else if len(slides) > target {
			slides = mergeContinuations(slides)
			if len(slides) > target {
				slides = slides[:target]
			} else if len(slides) < target {
				slides = growBySplitting(slides, target)
				slides = padTo(slides, target)
			}
		}
	}

	return &Outline{
		Title:               o.Title,
		Slides:              slides,
		EstimatedSlideCount: len(slides),
	}
}

// growBySplitting splits slides carrying more than splitKeep bullets into the
// first splitKeep plus continuation slides of up to splitKeep each, stopping
// once goal is reached. No bullet is lost: a split started near the goal still
// drains its remainder onto continuation slides.
func growBySplitting(slides []Slide, goal int) []Slide {
	out := make([]Slide, 0, goal)
	for _, s := range slides {
		if len(out) >= goal || len(s.Bullets) <= splitKeep {
			out = append(out, s)
			continue
		}
		base := s.Title
		rest := s.Bullets[splitKeep:]
		s.Bullets = s.Bullets[:splitKeep:splitKeep]
		out = append(out, s)
		for len(rest) > 0 {
			n := splitKeep
			if n > len(rest) || len(out) >= goal {
				n = len(rest)
			}
			out = append(out, Slide{
				Title:   base + continuationSuffix,
				Bullets: rest[:n:n],
				Layout:  s.Layout,
			})
			rest = rest[n:]
		}
	}
	return out
}

func padTo(slides []Slide, goal int) []Slide {
	for len(slides) < goal {
		slides = append(slides, Slide{
			Title:   fmt.Sprintf("Slide %d", len(slides)+1),
			Bullets: []string{},
			Layout:  LayoutBlank,
		})
	}
	return slides
}

// mergeContinuations folds each slide whose title extends the preceding
// slide's title back into it, concatenating bullets up to mergedBulletCap.
func mergeContinuations(slides []Slide) []Slide {
	out := make([]Slide, 0, len(slides))
	for _, s := range slides {
		if len(out) > 0 {
			prev := &out[len(out)-1]
			if s.Title != prev.Title && strings.HasPrefix(s.Title, prev.Title) {
				merged := dedupKeepOrder(append(append([]string{}, prev.Bullets...), s.Bullets...))
				if len(merged) > mergedBulletCap {
					merged = merged[:mergedBulletCap]
				}
				prev.Bullets = merged
				continue
			}
		}
		out = append(out, s)
	}
	return out
}

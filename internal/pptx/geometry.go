package pptx

// Box is a rectangle in EMU (914400 per inch), matching DrawingML offsets
// and extents.
type Box struct {
	X, Y, Cx, Cy int64
}

func (b Box) Right() int64  { return b.X + b.Cx }
func (b Box) Bottom() int64 { return b.Y + b.Cy }
func (b Box) Area() int64   { return b.Cx * b.Cy }

func (b Box) Overlaps(o Box) bool {
	return b.X < o.Right() && o.X < b.Right() && b.Y < o.Bottom() && o.Y < b.Bottom()
}

// overlapFraction is the share of b covered by o.
func overlapFraction(b, o Box) float64 {
	if b.Area() == 0 {
		return 0
	}
	w := min64(b.Right(), o.Right()) - max64(b.X, o.X)
	h := min64(b.Bottom(), o.Bottom()) - max64(b.Y, o.Y)
	if w <= 0 || h <= 0 {
		return 0
	}
	return float64(w*h) / float64(b.Area())
}

const safeMargin = 228600 // 0.25"

// maxOccludedFraction tolerates slight brushes against existing shapes when
// placing a picture.
const maxOccludedFraction = 0.05

// findSafeZone picks a region of the slide mostly clear of occupied boxes.
// Candidates are tried in order: right half, lower band, left half, then a
// narrow right sidebar as the final fallback.
func findSafeZone(slide Box, occupied []Box) Box {
	candidates := []Box{
		{X: slide.Cx / 2, Y: slide.Cy / 5, Cx: slide.Cx/2 - safeMargin, Cy: slide.Cy*3/5 - safeMargin},
		{X: safeMargin, Y: slide.Cy * 2 / 3, Cx: slide.Cx - 2*safeMargin, Cy: slide.Cy/3 - safeMargin},
		{X: safeMargin, Y: slide.Cy / 5, Cx: slide.Cx/2 - 2*safeMargin, Cy: slide.Cy*3/5 - safeMargin},
	}
	for _, c := range candidates {
		if c.Cx <= 0 || c.Cy <= 0 {
			continue
		}
		occluded := 0.0
		for _, o := range occupied {
			occluded += overlapFraction(c, o)
		}
		if occluded <= maxOccludedFraction {
			return c
		}
	}
	return Box{
		X:  slide.Cx * 3 / 4,
		Y:  slide.Cy / 4,
		Cx: slide.Cx/4 - safeMargin,
		Cy: slide.Cy / 2,
	}
}

// fitInto scales a source rectangle to fit zone preserving aspect ratio,
// centered in the zone. A zero source fills the zone.
func fitInto(srcCx, srcCy int64, zone Box) Box {
	if srcCx <= 0 || srcCy <= 0 {
		return zone
	}
	scaleW := float64(zone.Cx) / float64(srcCx)
	scaleH := float64(zone.Cy) / float64(srcCy)
	scale := scaleW
	if scaleH < scale {
		scale = scaleH
	}
	cx := int64(float64(srcCx) * scale)
	cy := int64(float64(srcCy) * scale)
	return Box{
		X:  zone.X + (zone.Cx-cx)/2,
		Y:  zone.Y + (zone.Cy-cy)/2,
		Cx: cx,
		Cy: cy,
	}
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

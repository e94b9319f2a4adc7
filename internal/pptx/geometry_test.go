package pptx

import "testing"

func TestOverlapFraction(t *testing.T) {
	base := Box{X: 0, Y: 0, Cx: 100, Cy: 100}
	tests := []struct {
		name  string
		other Box
		want  float64
	}{
		{"identical", Box{0, 0, 100, 100}, 1.0},
		{"disjoint", Box{200, 200, 50, 50}, 0},
		{"quarter", Box{50, 50, 100, 100}, 0.25},
		{"touching edge", Box{100, 0, 50, 100}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := overlapFraction(base, tt.other); got != tt.want {
				t.Errorf("overlapFraction = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFindSafeZoneAvoidsOccupied(t *testing.T) {
	slide := Box{Cx: 12192000, Cy: 6858000}

	free := findSafeZone(slide, nil)
	if free.Cx <= 0 || free.Cy <= 0 {
		t.Fatalf("empty zone: %+v", free)
	}

	// Fill the right half; the zone must move elsewhere.
	rightHalf := Box{X: slide.Cx / 2, Y: 0, Cx: slide.Cx / 2, Cy: slide.Cy}
	moved := findSafeZone(slide, []Box{rightHalf})
	if moved == free {
		t.Error("zone did not move off an occupied region")
	}
	occl := overlapFraction(moved, rightHalf)
	if occl > maxOccludedFraction {
		t.Errorf("chosen zone still %.0f%% occluded", occl*100)
	}
}

func TestFindSafeZoneFallsBackToSidebar(t *testing.T) {
	slide := Box{Cx: 12192000, Cy: 6858000}
	everything := Box{X: 0, Y: 0, Cx: slide.Cx, Cy: slide.Cy}
	zone := findSafeZone(slide, []Box{everything})
	if zone.Cx <= 0 || zone.Cy <= 0 {
		t.Fatalf("fallback zone degenerate: %+v", zone)
	}
	if zone.X < slide.Cx/2 {
		t.Errorf("fallback sidebar expected on the right, got %+v", zone)
	}
}

func TestFitInto(t *testing.T) {
	zone := Box{X: 1000, Y: 2000, Cx: 4000, Cy: 2000}

	t.Run("wide image pins width", func(t *testing.T) {
		got := fitInto(800, 200, zone)
		if got.Cx != 4000 {
			t.Errorf("cx = %d, want 4000", got.Cx)
		}
		if got.Cy != 1000 {
			t.Errorf("cy = %d, want 1000", got.Cy)
		}
		if got.Y != 2000+(2000-1000)/2 {
			t.Errorf("not vertically centered: %+v", got)
		}
	})

	t.Run("tall image pins height", func(t *testing.T) {
		got := fitInto(200, 800, zone)
		if got.Cy != 2000 {
			t.Errorf("cy = %d, want 2000", got.Cy)
		}
		if got.Cx != 500 {
			t.Errorf("cx = %d, want 500", got.Cx)
		}
	})

	t.Run("zero source fills zone", func(t *testing.T) {
		if got := fitInto(0, 0, zone); got != zone {
			t.Errorf("got %+v, want zone", got)
		}
	})
}

func TestRelativeTarget(t *testing.T) {
	tests := []struct {
		base, part, want string
	}{
		{"ppt", "ppt/slides/slide1.xml", "slides/slide1.xml"},
		{"ppt/slides", "ppt/slideLayouts/slideLayout2.xml", "../slideLayouts/slideLayout2.xml"},
		{"ppt/notesSlides", "ppt/slides/slide2.xml", "../slides/slide2.xml"},
		{"ppt/slides", "ppt/media/image1.png", "../media/image1.png"},
	}
	for _, tt := range tests {
		if got := relativeTarget(tt.base, tt.part); got != tt.want {
			t.Errorf("relativeTarget(%q, %q) = %q, want %q", tt.base, tt.part, got, tt.want)
		}
	}
}

func TestPartNamesNumericOrder(t *testing.T) {
	p := &Package{index: make(map[string]*Part)}
	for _, name := range []string{
		"ppt/slides/slide10.xml",
		"ppt/slides/slide2.xml",
		"ppt/slides/slide1.xml",
	} {
		p.setPart(name, []byte("x"))
	}
	got := p.PartNames("ppt/slides/slide")
	want := []string{"ppt/slides/slide1.xml", "ppt/slides/slide2.xml", "ppt/slides/slide10.xml"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

package pptx

import "testing"

func TestInspect(t *testing.T) {
	data := buildTemplate(t, templateOptions{withNotesMaster: true})
	info, err := Inspect(data, DefaultZipLimits(), 0, 0)
	if err != nil {
		t.Fatal(err)
	}

	if info.SlideWidth != 12192000 || info.SlideHeight != 6858000 {
		t.Errorf("slide size = %dx%d", info.SlideWidth, info.SlideHeight)
	}
	if info.SlideCount != 1 {
		t.Errorf("slide count = %d, want 1", info.SlideCount)
	}
	if info.ImageCount != 1 {
		t.Errorf("image count = %d, want 1", info.ImageCount)
	}
	if !info.HasNotesMaster {
		t.Error("notes master not detected")
	}
	if info.MajorFont != "Calibri Light" || info.MinorFont != "Calibri" {
		t.Errorf("fonts = %q / %q", info.MajorFont, info.MinorFont)
	}
	if got := info.ThemeColors["accent1"]; got != "4472C4" {
		t.Errorf("accent1 = %q", got)
	}
	if got := info.ThemeColors["dk1"]; got != "000000" {
		t.Errorf("dk1 (sysClr fallback) = %q", got)
	}

	if len(info.Layouts) != 3 {
		t.Fatalf("layouts = %d, want 3", len(info.Layouts))
	}
	byName := make(map[string]LayoutInfo)
	for _, l := range info.Layouts {
		byName[l.Name] = l
	}
	if l := byName["Title and Content"]; !l.SupportsText {
		t.Error("Title and Content should support text")
	}
	if l := byName["Two Content"]; l.PlaceholderCount != 3 {
		t.Errorf("Two Content placeholders = %d, want 3", l.PlaceholderCount)
	}
}

func TestInspectRejectsUnsafe(t *testing.T) {
	if _, err := Inspect([]byte("nope"), DefaultZipLimits(), 0, 0); err == nil {
		t.Fatal("expected error for garbage input")
	}
}

func TestFindLayout(t *testing.T) {
	data := buildTemplate(t, templateOptions{})
	pkg, err := OpenPackage(data, DefaultZipLimits())
	if err != nil {
		t.Fatal(err)
	}
	layouts, err := pkg.Layouts()
	if err != nil {
		t.Fatal(err)
	}

	if l := FindLayout(layouts, "two content"); l == nil || l.Name != "Two Content" {
		t.Errorf("case-insensitive exact match failed: %+v", l)
	}
	if l := FindLayout(layouts, "Title"); l == nil {
		t.Error("substring match failed")
	}
	if l := FindLayout(layouts, "Picture with Caption"); l != nil {
		t.Errorf("matched %q for a picture layout the template lacks", l.Name)
	}
	if l := FindAnyLayout(layouts, []string{"Missing", "Two Content"}, capability{wantText: true}); l == nil || l.Name != "Two Content" {
		t.Errorf("preference fallback failed: %+v", l)
	}
}

func TestFindLayoutTwoContentNeedsTwoBodies(t *testing.T) {
	// A layout merely named "Two Content" does not qualify with one body.
	single := []Layout{{Name: "Two Content", Placeholders: []Placeholder{
		{Type: "title", HasTxBody: true},
		{Type: "body", Idx: "1", HasTxBody: true},
	}}}
	if l := FindLayout(single, "Two Content"); l != nil {
		t.Errorf("returned %q with only one text body", l.Name)
	}

	double := []Layout{{Name: "Two Content", Placeholders: []Placeholder{
		{Type: "title", HasTxBody: true},
		{Type: "body", Idx: "1", HasTxBody: true},
		{Type: "body", Idx: "2", HasTxBody: true},
	}}}
	if l := FindLayout(double, "Two Content"); l == nil {
		t.Error("two-body layout rejected")
	}
}

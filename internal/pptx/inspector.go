package pptx

// LayoutInfo summarizes one layout for callers that only need capabilities.
type LayoutInfo struct {
	Name             string `json:"name"`
	SupportsText     bool   `json:"supports_text"`
	SupportsPicture  bool   `json:"supports_picture"`
	PlaceholderCount int    `json:"placeholder_count"`
}

// TemplateInfo is everything the service learns about an uploaded template
// before building on it.
type TemplateInfo struct {
	SlideWidth     int64             `json:"slide_width_emu"`
	SlideHeight    int64             `json:"slide_height_emu"`
	SlideCount     int               `json:"slide_count"`
	ImageCount     int               `json:"image_count"`
	HasNotesMaster bool              `json:"has_notes_master"`
	ThemeColors    map[string]string `json:"theme_colors,omitempty"`
	MajorFont      string            `json:"major_font,omitempty"`
	MinorFont      string            `json:"minor_font,omitempty"`
	Layouts        []LayoutInfo      `json:"layouts"`
}

// Inspect validates the archive and reports the template's usable surface:
// slide geometry, theme palette, layout capabilities and reusable images.
func Inspect(data []byte, lim ZipLimits, maxImages int, maxImageBytes int64) (*TemplateInfo, error) {
	pkg, err := OpenPackage(data, lim)
	if err != nil {
		return nil, err
	}
	pres, err := openPresentation(pkg)
	if err != nil {
		return nil, err
	}
	layouts, err := pkg.Layouts()
	if err != nil {
		return nil, err
	}

	info := &TemplateInfo{
		SlideWidth:     pres.slideSize.Cx,
		SlideHeight:    pres.slideSize.Cy,
		SlideCount:     len(pres.slideParts),
		ImageCount:     len(pkg.MediaImages(maxImages, maxImageBytes)),
		HasNotesMaster: pres.notesMasterPart() != "",
	}
	theme := pkg.Theme()
	if len(theme.Colors) > 0 {
		info.ThemeColors = theme.Colors
	}
	info.MajorFont = theme.MajorFont
	info.MinorFont = theme.MinorFont
	for _, l := range layouts {
		info.Layouts = append(info.Layouts, LayoutInfo{
			Name:             l.Name,
			SupportsText:     l.SupportsText(),
			SupportsPicture:  l.SupportsPicture(),
			PlaceholderCount: len(l.Placeholders),
		})
	}
	return info, nil
}

package pptx

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"path"
	"strconv"
	"strings"

	"deckgen-backend/internal/outline"
)

// BuildOptions steers deck assembly.
type BuildOptions struct {
	Guidance      string
	IncludeNotes  bool
	ReuseImages   bool
	MaxImages     int
	MaxImageBytes int64
}

var (
	titleLayoutPrefs   = []string{"Title Slide", "Title Only", "Section Header", "Title"}
	contentLayoutPrefs = []string{"Title and Content", "Two Content", "Content with Caption", "Blank"}
)

// twoColumnThreshold is the bullet count from which a Two Content layout
// splits bullets across both body placeholders.
const twoColumnThreshold = 6

const pixelEMU = 9525 // 96 dpi

type imagePlacement struct {
	mediaPart string
	box       Box
}

type slideSpec struct {
	layout   *Layout
	title    string
	subtitle string
	bullets  []string
	notes    string
	images   []imagePlacement
}

// runStyle is the font and color applied to generated text runs.
type runStyle struct {
	font  string
	color string
}

// deckStyle carries the theme-derived run styling: titles get the major font
// with accent1 (dk1 when the scheme has no accent1), body text gets the minor
// font with dk1. Empty fields are simply not emitted.
type deckStyle struct {
	title runStyle
	body  runStyle
}

func styleFromTheme(t *Theme) deckStyle {
	titleColor := t.Colors["accent1"]
	if titleColor == "" {
		titleColor = t.Colors["dk1"]
	}
	return deckStyle{
		title: runStyle{font: t.MajorFont, color: titleColor},
		body:  runStyle{font: t.MinorFont, color: t.Colors["dk1"]},
	}
}

// Assemble renders the outline onto the uploaded template: the template's
// own slides are removed and replaced by a title slide plus one slide per
// outline entry, each bound to a template layout so theme, fonts and
// placeholder geometry carry over. Text runs are styled from the template's
// theme palette.
func Assemble(template []byte, o *outline.Outline, lim ZipLimits, opts BuildOptions) ([]byte, error) {
	pkg, err := OpenPackage(template, lim)
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
	ct, err := pkg.contentTypes()
	if err != nil {
		return nil, err
	}
	style := styleFromTheme(pkg.Theme())

	var harvested map[int][]HarvestedImage
	var media []string
	if opts.ReuseImages {
		harvested = pkg.HarvestSlideImages(pres.slideParts)
	} else {
		media = pkg.MediaImages(opts.MaxImages, opts.MaxImageBytes)
	}

	notesMaster := pres.notesMasterPart()
	writeNotes := opts.IncludeNotes && notesMaster != ""

	removeTemplateSlides(pkg, pres, ct)

	specs := buildSlideSpecs(o, layouts, opts, pres.slideSize, harvested, media, pkg)

	var newSlideParts []string
	for i, spec := range specs {
		slidePart := fmt.Sprintf("ppt/slides/slide%d.xml", i+1)
		newSlideParts = append(newSlideParts, slidePart)

		rels := []Relationship{{
			ID:     "rId1",
			Type:   relTypeSlideLayout,
			Target: relativeTarget(path.Dir(slidePart), spec.layout.PartName),
		}}
		relNum := 2
		imageRelIDs := make([]string, len(spec.images))
		for j, img := range spec.images {
			imageRelIDs[j] = fmt.Sprintf("rId%d", relNum)
			relNum++
			rels = append(rels, Relationship{
				ID:     imageRelIDs[j],
				Type:   relTypeImage,
				Target: relativeTarget(path.Dir(slidePart), img.mediaPart),
			})
		}

		if writeNotes && spec.notes != "" {
			notesPart := fmt.Sprintf("ppt/notesSlides/notesSlide%d.xml", i+1)
			rels = append(rels, Relationship{
				ID:     fmt.Sprintf("rId%d", relNum),
				Type:   relTypeNotesSlide,
				Target: relativeTarget(path.Dir(slidePart), notesPart),
			})
			pkg.SetPart(notesPart, []byte(notesSlideXML(spec.notes)))
			pkg.SetRels(notesPart, []Relationship{
				{ID: "rId1", Type: relTypeNotesMaster, Target: relativeTarget(path.Dir(notesPart), notesMaster)},
				{ID: "rId2", Type: relTypeSlide, Target: relativeTarget(path.Dir(notesPart), slidePart)},
			})
			ct.addOverride(notesPart, notesSlideContentType)
		}

		pkg.SetPart(slidePart, []byte(slideXML(spec, pres.slideSize, imageRelIDs, style)))
		pkg.SetRels(slidePart, rels)
		ct.addOverride(slidePart, slideContentType)
	}

	if err := pres.replaceSlideList(newSlideParts); err != nil {
		return nil, err
	}
	pres.save()
	pkg.writeContentTypes(ct)

	return pkg.Bytes()
}

func removeTemplateSlides(pkg *Package, pres *presentation, ct *contentTypesXML) {
	for _, slidePart := range pres.slideParts {
		rels, _ := pkg.Rels(slidePart)
		for _, r := range rels {
			if r.Type == relTypeNotesSlide {
				np := resolveTarget(path.Dir(slidePart), r.Target)
				pkg.RemovePart(np)
				pkg.RemovePart(relsPath(np))
				ct.removeOverride(np)
			}
		}
		pkg.RemovePart(slidePart)
		pkg.RemovePart(relsPath(slidePart))
		ct.removeOverride(slidePart)
	}
}

func buildSlideSpecs(o *outline.Outline, layouts []Layout, opts BuildOptions, slideSize Box, harvested map[int][]HarvestedImage, media []string, pkg *Package) []slideSpec {
	specs := make([]slideSpec, 0, len(o.Slides)+1)

	specs = append(specs, slideSpec{
		layout:   findTitleLayout(layouts),
		title:    o.Title,
		subtitle: strings.TrimSpace(opts.Guidance),
	})

	for i, s := range o.Slides {
		layout := resolveLayout(layouts, s.Layout)
		spec := slideSpec{
			layout:  layout,
			title:   s.Title,
			bullets: s.Bullets,
			notes:   s.Notes,
		}

		switch {
		case opts.ReuseImages:
			for _, h := range harvested[i] {
				spec.images = append(spec.images, placeHarvested(h, pkg.Part(h.MediaPart), layout, slideSize))
			}
		case s.Layout == outline.LayoutPictureWithCaption && len(media) > 0:
			part := media[i%len(media)]
			spec.images = append(spec.images, placeOpportunistic(part, pkg.Part(part), layout, slideSize))
		}
		specs = append(specs, spec)
	}
	return specs
}

// findTitleLayout resolves the cover slide's layout: preferred names first,
// then any layout exposing a title placeholder, then the first layout.
func findTitleLayout(layouts []Layout) *Layout {
	for _, name := range titleLayoutPrefs {
		if l := FindLayout(layouts, name); l != nil {
			return l
		}
	}
	for i := range layouts {
		if layouts[i].Title() != nil {
			return &layouts[i]
		}
	}
	if len(layouts) > 0 {
		return &layouts[0]
	}
	return nil
}

func resolveLayout(layouts []Layout, requested string) *Layout {
	if requested != "" && requested != outline.LayoutAuto {
		if l := FindLayout(layouts, requested); l != nil {
			return l
		}
	}
	return FindAnyLayout(layouts, contentLayoutPrefs, capability{wantText: true})
}

// placeHarvested keeps the template's own geometry for the picture unless
// that box would occlude one of the layout's text placeholders beyond the
// tolerated fraction, in which case the picture is aspect-fit relocated into
// a clear zone. Boxless pictures are placed like pool images.
func placeHarvested(h HarvestedImage, data []byte, layout *Layout, slideSize Box) imagePlacement {
	textBoxes := layoutBoxes(layout)
	if !h.HasBox {
		return placeOpportunistic(h.MediaPart, data, layout, slideSize)
	}
	for _, tb := range textBoxes {
		if overlapFraction(tb, h.Box) > maxOccludedFraction {
			zone := findSafeZone(slideSize, textBoxes)
			return imagePlacement{mediaPart: h.MediaPart, box: fitInto(h.Box.Cx, h.Box.Cy, zone)}
		}
	}
	return imagePlacement{mediaPart: h.MediaPart, box: h.Box}
}

// placeOpportunistic drops a pool image into a zone clear of the layout's
// text placeholders, aspect-fit when the image header is readable.
func placeOpportunistic(part string, data []byte, layout *Layout, slideSize Box) imagePlacement {
	zone := findSafeZone(slideSize, layoutBoxes(layout))
	box := zone
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil && cfg.Width > 0 && cfg.Height > 0 {
		box = fitInto(int64(cfg.Width)*pixelEMU, int64(cfg.Height)*pixelEMU, zone)
	}
	return imagePlacement{mediaPart: part, box: box}
}

func layoutBoxes(layout *Layout) []Box {
	if layout == nil {
		return nil
	}
	var boxes []Box
	for _, ph := range layout.Placeholders {
		if ph.HasExplBox && ph.acceptsText() {
			boxes = append(boxes, ph.Box)
		}
	}
	return boxes
}

// ── Slide XML generation ──────────────────────────────────────

const slideNamespaces = `xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"`

func slideXML(spec slideSpec, slideSize Box, imageRelIDs []string, style deckStyle) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	b.WriteString("\n<p:sld " + slideNamespaces + ">")
	b.WriteString(`<p:cSld><p:spTree>`)
	b.WriteString(`<p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr/>`)

	shapeID := 2

	// Pictures first so text renders above them.
	for i, img := range spec.images {
		if i >= len(imageRelIDs) {
			break
		}
		b.WriteString(pictureXML(shapeID, imageRelIDs[i], img.box))
		shapeID++
	}

	if spec.title != "" {
		b.WriteString(titleShapeXML(shapeID, spec, slideSize, style.title))
		shapeID++
	}

	bodies := spec.layout.Bodies()
	if spec.subtitle != "" {
		if ph := subtitlePlaceholder(spec.layout); ph != nil {
			b.WriteString(textShapeXML(shapeID, "Subtitle", *ph, []string{spec.subtitle}, Box{}, false, style.body))
			shapeID++
		}
	}

	if len(spec.bullets) > 0 {
		if len(bodies) >= 2 && len(spec.bullets) >= twoColumnThreshold {
			// First column rounds up on odd counts.
			half := (len(spec.bullets) + 1) / 2
			b.WriteString(textShapeXML(shapeID, "Content 1", bodies[0], spec.bullets[:half], Box{}, false, style.body))
			shapeID++
			b.WriteString(textShapeXML(shapeID, "Content 2", bodies[1], spec.bullets[half:], Box{}, false, style.body))
			shapeID++
		} else if len(bodies) > 0 {
			b.WriteString(textShapeXML(shapeID, "Content 1", bodies[0], spec.bullets, Box{}, false, style.body))
			shapeID++
		} else {
			box := defaultBodyBox(slideSize)
			b.WriteString(textShapeXML(shapeID, "Content 1", Placeholder{}, spec.bullets, box, true, style.body))
			shapeID++
		}
	}

	b.WriteString(`</p:spTree></p:cSld>`)
	b.WriteString(`<p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr>`)
	b.WriteString(`</p:sld>`)
	return b.String()
}

func subtitlePlaceholder(l *Layout) *Placeholder {
	for i := range l.Placeholders {
		if l.Placeholders[i].Type == "subTitle" {
			return &l.Placeholders[i]
		}
	}
	for i := range l.Placeholders {
		ph := &l.Placeholders[i]
		if !ph.isTitle() && ph.acceptsText() {
			return ph
		}
	}
	return nil
}

func titleShapeXML(shapeID int, spec slideSpec, slideSize Box, style runStyle) string {
	if ph := spec.layout.Title(); ph != nil {
		return textShapeXML(shapeID, "Title", *ph, []string{spec.title}, Box{}, false, style)
	}
	// No title placeholder on the layout: place an explicit top band.
	box := Box{
		X:  safeMargin,
		Y:  safeMargin,
		Cx: slideSize.Cx - 2*safeMargin,
		Cy: slideSize.Cy / 6,
	}
	return textShapeXML(shapeID, "Title", Placeholder{Type: "title"}, []string{spec.title}, box, true, style)
}

func defaultBodyBox(slideSize Box) Box {
	return Box{
		X:  safeMargin,
		Y:  slideSize.Cy / 5,
		Cx: slideSize.Cx - 2*safeMargin,
		Cy: slideSize.Cy*3/4 - safeMargin,
	}
}

// runPropsXML renders the <a:rPr> for one run, or nothing when the theme
// offered neither a font nor a color.
func runPropsXML(style runStyle) string {
	if style.font == "" && style.color == "" {
		return ""
	}
	var b strings.Builder
	b.WriteString(`<a:rPr>`)
	if style.color != "" {
		b.WriteString(`<a:solidFill><a:srgbClr val="` + escapeString(style.color) + `"/></a:solidFill>`)
	}
	if style.font != "" {
		b.WriteString(`<a:latin typeface="` + escapeString(style.font) + `"/>`)
	}
	b.WriteString(`</a:rPr>`)
	return b.String()
}

// textShapeXML writes one placeholder shape. When explicitBox is set the
// shape carries its own geometry instead of inheriting from the layout.
func textShapeXML(shapeID int, name string, ph Placeholder, lines []string, box Box, explicitBox bool, style runStyle) string {
	var b strings.Builder
	b.WriteString(`<p:sp><p:nvSpPr>`)
	fmt.Fprintf(&b, `<p:cNvPr id="%d" name="%s %d"/>`, shapeID, escapeString(name), shapeID-1)
	b.WriteString(`<p:cNvSpPr><a:spLocks noGrp="1"/></p:cNvSpPr>`)
	b.WriteString(`<p:nvPr><p:ph`)
	if ph.Type != "" {
		b.WriteString(` type="` + escapeString(ph.Type) + `"`)
	}
	if ph.Idx != "" {
		b.WriteString(` idx="` + escapeString(ph.Idx) + `"`)
	}
	b.WriteString(`/></p:nvPr></p:nvSpPr>`)

	if explicitBox {
		fmt.Fprintf(&b, `<p:spPr><a:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></a:xfrm></p:spPr>`,
			box.X, box.Y, box.Cx, box.Cy)
	} else {
		b.WriteString(`<p:spPr/>`)
	}

	rPr := runPropsXML(style)
	b.WriteString(`<p:txBody><a:bodyPr/><a:lstStyle/>`)
	if len(lines) == 0 {
		b.WriteString(`<a:p><a:endParaRPr/></a:p>`)
	}
	for _, line := range lines {
		lvl := 0
		if strings.HasPrefix(line, outline.SubBulletPrefix) {
			lvl = 1
			line = strings.TrimPrefix(line, outline.SubBulletPrefix)
		}
		b.WriteString(`<a:p>`)
		if lvl > 0 {
			b.WriteString(`<a:pPr lvl="` + strconv.Itoa(lvl) + `"/>`)
		}
		b.WriteString(`<a:r>` + rPr + `<a:t>` + escapeString(line) + `</a:t></a:r></a:p>`)
	}
	b.WriteString(`</p:txBody></p:sp>`)
	return b.String()
}

func pictureXML(shapeID int, relID string, box Box) string {
	var b strings.Builder
	b.WriteString(`<p:pic><p:nvPicPr>`)
	fmt.Fprintf(&b, `<p:cNvPr id="%d" name="Picture %d"/>`, shapeID, shapeID-1)
	b.WriteString(`<p:cNvPicPr><a:picLocks noChangeAspect="1"/></p:cNvPicPr><p:nvPr/></p:nvPicPr>`)
	fmt.Fprintf(&b, `<p:blipFill><a:blip r:embed="%s"/><a:stretch><a:fillRect/></a:stretch></p:blipFill>`, escapeString(relID))
	fmt.Fprintf(&b, `<p:spPr><a:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></a:xfrm><a:prstGeom prst="rect"><a:avLst/></a:prstGeom></p:spPr>`,
		box.X, box.Y, box.Cx, box.Cy)
	b.WriteString(`</p:pic>`)
	return b.String()
}

func notesSlideXML(notes string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	b.WriteString("\n<p:notes " + slideNamespaces + ">")
	b.WriteString(`<p:cSld><p:spTree>`)
	b.WriteString(`<p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr/>`)
	b.WriteString(`<p:sp><p:nvSpPr><p:cNvPr id="2" name="Notes Placeholder 1"/>`)
	b.WriteString(`<p:cNvSpPr><a:spLocks noGrp="1"/></p:cNvSpPr>`)
	b.WriteString(`<p:nvPr><p:ph type="body" idx="1"/></p:nvPr></p:nvSpPr><p:spPr/>`)
	b.WriteString(`<p:txBody><a:bodyPr/><a:lstStyle/>`)
	b.WriteString(`<a:p><a:r><a:t>` + escapeString(notes) + `</a:t></a:r></a:p>`)
	b.WriteString(`</p:txBody></p:sp>`)
	b.WriteString(`</p:spTree></p:cSld><p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr></p:notes>`)
	return b.String()
}

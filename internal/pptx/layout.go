package pptx

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
)

// Placeholder is one placeholder shape on a slide layout.
type Placeholder struct {
	Type       string // "title", "body", "pic", ... empty means a generic body
	Idx        string
	Box        Box
	HasTxBody  bool
	HasExplBox bool
}

func (ph Placeholder) isTitle() bool {
	return ph.Type == "title" || ph.Type == "ctrTitle"
}

// acceptsText reports whether bullet text can land in this placeholder.
func (ph Placeholder) acceptsText() bool {
	switch ph.Type {
	case "pic", "clipArt", "media", "tbl", "chart", "dgm", "sldImg":
		return false
	}
	return ph.HasTxBody || ph.Type == "body" || ph.Type == "subTitle" || ph.Type == ""
}

func (ph Placeholder) acceptsPicture() bool {
	return ph.Type == "pic" || ph.Type == "clipArt" || ph.Type == ""
}

// Layout is what the builder needs to know about one slide layout part.
type Layout struct {
	PartName     string
	Name         string
	Placeholders []Placeholder
}

func (l *Layout) Title() *Placeholder {
	for i := range l.Placeholders {
		if l.Placeholders[i].isTitle() {
			return &l.Placeholders[i]
		}
	}
	return nil
}

// Bodies returns non-title placeholders that accept text, in document order.
func (l *Layout) Bodies() []Placeholder {
	var out []Placeholder
	for _, ph := range l.Placeholders {
		if !ph.isTitle() && ph.acceptsText() {
			out = append(out, ph)
		}
	}
	return out
}

func (l *Layout) SupportsText() bool    { return len(l.Bodies()) > 0 }
func (l *Layout) SupportsPicture() bool {
	for _, ph := range l.Placeholders {
		if !ph.isTitle() && ph.acceptsPicture() {
			return true
		}
	}
	return false
}

// Layouts parses every slideLayout part in numeric order.
func (p *Package) Layouts() ([]Layout, error) {
	names := p.PartNames("ppt/slideLayouts/slideLayout")
	var out []Layout
	for _, name := range names {
		if strings.Contains(name, "_rels") {
			continue
		}
		l, err := parseLayout(name, p.Part(name))
		if err != nil {
			return nil, err
		}
		out = append(out, *l)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("template has no slide layouts")
	}
	return out, nil
}

type xfrmXML struct {
	Off *struct {
		X int64 `xml:"x,attr"`
		Y int64 `xml:"y,attr"`
	} `xml:"off"`
	Ext *struct {
		Cx int64 `xml:"cx,attr"`
		Cy int64 `xml:"cy,attr"`
	} `xml:"ext"`
}

type spXML struct {
	NvSpPr struct {
		NvPr struct {
			Ph *struct {
				Type string `xml:"type,attr"`
				Idx  string `xml:"idx,attr"`
			} `xml:"ph"`
		} `xml:"nvPr"`
	} `xml:"nvSpPr"`
	SpPr struct {
		Xfrm *xfrmXML `xml:"xfrm"`
	} `xml:"spPr"`
	TxBody *struct{} `xml:"txBody"`
}

// parseLayout streams through the layout XML picking up the friendly name
// from cSld and every placeholder shape.
func parseLayout(partName string, data []byte) (*Layout, error) {
	l := &Layout{PartName: partName}
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch start.Name.Local {
		case "cSld":
			for _, a := range start.Attr {
				if a.Name.Local == "name" {
					l.Name = a.Value
				}
			}
		case "sp":
			var sp spXML
			if err := dec.DecodeElement(&sp, &start); err != nil {
				return nil, fmt.Errorf("parse %s: %w", partName, err)
			}
			if sp.NvSpPr.NvPr.Ph == nil {
				continue
			}
			ph := Placeholder{
				Type:      sp.NvSpPr.NvPr.Ph.Type,
				Idx:       sp.NvSpPr.NvPr.Ph.Idx,
				HasTxBody: sp.TxBody != nil,
			}
			if x := sp.SpPr.Xfrm; x != nil && x.Off != nil && x.Ext != nil {
				ph.Box = Box{X: x.Off.X, Y: x.Off.Y, Cx: x.Ext.Cx, Cy: x.Ext.Cy}
				ph.HasExplBox = true
			}
			l.Placeholders = append(l.Placeholders, ph)
		}
	}
	return l, nil
}

// capability describes what a requested layout must offer for the slide's
// content to fit.
type capability struct {
	wantText      bool
	wantPicture   bool
	minTextBodies int
}

func layoutCapability(name string) capability {
	switch strings.ToLower(name) {
	case "picture with caption":
		return capability{wantText: true, wantPicture: true}
	case "two content":
		return capability{wantText: true, minTextBodies: 2}
	case "blank":
		return capability{}
	default:
		return capability{wantText: true}
	}
}

func (l *Layout) satisfies(c capability) bool {
	if c.wantText && !l.SupportsText() {
		return false
	}
	if c.wantPicture && !l.SupportsPicture() {
		return false
	}
	if c.minTextBodies > 0 && len(l.Bodies()) < c.minTextBodies {
		return false
	}
	return true
}

// FindLayout resolves a requested layout name against the template. Exact
// case-insensitive name matches win, then substring matches; both passes
// honor the capability the name implies. Returns nil when nothing fits.
func FindLayout(layouts []Layout, want string) *Layout {
	if want == "" {
		return nil
	}
	need := layoutCapability(want)
	lw := strings.ToLower(want)
	for i := range layouts {
		if strings.ToLower(layouts[i].Name) == lw && layouts[i].satisfies(need) {
			return &layouts[i]
		}
	}
	for i := range layouts {
		if strings.Contains(strings.ToLower(layouts[i].Name), lw) && layouts[i].satisfies(need) {
			return &layouts[i]
		}
	}
	return nil
}

// FindAnyLayout walks a preference list and falls back to the first layout
// satisfying need, then to the first layout at all.
func FindAnyLayout(layouts []Layout, prefs []string, need capability) *Layout {
	for _, name := range prefs {
		if l := FindLayout(layouts, name); l != nil {
			return l
		}
	}
	for i := range layouts {
		if layouts[i].satisfies(need) {
			return &layouts[i]
		}
	}
	if len(layouts) > 0 {
		return &layouts[0]
	}
	return nil
}

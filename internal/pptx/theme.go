package pptx

import (
	"encoding/xml"
	"strings"
)

// Theme is the template's color palette and font pair, read from the first
// theme part.
type Theme struct {
	Colors    map[string]string // scheme role -> RRGGBB
	MajorFont string
	MinorFont string
}

// themeColorRoles in scheme order.
var themeColorRoles = []string{
	"dk1", "lt1", "dk2", "lt2",
	"accent1", "accent2", "accent3", "accent4", "accent5", "accent6",
	"hlink", "folHlink",
}

type themeXML struct {
	XMLName  xml.Name `xml:"theme"`
	Elements struct {
		ClrScheme struct {
			Entries []clrEntry `xml:",any"`
		} `xml:"clrScheme"`
		FontScheme struct {
			Major struct {
				Latin struct {
					Typeface string `xml:"typeface,attr"`
				} `xml:"latin"`
			} `xml:"majorFont"`
			Minor struct {
				Latin struct {
					Typeface string `xml:"typeface,attr"`
				} `xml:"latin"`
			} `xml:"minorFont"`
		} `xml:"fontScheme"`
	} `xml:"themeElements"`
}

type clrEntry struct {
	XMLName xml.Name
	Srgb    *struct {
		Val string `xml:"val,attr"`
	} `xml:"srgbClr"`
	Sys *struct {
		LastClr string `xml:"lastClr,attr"`
	} `xml:"sysClr"`
}

// Theme extracts the palette from the first ppt/theme part. System colors
// fall back to their lastClr rendering. A missing or unparseable theme yields
// an empty palette so callers can style best-effort.
func (p *Package) Theme() *Theme {
	t := &Theme{Colors: make(map[string]string, len(themeColorRoles))}
	names := p.PartNames("ppt/theme/theme")
	if len(names) == 0 {
		return t
	}
	var doc themeXML
	if err := xml.Unmarshal(p.Part(names[0]), &doc); err != nil {
		return t
	}

	t.MajorFont = doc.Elements.FontScheme.Major.Latin.Typeface
	t.MinorFont = doc.Elements.FontScheme.Minor.Latin.Typeface
	for _, e := range doc.Elements.ClrScheme.Entries {
		role := e.XMLName.Local
		if !isThemeRole(role) {
			continue
		}
		switch {
		case e.Srgb != nil:
			t.Colors[role] = strings.ToUpper(e.Srgb.Val)
		case e.Sys != nil && e.Sys.LastClr != "":
			t.Colors[role] = strings.ToUpper(e.Sys.LastClr)
		}
	}
	return t
}

func isThemeRole(name string) bool {
	for _, r := range themeColorRoles {
		if r == name {
			return true
		}
	}
	return false
}

package pptx

import (
	"bytes"
	"crypto/sha256"
	"encoding/xml"
	"path"
	"strings"
)

var rasterExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
	".tiff": true,
	".tif":  true,
}

// MediaImages lists raster image parts under ppt/media in numeric order,
// skipping byte-identical duplicates. maxCount and maxBytes cap how many
// images the builder will consider; zero disables the cap.
func (p *Package) MediaImages(maxCount int, maxBytes int64) []string {
	seen := make(map[[32]byte]bool)
	var out []string
	for _, name := range p.PartNames("ppt/media/") {
		if !rasterExts[strings.ToLower(path.Ext(name))] {
			continue
		}
		data := p.Part(name)
		if len(data) == 0 {
			continue
		}
		if maxBytes > 0 && int64(len(data)) > maxBytes {
			continue
		}
		sum := sha256.Sum256(data)
		if seen[sum] {
			continue
		}
		seen[sum] = true
		out = append(out, name)
		if maxCount > 0 && len(out) >= maxCount {
			break
		}
	}
	return out
}

// HarvestedImage is a picture found on a template slide, with the media part
// it points at and where the template placed it.
type HarvestedImage struct {
	MediaPart string
	Box       Box
	HasBox    bool
}

type picXML struct {
	BlipFill struct {
		Blip struct {
			Embed string `xml:"embed,attr"`
		} `xml:"blip"`
	} `xml:"blipFill"`
	SpPr struct {
		Xfrm *xfrmXML `xml:"xfrm"`
	} `xml:"spPr"`
}

// HarvestSlideImages maps each template slide ordinal (0-based, presentation
// order) to the pictures placed on it. Pictures whose relationship cannot be
// resolved to a media part are skipped.
func (p *Package) HarvestSlideImages(slideParts []string) map[int][]HarvestedImage {
	out := make(map[int][]HarvestedImage)
	for i, slidePart := range slideParts {
		rels, err := p.Rels(slidePart)
		if err != nil {
			continue
		}
		relTargets := make(map[string]string, len(rels))
		baseDir := path.Dir(slidePart)
		for _, r := range rels {
			if r.Type == relTypeImage {
				relTargets[r.ID] = resolveTarget(baseDir, r.Target)
			}
		}
		if len(relTargets) == 0 {
			continue
		}

		for _, pic := range parseSlidePics(p.Part(slidePart)) {
			target := relTargets[pic.BlipFill.Blip.Embed]
			if target == "" || !p.HasPart(target) {
				continue
			}
			h := HarvestedImage{MediaPart: target}
			if x := pic.SpPr.Xfrm; x != nil && x.Off != nil && x.Ext != nil {
				h.Box = Box{X: x.Off.X, Y: x.Off.Y, Cx: x.Ext.Cx, Cy: x.Ext.Cy}
				h.HasBox = true
			}
			out[i] = append(out[i], h)
		}
	}
	return out
}

func parseSlidePics(data []byte) []picXML {
	var pics []picXML
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "pic" {
			continue
		}
		var pic picXML
		if err := dec.DecodeElement(&pic, &start); err != nil {
			continue
		}
		pics = append(pics, pic)
	}
	return pics
}

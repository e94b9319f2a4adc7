package pptx

import (
	"fmt"
	"path"
	"regexp"
	"strconv"
	"strings"
)

var (
	sldSzRe    = regexp.MustCompile(`<p:sldSz[^>]*\bcx="(\d+)"[^>]*\bcy="(\d+)"`)
	sldIdRe    = regexp.MustCompile(`<p:sldId[^>]*r:id="([^"]+)"[^>]*/>`)
	sldIdLstRe = regexp.MustCompile(`(?s)<p:sldIdLst\s*/>|<p:sldIdLst>.*?</p:sldIdLst>`)
	relNumRe   = regexp.MustCompile(`^rId(\d+)$`)
)

// presentation wraps ppt/presentation.xml plus its relationships. The XML
// body is edited textually; only the slide list is ever touched, the rest of
// the document round-trips byte for byte.
type presentation struct {
	pkg        *Package
	xmlText    string
	rels       []Relationship
	slideParts []string // sldIdLst order
	slideSize  Box
}

func openPresentation(pkg *Package) (*presentation, error) {
	data := pkg.Part(presentationPart)
	if data == nil {
		return nil, fmt.Errorf("missing %s", presentationPart)
	}
	rels, err := pkg.Rels(presentationPart)
	if err != nil {
		return nil, err
	}

	pres := &presentation{pkg: pkg, xmlText: string(data), rels: rels}

	if m := sldSzRe.FindStringSubmatch(pres.xmlText); m != nil {
		cx, _ := strconv.ParseInt(m[1], 10, 64)
		cy, _ := strconv.ParseInt(m[2], 10, 64)
		pres.slideSize = Box{Cx: cx, Cy: cy}
	} else {
		// 16:9 default
		pres.slideSize = Box{Cx: 12192000, Cy: 6858000}
	}

	byID := make(map[string]string, len(rels))
	for _, r := range rels {
		if r.Type == relTypeSlide {
			byID[r.ID] = resolveTarget(path.Dir(presentationPart), r.Target)
		}
	}
	for _, m := range sldIdRe.FindAllStringSubmatch(pres.xmlText, -1) {
		if target := byID[m[1]]; target != "" {
			pres.slideParts = append(pres.slideParts, target)
		}
	}
	return pres, nil
}

func (pres *presentation) notesMasterPart() string {
	for _, r := range pres.rels {
		if r.Type == relTypeNotesMaster {
			return resolveTarget(path.Dir(presentationPart), r.Target)
		}
	}
	return ""
}

func (pres *presentation) maxRelNum() int {
	maxN := 0
	for _, r := range pres.rels {
		if m := relNumRe.FindStringSubmatch(r.ID); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n > maxN {
				maxN = n
			}
		}
	}
	return maxN
}

// replaceSlideList swaps the slide id list for one naming newRels in order
// and drops the old slide relationships. Slide ids restart at 256.
func (pres *presentation) replaceSlideList(newTargets []string) error {
	kept := pres.rels[:0]
	for _, r := range pres.rels {
		if r.Type != relTypeSlide {
			kept = append(kept, r)
		}
	}
	pres.rels = kept

	next := pres.maxRelNum()
	var lst strings.Builder
	lst.WriteString("<p:sldIdLst>")
	for i, target := range newTargets {
		next++
		relID := "rId" + strconv.Itoa(next)
		pres.rels = append(pres.rels, Relationship{
			ID:     relID,
			Type:   relTypeSlide,
			Target: relativeTarget(path.Dir(presentationPart), target),
		})
		fmt.Fprintf(&lst, `<p:sldId id="%d" r:id="%s"/>`, 256+i, relID)
	}
	lst.WriteString("</p:sldIdLst>")

	switch {
	case sldIdLstRe.MatchString(pres.xmlText):
		pres.xmlText = sldIdLstRe.ReplaceAllString(pres.xmlText, lst.String())
	case strings.Contains(pres.xmlText, "</p:sldMasterIdLst>"):
		pres.xmlText = strings.Replace(pres.xmlText,
			"</p:sldMasterIdLst>", "</p:sldMasterIdLst>"+lst.String(), 1)
	default:
		return fmt.Errorf("presentation.xml has no slide list and no master list")
	}
	return nil
}

func (pres *presentation) save() {
	pres.pkg.SetPart(presentationPart, []byte(pres.xmlText))
	pres.pkg.SetRels(presentationPart, pres.rels)
}

// relativeTarget renders a part name as a relationship target relative to
// baseDir, using ../ the way PowerPoint writes them.
func relativeTarget(baseDir, partName string) string {
	base := strings.Split(baseDir, "/")
	part := strings.Split(partName, "/")
	i := 0
	for i < len(base) && i < len(part)-1 && base[i] == part[i] {
		i++
	}
	var b strings.Builder
	for j := i; j < len(base); j++ {
		b.WriteString("../")
	}
	b.WriteString(strings.Join(part[i:], "/"))
	return b.String()
}

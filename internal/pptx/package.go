// Package pptx reads, inspects and rebuilds PowerPoint files as raw OPC
// packages. It works on the zip parts directly instead of modeling the full
// OOXML object graph; only the parts the deck builder touches are parsed.
package pptx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

const (
	contentTypesPart = "[Content_Types].xml"
	presentationPart = "ppt/presentation.xml"

	slideContentType      = "application/vnd.openxmlformats-officedocument.presentationml.slide+xml"
	notesSlideContentType = "application/vnd.openxmlformats-officedocument.presentationml.notesSlide+xml"

	relTypeSlide       = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide"
	relTypeSlideLayout = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideLayout"
	relTypeNotesSlide  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/notesSlide"
	relTypeNotesMaster = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/notesMaster"
	relTypeImage       = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"
)

// Part is one file inside the package.
type Part struct {
	Name string
	Data []byte
}

// Package is an open OPC package held fully in memory. Part order from the
// source archive is preserved on write so diffs against the template stay
// small.
type Package struct {
	parts []*Part
	index map[string]*Part
}

// OpenPackage validates the archive against lim and loads every part.
func OpenPackage(data []byte, lim ZipLimits) (*Package, error) {
	if err := CheckArchive(data, lim); err != nil {
		return nil, err
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open package: %w", err)
	}

	p := &Package{index: make(map[string]*Part, len(zr.File))}
	for _, zf := range zr.File {
		if strings.HasSuffix(zf.Name, "/") {
			continue
		}
		rc, err := zf.Open()
		if err != nil {
			return nil, fmt.Errorf("open part %s: %w", zf.Name, err)
		}
		b, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read part %s: %w", zf.Name, err)
		}
		p.setPart(zf.Name, b)
	}
	return p, nil
}

func (p *Package) Part(name string) []byte {
	if part, ok := p.index[name]; ok {
		return part.Data
	}
	return nil
}

func (p *Package) HasPart(name string) bool {
	_, ok := p.index[name]
	return ok
}

func (p *Package) setPart(name string, data []byte) {
	if part, ok := p.index[name]; ok {
		part.Data = data
		return
	}
	part := &Part{Name: name, Data: data}
	p.parts = append(p.parts, part)
	p.index[name] = part
}

func (p *Package) SetPart(name string, data []byte) { p.setPart(name, data) }

func (p *Package) RemovePart(name string) {
	if _, ok := p.index[name]; !ok {
		return
	}
	delete(p.index, name)
	for i, part := range p.parts {
		if part.Name == name {
			p.parts = append(p.parts[:i], p.parts[i+1:]...)
			return
		}
	}
}

// PartNames returns part names under prefix in numeric-aware order, so
// slide10.xml sorts after slide2.xml.
func (p *Package) PartNames(prefix string) []string {
	var names []string
	for _, part := range p.parts {
		if strings.HasPrefix(part.Name, prefix) {
			names = append(names, part.Name)
		}
	}
	sort.Slice(names, func(i, j int) bool {
		ni, iok := trailingNumber(names[i])
		nj, jok := trailingNumber(names[j])
		if iok && jok && ni != nj {
			return ni < nj
		}
		return names[i] < names[j]
	})
	return names
}

var trailingNumRe = regexp.MustCompile(`(\d+)\.[a-zA-Z]+$`)

func trailingNumber(name string) (int, bool) {
	m := trailingNumRe.FindStringSubmatch(name)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// Bytes serializes the package back to a zip archive. The content types part
// is written first, as PowerPoint expects.
func (p *Package) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	write := func(part *Part) error {
		w, err := zw.Create(part.Name)
		if err != nil {
			return err
		}
		_, err = w.Write(part.Data)
		return err
	}

	if ct, ok := p.index[contentTypesPart]; ok {
		if err := write(ct); err != nil {
			return nil, fmt.Errorf("write %s: %w", contentTypesPart, err)
		}
	}
	for _, part := range p.parts {
		if part.Name == contentTypesPart {
			continue
		}
		if err := write(part); err != nil {
			return nil, fmt.Errorf("write %s: %w", part.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ── Relationships ─────────────────────────────────────────────

type Relationship struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr,omitempty"`
}

type relationshipsXML struct {
	XMLName xml.Name       `xml:"http://schemas.openxmlformats.org/package/2006/relationships Relationships"`
	Rels    []Relationship `xml:"Relationship"`
}

// relsPath maps a part name to its relationships part.
func relsPath(partName string) string {
	dir, file := path.Split(partName)
	return dir + "_rels/" + file + ".rels"
}

func (p *Package) Rels(partName string) ([]Relationship, error) {
	data := p.Part(relsPath(partName))
	if data == nil {
		return nil, nil
	}
	var doc relationshipsXML
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse rels for %s: %w", partName, err)
	}
	return doc.Rels, nil
}

func (p *Package) SetRels(partName string, rels []Relationship) {
	var b strings.Builder
	b.WriteString(xml.Header)
	b.WriteString(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	for _, r := range rels {
		b.WriteString(`<Relationship Id="`)
		xmlEscape(&b, r.ID)
		b.WriteString(`" Type="`)
		xmlEscape(&b, r.Type)
		b.WriteString(`" Target="`)
		xmlEscape(&b, r.Target)
		b.WriteString(`"`)
		if r.TargetMode != "" {
			b.WriteString(` TargetMode="`)
			xmlEscape(&b, r.TargetMode)
			b.WriteString(`"`)
		}
		b.WriteString(`/>`)
	}
	b.WriteString(`</Relationships>`)
	p.SetPart(relsPath(partName), []byte(b.String()))
}

// resolveTarget turns a relationship target relative to baseDir into a part
// name. External targets return "".
func resolveTarget(baseDir, target string) string {
	if strings.Contains(target, "://") {
		return ""
	}
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(path.Clean(target), "/")
	}
	return path.Clean(path.Join(baseDir, target))
}

func xmlEscape(b *strings.Builder, s string) {
	xml.EscapeText(b, []byte(s)) //nolint:errcheck
}

func escapeString(s string) string {
	var b strings.Builder
	xmlEscape(&b, s)
	return b.String()
}

// ── Content types ─────────────────────────────────────────────

type contentTypesXML struct {
	XMLName   xml.Name          `xml:"http://schemas.openxmlformats.org/package/2006/content-types Types"`
	Defaults  []ctDefaultEntry  `xml:"Default"`
	Overrides []ctOverrideEntry `xml:"Override"`
}

type ctDefaultEntry struct {
	Extension   string `xml:"Extension,attr"`
	ContentType string `xml:"ContentType,attr"`
}

type ctOverrideEntry struct {
	PartName    string `xml:"PartName,attr"`
	ContentType string `xml:"ContentType,attr"`
}

func (p *Package) contentTypes() (*contentTypesXML, error) {
	data := p.Part(contentTypesPart)
	if data == nil {
		return nil, fmt.Errorf("missing %s", contentTypesPart)
	}
	var doc contentTypesXML
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse content types: %w", err)
	}
	return &doc, nil
}

func (p *Package) writeContentTypes(doc *contentTypesXML) {
	var b strings.Builder
	b.WriteString(xml.Header)
	b.WriteString(`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">`)
	for _, d := range doc.Defaults {
		fmt.Fprintf(&b, `<Default Extension="%s" ContentType="%s"/>`,
			escapeString(d.Extension), escapeString(d.ContentType))
	}
	for _, o := range doc.Overrides {
		fmt.Fprintf(&b, `<Override PartName="%s" ContentType="%s"/>`,
			escapeString(o.PartName), escapeString(o.ContentType))
	}
	b.WriteString(`</Types>`)
	p.SetPart(contentTypesPart, []byte(b.String()))
}

// removeOverride drops the content type override for partName if present.
func (doc *contentTypesXML) removeOverride(partName string) {
	want := "/" + partName
	out := doc.Overrides[:0]
	for _, o := range doc.Overrides {
		if o.PartName != want {
			out = append(out, o)
		}
	}
	doc.Overrides = out
}

func (doc *contentTypesXML) addOverride(partName, contentType string) {
	doc.Overrides = append(doc.Overrides, ctOverrideEntry{
		PartName:    "/" + partName,
		ContentType: contentType,
	})
}

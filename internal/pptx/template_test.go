package pptx

import (
	"archive/zip"
	"bytes"
	"encoding/hex"
	"io"
	"testing"
)

// 1x1 transparent PNG.
const pngHex = "89504e470d0a1a0a0000000d49484452000000010000000108060000001f15c4890000000d4944415478da63fcffffff7f0300050001a5f645400000000049454e44ae426082"

func pngBytes(t *testing.T) []byte {
	t.Helper()
	b, err := hex.DecodeString(pngHex)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

type templateOptions struct {
	withNotesMaster bool
	secondPic       bool
}

const nsDecl = `xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"`

func layoutXML(name string, shapes string) string {
	return `<?xml version="1.0"?><p:sldLayout ` + nsDecl + `><p:cSld name="` + name + `"><p:spTree>` +
		`<p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr/>` +
		shapes +
		`</p:spTree></p:cSld></p:sldLayout>`
}

func layoutShape(id int, phType, idx string, x, y, cx, cy int64) string {
	ph := `<p:ph`
	if phType != "" {
		ph += ` type="` + phType + `"`
	}
	if idx != "" {
		ph += ` idx="` + idx + `"`
	}
	ph += `/>`
	var b bytes.Buffer
	b.WriteString(`<p:sp><p:nvSpPr><p:cNvPr id="`)
	b.WriteString(string(rune('0' + id)))
	b.WriteString(`" name="ph"/><p:cNvSpPr/><p:nvPr>` + ph + `</p:nvPr></p:nvSpPr>`)
	b.WriteString(`<p:spPr><a:xfrm>`)
	writeBoxAttrs(&b, x, y, cx, cy)
	b.WriteString(`</a:xfrm></p:spPr>`)
	b.WriteString(`<p:txBody><a:bodyPr/><a:p><a:endParaRPr/></a:p></p:txBody></p:sp>`)
	return b.String()
}

func writeBoxAttrs(b *bytes.Buffer, x, y, cx, cy int64) {
	b.WriteString(`<a:off x="`)
	writeInt(b, x)
	b.WriteString(`" y="`)
	writeInt(b, y)
	b.WriteString(`"/><a:ext cx="`)
	writeInt(b, cx)
	b.WriteString(`" cy="`)
	writeInt(b, cy)
	b.WriteString(`"/>`)
}

func writeInt(b *bytes.Buffer, v int64) {
	var tmp [20]byte
	i := len(tmp)
	if v == 0 {
		b.WriteByte('0')
		return
	}
	for v > 0 {
		i--
		tmp[i] = byte('0' + v%10)
		v /= 10
	}
	b.Write(tmp[i:])
}

const themeXMLDoc = `<?xml version="1.0"?><a:theme xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" name="Office"><a:themeElements><a:clrScheme name="Office">` +
	`<a:dk1><a:sysClr val="windowText" lastClr="000000"/></a:dk1>` +
	`<a:lt1><a:sysClr val="window" lastClr="FFFFFF"/></a:lt1>` +
	`<a:dk2><a:srgbClr val="44546A"/></a:dk2>` +
	`<a:lt2><a:srgbClr val="E7E6E6"/></a:lt2>` +
	`<a:accent1><a:srgbClr val="4472C4"/></a:accent1>` +
	`<a:accent2><a:srgbClr val="ED7D31"/></a:accent2>` +
	`<a:accent3><a:srgbClr val="A5A5A5"/></a:accent3>` +
	`<a:accent4><a:srgbClr val="FFC000"/></a:accent4>` +
	`<a:accent5><a:srgbClr val="5B9BD5"/></a:accent5>` +
	`<a:accent6><a:srgbClr val="70AD47"/></a:accent6>` +
	`<a:hlink><a:srgbClr val="0563C1"/></a:hlink>` +
	`<a:folHlink><a:srgbClr val="954F72"/></a:folHlink>` +
	`</a:clrScheme><a:fontScheme name="Office">` +
	`<a:majorFont><a:latin typeface="Calibri Light"/></a:majorFont>` +
	`<a:minorFont><a:latin typeface="Calibri"/></a:minorFont>` +
	`</a:fontScheme></a:themeElements></a:theme>`

// buildTemplate assembles a small but structurally valid pptx: one slide
// carrying a picture, three layouts, a theme, and optionally a notes master.
func buildTemplate(t *testing.T, o templateOptions) []byte {
	t.Helper()

	pics := `<p:pic><p:nvPicPr><p:cNvPr id="4" name="Picture 3"/><p:cNvPicPr/><p:nvPr/></p:nvPicPr>` +
		`<p:blipFill><a:blip r:embed="rId2"/></p:blipFill>` +
		`<p:spPr><a:xfrm><a:off x="100" y="200"/><a:ext cx="300" cy="400"/></a:xfrm></p:spPr></p:pic>`
	if o.secondPic {
		pics += `<p:pic><p:nvPicPr><p:cNvPr id="5" name="Picture 4"/><p:cNvPicPr/><p:nvPr/></p:nvPicPr>` +
			`<p:blipFill><a:blip r:embed="rId2"/></p:blipFill>` +
			`<p:spPr/></p:pic>`
	}
	slide1 := `<?xml version="1.0"?><p:sld ` + nsDecl + `><p:cSld><p:spTree>` +
		`<p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr/>` +
		pics +
		`</p:spTree></p:cSld></p:sld>`

	presRels := `<?xml version="1.0"?><Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
		`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideMaster" Target="slideMasters/slideMaster1.xml"/>` +
		`<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide" Target="slides/slide1.xml"/>` +
		`<Relationship Id="rId3" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/theme" Target="theme/theme1.xml"/>`
	if o.withNotesMaster {
		presRels += `<Relationship Id="rId4" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/notesMaster" Target="notesMasters/notesMaster1.xml"/>`
	}
	presRels += `</Relationships>`

	presentation := `<?xml version="1.0"?><p:presentation ` + nsDecl + `>` +
		`<p:sldMasterIdLst><p:sldMasterId id="2147483648" r:id="rId1"/></p:sldMasterIdLst>` +
		`<p:sldIdLst><p:sldId id="256" r:id="rId2"/></p:sldIdLst>` +
		`<p:sldSz cx="12192000" cy="6858000"/></p:presentation>`

	contentTypes := `<?xml version="1.0"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
		`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
		`<Default Extension="xml" ContentType="application/xml"/>` +
		`<Default Extension="png" ContentType="image/png"/>` +
		`<Override PartName="/ppt/presentation.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml"/>` +
		`<Override PartName="/ppt/slides/slide1.xml" ContentType="` + slideContentType + `"/>` +
		`</Types>`

	parts := map[string]string{
		"[Content_Types].xml":          contentTypes,
		"_rels/.rels":                  `<?xml version="1.0"?><Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="ppt/presentation.xml"/></Relationships>`,
		"ppt/presentation.xml":         presentation,
		"ppt/_rels/presentation.xml.rels": presRels,
		"ppt/slides/slide1.xml":        slide1,
		"ppt/slides/_rels/slide1.xml.rels": `<?xml version="1.0"?><Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
			`<Relationship Id="rId1" Type="` + relTypeSlideLayout + `" Target="../slideLayouts/slideLayout2.xml"/>` +
			`<Relationship Id="rId2" Type="` + relTypeImage + `" Target="../media/image1.png"/>` +
			`</Relationships>`,
		"ppt/slideLayouts/slideLayout1.xml": layoutXML("Title Slide",
			layoutShape(2, "ctrTitle", "", 838200, 365125, 10515600, 1325563)+
				layoutShape(3, "subTitle", "1", 838200, 1825625, 10515600, 1325563)),
		"ppt/slideLayouts/slideLayout2.xml": layoutXML("Title and Content",
			layoutShape(2, "title", "", 838200, 365125, 10515600, 1325563)+
				layoutShape(3, "body", "1", 838200, 1825625, 10515600, 4351338)),
		"ppt/slideLayouts/slideLayout3.xml": layoutXML("Two Content",
			layoutShape(2, "title", "", 838200, 365125, 10515600, 1325563)+
				layoutShape(3, "body", "1", 838200, 1825625, 5181600, 4351338)+
				layoutShape(4, "body", "2", 6172200, 1825625, 5181600, 4351338)),
		"ppt/theme/theme1.xml": themeXMLDoc,
	}
	if o.withNotesMaster {
		parts["ppt/notesMasters/notesMaster1.xml"] = `<?xml version="1.0"?><p:notesMaster ` + nsDecl + `><p:cSld><p:spTree><p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr/></p:spTree></p:cSld></p:notesMaster>`
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, data := range parts {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(data)); err != nil {
			t.Fatal(err)
		}
	}
	w, err := zw.Create("ppt/media/image1.png")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write(pngBytes(t)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// readZip returns every entry of a produced archive keyed by name.
func readZip(t *testing.T, data []byte) map[string]string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatal(err)
	}
	out := make(map[string]string, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatal(err)
		}
		b, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatal(err)
		}
		out[f.Name] = string(b)
	}
	return out
}

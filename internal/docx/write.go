package docx

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	nsW   = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	nsR   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsWP  = "http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing"
	nsA   = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsPic = "http://schemas.openxmlformats.org/drawingml/2006/picture"
	nsPkg = "http://schemas.openxmlformats.org/package/2006/relationships"

	relOfficeDoc = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
	relCoreProps = "http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties"
	relAppProps  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/extended-properties"
	relStyles    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles"
	relNumbering = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/numbering"
	relSettings  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/settings"
	relImage     = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"
	relHeader    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/header"
	relFooter    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/footer"

	ctMain      = "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"
	ctStyles    = "application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"
	ctNumbering = "application/vnd.openxmlformats-officedocument.wordprocessingml.numbering+xml"
	ctSettings  = "application/vnd.openxmlformats-officedocument.wordprocessingml.settings+xml"
	ctHeader    = "application/vnd.openxmlformats-officedocument.wordprocessingml.header+xml"
	ctFooter    = "application/vnd.openxmlformats-officedocument.wordprocessingml.footer+xml"
	ctCore      = "application/vnd.openxmlformats-package.core-properties+xml"
	ctApp       = "application/vnd.openxmlformats-officedocument.extended-properties+xml"

	xmlHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"
)

// zipEpoch is the earliest timestamp the zip format can store.
var zipEpoch = time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)

type relationship struct {
	id, typ, target string
}

type part struct {
	name string
	data []byte
}

// packager renders a Document into package parts.
type packager struct {
	doc       *Document
	rels      []relationship
	overrides [][2]string
	parts     []part
	// hdr and ftr hold the relationship id of each section's parts.
	hdr, ftr  map[*Section]string
	pics      int
}

// SaveFile writes the document to path, creating parent directories.
func (d *Document) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := d.Save(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// Save writes the document as a .docx package.
func (d *Document) Save(w io.Writer) error {
	if err := d.validate(); err != nil {
		return err
	}
	pk := &packager{doc: d, hdr: map[*Section]string{}, ftr: map[*Section]string{}}
	pk.build()

	modified := d.Created
	if modified.IsZero() {
		modified = zipEpoch
	}
	zw := zip.NewWriter(w)
	for _, p := range pk.parts {
		fw, err := zw.CreateHeader(&zip.FileHeader{Name: p.name, Method: zip.Deflate, Modified: modified})
		if err != nil {
			return err
		}
		if _, err := fw.Write(p.data); err != nil {
			return err
		}
	}
	return zw.Close()
}

func (d *Document) validate() error {
	check := func(p *Paragraph) error {
		if _, ok := styleID(p.Style); !ok {
			return fmt.Errorf("%w: %q", ErrUnknownStyle, p.Style)
		}
		return nil
	}
	for _, el := range d.body {
		switch v := el.(type) {
		case *Paragraph:
			if err := check(v); err != nil {
				return err
			}
		case *Table:
			for _, row := range v.grid {
				for _, c := range row {
					for _, p := range c.paragraphs {
						if err := check(p); err != nil {
							return err
						}
					}
				}
			}
		}
	}
	return nil
}

func (pk *packager) addRel(typ, target string) string {
	id := fmt.Sprintf("rId%d", len(pk.rels)+1)
	pk.rels = append(pk.rels, relationship{id: id, typ: typ, target: target})
	return id
}

func (pk *packager) add(name string, data []byte) {
	pk.parts = append(pk.parts, part{name: name, data: data})
}

func (pk *packager) build() {
	d := pk.doc
	pk.addRel(relStyles, "styles.xml")
	pk.addRel(relNumbering, "numbering.xml")
	pk.addRel(relSettings, "settings.xml")
	for i := range d.media {
		pk.addRel(relImage, fmt.Sprintf("media/image%d.png", i+1))
	}
	headers, footers := 0, 0
	var hfParts []part
	for _, s := range d.sections {
		if s.Header != "" {
			headers++
			name := fmt.Sprintf("header%d.xml", headers)
			pk.hdr[s] = pk.addRel(relHeader, name)
			pk.overrides = append(pk.overrides, [2]string{"/word/" + name, ctHeader})
			hfParts = append(hfParts, part{"word/" + name, headerFooterXML("hdr", "Header", s.Header)})
		}
		if s.Footer != "" {
			footers++
			name := fmt.Sprintf("footer%d.xml", footers)
			pk.ftr[s] = pk.addRel(relFooter, name)
			pk.overrides = append(pk.overrides, [2]string{"/word/" + name, ctFooter})
			hfParts = append(hfParts, part{"word/" + name, headerFooterXML("ftr", "Footer", s.Footer)})
		}
	}

	pk.add("[Content_Types].xml", pk.contentTypes())
	pk.add("_rels/.rels", []byte(xmlHeader+`<Relationships xmlns="`+nsPkg+`">`+
		`<Relationship Id="rId1" Type="`+relOfficeDoc+`" Target="word/document.xml"/>`+
		`<Relationship Id="rId2" Type="`+relCoreProps+`" Target="docProps/core.xml"/>`+
		`<Relationship Id="rId3" Type="`+relAppProps+`" Target="docProps/app.xml"/>`+
		`</Relationships>`))
	pk.add("docProps/core.xml", pk.coreXML())
	pk.add("docProps/app.xml", []byte(xmlHeader+`<Properties xmlns="http://schemas.openxmlformats.org/officeDocument/2006/extended-properties"><Application>lumina-docx</Application></Properties>`))
	pk.add("word/document.xml", pk.documentXML())
	pk.add("word/styles.xml", []byte(stylesXML))
	pk.add("word/numbering.xml", []byte(numberingXML))
	pk.add("word/settings.xml", []byte(settingsXML))
	pk.parts = append(pk.parts, hfParts...)
	for i, m := range d.media {
		pk.add(fmt.Sprintf("word/media/image%d.png", i+1), m)
	}
	pk.add("word/_rels/document.xml.rels", pk.documentRels())
}

func (pk *packager) contentTypes() []byte {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">`)
	b.WriteString(`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>`)
	b.WriteString(`<Default Extension="xml" ContentType="application/xml"/>`)
	b.WriteString(`<Default Extension="png" ContentType="image/png"/>`)
	overrides := append([][2]string{
		{"/word/document.xml", ctMain},
		{"/word/styles.xml", ctStyles},
		{"/word/numbering.xml", ctNumbering},
		{"/word/settings.xml", ctSettings},
		{"/docProps/core.xml", ctCore},
		{"/docProps/app.xml", ctApp},
	}, pk.overrides...)
	for _, o := range overrides {
		fmt.Fprintf(&b, `<Override PartName="%s" ContentType="%s"/>`, o[0], o[1])
	}
	b.WriteString(`</Types>`)
	return []byte(b.String())
}

func (pk *packager) coreXML() []byte {
	d := pk.doc
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:dcterms="http://purl.org/dc/terms/" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">`)
	if d.Title != "" {
		b.WriteString(`<dc:title>` + escape(d.Title) + `</dc:title>`)
	}
	if d.Creator != "" {
		b.WriteString(`<dc:creator>` + escape(d.Creator) + `</dc:creator>`)
	}
	if !d.Created.IsZero() {
		ts := d.Created.UTC().Format(time.RFC3339)
		b.WriteString(`<dcterms:created xsi:type="dcterms:W3CDTF">` + ts + `</dcterms:created>`)
		b.WriteString(`<dcterms:modified xsi:type="dcterms:W3CDTF">` + ts + `</dcterms:modified>`)
	}
	b.WriteString(`</cp:coreProperties>`)
	return []byte(b.String())
}

func (pk *packager) documentRels() []byte {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<Relationships xmlns="` + nsPkg + `">`)
	for _, r := range pk.rels {
		fmt.Fprintf(&b, `<Relationship Id="%s" Type="%s" Target="%s"/>`, r.id, r.typ, r.target)
	}
	b.WriteString(`</Relationships>`)
	return []byte(b.String())
}

func (pk *packager) documentXML() []byte {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<w:document xmlns:w="` + nsW + `" xmlns:r="` + nsR + `" xmlns:wp="` + nsWP + `" xmlns:a="` + nsA + `" xmlns:pic="` + nsPic + `"><w:body>`)
	for _, el := range pk.doc.body {
		switch v := el.(type) {
		case *Paragraph:
			pk.writeParagraph(&b, v)
		case *Table:
			pk.writeTable(&b, v)
		}
	}
	pk.writeSectPr(&b, pk.doc.lastSection(), len(pk.doc.sections) == 1)
	b.WriteString(`</w:body></w:document>`)
	return []byte(b.String())
}

func (pk *packager) writeParagraph(b *strings.Builder, p *Paragraph) {
	b.WriteString(`<w:p>`)
	var ppr strings.Builder
	if id, _ := styleID(p.Style); id != "Normal" {
		ppr.WriteString(`<w:pStyle w:val="` + id + `"/>`)
	}
	if p.SpaceBefore != 0 || p.SpaceAfter != 0 {
		ppr.WriteString(`<w:spacing`)
		if p.SpaceBefore != 0 {
			fmt.Fprintf(&ppr, ` w:before="%d"`, p.SpaceBefore.Twips())
		}
		if p.SpaceAfter != 0 {
			fmt.Fprintf(&ppr, ` w:after="%d"`, p.SpaceAfter.Twips())
		}
		ppr.WriteString(`/>`)
	}
	if p.LeftIndent != 0 {
		fmt.Fprintf(&ppr, `<w:ind w:left="%d"/>`, p.LeftIndent.Twips())
	}
	if v := p.Alignment.val(); v != "" {
		ppr.WriteString(`<w:jc w:val="` + v + `"/>`)
	}
	if p.sect != nil {
		pk.writeSectPr(&ppr, p.sect, p.sect == pk.doc.sections[0])
	}
	if ppr.Len() > 0 {
		b.WriteString(`<w:pPr>` + ppr.String() + `</w:pPr>`)
	}
	for _, r := range p.runs {
		pk.writeRun(b, r)
	}
	b.WriteString(`</w:p>`)
}

func (pk *packager) writeRun(b *strings.Builder, r *Run) {
	b.WriteString(`<w:r>`)
	var rpr strings.Builder
	if r.Bold {
		rpr.WriteString(`<w:b/>`)
	}
	if r.Italic {
		rpr.WriteString(`<w:i/>`)
	}
	if r.Size != 0 {
		fmt.Fprintf(&rpr, `<w:sz w:val="%d"/><w:szCs w:val="%d"/>`, r.Size.HalfPoints(), r.Size.HalfPoints())
	}
	if r.Underline {
		rpr.WriteString(`<w:u w:val="single"/>`)
	}
	if rpr.Len() > 0 {
		b.WriteString(`<w:rPr>` + rpr.String() + `</w:rPr>`)
	}
	switch {
	case r.pageBreak:
		b.WriteString(`<w:br w:type="page"/>`)
	case r.picture != nil:
		pk.writePicture(b, r.picture)
	default:
		b.WriteString(`<w:t xml:space="preserve">` + escape(r.Text) + `</w:t>`)
	}
	b.WriteString(`</w:r>`)
}

func (pk *packager) writePicture(b *strings.Builder, pic *picture) {
	pk.pics++
	relID := fmt.Sprintf("rId%d", 3+pic.index)
	name := fmt.Sprintf("image%d.png", pic.index)
	fmt.Fprintf(b, `<w:drawing><wp:inline distT="0" distB="0" distL="0" distR="0">`+
		`<wp:extent cx="%d" cy="%d"/><wp:docPr id="%d" name="Picture %d"/>`+
		`<wp:cNvGraphicFramePr><a:graphicFrameLocks noChangeAspect="1"/></wp:cNvGraphicFramePr>`+
		`<a:graphic><a:graphicData uri="%s"><pic:pic>`+
		`<pic:nvPicPr><pic:cNvPr id="0" name="%s"/><pic:cNvPicPr/></pic:nvPicPr>`+
		`<pic:blipFill><a:blip r:embed="%s"/><a:stretch><a:fillRect/></a:stretch></pic:blipFill>`+
		`<pic:spPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="%d" cy="%d"/></a:xfrm><a:prstGeom prst="rect"><a:avLst/></a:prstGeom></pic:spPr>`+
		`</pic:pic></a:graphicData></a:graphic></wp:inline></w:drawing>`,
		pic.width, pic.height, pk.pics, pk.pics, nsPic, name, relID, pic.width, pic.height)
}

func (pk *packager) writeTable(b *strings.Builder, t *Table) {
	b.WriteString(`<w:tbl><w:tblPr><w:tblW w:w="0" w:type="auto"/><w:tblLook w:val="04A0" w:firstRow="1" w:lastRow="0" w:firstColumn="1" w:lastColumn="0" w:noHBand="0" w:noVBand="1"/></w:tblPr><w:tblGrid>`)
	for c := 0; c < t.cols; c++ {
		fmt.Fprintf(b, `<w:gridCol w:w="%d"/>`, t.colWidth.Twips())
	}
	b.WriteString(`</w:tblGrid>`)
	for _, row := range t.grid {
		b.WriteString(`<w:tr>`)
		for c := 0; c < len(row); c++ {
			cell := row[c]
			if c > 0 && row[c-1] == cell {
				continue
			}
			width := t.colWidth * Length(cell.span)
			fmt.Fprintf(b, `<w:tc><w:tcPr><w:tcW w:w="%d" w:type="dxa"/>`, width.Twips())
			if cell.span > 1 {
				fmt.Fprintf(b, `<w:gridSpan w:val="%d"/>`, cell.span)
			}
			b.WriteString(`</w:tcPr>`)
			for _, p := range cell.paragraphs {
				pk.writeParagraph(b, p)
			}
			b.WriteString(`</w:tc>`)
		}
		b.WriteString(`</w:tr>`)
	}
	b.WriteString(`</w:tbl>`)
}

func (pk *packager) writeSectPr(b *strings.Builder, s *Section, first bool) {
	b.WriteString(`<w:sectPr>`)
	if id, ok := pk.hdr[s]; ok {
		b.WriteString(`<w:headerReference w:type="default" r:id="` + id + `"/>`)
	}
	if id, ok := pk.ftr[s]; ok {
		b.WriteString(`<w:footerReference w:type="default" r:id="` + id + `"/>`)
	}
	if !first {
		b.WriteString(`<w:type w:val="` + s.Start.val() + `"/>`)
	}
	fmt.Fprintf(b, `<w:pgSz w:w="%d" w:h="%d"`, s.PageWidth.Twips(), s.PageHeight.Twips())
	if s.Orientation == Landscape {
		b.WriteString(` w:orient="landscape"`)
	}
	b.WriteString(`/>`)
	fmt.Fprintf(b, `<w:pgMar w:top="%d" w:right="%d" w:bottom="%d" w:left="%d" w:header="%d" w:footer="%d" w:gutter="0"/>`,
		s.TopMargin.Twips(), s.RightMargin.Twips(), s.BottomMargin.Twips(), s.LeftMargin.Twips(),
		s.HeaderDistance.Twips(), s.FooterDistance.Twips())
	b.WriteString(`<w:cols w:space="720"/><w:docGrid w:linePitch="360"/></w:sectPr>`)
}

func headerFooterXML(root, style, text string) []byte {
	return []byte(xmlHeader + `<w:` + root + ` xmlns:w="` + nsW + `" xmlns:r="` + nsR + `">` +
		`<w:p><w:pPr><w:pStyle w:val="` + style + `"/></w:pPr><w:r><w:t xml:space="preserve">` + escape(text) + `</w:t></w:r></w:p>` +
		`</w:` + root + `>`)
}

func escape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

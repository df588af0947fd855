// Package docx writes WordprocessingML (.docx) documents.
package docx

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"
	"time"
)

// ErrUnknownStyle is returned by Save when a paragraph names a style the
// package does not define.
var ErrUnknownStyle = errors.New("unknown paragraph style")

// Document is an in-memory .docx document. Body content is appended in order
// and always belongs to the last section.
type Document struct {
	Title   string
	Creator string
	// Created is stamped into the core properties and the zip entries.
	// Leave it zero for byte-reproducible output.
	Created time.Time

	body     []any
	sections []*Section
	media    [][]byte
}

// New returns an empty document with one default section.
func New() *Document {
	return &Document{Creator: "lumina", sections: []*Section{defaultSection()}}
}

// AddParagraph appends a paragraph. style is a style name such as
// "List Bullet"; empty means Normal.
func (d *Document) AddParagraph(text, style string) *Paragraph {
	p := &Paragraph{Style: style}
	if text != "" {
		p.AddRun(text)
	}
	d.body = append(d.body, p)
	return p
}

// AddHeading appends a heading paragraph. Level 0 uses the Title style,
// levels 1 through 9 use HeadingN. Other levels are clamped.
func (d *Document) AddHeading(text string, level int) *Paragraph {
	style := "Title"
	switch {
	case level <= 0:
	case level > 9:
		style = "Heading 9"
	default:
		style = fmt.Sprintf("Heading %d", level)
	}
	return d.AddParagraph(text, style)
}

// AddTable appends an empty rows×cols table spanning the text width.
func (d *Document) AddTable(rows, cols int) *Table {
	if rows < 1 {
		rows = 1
	}
	if cols < 1 {
		cols = 1
	}
	t := newTable(rows, cols, d.lastSection().ContentWidth())
	for _, row := range t.grid {
		for _, c := range row {
			c.SetText("")
		}
	}
	d.body = append(d.body, t)
	return t
}

// AddPicture appends a paragraph holding an inline PNG scaled to width,
// keeping the aspect ratio.
func (d *Document) AddPicture(data []byte, width Length) (*Paragraph, error) {
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode png: %w", err)
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return nil, fmt.Errorf("decode png: empty image")
	}
	height := Length(int64(width) * int64(cfg.Height) / int64(cfg.Width))
	d.media = append(d.media, data)
	p := d.AddParagraph("", "")
	p.runs = append(p.runs, &Run{picture: &picture{index: len(d.media), width: width, height: height}})
	return p, nil
}

// AddPageBreak appends a paragraph containing a page break.
func (d *Document) AddPageBreak() *Paragraph {
	p := d.AddParagraph("", "")
	p.runs = append(p.runs, &Run{pageBreak: true})
	return p
}

// AddSection ends the current section and starts a new one with the same
// page geometry. Header and footer text is not copied, so the new section
// repeats the previous ones until set.
func (d *Document) AddSection(start SectionStart) *Section {
	prev := d.lastSection()
	brk := &Paragraph{sect: prev}
	d.body = append(d.body, brk)

	next := *prev
	next.Start = start
	next.Header = ""
	next.Footer = ""
	d.sections = append(d.sections, &next)
	return &next
}

// Sections returns the document sections in order.
func (d *Document) Sections() []*Section { return d.sections }

// Paragraphs returns the body paragraphs, excluding section breaks and
// table content.
func (d *Document) Paragraphs() []*Paragraph {
	var out []*Paragraph
	for _, el := range d.body {
		if p, ok := el.(*Paragraph); ok && p.sect == nil {
			out = append(out, p)
		}
	}
	return out
}

// Tables returns the body tables.
func (d *Document) Tables() []*Table {
	var out []*Table
	for _, el := range d.body {
		if t, ok := el.(*Table); ok {
			out = append(out, t)
		}
	}
	return out
}

func (d *Document) lastSection() *Section {
	return d.sections[len(d.sections)-1]
}

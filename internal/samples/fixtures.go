package samples

import (
	"fmt"

	"github.com/voici5986/lumina-layout/internal/docx"
)

func basicParagraphs() (*docx.Document, error) {
	doc := docx.New()
	doc.AddHeading("Basic Paragraphs", 1).Alignment = docx.AlignCenter

	p := doc.AddParagraph("This paragraph mixes ", "")
	p.AddRun("bold").Bold = true
	p.AddRun(", ")
	p.AddRun("italic").Italic = true
	p.AddRun(", and ")
	p.AddRun("underlined").Underline = true
	p.AddRun(" text.")

	p2 := doc.AddParagraph("Large text with spacing.", "")
	p2.SpaceAfter = docx.Pt(12)
	p2.Runs()[0].Size = docx.Pt(18)

	p3 := doc.AddParagraph("Right aligned paragraph with smaller font.", "")
	p3.Alignment = docx.AlignRight
	p3.Runs()[0].Size = docx.Pt(10)
	return doc, nil
}

func listsAndIndent() (*docx.Document, error) {
	doc := docx.New()
	doc.AddHeading("Lists and Indentation", 1)

	doc.AddParagraph("Bullet list:", "")
	doc.AddParagraph("First bullet", "List Bullet")
	doc.AddParagraph("Second bullet", "List Bullet")

	doc.AddParagraph("Numbered list:", "")
	doc.AddParagraph("First item", "List Number")
	doc.AddParagraph("Second item", "List Number")

	doc.AddParagraph("Nested bullet", "List Bullet 2").LeftIndent = docx.Inches(0.5)

	indented := doc.AddParagraph("Indented paragraph with spacing.", "")
	indented.LeftIndent = docx.Inches(0.75)
	indented.SpaceBefore = docx.Pt(6)
	return doc, nil
}

func tableSimple() (*docx.Document, error) {
	doc := docx.New()
	doc.AddHeading("Simple Table", 1)
	t := doc.AddTable(3, 3)
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			t.Cell(r, c).SetText(fmt.Sprintf("R%dC%d", r+1, c+1))
		}
	}
	return doc, nil
}

func tableMerge() (*docx.Document, error) {
	doc := docx.New()
	doc.AddHeading("Merged Cells", 1)
	t := doc.AddTable(3, 3)
	header, err := t.Merge(0, 0, 2)
	if err != nil {
		return nil, err
	}
	header.SetText("Merged header")
	for r := 1; r < 3; r++ {
		for c := 0; c < 3; c++ {
			t.Cell(r, c).SetText(fmt.Sprintf("%d-%d", r, c))
		}
	}
	return doc, nil
}

func imageInline() (*docx.Document, error) {
	doc := docx.New()
	doc.AddHeading("Inline Image", 1)
	doc.AddParagraph("Image below should scale to width.", "")
	if _, err := doc.AddPicture(SampleImage(), docx.Inches(3.0)); err != nil {
		return nil, err
	}
	doc.AddParagraph("Caption: 3 inch wide image.", "")
	return doc, nil
}

func headerFooter() (*docx.Document, error) {
	doc := docx.New()
	sec := doc.Sections()[0]
	sec.Header = "Lumina Sample Header"
	sec.Footer = "Lumina Sample Footer"
	doc.AddHeading("Header and Footer", 1)
	doc.AddParagraph("This document includes a simple header and footer.", "")
	doc.AddPageBreak()
	doc.AddParagraph("Second page to verify header/footer repetition.", "")
	return doc, nil
}

func pageBreaks() (*docx.Document, error) {
	doc := docx.New()
	doc.AddHeading("Page Breaks", 1)
	for i := 1; i <= 3; i++ {
		doc.AddParagraph(fmt.Sprintf("Page %d content.", i), "")
		if i < 3 {
			doc.AddPageBreak()
		}
	}
	return doc, nil
}

func sectionsMargins() (*docx.Document, error) {
	doc := docx.New()
	doc.AddHeading("Section 1", 1)
	doc.AddParagraph("Portrait section with default margins.", "")

	sec := doc.AddSection(docx.StartNewPage)
	sec.Orientation = docx.Landscape
	sec.SwapPageSize()
	sec.LeftMargin = docx.Inches(1.5)
	sec.RightMargin = docx.Inches(1.0)
	// The second section has no header of its own and repeats the first.
	doc.Sections()[0].Header = "Landscape Header"
	doc.AddHeading("Section 2", 1)
	doc.AddParagraph("Landscape section with custom margins.", "")
	return doc, nil
}

func stylesHeadings() (*docx.Document, error) {
	doc := docx.New()
	doc.AddHeading("Heading 1", 1)
	doc.AddParagraph("Body text under heading 1.", "")
	doc.AddHeading("Heading 2", 2)
	doc.AddParagraph("Body text under heading 2.", "")
	doc.AddParagraph("Quote style paragraph.", "Quote")
	return doc, nil
}

func mixedLayout() (*docx.Document, error) {
	doc := docx.New()
	doc.AddHeading("Mixed Layout", 1)
	doc.AddParagraph("Intro paragraph with bold text.", "").AddRun(" Bold!").Bold = true

	doc.AddParagraph("Checklist:", "")
	doc.AddParagraph("Check one", "List Bullet")
	doc.AddParagraph("Check two", "List Bullet")

	t := doc.AddTable(2, 2)
	t.Cell(0, 0).SetText("A")
	t.Cell(0, 1).SetText("B")
	t.Cell(1, 0).SetText("C")
	t.Cell(1, 1).SetText("D")

	doc.AddParagraph("Image: ", "")
	if _, err := doc.AddPicture(SampleImage(), docx.Inches(2.5)); err != nil {
		return nil, err
	}

	doc.AddPageBreak()
	doc.AddHeading("Second Page", 1)
	doc.AddParagraph("Content after page break.", "")
	return doc, nil
}

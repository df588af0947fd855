package samples

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func readPart(t *testing.T, path, name string) string {
	t.Helper()
	zr, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer zr.Close()
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open part: %v", err)
		}
		defer rc.Close()
		b, _ := io.ReadAll(rc)
		return string(b)
	}
	t.Fatalf("%s has no part %s", path, name)
	return ""
}

func TestGenerateAll(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "tests", "typesetting", "samples")
	written, err := Generate(dir)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(written) != 11 {
		t.Fatalf("expected 11 files, got %d", len(written))
	}
	for _, name := range append(Names(), ImageName) {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("missing %s: %v", name, err)
		}
	}
	img, _ := os.ReadFile(filepath.Join(dir, ImageName))
	if !bytes.Equal(img, SampleImage()) || !bytes.HasPrefix(img, []byte("\x89PNG")) {
		t.Fatalf("sample image corrupted")
	}
}

func TestFixtureContent(t *testing.T) {
	dir := t.TempDir()
	if _, err := Generate(dir); err != nil {
		t.Fatalf("generate: %v", err)
	}
	cases := []struct {
		file, part string
		want       []string
	}{
		{"basic-paragraphs.docx", "word/document.xml", []string{
			`<w:pStyle w:val="Heading1"/><w:jc w:val="center"/>`, "Basic Paragraphs",
			`<w:rPr><w:b/></w:rPr><w:t xml:space="preserve">bold</w:t>`,
			`<w:u w:val="single"/>`, `<w:sz w:val="36"/>`, `<w:sz w:val="20"/>`, `<w:spacing w:after="240"/>`, `<w:jc w:val="right"/>`,
		}},
		{"lists-and-indent.docx", "word/document.xml", []string{
			`<w:pStyle w:val="ListBullet"/>`, `<w:pStyle w:val="ListNumber"/>`,
			`<w:pStyle w:val="ListBullet2"/><w:ind w:left="720"/>`, `<w:spacing w:before="120"/><w:ind w:left="1080"/>`,
		}},
		{"table-simple.docx", "word/document.xml", []string{"R1C1", "R2C3", "R3C3"}},
		{"table-merge.docx", "word/document.xml", []string{`<w:gridSpan w:val="3"/>`, "Merged header", "1-0", "2-2"}},
		{"image-inline.docx", "word/document.xml", []string{`<wp:extent cx="2743200" cy="2743200"/>`, "Caption: 3 inch wide image."}},
		{"header-footer.docx", "word/header1.xml", []string{"Lumina Sample Header"}},
		{"header-footer.docx", "word/footer1.xml", []string{"Lumina Sample Footer"}},
		{"page-breaks.docx", "word/document.xml", []string{"Page 1 content.", "Page 3 content."}},
		{"sections-margins.docx", "word/document.xml", []string{`w:orient="landscape"`, `w:right="1440"`, `w:left="2160"`, "Section 2"}},
		{"sections-margins.docx", "word/header1.xml", []string{"Landscape Header"}},
		{"styles-headings.docx", "word/document.xml", []string{`<w:pStyle w:val="Heading2"/>`, `<w:pStyle w:val="Quote"/>`}},
		{"mixed-layout.docx", "word/document.xml", []string{`<w:t xml:space="preserve"> Bold!</w:t>`, "Check two", `<wp:extent cx="2286000" cy="2286000"/>`, "Second Page"}},
		{"mixed-layout.docx", "word/media/image1.png", []string{"PNG"}},
	}
	for _, tc := range cases {
		part := readPart(t, filepath.Join(dir, tc.file), tc.part)
		for _, w := range tc.want {
			if !strings.Contains(part, w) {
				t.Errorf("%s %s: missing %q", tc.file, tc.part, w)
			}
		}
	}

	doc := readPart(t, filepath.Join(dir, "page-breaks.docx"), "word/document.xml")
	if n := strings.Count(doc, `<w:br w:type="page"/>`); n != 2 {
		t.Fatalf("expected 2 page breaks, got %d", n)
	}

	// The header belongs to the portrait section; the landscape section
	// inherits it.
	doc = readPart(t, filepath.Join(dir, "sections-margins.docx"), "word/document.xml")
	if n := strings.Count(doc, "<w:headerReference"); n != 1 {
		t.Fatalf("expected 1 header reference, got %d", n)
	}
	first := doc[strings.Index(doc, "<w:sectPr>"):]
	first = first[:strings.Index(first, "</w:sectPr>")]
	if !strings.Contains(first, "<w:headerReference") || strings.Contains(first, "landscape") {
		t.Fatalf("header should be on the first section: %s", first)
	}
}

func TestGenerateOnly(t *testing.T) {
	dir := t.TempDir()
	written, err := Generate(dir, "table-simple", "header-footer.docx")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(written) != 3 {
		t.Fatalf("expected image plus two documents, got %v", written)
	}
	if _, err := os.Stat(filepath.Join(dir, "mixed-layout.docx")); !os.IsNotExist(err) {
		t.Fatalf("unselected sample was written")
	}
	if _, err := Generate(dir, "nope"); err == nil {
		t.Fatalf("expected unknown sample error")
	}
	if _, err := Generate(dir, "[table"); err == nil {
		t.Fatalf("expected invalid pattern error")
	}

	globDir := t.TempDir()
	written, err = Generate(globDir, "table-*")
	if err != nil {
		t.Fatalf("generate glob: %v", err)
	}
	if len(written) != 3 {
		t.Fatalf("expected image plus both table samples, got %v", written)
	}
}

func TestBuild(t *testing.T) {
	doc, err := Build("table-merge")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	tables := doc.Tables()
	if len(tables) != 1 || tables[0].Cell(0, 1).Text() != "Merged header" {
		t.Fatalf("unexpected table content")
	}
	if _, err := Build("missing"); err == nil {
		t.Fatalf("expected error")
	}
}

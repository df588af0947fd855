// Package samples builds the .docx fixtures used by the typesetting tests.
package samples

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/voici5986/lumina-layout/internal/docx"
	"github.com/voici5986/lumina-layout/internal/logx"
)

// ImageName is the PNG written next to the documents.
const ImageName = "sample-image.png"

// pngBase64 is a 1×1 PNG.
const pngBase64 = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mP8/x8AAwMCAO+0FtkAAAAASUVORK5CYII="

// SampleImage returns the embedded PNG.
func SampleImage() []byte {
	b, err := base64.StdEncoding.DecodeString(pngBase64)
	if err != nil {
		panic(err)
	}
	return b
}

type builder struct {
	name  string
	build func() (*docx.Document, error)
}

var builders = []builder{
	{"basic-paragraphs.docx", basicParagraphs},
	{"lists-and-indent.docx", listsAndIndent},
	{"table-simple.docx", tableSimple},
	{"table-merge.docx", tableMerge},
	{"image-inline.docx", imageInline},
	{"header-footer.docx", headerFooter},
	{"page-breaks.docx", pageBreaks},
	{"sections-margins.docx", sectionsMargins},
	{"styles-headings.docx", stylesHeadings},
	{"mixed-layout.docx", mixedLayout},
}

// Names lists the fixture file names in generation order.
func Names() []string {
	out := make([]string, len(builders))
	for i, b := range builders {
		out[i] = b.name
	}
	return out
}

// Build returns the named fixture without writing it.
func Build(name string) (*docx.Document, error) {
	b, err := lookup(name)
	if err != nil {
		return nil, err
	}
	return b.build()
}

// Generate writes the fixtures and the sample image into dir, creating it
// if needed. When only is non-empty just the matching fixtures are written;
// entries are names, with or without .docx, or glob patterns like "table-*".
func Generate(dir string, only ...string) ([]string, error) {
	for _, n := range only {
		if !doublestar.ValidatePattern(n) {
			return nil, fmt.Errorf("invalid sample pattern %q", n)
		}
		if !slices.ContainsFunc(builders, func(b builder) bool { return matches(n, b.name) }) {
			return nil, fmt.Errorf("unknown sample %q", n)
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	imgPath := filepath.Join(dir, ImageName)
	if err := os.WriteFile(imgPath, SampleImage(), 0o644); err != nil {
		return nil, fmt.Errorf("write %s: %w", ImageName, err)
	}
	written := []string{imgPath}
	for _, b := range builders {
		if len(only) > 0 && !slices.ContainsFunc(only, func(n string) bool { return matches(n, b.name) }) {
			continue
		}
		doc, err := b.build()
		if err != nil {
			return written, fmt.Errorf("build %s: %w", b.name, err)
		}
		path := filepath.Join(dir, b.name)
		if err := doc.SaveFile(path); err != nil {
			return written, err
		}
		logx.Log.Info().Str("path", path).Msg("sample written")
		written = append(written, path)
	}
	return written, nil
}

func matches(pattern, name string) bool {
	if pattern == name || pattern+".docx" == name {
		return true
	}
	ok, _ := doublestar.Match(pattern, name)
	if !ok {
		ok, _ = doublestar.Match(pattern+".docx", name)
	}
	return ok
}

func lookup(name string) (builder, error) {
	for _, b := range builders {
		if b.name == name || b.name == name+".docx" {
			return b, nil
		}
	}
	return builder{}, fmt.Errorf("unknown sample %q", name)
}

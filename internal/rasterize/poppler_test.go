package rasterize

import (
	"context"
	"errors"
	"image"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// fakePdftoppm writes a script that copies a 400x200 PNG to page-1, page-2
// and page-10 under the output prefix (its last argument).
func fakePdftoppm(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script stub")
	}
	dir := t.TempDir()
	src := filepath.Join(dir, "src.png")
	f, err := os.Create(src)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := png.Encode(f, image.NewGray(image.Rect(0, 0, 400, 200))); err != nil {
		t.Fatalf("encode: %v", err)
	}
	_ = f.Close()

	script := "#!/bin/sh\nfor last; do :; done\n" +
		"for n in 1 2 10; do cp '" + src + "' \"$last-$n.png\"; done\n"
	bin := filepath.Join(dir, "pdftoppm")
	if err := os.WriteFile(bin, []byte(script), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return bin
}

func TestRasterizeOrdersPages(t *testing.T) {
	p := &Poppler{
		Binary: fakePdftoppm(t),
		Sizes: func(string) ([][2]float64, error) {
			return [][2]float64{{612, 792}, {792, 612}, {595, 842}}, nil
		},
	}
	out := t.TempDir()
	pages, err := p.Rasterize(context.Background(), "doc.pdf", out, 200)
	if err != nil {
		t.Fatalf("rasterize: %v", err)
	}
	if len(pages) != 3 {
		t.Fatalf("pages: %d", len(pages))
	}
	wantNames := []string{"page-1.png", "page-2.png", "page-10.png"}
	for i, pg := range pages {
		if pg.Index != i+1 || filepath.Base(pg.Path) != wantNames[i] || pg.DPI != 200 {
			t.Fatalf("page %d: %+v", i, pg)
		}
	}
	if pages[1].WidthPt != 792 || pages[1].HeightPt != 612 {
		t.Fatalf("page 2 size: %+v", pages[1])
	}
}

func TestRasterizeFallsBackToImageSize(t *testing.T) {
	for name, sizer := range map[string]PageSizer{
		"error":    func(string) ([][2]float64, error) { return nil, errors.New("encrypted") },
		"mismatch": func(string) ([][2]float64, error) { return [][2]float64{{612, 792}}, nil },
	} {
		t.Run(name, func(t *testing.T) {
			p := &Poppler{Binary: fakePdftoppm(t), Sizes: sizer}
			pages, err := p.Rasterize(context.Background(), "doc.pdf", t.TempDir(), 200)
			if err != nil {
				t.Fatalf("rasterize: %v", err)
			}
			for _, pg := range pages {
				if math.Abs(pg.WidthPt-144) > 1e-9 || math.Abs(pg.HeightPt-72) > 1e-9 {
					t.Fatalf("derived size: %+v", pg)
				}
			}
		})
	}
}

func TestRasterizeMissingBinary(t *testing.T) {
	p := NewPoppler(filepath.Join(t.TempDir(), "no-such-pdftoppm"))
	if err := p.Available(); err == nil {
		t.Fatalf("expected Available error")
	}
	if _, err := p.Rasterize(context.Background(), "doc.pdf", t.TempDir(), 200); err == nil {
		t.Fatalf("expected error")
	}
}

func TestRasterizeNoImages(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script stub")
	}
	bin := filepath.Join(t.TempDir(), "pdftoppm")
	if err := os.WriteFile(bin, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write: %v", err)
	}
	p := NewPoppler(bin)
	if _, err := p.Rasterize(context.Background(), "doc.pdf", t.TempDir(), 200); err == nil {
		t.Fatalf("expected error when no images are produced")
	}
}

func TestPageNumber(t *testing.T) {
	tests := map[string]int{
		"/tmp/x/page-1.png":   1,
		"/tmp/x/page-007.png": 7,
		"/tmp/x/page-12.png":  12,
		"/tmp/x/page.png":     0,
		"/tmp/x/page-a.png":   0,
	}
	for in, want := range tests {
		if got := pageNumber(in); got != want {
			t.Errorf("pageNumber(%q) = %d; want %d", in, got, want)
		}
	}
}

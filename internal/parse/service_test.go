package parse

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"

	"github.com/voici5986/lumina-layout/internal/cache"
	"github.com/voici5986/lumina-layout/internal/layout"
)

type fakeRaster struct {
	pages int
	err   error
	dirs  []string
}

func (f *fakeRaster) Rasterize(ctx context.Context, pdfPath, dir string, dpi int) ([]layout.PageImage, error) {
	f.dirs = append(f.dirs, dir)
	if f.err != nil {
		return nil, f.err
	}
	var out []layout.PageImage
	for i := 1; i <= f.pages; i++ {
		p := filepath.Join(dir, fmt.Sprintf("page-%d.png", i))
		if err := os.WriteFile(p, []byte("png"), 0o644); err != nil {
			return nil, err
		}
		out = append(out, layout.PageImage{Index: i, Path: p, WidthPt: 612, HeightPt: 792, DPI: dpi})
	}
	return out, nil
}

type fakeEngine struct {
	name     string
	calls    atomic.Int32
	failPage int
	opts     layout.Options
	seen     []string
}

func (e *fakeEngine) Name() string                { return e.name }
func (e *fakeEngine) Probe(context.Context) error { return nil }
func (e *fakeEngine) Analyze(ctx context.Context, page layout.PageImage, opts layout.Options) ([]layout.Region, error) {
	e.calls.Add(1)
	e.opts = opts
	if _, err := os.Stat(page.Path); err != nil {
		return nil, fmt.Errorf("page image missing: %w", err)
	}
	e.seen = append(e.seen, page.Path)
	if page.Index == e.failPage {
		return nil, errors.New("inference failed")
	}
	return []layout.Region{
		{Type: "title", BBox: []float64{0, 0, 200, 100}, Text: fmt.Sprintf("Page %d", page.Index)},
		{Type: "table", BBox: []float64{0, 200, 400, 400}, HTML: "<table></table>"},
	}, nil
}

func writePDF(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "doc.pdf")
	if err := os.WriteFile(p, []byte("%PDF-1.7 fake"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return p
}

func newService(t *testing.T, raster *fakeRaster, engine *fakeEngine, c cache.Cache) *Service {
	t.Helper()
	reg := layout.NewRegistry("pp-structure")
	reg.Register(engine)
	return New(Config{Engines: reg, Rasterizer: raster, Cache: c, DPI: 200, TempDir: t.TempDir()})
}

func TestParse(t *testing.T) {
	raster := &fakeRaster{pages: 2}
	engine := &fakeEngine{name: "pp-structure"}
	svc := newService(t, raster, engine, nil)

	var streamed []int
	st, err := svc.Parse(context.Background(), Request{PDFPath: writePDF(t), OCREngine: "paddleocr"}, func(p layout.Page) {
		streamed = append(streamed, p.PageIndex)
	})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if st.PageCount != 2 || len(st.Pages) != 2 {
		t.Fatalf("structure: %+v", st)
	}
	if len(streamed) != 2 || streamed[0] != 1 || streamed[1] != 2 {
		t.Fatalf("onPage order: %v", streamed)
	}
	p2 := st.Pages[1]
	if p2.PageIndex != 2 || p2.Width != 612 || p2.Height != 792 || len(p2.Blocks) != 2 {
		t.Fatalf("page 2: %+v", p2)
	}
	if p2.Blocks[0].ID != "el_2_0" || *p2.Blocks[0].Content != "Page 2" || p2.Blocks[0].BBox[2] != 72 {
		t.Fatalf("block: %+v", p2.Blocks[0])
	}
	if p2.Blocks[1].Type != layout.TypeTable {
		t.Fatalf("table block: %+v", p2.Blocks[1])
	}
	if !engine.opts.Layout || !engine.opts.Table {
		t.Fatalf("options should default to true: %+v", engine.opts)
	}
	if _, err := os.Stat(raster.dirs[0]); !os.IsNotExist(err) {
		t.Fatalf("temp dir should be removed, stat err = %v", err)
	}
	for _, p := range engine.seen {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Fatalf("page image %s not cleaned up", p)
		}
	}
}

func TestParseOptions(t *testing.T) {
	engine := &fakeEngine{name: "pp-structure"}
	svc := newService(t, &fakeRaster{pages: 1}, engine, nil)
	off := false
	_, err := svc.Parse(context.Background(), Request{PDFPath: writePDF(t), TableRecognition: &off, Language: "ch"}, nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !engine.opts.Layout || engine.opts.Table || engine.opts.Language != "ch" {
		t.Fatalf("options: %+v", engine.opts)
	}
}

func TestParseNotFound(t *testing.T) {
	svc := newService(t, &fakeRaster{pages: 1}, &fakeEngine{name: "pp-structure"}, nil)
	for _, p := range []string{"", filepath.Join(t.TempDir(), "missing.pdf"), t.TempDir()} {
		if _, err := svc.Parse(context.Background(), Request{PDFPath: p}, nil); !errors.Is(err, ErrNotFound) {
			t.Fatalf("Parse(%q) = %v; want ErrNotFound", p, err)
		}
	}
}

func TestParseUnknownEngine(t *testing.T) {
	svc := newService(t, &fakeRaster{pages: 1}, &fakeEngine{name: "pp-structure"}, nil)
	_, err := svc.Parse(context.Background(), Request{PDFPath: writePDF(t), OCREngine: "easyocr"}, nil)
	if !errors.Is(err, layout.ErrUnknownEngine) {
		t.Fatalf("expected ErrUnknownEngine, got %v", err)
	}
}

func TestParseFailures(t *testing.T) {
	raster := &fakeRaster{err: errors.New("pdftoppm failed")}
	svc := newService(t, raster, &fakeEngine{name: "pp-structure"}, nil)
	if _, err := svc.Parse(context.Background(), Request{PDFPath: writePDF(t)}, nil); err == nil {
		t.Fatalf("expected rasterize error")
	}

	raster = &fakeRaster{pages: 3}
	svc = newService(t, raster, &fakeEngine{name: "pp-structure", failPage: 2}, nil)
	_, err := svc.Parse(context.Background(), Request{PDFPath: writePDF(t)}, nil)
	if err == nil || err.Error() != "analyze page 2: inference failed" {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(raster.dirs[0]); !os.IsNotExist(err) {
		t.Fatalf("temp dir should be removed after failure")
	}
}

func TestParseCanceled(t *testing.T) {
	svc := newService(t, &fakeRaster{pages: 2}, &fakeEngine{name: "pp-structure"}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := svc.Parse(ctx, Request{PDFPath: writePDF(t)}, nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestParseCache(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	defer mr.Close()
	rc, err := cache.NewRedis(context.Background(), mr.Addr(), time.Hour)
	if err != nil {
		t.Fatalf("redis: %v", err)
	}
	defer func() { _ = rc.Close() }()

	engine := &fakeEngine{name: "pp-structure"}
	svc := newService(t, &fakeRaster{pages: 2}, engine, rc)
	pdf := writePDF(t)

	first, err := svc.Parse(context.Background(), Request{PDFPath: pdf}, nil)
	if err != nil {
		t.Fatalf("first parse: %v", err)
	}
	var pages int
	second, err := svc.Parse(context.Background(), Request{PDFPath: pdf}, func(layout.Page) { pages++ })
	if err != nil {
		t.Fatalf("second parse: %v", err)
	}
	if engine.calls.Load() != 2 {
		t.Fatalf("engine called %d times; second parse should hit the cache", engine.calls.Load())
	}
	if pages != 2 || second.PageCount != first.PageCount {
		t.Fatalf("cached result: pages=%d %+v", pages, second)
	}

	off := false
	if _, err := svc.Parse(context.Background(), Request{PDFPath: pdf, TableRecognition: &off}, nil); err != nil {
		t.Fatalf("third parse: %v", err)
	}
	if engine.calls.Load() != 4 {
		t.Fatalf("changed options must miss the cache; calls = %d", engine.calls.Load())
	}
}

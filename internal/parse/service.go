// Package parse runs the PDF → layout structure pipeline.
package parse

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/voici5986/lumina-layout/internal/cache"
	"github.com/voici5986/lumina-layout/internal/fs"
	"github.com/voici5986/lumina-layout/internal/layout"
	"github.com/voici5986/lumina-layout/internal/logx"
	"github.com/voici5986/lumina-layout/internal/metrics"
	"github.com/voici5986/lumina-layout/internal/rasterize"
)

// ErrNotFound is returned when the requested PDF does not exist.
var ErrNotFound = errors.New("PDF file not found")

// Request mirrors the JSON body of POST /parse. Nil booleans default to true.
type Request struct {
	PDFPath          string `json:"pdf_path"`
	LayoutAnalysis   *bool  `json:"layout_analysis,omitempty"`
	TableRecognition *bool  `json:"table_recognition,omitempty"`
	OCREngine        string `json:"ocr_engine,omitempty"`
	Language         string `json:"language,omitempty"`
}

// Options resolves the request switches.
func (r Request) Options() layout.Options {
	return layout.Options{
		Layout:   boolOr(r.LayoutAnalysis, true),
		Table:    boolOr(r.TableRecognition, true),
		OCR:      true,
		Language: r.Language,
	}
}

func boolOr(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}

// Config wires a Service.
type Config struct {
	Engines    *layout.Registry
	Rasterizer rasterize.Rasterizer
	Cache      cache.Cache
	DPI        int
	TempDir    string
}

// Service parses PDFs. It is safe for concurrent use.
type Service struct {
	engines *layout.Registry
	raster  rasterize.Rasterizer
	cache   cache.Cache
	dpi     int
	tempDir string
}

// New returns a Service for cfg.
func New(cfg Config) *Service {
	c := cfg.Cache
	if c == nil {
		c = cache.Nop{}
	}
	dpi := cfg.DPI
	if dpi <= 0 {
		dpi = layout.DefaultDPI
	}
	return &Service{engines: cfg.Engines, raster: cfg.Rasterizer, cache: c, dpi: dpi, tempDir: cfg.TempDir}
}

// Engines exposes the engine registry.
func (s *Service) Engines() *layout.Registry { return s.engines }

// Parse rasterises req.PDFPath and runs the selected engine on every page.
// onPage, when non-nil, is called after each page in page order.
func (s *Service) Parse(ctx context.Context, req Request, onPage func(layout.Page)) (layout.Structure, error) {
	if req.PDFPath == "" {
		return layout.Structure{}, ErrNotFound
	}
	if st, err := os.Stat(req.PDFPath); err != nil || st.IsDir() {
		return layout.Structure{}, ErrNotFound
	}
	engine, err := s.engines.Lookup(req.OCREngine)
	if err != nil {
		return layout.Structure{}, err
	}
	opts := req.Options()

	jobID := uuid.NewString()
	log := logx.Log.With().Str("job_id", jobID).Str("engine", engine.Name()).Str("pdf", req.PDFPath).Logger()
	start := time.Now()
	metrics.ParseStarted()
	defer metrics.ParseFinished()

	key, err := fs.Fingerprint(req.PDFPath, engine.Name(), strconv.Itoa(s.dpi),
		strconv.FormatBool(opts.Layout), strconv.FormatBool(opts.Table), opts.Language)
	if err != nil {
		return layout.Structure{}, fmt.Errorf("fingerprint pdf: %w", err)
	}
	if cached, ok, err := s.cache.Get(ctx, key); err != nil {
		log.Warn().Err(err).Msg("cache lookup failed")
	} else {
		metrics.RecordCacheLookup(ok)
		if ok {
			log.Info().Int("pages", cached.PageCount).Msg("parse served from cache")
			if onPage != nil {
				for _, p := range cached.Pages {
					onPage(p)
				}
			}
			return cached, nil
		}
	}

	structure, err := s.run(ctx, jobID, engine, req.PDFPath, opts, onPage)
	metrics.RecordParse(engine.Name(), err == nil, time.Since(start))
	if err != nil {
		log.Error().Err(err).Msg("parse failed")
		return layout.Structure{}, err
	}
	if err := s.cache.Set(ctx, key, structure); err != nil {
		log.Warn().Err(err).Msg("cache store failed")
	}
	log.Info().Int("pages", structure.PageCount).Dur("elapsed", time.Since(start)).Msg("parse complete")
	return structure, nil
}

func (s *Service) run(ctx context.Context, jobID string, engine layout.Engine, pdfPath string, opts layout.Options, onPage func(layout.Page)) (layout.Structure, error) {
	dir, err := os.MkdirTemp(s.tempDir, "lumina-"+jobID+"-")
	if err != nil {
		return layout.Structure{}, fmt.Errorf("create temp dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	images, err := s.raster.Rasterize(ctx, pdfPath, dir, s.dpi)
	if err != nil {
		return layout.Structure{}, fmt.Errorf("rasterize: %w", err)
	}

	pages := make([]layout.Page, 0, len(images))
	for _, img := range images {
		if err := ctx.Err(); err != nil {
			return layout.Structure{}, err
		}
		pageStart := time.Now()
		regions, err := engine.Analyze(ctx, img, opts)
		if err != nil {
			return layout.Structure{}, fmt.Errorf("analyze page %d: %w", img.Index, err)
		}
		metrics.RecordPage(engine.Name(), time.Since(pageStart))

		blocks := layout.BuildBlocks(regions, img.Index, img.DPI)
		countBlocks(engine.Name(), blocks)
		page := layout.Page{PageIndex: img.Index, Width: img.WidthPt, Height: img.HeightPt, Blocks: blocks}
		pages = append(pages, page)
		if onPage != nil {
			onPage(page)
		}
		if err := os.Remove(img.Path); err != nil && !os.IsNotExist(err) {
			logx.Log.Debug().Err(err).Str("path", img.Path).Msg("remove page image")
		}
	}
	return layout.Structure{PageCount: len(pages), Pages: pages}, nil
}

func countBlocks(engine string, blocks []layout.Block) {
	counts := map[string]int{}
	for _, b := range blocks {
		counts[b.Type]++
	}
	for t, n := range counts {
		metrics.RecordBlocks(engine, t, n)
	}
}

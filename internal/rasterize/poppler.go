// Package rasterize renders PDF pages to PNG images for layout analysis.
package rasterize

import (
	"context"
	"errors"
	"fmt"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/voici5986/lumina-layout/internal/layout"
	"github.com/voici5986/lumina-layout/internal/logx"
)

// Rasterizer turns a PDF into one PNG per page inside dir.
type Rasterizer interface {
	Rasterize(ctx context.Context, pdfPath, dir string, dpi int) ([]layout.PageImage, error)
}

// PageSizer reports page sizes in points, one entry per page.
type PageSizer func(pdfPath string) ([][2]float64, error)

// Poppler shells out to pdftoppm.
type Poppler struct {
	// Binary is the pdftoppm executable; empty means "pdftoppm" on PATH.
	Binary string
	// Sizes overrides the page size lookup; nil uses pdfcpu.
	Sizes PageSizer
}

// NewPoppler returns a Poppler using binary.
func NewPoppler(binary string) *Poppler {
	return &Poppler{Binary: binary}
}

// Available reports whether the configured binary can be found.
func (p *Poppler) Available() error {
	_, err := exec.LookPath(p.binary())
	return err
}

func (p *Poppler) binary() string {
	if p.Binary == "" {
		return "pdftoppm"
	}
	return p.Binary
}

// Rasterize renders every page of pdfPath at dpi into dir and returns the
// pages in order.
func (p *Poppler) Rasterize(ctx context.Context, pdfPath, dir string, dpi int) ([]layout.PageImage, error) {
	bin, err := exec.LookPath(p.binary())
	if err != nil {
		return nil, fmt.Errorf("pdftoppm not found: %w", err)
	}
	if dpi <= 0 {
		dpi = layout.DefaultDPI
	}
	prefix := filepath.Join(dir, "page")
	cmd := exec.CommandContext(ctx, bin, "-png", "-r", strconv.Itoa(dpi), "-q", pdfPath, prefix)
	cmd.Env = append(os.Environ(), "LANG=C.UTF-8", "LC_ALL=C.UTF-8")
	out, err := cmd.CombinedOutput()
	if ctx.Err() != nil {
		return nil, fmt.Errorf("pdftoppm interrupted: %w", ctx.Err())
	}
	if err != nil {
		return nil, fmt.Errorf("pdftoppm failed: %w: %s", err, strings.TrimSpace(string(out)))
	}
	paths, err := pagePaths(prefix)
	if err != nil {
		return nil, err
	}

	sizer := p.Sizes
	if sizer == nil {
		sizer = PDFCPUPageSizes
	}
	sizes, err := sizer(pdfPath)
	if err != nil {
		logx.Log.Warn().Err(err).Str("pdf", pdfPath).Msg("page sizes unavailable; deriving from images")
		sizes = nil
	} else if len(sizes) != len(paths) {
		logx.Log.Warn().Int("sizes", len(sizes)).Int("images", len(paths)).Msg("page count mismatch; deriving sizes from images")
		sizes = nil
	}

	pages := make([]layout.PageImage, 0, len(paths))
	for i, path := range paths {
		pg := layout.PageImage{Index: i + 1, Path: path, DPI: dpi}
		if sizes != nil {
			pg.WidthPt, pg.HeightPt = sizes[i][0], sizes[i][1]
		} else {
			w, h, err := sizeFromImage(path, dpi)
			if err != nil {
				return nil, err
			}
			pg.WidthPt, pg.HeightPt = w, h
		}
		pages = append(pages, pg)
	}
	return pages, nil
}

// pagePaths globs prefix-N.png and sorts numerically; pdftoppm zero-pads
// page numbers to the width of the page count, so a plain sort is not
// enough across documents.
func pagePaths(prefix string) ([]string, error) {
	paths, err := filepath.Glob(prefix + "-*.png")
	if err != nil {
		return nil, fmt.Errorf("glob images: %w", err)
	}
	if len(paths) == 0 {
		return nil, errors.New("pdftoppm produced no images")
	}
	sort.Slice(paths, func(i, j int) bool {
		return pageNumber(paths[i]) < pageNumber(paths[j])
	})
	return paths, nil
}

func pageNumber(path string) int {
	base := strings.TrimSuffix(filepath.Base(path), ".png")
	idx := strings.LastIndex(base, "-")
	if idx < 0 {
		return 0
	}
	n, err := strconv.Atoi(base[idx+1:])
	if err != nil {
		return 0
	}
	return n
}

func sizeFromImage(path string, dpi int) (float64, float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer func() { _ = f.Close() }()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	scale := layout.PixelScale(dpi)
	return float64(cfg.Width) * scale, float64(cfg.Height) * scale, nil
}

// PDFCPUPageSizes reads the media box of every page with pdfcpu.
func PDFCPUPageSizes(pdfPath string) ([][2]float64, error) {
	dims, err := api.PageDimsFile(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("pdfcpu page dims: %w", err)
	}
	out := make([][2]float64, len(dims))
	for i, d := range dims {
		out[i] = [2]float64{d.Width, d.Height}
	}
	return out, nil
}

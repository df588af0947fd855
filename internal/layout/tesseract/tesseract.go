//go:build ocr

package tesseract

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/voici5986/lumina-layout/internal/layout"
	"github.com/voici5986/lumina-layout/internal/logx"
)

// Engine implements layout.Engine with gosseract. A fresh client is created
// per page because gosseract clients are not safe for concurrent use.
type Engine struct {
	cfg           Config
	clientFactory func() *gosseract.Client
}

// New returns a Tesseract-backed engine.
func New(cfg Config) (*Engine, error) {
	return &Engine{cfg: cfg, clientFactory: gosseract.NewClient}, nil
}

func (e *Engine) Name() string { return Name }

// Analyze recognises the page and returns one text region per Tesseract
// block. Tesseract does no table or figure detection.
func (e *Engine) Analyze(ctx context.Context, page layout.PageImage, opts layout.Options) ([]layout.Region, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c := e.clientFactory()
	defer func() { _ = c.Close() }()

	if err := c.SetLanguage(languages(e.cfg, opts.Language)...); err != nil {
		return nil, fmt.Errorf("set languages: %w", err)
	}
	if page.DPI > 0 {
		if err := c.SetVariable(gosseract.SettableVariable("user_defined_dpi"), strconv.Itoa(page.DPI)); err != nil {
			return nil, fmt.Errorf("set dpi: %w", err)
		}
	}
	if err := c.SetImage(page.Path); err != nil {
		return nil, fmt.Errorf("set image: %w", err)
	}
	boxes, err := c.GetBoundingBoxes(gosseract.RIL_BLOCK)
	if err != nil {
		return nil, fmt.Errorf("recognize blocks: %w", err)
	}
	regions := make([]layout.Region, 0, len(boxes))
	for _, b := range boxes {
		text := strings.TrimSpace(b.Word)
		if text == "" {
			continue
		}
		regions = append(regions, layout.Region{
			Type:  "text",
			BBox:  []float64{float64(b.Box.Min.X), float64(b.Box.Min.Y), float64(b.Box.Max.X), float64(b.Box.Max.Y)},
			Score: b.Confidence / 100,
			Text:  text,
		})
	}
	logx.Log.Debug().Int("page", page.Index).Int("regions", len(regions)).Msg("tesseract page analysed")
	return regions, nil
}

// Probe reports the linked Tesseract version; it fails only when the
// library cannot be initialised.
func (e *Engine) Probe(ctx context.Context) error {
	c := e.clientFactory()
	defer func() { _ = c.Close() }()
	if v := c.Version(); v == "" {
		return fmt.Errorf("tesseract library unavailable")
	}
	return nil
}

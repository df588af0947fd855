//go:build !ocr

package tesseract

import (
	"context"

	"github.com/voici5986/lumina-layout/internal/layout"
)

// Engine is the stub used when the "ocr" build tag is not set.
type Engine struct{}

// New returns ErrOCRNotEnabled.
func New(cfg Config) (*Engine, error) {
	return nil, ErrOCRNotEnabled
}

func (e *Engine) Name() string { return Name }

func (e *Engine) Analyze(context.Context, layout.PageImage, layout.Options) ([]layout.Region, error) {
	return nil, ErrOCRNotEnabled
}

func (e *Engine) Probe(context.Context) error {
	return ErrOCRNotEnabled
}

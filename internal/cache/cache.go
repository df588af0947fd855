// Package cache stores parse results so re-parsing an unchanged PDF with the
// same options skips rasterisation and inference.
package cache

import (
	"context"

	"github.com/voici5986/lumina-layout/internal/layout"
)

// Cache looks up and stores parse results by key.
type Cache interface {
	Get(ctx context.Context, key string) (layout.Structure, bool, error)
	Set(ctx context.Context, key string, s layout.Structure) error
	Close() error
}

// Nop never hits.
type Nop struct{}

func (Nop) Get(context.Context, string) (layout.Structure, bool, error) {
	return layout.Structure{}, false, nil
}
func (Nop) Set(context.Context, string, layout.Structure) error { return nil }
func (Nop) Close() error                                        { return nil }

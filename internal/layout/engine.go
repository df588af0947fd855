package layout

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ErrUnknownEngine is returned by Lookup for names nothing was registered
// under.
var ErrUnknownEngine = errors.New("unknown layout engine")

// Engine runs layout analysis on one rendered page.
type Engine interface {
	Name() string
	Analyze(ctx context.Context, page PageImage, opts Options) ([]Region, error)
	// Probe reports whether the engine can currently serve requests.
	Probe(ctx context.Context) error
}

var aliases = map[string]string{
	"paddleocr":    "pp-structure",
	"paddle":       "pp-structure",
	"ppstructure":  "pp-structure",
	"pp_structure": "pp-structure",
	"tess":         "tesseract",
}

// Registry maps engine names to implementations.
type Registry struct {
	mu      sync.RWMutex
	engines map[string]Engine
	def     string
}

// NewRegistry returns an empty registry whose default engine is def.
func NewRegistry(def string) *Registry {
	return &Registry{engines: map[string]Engine{}, def: canonical(def)}
}

// Register adds e under its Name.
func (r *Registry) Register(e Engine) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.engines[canonical(e.Name())] = e
}

// Lookup resolves name, or the default engine when name is empty.
func (r *Registry) Lookup(name string) (Engine, error) {
	key := canonical(name)
	if key == "" {
		key = r.def
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.engines[key]; ok {
		return e, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, name)
}

// Default returns the default engine.
func (r *Registry) Default() (Engine, error) {
	return r.Lookup("")
}

// DefaultName returns the canonical name of the default engine.
func (r *Registry) DefaultName() string {
	return r.def
}

// Names lists registered engines in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.engines))
	for n := range r.engines {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func canonical(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	if a, ok := aliases[n]; ok {
		return a
	}
	return n
}

// Package tesseract provides a local layout engine backed by the Tesseract
// OCR library.
//
// The real implementation needs cgo and libtesseract and is only compiled
// with the "ocr" build tag:
//
//	go build -tags ocr ./...
//
// Without the tag every call returns ErrOCRNotEnabled.
package tesseract

import (
	"errors"
	"strings"
)

// Name is the canonical engine name.
const Name = "tesseract"

// ErrOCRNotEnabled is returned when the binary was built without the "ocr"
// tag.
var ErrOCRNotEnabled = errors.New("tesseract support not enabled; rebuild with -tags ocr")

// Config tunes the engine.
type Config struct {
	// Language is a "+" separated Tesseract language list. Empty means eng.
	Language string
}

func languages(cfg Config, override string) []string {
	lang := cfg.Language
	if override != "" {
		lang = override
	}
	out := strings.FieldsFunc(lang, func(r rune) bool { return r == '+' })
	if len(out) == 0 {
		return []string{"eng"}
	}
	return out
}

// Package layout describes the structure extracted from PDF pages and the
// engines that produce it.
package layout

// Block types emitted in Structure.
const (
	TypeText     = "text"
	TypeTable    = "table"
	TypeImage    = "image"
	TypeEquation = "equation"
)

// Structure is the parse result for one PDF.
type Structure struct {
	PageCount int    `json:"pageCount"`
	Pages     []Page `json:"pages"`
}

// Page holds the blocks detected on a single page. Width and Height are in
// PDF points.
type Page struct {
	PageIndex int     `json:"pageIndex"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	Blocks    []Block `json:"blocks"`
}

// Block is one layout region in PDF points, [x0, y0, x1, y1] with a top-left
// origin.
type Block struct {
	ID        string     `json:"id"`
	Type      string     `json:"type"`
	BBox      [4]float64 `json:"bbox"`
	PageIndex int        `json:"pageIndex"`
	Content   *string    `json:"content,omitempty"`
	Caption   *string    `json:"caption,omitempty"`
}

// Region is raw engine output in image pixels. Type is the engine's own
// label (text, title, figure, table, equation, header, ...).
type Region struct {
	Type  string
	BBox  []float64
	Score float64
	Text  string
	HTML  string
	// Raw is the undecoded table payload when the engine returned something
	// other than text or HTML for a table region.
	Raw string
}

// PageImage is a rasterised PDF page ready for analysis.
type PageImage struct {
	Index    int
	Path     string
	WidthPt  float64
	HeightPt float64
	DPI      int
}

// Options carries per-request switches through to the engine.
type Options struct {
	Layout   bool
	Table    bool
	OCR      bool
	Language string
}

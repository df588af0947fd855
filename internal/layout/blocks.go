package layout

import "fmt"

// DefaultDPI is the resolution pages are rendered at unless configured
// otherwise.
const DefaultDPI = 200

var typeMap = map[string]string{
	"text":     TypeText,
	"title":    TypeText,
	"figure":   TypeImage,
	"table":    TypeTable,
	"equation": TypeEquation,
}

// MapType converts an engine label to a block type. Unknown labels are text.
func MapType(engineType string) string {
	if t, ok := typeMap[engineType]; ok {
		return t
	}
	return TypeText
}

// PixelScale returns the factor converting image pixels rendered at dpi into
// PDF points.
func PixelScale(dpi int) float64 {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	return 72 / float64(dpi)
}

// BuildBlocks converts engine regions of one page into blocks. Block ids are
// el_{pageIndex}_{i} where i is the region's position in regions.
func BuildBlocks(regions []Region, pageIndex, dpi int) []Block {
	scale := PixelScale(dpi)
	blocks := make([]Block, 0, len(regions))
	for i, r := range regions {
		label := r.Type
		if label == "" {
			label = "text"
		}
		b := Block{
			ID:        fmt.Sprintf("el_%d_%d", pageIndex, i),
			Type:      MapType(label),
			BBox:      scaleBBox(r.BBox, scale),
			PageIndex: pageIndex,
		}
		switch label {
		case "text", "title":
			b.Content = strPtr(r.Text)
		case "figure":
			b.Caption = strPtr(r.Text)
		case "table":
			b.Content = strPtr(tableContent(r))
		}
		blocks = append(blocks, b)
	}
	return blocks
}

func scaleBBox(bbox []float64, scale float64) [4]float64 {
	var out [4]float64
	for i := 0; i < len(out) && i < len(bbox); i++ {
		out[i] = bbox[i] * scale
	}
	return out
}

func tableContent(r Region) string {
	if r.HTML != "" {
		return r.HTML
	}
	if r.Raw != "" {
		return r.Raw
	}
	return r.Text
}

func strPtr(s string) *string { return &s }

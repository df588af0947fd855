package docx

// Length is a distance in English Metric Units, the native DrawingML unit.
type Length int64

// EMU per unit.
const (
	EMU   Length = 1
	Twip  Length = 635
	Inch  Length = 914400
	Point Length = 12700
)

// Pt converts points to a Length.
func Pt(v float64) Length { return Length(v * float64(Point)) }

// Inches converts inches to a Length.
func Inches(v float64) Length { return Length(v * float64(Inch)) }

// Twips returns l in twentieths of a point, the WordprocessingML layout unit.
func (l Length) Twips() int64 { return int64(l / Twip) }

// HalfPoints returns l in half points, the unit of w:sz.
func (l Length) HalfPoints() int64 { return int64(l / (Point / 2)) }

// Points returns l in points.
func (l Length) Points() float64 { return float64(l) / float64(Point) }

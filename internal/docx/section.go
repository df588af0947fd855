package docx

// Orientation of a section's pages.
type Orientation int

const (
	Portrait Orientation = iota
	Landscape
)

// SectionStart says where a section begins.
type SectionStart int

const (
	StartNewPage SectionStart = iota
	StartContinuous
	StartNewColumn
	StartEvenPage
	StartOddPage
)

func (s SectionStart) val() string {
	switch s {
	case StartContinuous:
		return "continuous"
	case StartNewColumn:
		return "nextColumn"
	case StartEvenPage:
		return "evenPage"
	case StartOddPage:
		return "oddPage"
	}
	return "nextPage"
}

// Section holds page geometry and the header and footer text. A section
// without its own header or footer repeats the previous section's.
type Section struct {
	Start          SectionStart
	Orientation    Orientation
	PageWidth      Length
	PageHeight     Length
	TopMargin      Length
	BottomMargin   Length
	LeftMargin     Length
	RightMargin    Length
	HeaderDistance Length
	FooterDistance Length
	Header         string
	Footer         string
}

// defaultSection is US Letter portrait with the margins of Word's blank
// template.
func defaultSection() *Section {
	return &Section{
		PageWidth:      Inches(8.5),
		PageHeight:     Inches(11),
		TopMargin:      Inches(1),
		BottomMargin:   Inches(1),
		LeftMargin:     Inches(1.25),
		RightMargin:    Inches(1.25),
		HeaderDistance: Inches(0.5),
		FooterDistance: Inches(0.5),
	}
}

// ContentWidth is the page width between the margins.
func (s *Section) ContentWidth() Length {
	return s.PageWidth - s.LeftMargin - s.RightMargin
}

// SwapPageSize exchanges width and height, used when changing orientation.
func (s *Section) SwapPageSize() {
	s.PageWidth, s.PageHeight = s.PageHeight, s.PageWidth
}

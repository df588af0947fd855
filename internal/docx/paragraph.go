package docx

// Alignment is the horizontal justification of a paragraph.
type Alignment int

const (
	AlignDefault Alignment = iota
	AlignLeft
	AlignCenter
	AlignRight
	AlignJustify
)

func (a Alignment) val() string {
	switch a {
	case AlignLeft:
		return "left"
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	case AlignJustify:
		return "both"
	}
	return ""
}

// Paragraph is a w:p element. Zero-valued formatting fields are left to the
// style.
type Paragraph struct {
	Style       string
	Alignment   Alignment
	SpaceBefore Length
	SpaceAfter  Length
	LeftIndent  Length

	runs []*Run
	// sect is set on the paragraph that closes a non-final section.
	sect *Section
}

// Run is a stretch of text with uniform character formatting. A run may
// instead hold a page break or an inline picture.
type Run struct {
	Text      string
	Bold      bool
	Italic    bool
	Underline bool
	Size      Length

	pageBreak bool
	picture   *picture
}

type picture struct {
	index  int
	width  Length
	height Length
}

// AddRun appends a text run.
func (p *Paragraph) AddRun(text string) *Run {
	r := &Run{Text: text}
	p.runs = append(p.runs, r)
	return r
}

// Runs returns the paragraph's runs in order.
func (p *Paragraph) Runs() []*Run { return p.runs }

// Text concatenates the text of every run.
func (p *Paragraph) Text() string {
	var s string
	for _, r := range p.runs {
		s += r.Text
	}
	return s
}

// IsPageBreak reports whether the run is a page break.
func (r *Run) IsPageBreak() bool { return r.pageBreak }

// HasPicture reports whether the run holds an inline picture.
func (r *Run) HasPicture() bool { return r.picture != nil }

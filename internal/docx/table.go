package docx

import "fmt"

// Table is a w:tbl with a uniform grid.
type Table struct {
	rows, cols int
	grid       [][]*Cell
	colWidth   Length
}

// Cell is one table cell. A merged cell spans several grid columns and is
// returned for each of them by Table.Cell.
type Cell struct {
	span       int
	paragraphs []*Paragraph
}

func newTable(rows, cols int, width Length) *Table {
	t := &Table{rows: rows, cols: cols, colWidth: width / Length(cols)}
	t.grid = make([][]*Cell, rows)
	for r := range t.grid {
		t.grid[r] = make([]*Cell, cols)
		for c := range t.grid[r] {
			t.grid[r][c] = &Cell{span: 1}
		}
	}
	return t
}

// Rows returns the row count.
func (t *Table) Rows() int { return t.rows }

// Cols returns the grid column count.
func (t *Table) Cols() int { return t.cols }

// Cell returns the cell at row r, grid column c. It panics when out of range,
// like slice indexing.
func (t *Table) Cell(r, c int) *Cell {
	return t.grid[r][c]
}

// Merge joins grid columns c0..c1 of row r into one cell and returns it.
// Text already present in the absorbed cells is moved into the merged cell.
func (t *Table) Merge(r, c0, c1 int) (*Cell, error) {
	if r < 0 || r >= t.rows || c0 < 0 || c1 >= t.cols || c0 > c1 {
		return nil, fmt.Errorf("merge row %d cols %d..%d: out of range for %dx%d table", r, c0, c1, t.rows, t.cols)
	}
	row := t.grid[r]
	if c0 > 0 && row[c0-1] == row[c0] || c1+1 < t.cols && row[c1+1] == row[c1] {
		return nil, fmt.Errorf("merge row %d cols %d..%d: overlaps an existing merge", r, c0, c1)
	}
	first := row[c0]
	for c := c0 + 1; c <= c1; c++ {
		if row[c] == first {
			continue
		}
		for _, p := range row[c].paragraphs {
			if p.Text() != "" {
				first.paragraphs = append(first.paragraphs, p)
			}
		}
		row[c] = first
	}
	first.span = c1 - c0 + 1
	return first, nil
}

// SetText replaces the cell content with a single paragraph.
func (c *Cell) SetText(text string) {
	p := &Paragraph{}
	if text != "" {
		p.AddRun(text)
	}
	c.paragraphs = []*Paragraph{p}
}

// Text returns the text of the cell's paragraphs joined by newlines.
func (c *Cell) Text() string {
	var s string
	for i, p := range c.paragraphs {
		if i > 0 {
			s += "\n"
		}
		s += p.Text()
	}
	return s
}

// Span returns the number of grid columns the cell covers.
func (c *Cell) Span() int { return c.span }

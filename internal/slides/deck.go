package slides

import (
	"fmt"
	"strconv"
	"strings"
)

// ListKind classifies a paragraph by its list formatting.
type ListKind int

const (
	Plain ListKind = iota
	Bullet
	Numbered
)

// ShapeKind tells the renderer how to treat a shape.
type ShapeKind int

const (
	KindOther ShapeKind = iota
	KindText
	KindTable
)

// Paragraph is one text paragraph of a shape. Err is set when the paragraph
// could not be read; the renderer emits a warning line in its place.
type Paragraph struct {
	Text string
	List ListKind
	Err  error
}

// Shape is a single element of a slide's shape tree.
type Shape struct {
	Kind       ShapeKind
	Paragraphs []Paragraph
	// Rows holds raw cell texts for table shapes.
	Rows [][]string
	// Err is a table-level read failure.
	Err error
}

// Slide holds the shapes of one slide in document order. Err records a
// fault that stopped reading the slide; Shapes then holds what was read
// before it.
type Slide struct {
	Shapes []Shape
	Err    error
}

// Deck is an in-memory view of a presentation, reduced to what the text
// rendering needs.
type Deck struct {
	Slides []Slide
}

// Render produces the normalized text rendering of the deck.
func (d *Deck) Render() string {
	if d == nil {
		return ""
	}
	var lines []string
	for i, s := range d.Slides {
		lines = append(lines, fmt.Sprintf("\n--- Slide %d ---", i+1))
		for _, sh := range s.Shapes {
			switch sh.Kind {
			case KindText:
				lines = appendParagraphs(lines, sh.Paragraphs)
			case KindTable:
				lines = appendTable(lines, sh)
			}
		}
		// shapes read before a slide-level fault are kept
		if s.Err != nil {
			lines = append(lines, "[WARN] Failed to parse slide: "+s.Err.Error())
		}
	}
	return strings.Join(lines, "\n")
}

func appendParagraphs(lines []string, paras []Paragraph) []string {
	// numbering restarts with every shape
	n := 1
	for _, p := range paras {
		if p.Err != nil {
			lines = append(lines, "[WARN] Failed to parse paragraph: "+p.Err.Error())
			continue
		}
		text := strings.TrimSpace(p.Text)
		if text == "" {
			continue
		}
		switch p.List {
		case Bullet:
			lines = append(lines, "* "+text)
		case Numbered:
			lines = append(lines, strconv.Itoa(n)+". "+text)
			n++
		default:
			lines = append(lines, text)
		}
	}
	return lines
}

func appendTable(lines []string, sh Shape) []string {
	lines = append(lines, "[Table]")
	for _, row := range sh.Rows {
		cells := make([]string, 0, len(row))
		for _, c := range row {
			if c = strings.TrimSpace(c); c != "" {
				cells = append(cells, c)
			}
		}
		if len(cells) > 0 {
			lines = append(lines, strings.Join(cells, " | "))
		}
	}
	if sh.Err != nil {
		lines = append(lines, "[WARN] Failed to parse table: "+sh.Err.Error())
	}
	return lines
}

// Package slides renders the text content of PPTX slide decks.
package slides

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

const presentationPart = "ppt/presentation.xml"

var slidePartRe = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

// Extract reads the deck at path and returns its text rendering.
// A missing file yields an empty string and no error.
func Extract(path string) (string, error) {
	d, err := Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	return d.Render(), nil
}

// Open parses the deck at path.
func Open(path string) (*Deck, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	rc, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open pptx: %w", err)
	}
	defer rc.Close()
	return Parse(&rc.Reader)
}

// ParseBytes parses an in-memory PPTX container.
func ParseBytes(b []byte) (*Deck, error) {
	zr, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return nil, fmt.Errorf("open pptx: %w", err)
	}
	return Parse(zr)
}

// Parse builds a Deck from an opened PPTX container. Only container-level
// problems are returned as errors; faults in individual slides, paragraphs
// or tables are recorded on the Deck.
func Parse(zr *zip.Reader) (*Deck, error) {
	parts := slideParts(zr)
	if len(parts) == 0 && readZipFile(zr, presentationPart) == nil {
		return nil, errors.New("not a presentation: ppt/presentation.xml missing")
	}
	d := &Deck{Slides: make([]Slide, 0, len(parts))}
	for _, p := range parts {
		data := readZipFile(zr, p)
		if data == nil {
			d.Slides = append(d.Slides, Slide{Err: fmt.Errorf("slide part %s not found", p)})
			continue
		}
		d.Slides = append(d.Slides, parseSlide(data))
	}
	return d, nil
}

// slideParts returns slide part names in presentation order. Decks whose
// slide list cannot be resolved fall back to numeric part order.
func slideParts(zr *zip.Reader) []string {
	ids := parseSlideIDs(readZipFile(zr, presentationPart))
	rels := parseRelationships(readZipFile(zr, "ppt/_rels/presentation.xml.rels"))
	var parts []string
	for _, id := range ids {
		if target, ok := rels[id]; ok {
			parts = append(parts, normalizeRelPath(target))
		}
	}
	if len(parts) > 0 {
		return parts
	}
	type numbered struct {
		name string
		n    int
	}
	var found []numbered
	for _, f := range zr.File {
		if m := slidePartRe.FindStringSubmatch(f.Name); m != nil {
			n, _ := strconv.Atoi(m[1])
			found = append(found, numbered{f.Name, n})
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].n < found[j].n })
	for _, f := range found {
		parts = append(parts, f.name)
	}
	return parts
}

func parseSlideIDs(data []byte) []string {
	if len(data) == 0 {
		return nil
	}
	dec := xml.NewDecoder(bytes.NewReader(data))
	var ids []string
	for {
		tok, err := dec.Token()
		if err != nil {
			return ids
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "sldId" {
			continue
		}
		for _, a := range se.Attr {
			// the relationship id is the namespaced one; the bare id is numeric
			if a.Name.Local == "id" && a.Name.Space != "" {
				ids = append(ids, a.Value)
			}
		}
	}
}

func parseRelationships(data []byte) map[string]string {
	out := map[string]string{}
	if len(data) == 0 {
		return out
	}
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err != nil {
			return out
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "Relationship" {
			continue
		}
		var id, target string
		for _, a := range se.Attr {
			switch a.Name.Local {
			case "Id":
				id = a.Value
			case "Target":
				target = a.Value
			}
		}
		if id != "" && target != "" {
			out[id] = target
		}
	}
}

func normalizeRelPath(rel string) string {
	if strings.HasPrefix(rel, "/") {
		return strings.TrimPrefix(path.Clean(rel), "/")
	}
	return path.Join("ppt", rel)
}

func readZipFile(zr *zip.Reader, name string) []byte {
	for _, f := range zr.File {
		if f.Name == name {
			rc, err := f.Open()
			if err != nil {
				return nil
			}
			defer rc.Close()
			b, _ := io.ReadAll(rc)
			return b
		}
	}
	return nil
}

// rawXML keeps an element's content for a second, isolated decode so that a
// fault in one element does not stop the walk of its siblings.
type rawXML struct {
	Inner string `xml:",innerxml"`
}

type shapeXML struct {
	Body *struct {
		Paragraphs []rawXML `xml:"p"`
	} `xml:"txBody"`
}

type frameXML struct {
	Table *rawXML `xml:"graphic>graphicData>tbl"`
}

type tableXML struct {
	Rows []struct {
		Cells []struct {
			Paragraphs []rawXML `xml:"txBody>p"`
		} `xml:"tc"`
	} `xml:"tr"`
}

func parseSlide(data []byte) Slide {
	dec := xml.NewDecoder(bytes.NewReader(data))
	if err := seekElement(dec, "spTree"); err != nil {
		if errors.Is(err, io.EOF) {
			return Slide{}
		}
		return Slide{Err: err}
	}
	var s Slide
	for {
		tok, err := dec.Token()
		if err != nil {
			return Slide{Shapes: s.Shapes, Err: fmt.Errorf("read shape tree: %w", err)}
		}
		switch t := tok.(type) {
		case xml.EndElement:
			// end of spTree
			return s
		case xml.StartElement:
			sh, err := decodeShape(dec, t)
			if err != nil {
				return Slide{Shapes: s.Shapes, Err: err}
			}
			s.Shapes = append(s.Shapes, sh)
		}
	}
}

func seekElement(dec *xml.Decoder, local string) error {
	for {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		if se, ok := tok.(xml.StartElement); ok && se.Name.Local == local {
			return nil
		}
	}
}

func decodeShape(dec *xml.Decoder, start xml.StartElement) (Shape, error) {
	switch start.Name.Local {
	case "sp":
		var sp shapeXML
		if err := dec.DecodeElement(&sp, &start); err != nil {
			return Shape{}, fmt.Errorf("decode shape: %w", err)
		}
		if sp.Body == nil {
			return Shape{Kind: KindOther}, nil
		}
		sh := Shape{Kind: KindText, Paragraphs: make([]Paragraph, 0, len(sp.Body.Paragraphs))}
		for _, p := range sp.Body.Paragraphs {
			sh.Paragraphs = append(sh.Paragraphs, parseParagraph(p.Inner))
		}
		return sh, nil
	case "graphicFrame":
		var gf frameXML
		if err := dec.DecodeElement(&gf, &start); err != nil {
			return Shape{}, fmt.Errorf("decode graphic frame: %w", err)
		}
		if gf.Table == nil {
			return Shape{Kind: KindOther}, nil
		}
		rows, err := parseTable(gf.Table.Inner)
		return Shape{Kind: KindTable, Rows: rows, Err: err}, nil
	default:
		if err := dec.Skip(); err != nil {
			return Shape{}, fmt.Errorf("skip %s: %w", start.Name.Local, err)
		}
		return Shape{Kind: KindOther}, nil
	}
}

func parseParagraph(inner string) Paragraph {
	text, kind, err := paragraphText(inner)
	if err != nil {
		return Paragraph{Err: err}
	}
	return Paragraph{Text: text, List: kind}
}

// paragraphText walks a paragraph's content, collecting run and field text
// and noting list markers wherever they appear in the paragraph.
func paragraphText(inner string) (string, ListKind, error) {
	dec := xml.NewDecoder(strings.NewReader("<p>" + inner + "</p>"))
	var (
		sb               strings.Builder
		inText           int
		bullet, numbered bool
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", Plain, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText++
			case "br":
				sb.WriteByte('\n')
			case "buChar":
				bullet = true
			case "buAutoNum":
				numbered = true
			}
		case xml.EndElement:
			if t.Name.Local == "t" && inText > 0 {
				inText--
			}
		case xml.CharData:
			if inText > 0 {
				sb.Write(t)
			}
		}
	}
	kind := Plain
	switch {
	case bullet:
		kind = Bullet
	case numbered:
		kind = Numbered
	}
	return sb.String(), kind, nil
}

// parseTable returns the rows read before the first fault along with it.
func parseTable(inner string) ([][]string, error) {
	var tbl tableXML
	if err := xml.Unmarshal([]byte("<tbl>"+inner+"</tbl>"), &tbl); err != nil {
		return nil, err
	}
	rows := make([][]string, 0, len(tbl.Rows))
	for _, r := range tbl.Rows {
		row := make([]string, 0, len(r.Cells))
		for _, c := range r.Cells {
			texts := make([]string, 0, len(c.Paragraphs))
			for _, p := range c.Paragraphs {
				t, _, err := paragraphText(p.Inner)
				if err != nil {
					return rows, err
				}
				texts = append(texts, t)
			}
			row = append(row, strings.Join(texts, "\n"))
		}
		rows = append(rows, row)
	}
	return rows, nil
}

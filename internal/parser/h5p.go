package parser

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

const h5pContentEntry = "content/content.json"

type h5pParser struct{}

func (h5pParser) Format() Format { return FormatH5P }

func (h5pParser) CanParse(filename string) bool {
	return hasSuffixFold(filename, ".h5p")
}

// Parse extracts content/content.json from the package and re-indents it.
// Key order is kept as written by the authoring tool.
func (h5pParser) Parse(content []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open h5p: %w", err)
	}
	var raw []byte
	found := false
	for _, f := range zr.File {
		if f.Name != h5pContentEntry {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("open %s: %w", h5pContentEntry, err)
		}
		raw, err = io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return "", fmt.Errorf("read %s: %w", h5pContentEntry, err)
		}
		found = true
		break
	}
	if !found {
		return "", ErrMissingContentJSON
	}
	var out bytes.Buffer
	if err := json.Indent(&out, bytes.TrimSpace(raw), "", "  "); err != nil {
		return "", fmt.Errorf("decode %s: %w", h5pContentEntry, err)
	}
	return out.String(), nil
}

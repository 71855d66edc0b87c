// Package parser turns reference files into lesson text, choosing a reader
// by file suffix.
package parser

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// Format tags the kind of a reference file.
type Format string

const (
	FormatText   Format = "text"
	FormatH5P    Format = "h5p"
	FormatSlides Format = "pptx"
)

// Parser defines a reference reader.
type Parser interface {
	Format() Format
	CanParse(filename string) bool
	Parse(content []byte) (string, error)
}

var registry []Parser

// Register adds a parser implementation to the registry. Parsers are tried
// in registration order.
func Register(p Parser) {
	registry = append(registry, p)
}

// For returns the parser that handles filename; plain text is the fallback.
func For(filename string) Parser {
	for _, p := range registry {
		if p.CanParse(filename) {
			return p
		}
	}
	return txtParser{}
}

// Detect returns the format a file will be read as.
func Detect(filename string) Format {
	return For(filename).Format()
}

// ParseFile reads path and returns its lesson text.
func ParseFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	return For(path).Parse(data)
}

func hasSuffixFold(name, suffix string) bool {
	return strings.HasSuffix(strings.ToLower(name), suffix)
}

func init() {
	Register(h5pParser{})
	Register(pptxParser{})
}

// ErrMissingContentJSON is returned for H5P packages without content/content.json.
var ErrMissingContentJSON = errors.New("no content/content.json found in the H5P file")

package parser

import (
	"errors"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

type txtParser struct{}

func (txtParser) Format() Format { return FormatText }

func (txtParser) CanParse(filename string) bool {
	return true
}

// Parse returns the content verbatim, minus a leading byte-order mark.
func (txtParser) Parse(content []byte) (string, error) {
	if !utf8.Valid(content) {
		return "", errors.New("file is not valid UTF-8 text")
	}
	out, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), content)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

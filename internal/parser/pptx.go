package parser

import "github.com/KaramelBytes/quizloom-cli/internal/slides"

type pptxParser struct{}

func (pptxParser) Format() Format { return FormatSlides }

func (pptxParser) CanParse(filename string) bool {
	return hasSuffixFold(filename, ".pptx")
}

func (pptxParser) Parse(content []byte) (string, error) {
	d, err := slides.ParseBytes(content)
	if err != nil {
		return "", err
	}
	return d.Render(), nil
}

// Package prompt renders the instructions sent to the generation service.
package prompt

import (
	"embed"
	"fmt"
	"strings"
	"text/template"
)

// QuestionCount is the number of questions every generated quiz must contain.
const QuestionCount = 10

// Difficulty qualifies the overall difficulty of a quiz.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
)

// ParseDifficulty accepts "easy" or "medium" in any case.
func ParseDifficulty(s string) (Difficulty, error) {
	switch Difficulty(strings.ToLower(strings.TrimSpace(s))) {
	case Easy:
		return Easy, nil
	case Medium:
		return Medium, nil
	}
	return "", fmt.Errorf("invalid difficulty %q (use easy or medium)", s)
}

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

// Build returns the quiz generation prompt for the given lesson content.
func Build(content string, d Difficulty) string {
	return render("generate.tmpl", map[string]any{
		"Count":      QuestionCount,
		"Difficulty": string(d),
		"Content":    content,
	})
}

// BuildValidation returns the prompt asking for a supplementary quiz with
// no overlap against the main quiz.
func BuildValidation(main, supplementary, content string) string {
	return render("validate.tmpl", map[string]any{
		"Count":         QuestionCount,
		"Main":          strings.TrimSpace(main),
		"Supplementary": strings.TrimSpace(supplementary),
		"Content":       content,
	})
}

func render(name string, data any) string {
	var sb strings.Builder
	// templates are embedded and data is plain strings; execution cannot fail
	if err := templates.ExecuteTemplate(&sb, name, data); err != nil {
		panic(fmt.Sprintf("prompt: render %s: %v", name, err))
	}
	return sb.String()
}

// EstimateTokens approximates the token count of text at one token per four
// characters. Non-empty text counts as at least one token.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	n := len([]rune(text)) / 4
	if n == 0 {
		return 1
	}
	return n
}

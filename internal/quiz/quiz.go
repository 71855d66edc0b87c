// Package quiz reads the GIFT-style markup produced by the generator and
// checks it against the quiz format rules.
//
// A document is a sequence of blocks separated by blank lines:
//
//	::Multiple Choice
//	::Which organelle carries out photosynthesis?
//	{
//	~Mitochondrion
//	=Chloroplast
//	}
//
// The first "::" line names the question type and the second holds the
// question text; a block with a single "::" line has text only. Inside the
// braces "=" marks the correct option and "~" a wrong one.
package quiz

import (
	"regexp"
	"strings"
)

// Option is one answer choice.
type Option struct {
	Text    string
	Correct bool
}

// Question is one parsed block.
type Question struct {
	// Line is the 1-based line on which the block starts.
	Line    int
	Type    string
	Text    string
	Options []Option
	// HasAnswers is set when the block contains an answer section.
	HasAnswers bool
}

// Correct returns the number of options marked correct.
func (q Question) Correct() int {
	n := 0
	for _, o := range q.Options {
		if o.Correct {
			n++
		}
	}
	return n
}

// Parse splits text into questions. Blank lines inside an answer section do
// not end the block.
func Parse(text string) []Question {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var (
		out     []Question
		cur     *Question
		headers []string
		inBody  bool
	)
	flush := func() {
		if cur == nil {
			return
		}
		switch len(headers) {
		case 0:
		case 1:
			cur.Text = joinText(headers[0], cur.Text)
		default:
			cur.Type = headers[0]
			cur.Text = joinText(strings.Join(headers[1:], " "), cur.Text)
		}
		out = append(out, *cur)
		cur, headers, inBody = nil, nil, false
	}
	for i, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			if !inBody {
				flush()
			}
			continue
		}
		if cur == nil {
			cur = &Question{Line: i + 1}
		}
		if !inBody {
			if strings.HasPrefix(line, "::") {
				headers = append(headers, strings.TrimSpace(strings.TrimPrefix(line, "::")))
				continue
			}
			before, after, found := strings.Cut(line, "{")
			if !found {
				cur.Text = joinText(cur.Text, line)
				continue
			}
			cur.Text = joinText(cur.Text, before)
			cur.HasAnswers = true
			inBody = true
			line = strings.TrimSpace(after)
		}
		closed := false
		if before, _, found := strings.Cut(line, "}"); found {
			line = strings.TrimSpace(before)
			closed = true
		}
		if o, ok := parseOption(line); ok {
			cur.Options = append(cur.Options, o)
		}
		if closed {
			inBody = false
		}
	}
	flush()
	return out
}

func parseOption(line string) (Option, bool) {
	switch {
	case strings.HasPrefix(line, "="):
		return Option{Text: strings.TrimSpace(line[1:]), Correct: true}, true
	case strings.HasPrefix(line, "~"):
		return Option{Text: strings.TrimSpace(line[1:])}, true
	}
	return Option{}, false
}

func joinText(a, b string) string {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	switch {
	case a == "":
		return b
	case b == "":
		return a
	}
	return a + " " + b
}

var spaceRe = regexp.MustCompile(`\s+`)

// normalize folds case, whitespace and trailing punctuation so that
// trivially reworded copies compare equal.
func normalize(s string) string {
	s = strings.ToLower(spaceRe.ReplaceAllString(strings.TrimSpace(s), " "))
	return strings.TrimRight(s, " ?.!:")
}

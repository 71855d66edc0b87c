package quiz

import (
	"fmt"
	"regexp"
	"strings"
)

// Issue is one deviation from the quiz format rules. Question is the
// 1-based position of the offending block, or 0 for document-level issues.
type Issue struct {
	Question int
	Message  string
}

func (i Issue) String() string {
	if i.Question == 0 {
		return i.Message
	}
	return fmt.Sprintf("question %d: %s", i.Question, i.Message)
}

var numberedRe = regexp.MustCompile(`^(\d+[.)]|Q\d+[:.])\s`)

// Check validates a single document expected to hold want questions.
func Check(doc string, want int) []Issue {
	qs := Parse(doc)
	var issues []Issue
	if len(qs) != want {
		issues = append(issues, Issue{Message: fmt.Sprintf("expected %d questions, found %d", want, len(qs))})
	}
	seen := map[string]int{}
	for i, q := range qs {
		n := i + 1
		if q.Text == "" {
			issues = append(issues, Issue{n, "missing question text"})
		}
		if strings.Contains(q.Text, "**") || strings.HasPrefix(q.Text, "#") {
			issues = append(issues, Issue{n, "markdown formatting in question text"})
		}
		if numberedRe.MatchString(q.Text) {
			issues = append(issues, Issue{n, "question text is numbered"})
		}
		switch c := q.Correct(); {
		case !q.HasAnswers:
			issues = append(issues, Issue{n, "no answer section"})
		case c == 0:
			issues = append(issues, Issue{n, "no correct option"})
		case c > 1:
			issues = append(issues, Issue{n, fmt.Sprintf("%d correct options; only one is allowed", c)})
		}
		key := normalize(q.Text)
		if key == "" {
			continue
		}
		if prev, ok := seen[key]; ok {
			issues = append(issues, Issue{n, fmt.Sprintf("repeats question %d", prev)})
			continue
		}
		seen[key] = n
	}
	return issues
}

// CheckPair reports supplementary questions whose text repeats a main quiz
// question.
func CheckPair(main, supplementary string) []Issue {
	index := map[string]int{}
	for i, q := range Parse(main) {
		if key := normalize(q.Text); key != "" {
			if _, ok := index[key]; !ok {
				index[key] = i + 1
			}
		}
	}
	var issues []Issue
	for i, q := range Parse(supplementary) {
		if m, ok := index[normalize(q.Text)]; ok {
			issues = append(issues, Issue{i + 1, fmt.Sprintf("duplicates main quiz question %d", m)})
		}
	}
	return issues
}

package quiz

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func block(typ, text string, opts ...string) string {
	return "::" + typ + "\n::" + text + "\n{\n" + strings.Join(opts, "\n") + "\n}"
}

func document(n int, prefix string) string {
	blocks := make([]string, n)
	for i := range blocks {
		blocks[i] = block("Multiple Choice", fmt.Sprintf("%s question %d?", prefix, i+1), "~wrong", "=right")
	}
	return strings.Join(blocks, "\n\n")
}

func TestParseBlock(t *testing.T) {
	qs := Parse("::True/False\n::The sky is blue.\n{\n=True\n~False\n}\n")
	require.Len(t, qs, 1)
	q := qs[0]
	assert.Equal(t, 1, q.Line)
	assert.Equal(t, "True/False", q.Type)
	assert.Equal(t, "The sky is blue.", q.Text)
	assert.True(t, q.HasAnswers)
	assert.Equal(t, []Option{{"True", true}, {"False", false}}, q.Options)
	assert.Equal(t, 1, q.Correct())
}

func TestParseVariants(t *testing.T) {
	doc := "::Only text here\n{=yes ~no}\n\r\n\n" +
		"Plain text question\n{\n~a\n\n=b\n}\n\n" +
		"::Fill in the Blanks\n::Water boils at\n::100 degrees\n{\n=100\n}"
	qs := Parse(doc)
	require.Len(t, qs, 3)

	assert.Equal(t, "", qs[0].Type)
	assert.Equal(t, "Only text here", qs[0].Text)
	assert.Equal(t, []Option{{"yes ~no", true}}, qs[0].Options)

	assert.Equal(t, "Plain text question", qs[1].Text)
	assert.Len(t, qs[1].Options, 2, "blank line inside braces keeps the block open")

	assert.Equal(t, "Fill in the Blanks", qs[2].Type)
	assert.Equal(t, "Water boils at 100 degrees", qs[2].Text)
}

func TestCheckCleanDocument(t *testing.T) {
	assert.Empty(t, Check(document(10, "main"), 10))
}

func TestCheckCount(t *testing.T) {
	issues := Check(document(8, "main"), 10)
	require.Len(t, issues, 1)
	assert.Equal(t, "expected 10 questions, found 8", issues[0].String())
}

func TestCheckQuestionRules(t *testing.T) {
	doc := strings.Join([]string{
		block("Multiple Choice", "What is 2+2?", "~3", "=4"),
		block("Multiple Choice", "what is   2+2", "~5", "=4"),
		block("Multiple Choice", "Pick all primes", "=2", "=3", "~4"),
		block("True/False", "**Bold** claim", "~True", "~False"),
		block("Multiple Choice", "1. Numbered question", "=a"),
		"::Drag the Words\n::No answers at all",
	}, "\n\n")

	got := make([]string, 0)
	for _, is := range Check(doc, 6) {
		got = append(got, is.String())
	}
	assert.Equal(t, []string{
		"question 2: repeats question 1",
		"question 3: 2 correct options; only one is allowed",
		"question 4: markdown formatting in question text",
		"question 4: no correct option",
		"question 5: question text is numbered",
		"question 6: no answer section",
	}, got)
}

func TestCheckPair(t *testing.T) {
	main := document(3, "main")
	supp := strings.Join([]string{
		block("Multiple Choice", "Fresh question?", "=a"),
		block("Multiple Choice", "MAIN question 2", "=a"),
	}, "\n\n")

	issues := CheckPair(main, supp)
	require.Len(t, issues, 1)
	assert.Equal(t, "question 2: duplicates main quiz question 2", issues[0].String())
	assert.Empty(t, CheckPair(main, document(3, "supp")))
}

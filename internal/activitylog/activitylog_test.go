package activitylog

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var lineRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2} \| ERROR: .+$`)

func readLines(t *testing.T, path string) []string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimRight(string(b), "\n"), "\n")
}

func TestErrorsAppendedToFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "activities")
	var console bytes.Buffer
	l := New(Options{Dir: dir, Console: &console})

	l.Error("Lesson file not found: refs/a.txt")
	l.Warn("not mirrored")
	l.WithError(errors.New("boom")).Error("Error generating quiz")

	lines := readLines(t, filepath.Join(dir, DefaultFile))
	require.Len(t, lines, 2)
	for _, ln := range lines {
		assert.Regexp(t, lineRe, ln)
	}
	assert.True(t, strings.HasSuffix(lines[0], "| ERROR: Lesson file not found: refs/a.txt"))
	assert.True(t, strings.HasSuffix(lines[1], "| ERROR: Error generating quiz: boom"))
	assert.Contains(t, console.String(), "not mirrored")
}

func TestAppendKeepsExistingEntries(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.log")
	require.NoError(t, os.WriteFile(path, []byte("old line\n"), 0o644))

	New(Options{Dir: dir, File: "custom.log", Console: &bytes.Buffer{}}).Error("new")

	lines := readLines(t, path)
	require.Len(t, lines, 2)
	assert.Equal(t, "old line", lines[0])
}

func TestLineFormatterSingleLine(t *testing.T) {
	e := &logrus.Entry{
		Time:    time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC),
		Level:   logrus.ErrorLevel,
		Message: "first\nsecond",
		Data:    logrus.Fields{},
	}
	b, err := LineFormatter{}.Format(e)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-04 05:06:07 | ERROR: first second\n", string(b))
}

func TestUnwritableLogDoesNotPanic(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))
	var console bytes.Buffer
	// a regular file where the log directory should be
	l := New(Options{Dir: filepath.Join(blocker, "logs"), Console: &console})

	assert.NotPanics(t, func() {
		l.Error("first")
		l.Error("second")
	})
	assert.Equal(t, 1, strings.Count(console.String(), "cannot write error log"))
}

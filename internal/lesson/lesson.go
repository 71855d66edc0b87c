// Package lesson loads reference files into tagged lesson content.
package lesson

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/quizloom-cli/internal/parser"
	"github.com/sirupsen/logrus"
)

// ErrNoContent is returned when no reference yielded usable content.
var ErrNoContent = errors.New("no lesson content could be loaded from the given references")

// ErrEmptyReference marks a reference that was read but contained no text.
var ErrEmptyReference = errors.New("reference produced no content")

// Reference is one source document of a batch.
type Reference struct {
	Index  int // 1-based position in the requested list
	Name   string // base filename, used in the reference tag
	Path   string
	Format parser.Format
}

// Block is the extracted content of one reference.
type Block struct {
	Reference
	Content string
}

// String renders the block with its reference tag.
func (b Block) String() string {
	return fmt.Sprintf("Reference %d (%s):\n%s", b.Index, b.Name, b.Content)
}

// Failure records why a reference was skipped.
type Failure struct {
	Reference
	Err error
}

// Batch is the outcome of loading a reference list.
type Batch struct {
	Blocks   []Block
	Failures []Failure
}

// Content joins all blocks, in reference order, separated by a blank line.
func (b *Batch) Content() string {
	parts := make([]string, len(b.Blocks))
	for i, blk := range b.Blocks {
		parts[i] = blk.String()
	}
	return strings.Join(parts, "\n\n")
}

// Loader reads references relative to a base directory.
type Loader struct {
	dir string
	log logrus.FieldLogger
}

func NewLoader(dir string, log logrus.FieldLogger) *Loader {
	return &Loader{dir: dir, log: log}
}

// References resolves names into references without touching the disk.
func (l *Loader) References(names []string) []Reference {
	refs := make([]Reference, len(names))
	for i, name := range names {
		p := name
		if !filepath.IsAbs(p) {
			p = filepath.Join(l.dir, name)
		}
		refs[i] = Reference{Index: i + 1, Name: filepath.Base(name), Path: p, Format: parser.Detect(name)}
	}
	return refs
}

// Load reads every reference in order. Failing references are logged and
// skipped; the returned error is ErrNoContent when nothing could be read.
func (l *Loader) Load(names []string) (*Batch, error) {
	b := &Batch{}
	for _, ref := range l.References(names) {
		content, err := l.read(ref)
		if err != nil {
			b.Failures = append(b.Failures, Failure{Reference: ref, Err: err})
			continue
		}
		l.log.WithFields(logrus.Fields{"reference": ref.Index, "format": ref.Format}).Debugf("loaded %s", ref.Name)
		b.Blocks = append(b.Blocks, Block{Reference: ref, Content: content})
	}
	if len(b.Blocks) == 0 {
		return b, ErrNoContent
	}
	return b, nil
}

func (l *Loader) read(ref Reference) (string, error) {
	if _, err := os.Stat(ref.Path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			l.log.Errorf("Reference file not found: %s", ref.Path)
		} else {
			l.log.WithError(err).Errorf("Error reading reference %s", ref.Path)
		}
		return "", err
	}
	content, err := parser.ParseFile(ref.Path)
	if err != nil {
		l.log.WithError(err).Errorf("Error reading reference %s", ref.Path)
		return "", err
	}
	if strings.TrimSpace(content) == "" {
		l.log.Errorf("Reference %s produced no content", ref.Path)
		return "", ErrEmptyReference
	}
	return content, nil
}

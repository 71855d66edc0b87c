package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/KaramelBytes/quizloom-cli/internal/ai"
	cfgpkg "github.com/KaramelBytes/quizloom-cli/internal/config"
	"github.com/KaramelBytes/quizloom-cli/internal/lesson"
	"github.com/KaramelBytes/quizloom-cli/internal/prompt"
	"github.com/KaramelBytes/quizloom-cli/internal/quizgen"
	"github.com/KaramelBytes/quizloom-cli/internal/utils"
	"github.com/sirupsen/logrus"
)

// SupplementarySuffix is appended to the base name of the supplementary quiz.
const SupplementarySuffix = "_Supplementary"

type generateOptions struct {
	References              []string
	Difficulty              prompt.Difficulty
	Supplementary           bool
	SupplementaryDifficulty prompt.Difficulty
	Name                    string
	DryRun                  bool
	PrintPrompt             bool
	RequestTimeout          time.Duration
}

// loadLesson reads the references and logs an aborting failure when none
// produced content.
func loadLesson(c *cfgpkg.Global, log logrus.FieldLogger, refs []string) (*lesson.Batch, error) {
	batch, err := lesson.NewLoader(c.InputDir, log).Load(refs)
	if err != nil {
		if errors.Is(err, lesson.ErrNoContent) {
			log.Error("No valid lesson content found; nothing was sent")
		}
		return nil, err
	}
	return batch, nil
}

func newAssembler(c *cfgpkg.Global, backend ai.Backend, log logrus.FieldLogger, timeout time.Duration) *quizgen.Assembler {
	return quizgen.New(ai.NewSender(backend, log), quizgen.Options{
		Credentials:    c.AllCredentials(),
		Model:          c.Model,
		Strict:         c.Strict,
		RequestTimeout: timeout,
	}, log)
}

// saveQuiz writes a quiz and logs the failure when it cannot be stored.
func saveQuiz(c *cfgpkg.Global, log logrus.FieldLogger, name, text string) (string, error) {
	path, err := utils.WriteQuiz(c.OutputDir, name, text)
	if err != nil {
		log.WithError(err).Error("Error saving quiz")
		return "", err
	}
	return path, nil
}

func runGenerate(ctx context.Context, c *cfgpkg.Global, backend ai.Backend, log logrus.FieldLogger, o generateOptions, out io.Writer) error {
	batch, err := loadLesson(c, log, o.References)
	if err != nil {
		return err
	}
	content := batch.Content()
	p := prompt.Build(content, o.Difficulty)
	fmt.Fprintf(out, "Loaded %d of %d references (prompt tokens≈%d)\n", len(batch.Blocks), len(o.References), prompt.EstimateTokens(p))
	for _, f := range batch.Failures {
		fmt.Fprintf(out, "⚠ Skipped %s: %v\n", f.Name, f.Err)
	}

	if o.DryRun {
		fmt.Fprintln(out, "\n--dry-run: no API call will be made. Prompt preview below --")
		fmt.Fprintln(out, p)
		return nil
	}
	if o.PrintPrompt {
		fmt.Fprintln(out, "\n--print-prompt: sending the following prompt --")
		fmt.Fprintln(out, p)
	}

	asm := newAssembler(c, backend, log, o.RequestTimeout)
	fmt.Fprintf(out, "⚙ Generating %s quiz with model=%s ...\n", o.Difficulty, c.Model)
	main, err := asm.GenerateQuiz(ctx, content, o.Difficulty)
	if err != nil {
		return err
	}
	path, err := saveQuiz(c, log, o.Name, main)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "✓ Quiz saved to %s\n", path)

	if !o.Supplementary {
		return nil
	}
	fmt.Fprintf(out, "⚙ Generating %s supplementary quiz ...\n", o.SupplementaryDifficulty)
	supp, err := asm.GenerateQuiz(ctx, content, o.SupplementaryDifficulty)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "⚙ Checking supplementary quiz against the main quiz ...")
	supp, err = asm.Deduplicate(ctx, main, supp, content)
	if err != nil {
		return err
	}
	path, err = saveQuiz(c, log, o.Name+SupplementarySuffix, supp)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "✓ Supplementary quiz saved to %s\n", path)
	return nil
}

// Package quizgen turns lesson content into quiz documents through the
// generation service and keeps the supplementary quiz distinct from the
// main one.
package quizgen

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/KaramelBytes/quizloom-cli/internal/ai"
	"github.com/KaramelBytes/quizloom-cli/internal/prompt"
	"github.com/KaramelBytes/quizloom-cli/internal/quiz"
	"github.com/sirupsen/logrus"
)

// Sender delivers a prompt using the first working credential.
type Sender interface {
	Send(ctx context.Context, prompt string, creds []ai.Credential, model string) (*ai.Outcome, error)
}

// Options configures an Assembler.
type Options struct {
	Credentials []ai.Credential
	Model       string
	// Strict turns format check findings into errors.
	Strict bool
	// RequestTimeout bounds each request on its own. Zero leaves timeouts
	// to the HTTP transport.
	RequestTimeout time.Duration
}

// CheckError reports a generated document that failed the local checks in
// strict mode.
type CheckError struct {
	Document string
	Issues   []quiz.Issue
}

func (e *CheckError) Error() string {
	msgs := make([]string, 0, len(e.Issues))
	for _, is := range e.Issues {
		msgs = append(msgs, is.String())
	}
	return fmt.Sprintf("%s failed format checks: %s", e.Document, strings.Join(msgs, "; "))
}

// Assembler requests quiz documents. The service output is kept as
// returned apart from trimming; checks only report.
type Assembler struct {
	sender Sender
	opts   Options
	log    logrus.FieldLogger
}

func New(s Sender, opts Options, log logrus.FieldLogger) *Assembler {
	return &Assembler{sender: s, opts: opts, log: log}
}

// GenerateQuiz asks for a quiz of the given difficulty over content.
func (a *Assembler) GenerateQuiz(ctx context.Context, content string, d prompt.Difficulty) (string, error) {
	text, err := a.send(ctx, prompt.Build(content, d))
	if err != nil {
		a.log.WithError(err).Error("Error generating quiz")
		return "", fmt.Errorf("generate quiz: %w", err)
	}
	if err := a.review("quiz", quiz.Check(text, prompt.QuestionCount)); err != nil {
		return "", err
	}
	return text, nil
}

// Deduplicate asks the service to rewrite supplementary so that it shares
// no question with main. The response replaces supplementary entirely.
func (a *Assembler) Deduplicate(ctx context.Context, main, supplementary, content string) (string, error) {
	text, err := a.send(ctx, prompt.BuildValidation(main, supplementary, content))
	if err != nil {
		a.log.WithError(err).Error("Error validating quizzes")
		return "", fmt.Errorf("validate quizzes: %w", err)
	}
	issues := append(quiz.Check(text, prompt.QuestionCount), quiz.CheckPair(main, text)...)
	if err := a.review("supplementary quiz", issues); err != nil {
		return "", err
	}
	return text, nil
}

func (a *Assembler) send(ctx context.Context, p string) (string, error) {
	a.log.WithField("tokens", prompt.EstimateTokens(p)).Debug("sending prompt")
	if a.opts.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.opts.RequestTimeout)
		defer cancel()
	}
	out, err := a.sender.Send(ctx, p, a.opts.Credentials, a.opts.Model)
	if err != nil {
		return "", err
	}
	a.log.WithFields(logrus.Fields{
		"credential": out.Credential,
		"failed":     len(out.Failures),
	}).Debug("received response")
	return strings.TrimSpace(out.Text), nil
}

func (a *Assembler) review(doc string, issues []quiz.Issue) error {
	if len(issues) == 0 {
		return nil
	}
	if a.opts.Strict {
		err := &CheckError{Document: doc, Issues: issues}
		a.log.Error(err.Error())
		return err
	}
	for _, is := range issues {
		a.log.WithField("document", doc).Warn(is.String())
	}
	return nil
}

package ai

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
)

var (
	// ErrEmptyResponse is recorded when the service answers with blank text.
	ErrEmptyResponse = errors.New("empty response from model")
	// ErrNoUsableCredentials is the cause of exhaustion when no credential
	// could even be attempted.
	ErrNoUsableCredentials = errors.New("no usable credentials")
)

// Backend performs one generation request with one secret.
type Backend interface {
	Generate(ctx context.Context, apiKey, model, prompt string) (string, error)
}

// Failure records why a credential was given up on. Label is empty when
// the call stopped before a credential was tried.
type Failure struct {
	Label string
	Err   error
}

// Outcome is the result of a successful Send.
type Outcome struct {
	Text       string
	Credential string
	Failures   []Failure
}

// ExhaustedError is returned when every credential was skipped or failed.
type ExhaustedError struct {
	Failures []Failure
}

func (e *ExhaustedError) Error() string {
	return "all credentials exhausted: " + e.Unwrap().Error()
}

// Unwrap returns the last observed failure.
func (e *ExhaustedError) Unwrap() error {
	if n := len(e.Failures); n > 0 {
		return e.Failures[n-1].Err
	}
	return ErrNoUsableCredentials
}

// Sender sends prompts through a Backend, falling back across credentials.
type Sender struct {
	backend Backend
	log     logrus.FieldLogger
}

func NewSender(b Backend, log logrus.FieldLogger) *Sender {
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = l
	}
	return &Sender{backend: b, log: log}
}

// Send tries each credential once, in order, and returns the first
// non-blank response. A credential that failed is not tried again within
// the same call, even if it appears twice in creds.
func (s *Sender) Send(ctx context.Context, prompt string, creds []Credential, model string) (*Outcome, error) {
	failed := make(map[string]bool, len(creds))
	var failures []Failure
	for _, c := range creds {
		if !c.Usable() || failed[c.Key] {
			continue
		}
		if err := ctx.Err(); err != nil {
			// no credential was tried, so the failure carries no label
			failures = append(failures, Failure{Err: err})
			break
		}
		s.log.WithField("credential", c.Label).Debug("sending prompt")
		text, err := s.backend.Generate(ctx, c.Key, model, prompt)
		if err == nil && strings.TrimSpace(text) == "" {
			err = ErrEmptyResponse
		}
		if err != nil {
			failed[c.Key] = true
			failures = append(failures, Failure{Label: c.Label, Err: err})
			s.log.WithFields(logrus.Fields{
				"credential": c.Label,
				"key":        Mask(c.Key),
				"reason":     KindOf(err),
			}).WithError(err).Warnf("Error with %s, trying next credential", c.Label)
			continue
		}
		return &Outcome{Text: text, Credential: c.Label, Failures: failures}, nil
	}
	return nil, &ExhaustedError{Failures: failures}
}

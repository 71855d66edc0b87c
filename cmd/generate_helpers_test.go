package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/quizloom-cli/internal/activitylog"
	"github.com/KaramelBytes/quizloom-cli/internal/ai"
	cfgpkg "github.com/KaramelBytes/quizloom-cli/internal/config"
	"github.com/KaramelBytes/quizloom-cli/internal/lesson"
	"github.com/KaramelBytes/quizloom-cli/internal/prompt"
	"github.com/sirupsen/logrus"
)

type stubBackend struct {
	replies []string
	err     error
	prompts []string
	keys    []string
}

func (b *stubBackend) Generate(_ context.Context, apiKey, _, p string) (string, error) {
	b.prompts = append(b.prompts, p)
	b.keys = append(b.keys, apiKey)
	if b.err != nil {
		return "", b.err
	}
	if len(b.replies) == 0 {
		return "", nil
	}
	r := b.replies[0]
	b.replies = b.replies[1:]
	return r, nil
}

func quizText(prefix string) string {
	blocks := make([]string, prompt.QuestionCount)
	for i := range blocks {
		blocks[i] = fmt.Sprintf("::Multiple Choice\n::%s question %d?\n{\n~no\n=yes\n}", prefix, i+1)
	}
	return strings.Join(blocks, "\n\n")
}

type fixture struct {
	cfg     *cfgpkg.Global
	log     logrus.FieldLogger
	console bytes.Buffer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	f := &fixture{cfg: &cfgpkg.Global{
		InputDir:    filepath.Join(root, "references"),
		OutputDir:   filepath.Join(root, "activities"),
		LogFile:     activitylog.DefaultFile,
		Model:       "gemini-2.5-flash",
		Credentials: []ai.Credential{{Label: "primary", Key: "k1"}},
	}}
	f.log = activitylog.New(activitylog.Options{Dir: f.cfg.EffectiveLogDir(), Console: &f.console})
	if err := os.MkdirAll(f.cfg.InputDir, 0o755); err != nil {
		t.Fatal(err)
	}
	return f
}

func (f *fixture) writeRef(t *testing.T, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(f.cfg.InputDir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func (f *fixture) read(t *testing.T, name string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(f.cfg.OutputDir, name))
	if err != nil {
		t.Fatalf("read %s: %v", name, err)
	}
	return string(b)
}

func (f *fixture) logLines(t *testing.T) []string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(f.cfg.OutputDir, activitylog.DefaultFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		t.Fatal(err)
	}
	return strings.Split(strings.TrimRight(string(b), "\n"), "\n")
}

func opts(refs ...string) generateOptions {
	return generateOptions{References: refs, Difficulty: prompt.Medium, SupplementaryDifficulty: prompt.Easy, Name: "Quiz"}
}

func TestRunGenerateWritesMainQuiz(t *testing.T) {
	f := newFixture(t)
	f.writeRef(t, "a.txt", "Hello")
	b := &stubBackend{replies: []string{"\n" + quizText("main") + "\n"}}
	var out bytes.Buffer

	if err := runGenerate(context.Background(), f.cfg, b, f.log, opts("a.txt"), &out); err != nil {
		t.Fatalf("runGenerate: %v", err)
	}
	if got := f.read(t, "Quiz.txt"); got != quizText("main") {
		t.Fatalf("unexpected quiz file: %q", got)
	}
	if len(b.prompts) != 1 || b.prompts[0] != prompt.Build("Reference 1 (a.txt):\nHello", prompt.Medium) {
		t.Fatalf("unexpected prompts: %v", b.prompts)
	}
	if _, err := os.Stat(filepath.Join(f.cfg.OutputDir, "Quiz_Supplementary.txt")); !os.IsNotExist(err) {
		t.Fatalf("supplementary quiz should not be written")
	}
	if lines := f.logLines(t); lines != nil {
		t.Fatalf("expected no error log, got %v", lines)
	}
}

func TestRunGenerateSupplementaryIsDeduplicated(t *testing.T) {
	f := newFixture(t)
	f.writeRef(t, "a.txt", "Hello")
	b := &stubBackend{replies: []string{quizText("main"), quizText("main"), quizText("fresh")}}
	o := opts("a.txt")
	o.Supplementary = true
	var out bytes.Buffer

	if err := runGenerate(context.Background(), f.cfg, b, f.log, o, &out); err != nil {
		t.Fatalf("runGenerate: %v", err)
	}
	if len(b.prompts) != 3 {
		t.Fatalf("expected 3 requests, got %d", len(b.prompts))
	}
	content := "Reference 1 (a.txt):\nHello"
	if b.prompts[1] != prompt.Build(content, prompt.Easy) {
		t.Fatalf("supplementary prompt should use its own difficulty")
	}
	if b.prompts[2] != prompt.BuildValidation(quizText("main"), quizText("main"), content) {
		t.Fatalf("unexpected validation prompt")
	}
	if got := f.read(t, "Quiz_Supplementary.txt"); got != quizText("fresh") {
		t.Fatalf("supplementary quiz not replaced: %q", got)
	}
	if got := f.read(t, "Quiz.txt"); got != quizText("main") {
		t.Fatalf("main quiz changed: %q", got)
	}
}

func TestRunGenerateWithoutContentMakesNoCall(t *testing.T) {
	f := newFixture(t)
	b := &stubBackend{}
	var out bytes.Buffer

	err := runGenerate(context.Background(), f.cfg, b, f.log, opts("missing.txt"), &out)
	if !errors.Is(err, lesson.ErrNoContent) {
		t.Fatalf("expected ErrNoContent, got %v", err)
	}
	if len(b.prompts) != 0 {
		t.Fatalf("backend must not be called")
	}
	lines := f.logLines(t)
	if len(lines) != 2 {
		t.Fatalf("expected 2 log lines, got %v", lines)
	}
	if !strings.Contains(lines[0], "ERROR: Reference file not found:") || !strings.Contains(lines[1], "No valid lesson content found") {
		t.Fatalf("unexpected log lines: %v", lines)
	}
}

func TestRunGenerateExhaustedCredentials(t *testing.T) {
	f := newFixture(t)
	f.writeRef(t, "a.txt", "Hello")
	f.cfg.Credentials = append(f.cfg.Credentials, ai.Credential{Label: "backup", Key: "k2"})
	b := &stubBackend{err: errors.New("quota exceeded")}
	var out bytes.Buffer

	err := runGenerate(context.Background(), f.cfg, b, f.log, opts("a.txt"), &out)
	var ex *ai.ExhaustedError
	if !errors.As(err, &ex) {
		t.Fatalf("expected ExhaustedError, got %v", err)
	}
	if strings.Join(b.keys, ",") != "k1,k2" {
		t.Fatalf("credentials tried out of order: %v", b.keys)
	}
	if _, err := os.Stat(filepath.Join(f.cfg.OutputDir, "Quiz.txt")); !os.IsNotExist(err) {
		t.Fatalf("no quiz should be written")
	}
	lines := f.logLines(t)
	if len(lines) != 1 || !strings.HasSuffix(lines[0], "ERROR: Error generating quiz: all credentials exhausted: quota exceeded") {
		t.Fatalf("unexpected log lines: %v", lines)
	}
}

func TestReportErrorAddsHintForServiceFailures(t *testing.T) {
	f := newFixture(t)
	f.writeRef(t, "a.txt", "Hello")
	b := &stubBackend{err: &ai.APIError{Provider: ai.ProviderGemini, Kind: ai.KindAuth, StatusCode: 403, Message: "API key not valid"}}

	err := runGenerate(context.Background(), f.cfg, b, f.log, opts("a.txt"), &bytes.Buffer{})
	if err == nil {
		t.Fatalf("expected an error")
	}
	var out bytes.Buffer
	reportError(&out, err)
	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[0], "✗ Error: generate quiz: all credentials exhausted: gemini auth: status=403") {
		t.Fatalf("unexpected report: %q", out.String())
	}
	if lines[1] != "  Hint: a credential was rejected: check the keys in config or GEMINI_KEY_n" {
		t.Fatalf("unexpected hint line: %q", lines[1])
	}

	out.Reset()
	reportError(&out, errors.New("load config: bad yaml"))
	if out.String() != "✗ Error: load config: bad yaml\n" {
		t.Fatalf("plain errors get no hint: %q", out.String())
	}
}

func TestRunGenerateDryRun(t *testing.T) {
	f := newFixture(t)
	f.writeRef(t, "a.txt", "Hello")
	b := &stubBackend{}
	o := opts("gone.txt", "a.txt")
	o.DryRun = true
	var out bytes.Buffer

	if err := runGenerate(context.Background(), f.cfg, b, f.log, o, &out); err != nil {
		t.Fatalf("runGenerate: %v", err)
	}
	if len(b.prompts) != 0 {
		t.Fatalf("dry run must not call the backend")
	}
	s := out.String()
	if !strings.Contains(s, "Loaded 1 of 2 references") || !strings.Contains(s, "Reference 2 (a.txt):\nHello") {
		t.Fatalf("unexpected output: %s", s)
	}
	if !strings.Contains(s, "⚠ Skipped gone.txt") {
		t.Fatalf("skipped reference not reported: %s", s)
	}
}

func TestRunGenerateStrictRejectsMalformedQuiz(t *testing.T) {
	f := newFixture(t)
	f.writeRef(t, "a.txt", "Hello")
	f.cfg.Strict = true
	b := &stubBackend{replies: []string{"::Q\n::only one question\n{\n=a\n}"}}
	var out bytes.Buffer

	err := runGenerate(context.Background(), f.cfg, b, f.log, opts("a.txt"), &out)
	if err == nil || !strings.Contains(err.Error(), "expected 10 questions, found 1") {
		t.Fatalf("expected format check failure, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(f.cfg.OutputDir, "Quiz.txt")); !os.IsNotExist(err) {
		t.Fatalf("rejected quiz must not be written")
	}
}

func TestRunValidateRewritesSupplementaryInPlace(t *testing.T) {
	f := newFixture(t)
	f.writeRef(t, "a.txt", "Hello")
	dir := t.TempDir()
	mainPath := filepath.Join(dir, "Quiz.txt")
	suppPath := filepath.Join(dir, "Quiz_Supplementary.txt")
	if err := os.WriteFile(mainPath, []byte(quizText("main")), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(suppPath, []byte(quizText("main")), 0o644); err != nil {
		t.Fatal(err)
	}
	b := &stubBackend{replies: []string{quizText("fresh")}}
	var out bytes.Buffer

	if err := runValidate(context.Background(), f.cfg, b, f.log, 0, mainPath, suppPath, []string{"a.txt"}, &out); err != nil {
		t.Fatalf("runValidate: %v", err)
	}
	got, _ := os.ReadFile(suppPath)
	if string(got) != quizText("fresh") {
		t.Fatalf("supplementary not rewritten: %q", got)
	}
}

func TestRunValidateMissingQuizIsLogged(t *testing.T) {
	f := newFixture(t)
	var out bytes.Buffer
	err := runValidate(context.Background(), f.cfg, &stubBackend{}, f.log, 0, filepath.Join(t.TempDir(), "nope.txt"), "x.txt", []string{"a.txt"}, &out)
	if err == nil {
		t.Fatalf("expected error")
	}
	if lines := f.logLines(t); len(lines) != 1 || !strings.Contains(lines[0], "Error reading quiz") {
		t.Fatalf("unexpected log lines: %v", lines)
	}
}

func TestApplyConfigValue(t *testing.T) {
	c := &cfgpkg.Global{}
	for _, kv := range [][2]string{
		{"model", "gemini-2.5-pro"},
		{"provider", "OpenRouter"},
		{"difficulty", "Easy"},
		{"strict", "true"},
		{"http_timeout_sec", "30"},
		{"credential.primary", "secret-1"},
		{"credential.primary", "secret-2"},
	} {
		if err := applyConfigValue(c, kv[0], kv[1]); err != nil {
			t.Fatalf("set %s: %v", kv[0], err)
		}
	}
	if c.Model != "gemini-2.5-pro" || c.Provider != "openrouter" || c.Difficulty != "easy" || !c.Strict || c.HTTPTimeoutSec != 30 {
		t.Fatalf("unexpected config: %+v", c)
	}
	if len(c.Credentials) != 1 || c.Credentials[0].Key != "secret-2" {
		t.Fatalf("unexpected credentials: %+v", c.Credentials)
	}
	for _, kv := range [][2]string{{"provider", "ollama"}, {"difficulty", "hard"}, {"http_timeout_sec", "-1"}, {"nope", "x"}, {"credential.", "x"}} {
		if err := applyConfigValue(c, kv[0], kv[1]); err == nil {
			t.Fatalf("expected error for %s=%s", kv[0], kv[1])
		}
	}
}

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/KaramelBytes/quizloom-cli/internal/ai"
	cfgpkg "github.com/KaramelBytes/quizloom-cli/internal/config"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	valMainPath string
	valSuppPath string
)

var validateCmd = &cobra.Command{
	Use:   "validate <reference>...",
	Short: "Rewrite a supplementary quiz so it does not overlap the main quiz",
	Example: `  quizloom validate --main activities/Quiz.txt --supplementary activities/Quiz_Supplementary.txt lesson1.pptx`,
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := buildBackend()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("strict") {
			cfg.Strict = genStrict
		}
		timeout := time.Duration(genTimeoutSec) * time.Second
		return runValidate(cmd.Context(), cfg, backend, runLogger(), timeout, valMainPath, valSuppPath, args, cmd.OutOrStdout())
	},
}

func runValidate(ctx context.Context, c *cfgpkg.Global, backend ai.Backend, log logrus.FieldLogger, timeout time.Duration, mainPath, suppPath string, refs []string, out io.Writer) error {
	main, err := readQuizFile(log, mainPath)
	if err != nil {
		return err
	}
	supp, err := readQuizFile(log, suppPath)
	if err != nil {
		return err
	}
	batch, err := loadLesson(c, log, refs)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "⚙ Checking supplementary quiz against the main quiz ...")
	fixed, err := newAssembler(c, backend, log, timeout).Deduplicate(ctx, main, supp, batch.Content())
	if err != nil {
		return err
	}
	// the rewritten quiz replaces the supplementary file in place
	local := *c
	local.OutputDir = filepath.Dir(suppPath)
	path, err := saveQuiz(&local, log, filepath.Base(suppPath), fixed)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "✓ Supplementary quiz saved to %s\n", path)
	return nil
}

func readQuizFile(log logrus.FieldLogger, path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("quiz file path is required")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		log.WithError(err).Errorf("Error reading quiz %s", path)
		return "", fmt.Errorf("read quiz: %w", err)
	}
	return string(b), nil
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().StringVar(&valMainPath, "main", "", "path of the main quiz file")
	validateCmd.Flags().StringVar(&valSuppPath, "supplementary", "", "path of the supplementary quiz file (rewritten in place)")
	validateCmd.Flags().BoolVar(&genStrict, "strict", false, "fail when the rewritten quiz breaks the format rules")
	validateCmd.Flags().IntVar(&genTimeoutSec, "timeout-sec", 0, "timeout for each API request in seconds (0 leaves it to http_timeout_sec)")
	_ = validateCmd.MarkFlagRequired("main")
	_ = validateCmd.MarkFlagRequired("supplementary")
}

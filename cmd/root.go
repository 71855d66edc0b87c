package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/KaramelBytes/quizloom-cli/internal/activitylog"
	"github.com/KaramelBytes/quizloom-cli/internal/ai"
	cfgpkg "github.com/KaramelBytes/quizloom-cli/internal/config"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	debug   bool
	// Overrides applied on top of the loaded configuration
	flagInputDir  string
	flagOutputDir string
	flagModel     string
	flagProvider  string

	// Loaded configuration
	cfg *cfgpkg.Global

	// newBackend is replaced in tests to avoid network calls.
	newBackend = ai.NewBackend
)

var rootCmd = &cobra.Command{
	Use:   "quizloom",
	Short: "quizloom: turn lesson materials into H5P quiz documents",
	Long: `quizloom reads lesson references (text, PPTX slide decks, H5P packages),
asks a generative AI service for a GIFT-style quiz and writes it to the
activities directory. An optional supplementary quiz is checked against the
main one so the two do not overlap.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig()
	},
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		reportError(os.Stderr, err)
		os.Exit(1)
	}
}

// reportError prints err and, for service failures, what to try next.
func reportError(w io.Writer, err error) {
	fmt.Fprintln(w, "✗ Error:", err)
	if hint := ai.Hint(err); hint != "" {
		fmt.Fprintln(w, "  Hint:", hint)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is ~/.quizloom/config.yaml)")
	pf.BoolVar(&debug, "debug", false, "enable debug output")
	pf.StringVar(&flagInputDir, "input-dir", "", "directory holding lesson references (overrides config)")
	pf.StringVar(&flagOutputDir, "output-dir", "", "directory receiving quiz files (overrides config)")
	pf.StringVar(&flagModel, "model", "", "model identifier (overrides config)")
	pf.StringVar(&flagProvider, "provider", "", "generation provider: gemini or openrouter (overrides config)")
}

func loadConfig() error {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	f := rootCmd.PersistentFlags()
	if f.Changed("input-dir") && flagInputDir != "" {
		c.InputDir = flagInputDir
	}
	if f.Changed("output-dir") && flagOutputDir != "" {
		c.OutputDir = flagOutputDir
	}
	if f.Changed("model") && flagModel != "" {
		c.Model = flagModel
	}
	if f.Changed("provider") && flagProvider != "" {
		c.Provider = flagProvider
	}
	cfg = c
	return nil
}

// runLogger returns a logger for one command run. Errors are mirrored to
// the error log in the configured log directory.
func runLogger() *logrus.Entry {
	l := activitylog.New(activitylog.Options{
		Dir:   cfg.EffectiveLogDir(),
		File:  cfg.LogFile,
		Debug: debug,
	})
	return l.WithField("run", uuid.NewString())
}

// buildBackend creates the configured generation backend.
func buildBackend() (ai.Backend, error) {
	bc := ai.BackendConfig{HTTPTimeout: cfg.HTTPTimeout()}
	if cfg.Provider == ai.ProviderOpenRouter {
		bc.BaseURL = cfg.OpenRouterBaseURL
	}
	return newBackend(cfg.Provider, bc)
}

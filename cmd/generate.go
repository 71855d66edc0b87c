package cmd

import (
	"time"

	"github.com/KaramelBytes/quizloom-cli/internal/prompt"
	"github.com/spf13/cobra"
)

var (
	genDifficulty     string
	genSupplementary  bool
	genSuppDifficulty string
	genName           string
	genDryRun         bool
	genPrintPrompt    bool
	genStrict         bool
	genTimeoutSec     int
)

var generateCmd = &cobra.Command{
	Use:   "generate <reference>...",
	Short: "Generate a quiz from lesson references",
	Long: `Reads the given references from the input directory, builds the quiz prompt
and writes <name>.txt to the output directory. With --supplementary a second,
non-overlapping quiz is written to <name>_Supplementary.txt.`,
	Example: `  quizloom generate lesson1.pptx notes.txt
  quizloom generate unit3.h5p --supplementary --name Unit3
  quizloom generate lesson1.pptx --dry-run`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := generateOptionsFromFlags(cmd, args)
		if err != nil {
			return err
		}
		backend, err := buildBackend()
		if err != nil {
			return err
		}
		return runGenerate(cmd.Context(), cfg, backend, runLogger(), opts, cmd.OutOrStdout())
	},
}

func generateOptionsFromFlags(cmd *cobra.Command, args []string) (generateOptions, error) {
	f := cmd.Flags()
	level := cfg.Difficulty
	if f.Changed("difficulty") {
		level = genDifficulty
	}
	d, err := prompt.ParseDifficulty(level)
	if err != nil {
		return generateOptions{}, err
	}
	suppLevel := cfg.SupplementaryDifficulty
	if f.Changed("supp-difficulty") {
		suppLevel = genSuppDifficulty
	}
	sd, err := prompt.ParseDifficulty(suppLevel)
	if err != nil {
		return generateOptions{}, err
	}
	name := cfg.ResultName
	if f.Changed("name") {
		name = genName
	}
	if f.Changed("strict") {
		cfg.Strict = genStrict
	}
	return generateOptions{
		References:              args,
		Difficulty:              d,
		Supplementary:           genSupplementary,
		SupplementaryDifficulty: sd,
		Name:                    name,
		DryRun:                  genDryRun,
		PrintPrompt:             genPrintPrompt,
		RequestTimeout:          time.Duration(genTimeoutSec) * time.Second,
	}, nil
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().StringVar(&genDifficulty, "difficulty", "medium", "main quiz difficulty: easy or medium")
	generateCmd.Flags().BoolVar(&genSupplementary, "supplementary", false, "also generate a supplementary quiz that does not overlap the main one")
	generateCmd.Flags().StringVar(&genSuppDifficulty, "supp-difficulty", "easy", "supplementary quiz difficulty: easy or medium")
	generateCmd.Flags().StringVar(&genName, "name", "Quiz", "base name of the output files")
	generateCmd.Flags().BoolVar(&genDryRun, "dry-run", false, "build the prompt and print it without calling the API")
	generateCmd.Flags().BoolVar(&genPrintPrompt, "print-prompt", false, "print the prompt before sending it")
	generateCmd.Flags().BoolVar(&genStrict, "strict", false, "fail when a generated quiz breaks the format rules")
	generateCmd.Flags().IntVar(&genTimeoutSec, "timeout-sec", 0, "timeout for each API request in seconds (0 leaves it to http_timeout_sec)")
}

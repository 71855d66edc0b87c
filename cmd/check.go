package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/KaramelBytes/quizloom-cli/internal/prompt"
	"github.com/KaramelBytes/quizloom-cli/internal/quiz"
	"github.com/spf13/cobra"
)

var (
	checkAgainst string
	checkCount   int
)

var checkCmd = &cobra.Command{
	Use:   "check <quiz.txt>...",
	Short: "Check quiz files against the format rules",
	Example: `  quizloom check activities/Quiz.txt
  quizloom check activities/Quiz_Supplementary.txt --against activities/Quiz.txt`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCheck(args, checkAgainst, checkCount, cmd.OutOrStdout())
	},
}

func runCheck(files []string, against string, want int, out io.Writer) error {
	var main string
	if against != "" {
		b, err := os.ReadFile(against)
		if err != nil {
			return fmt.Errorf("read %s: %w", against, err)
		}
		main = string(b)
	}
	total := 0
	for _, f := range files {
		b, err := os.ReadFile(f)
		if err != nil {
			return fmt.Errorf("read %s: %w", f, err)
		}
		issues := quiz.Check(string(b), want)
		if against != "" {
			issues = append(issues, quiz.CheckPair(main, string(b))...)
		}
		if len(issues) == 0 {
			fmt.Fprintf(out, "✓ %s\n", f)
			continue
		}
		fmt.Fprintf(out, "✗ %s\n", f)
		for _, is := range issues {
			fmt.Fprintf(out, "  - %s\n", is)
		}
		total += len(issues)
	}
	if total > 0 {
		return fmt.Errorf("%d issue(s) found", total)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringVar(&checkAgainst, "against", "", "main quiz the checked files must not overlap")
	checkCmd.Flags().IntVar(&checkCount, "count", prompt.QuestionCount, "expected number of questions per file")
}

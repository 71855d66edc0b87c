package cmd

import (
	"fmt"
	"os"

	"github.com/KaramelBytes/quizloom-cli/internal/slides"
	"github.com/spf13/cobra"
)

var extractCmd = &cobra.Command{
	Use:   "extract <deck.pptx>",
	Short: "Print the text rendering of a PPTX slide deck",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := slides.Extract(args[0])
		if err != nil {
			runLogger().WithError(err).Errorf("Error reading slides %s", args[0])
			return err
		}
		if text == "" {
			fmt.Fprintf(os.Stderr, "⚠ Warning: no slide content found in %s\n", args[0])
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), text)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)
}

package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/KaramelBytes/quizloom-cli/internal/ai"
	cfgpkg "github.com/KaramelBytes/quizloom-cli/internal/config"
	"github.com/KaramelBytes/quizloom-cli/internal/prompt"
	"github.com/spf13/cobra"
)

// credentialKeyPrefix selects a credential by label in `config set`.
const credentialKeyPrefix = "credential."

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set quizloom configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		showConfig(cfg, cmd.OutOrStdout())
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Example: `  quizloom config set model gemini-2.5-pro
  quizloom config set credential.primary AIza...`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		// start from the file alone so flag and env overrides are not persisted
		c, err := cfgpkg.LoadFile(cfgFile)
		if err != nil {
			return err
		}
		if err := applyConfigValue(c, args[0], args[1]); err != nil {
			return err
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func showConfig(c *cfgpkg.Global, out io.Writer) {
	fmt.Fprintf(out, "input_dir: %s\n", c.InputDir)
	fmt.Fprintf(out, "output_dir: %s\n", c.OutputDir)
	fmt.Fprintf(out, "log_dir: %s\n", c.EffectiveLogDir())
	fmt.Fprintf(out, "log_file: %s\n", c.LogFile)
	fmt.Fprintf(out, "provider: %s\n", c.Provider)
	fmt.Fprintf(out, "model: %s\n", c.Model)
	if c.OpenRouterBaseURL != "" {
		fmt.Fprintf(out, "openrouter_base_url: %s\n", c.OpenRouterBaseURL)
	}
	fmt.Fprintf(out, "http_timeout_sec: %d\n", c.HTTPTimeoutSec)
	fmt.Fprintf(out, "result_name: %s\n", c.ResultName)
	fmt.Fprintf(out, "difficulty: %s\n", c.Difficulty)
	fmt.Fprintf(out, "supplementary_difficulty: %s\n", c.SupplementaryDifficulty)
	fmt.Fprintf(out, "strict: %t\n", c.Strict)
	creds := c.AllCredentials()
	if len(creds) == 0 {
		fmt.Fprintln(out, "credentials: (none)")
		return
	}
	fmt.Fprintln(out, "credentials:")
	for _, cr := range creds {
		fmt.Fprintf(out, "  - %s: %s\n", cr.Label, ai.Mask(cr.Key))
	}
}

func applyConfigValue(c *cfgpkg.Global, key, val string) error {
	if label, ok := strings.CutPrefix(key, credentialKeyPrefix); ok {
		if label == "" {
			return fmt.Errorf("credential label cannot be empty")
		}
		c.SetCredential(label, val)
		return nil
	}
	switch key {
	case "input_dir":
		c.InputDir = val
	case "output_dir":
		c.OutputDir = val
	case "log_dir":
		c.LogDir = val
	case "log_file":
		c.LogFile = val
	case "provider":
		p := strings.ToLower(val)
		if _, err := ai.NewBackend(p, ai.BackendConfig{}); err != nil {
			return fmt.Errorf("invalid provider: %s (use %s)", val, strings.Join(ai.Providers(), " or "))
		}
		c.Provider = p
	case "model":
		c.Model = val
	case "openrouter_base_url":
		c.OpenRouterBaseURL = val
	case "http_timeout_sec":
		i, err := strconv.Atoi(val)
		if err != nil || i <= 0 {
			return fmt.Errorf("invalid int for http_timeout_sec: %v", val)
		}
		c.HTTPTimeoutSec = i
	case "result_name":
		c.ResultName = val
	case "difficulty", "supplementary_difficulty":
		d, err := prompt.ParseDifficulty(val)
		if err != nil {
			return err
		}
		if key == "difficulty" {
			c.Difficulty = string(d)
		} else {
			c.SupplementaryDifficulty = string(d)
		}
	case "strict":
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("invalid bool for strict: %w", err)
		}
		c.Strict = b
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

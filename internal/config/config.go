package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/KaramelBytes/quizloom-cli/internal/ai"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvKeyPrefix names the numbered environment variables that supply
// additional Gemini credentials: GEMINI_KEY_1 ... GEMINI_KEY_9.
const EnvKeyPrefix = "GEMINI_KEY_"

// Global configuration structure.
type Global struct {
	InputDir  string `mapstructure:"input_dir" yaml:"input_dir"`
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir"`
	// LogDir defaults to OutputDir when empty.
	LogDir  string `mapstructure:"log_dir" yaml:"log_dir,omitempty"`
	LogFile string `mapstructure:"log_file" yaml:"log_file"`

	Provider          string          `mapstructure:"provider" yaml:"provider"`
	Model             string          `mapstructure:"model" yaml:"model"`
	Credentials       []ai.Credential `mapstructure:"credentials" yaml:"credentials,omitempty"`
	OpenRouterBaseURL string          `mapstructure:"openrouter_base_url" yaml:"openrouter_base_url,omitempty"`
	HTTPTimeoutSec    int             `mapstructure:"http_timeout_sec" yaml:"http_timeout_sec"`

	ResultName              string `mapstructure:"result_name" yaml:"result_name"`
	Difficulty              string `mapstructure:"difficulty" yaml:"difficulty"`
	SupplementaryDifficulty string `mapstructure:"supplementary_difficulty" yaml:"supplementary_difficulty"`
	Strict                  bool   `mapstructure:"strict" yaml:"strict"`

	// envCredentials are read from GEMINI_KEY_n and never saved.
	envCredentials []ai.Credential
}

// AllCredentials returns the configured credentials followed by those taken
// from the environment, in priority order.
func (c *Global) AllCredentials() []ai.Credential {
	out := make([]ai.Credential, 0, len(c.Credentials)+len(c.envCredentials))
	out = append(out, c.Credentials...)
	return append(out, c.envCredentials...)
}

// SetCredential replaces the credential with the given label or appends it.
func (c *Global) SetCredential(label, key string) {
	for i := range c.Credentials {
		if c.Credentials[i].Label == label {
			c.Credentials[i].Key = key
			return
		}
	}
	c.Credentials = append(c.Credentials, ai.Credential{Label: label, Key: key})
}

// EffectiveLogDir returns the directory of the error log.
func (c *Global) EffectiveLogDir() string {
	if c.LogDir != "" {
		return c.LogDir
	}
	return c.OutputDir
}

// HTTPTimeout returns the per-request HTTP timeout.
func (c *Global) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSec) * time.Second
}

// DefaultPath returns ~/.quizloom/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".quizloom", "config.yaml"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.quizloom/config.yaml, creating the directory if necessary.
// Credentials taken from the environment are not written.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	// credentials are secrets
	if err := os.WriteFile(path, b, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from defaults, the optional config file and the
// environment. Precedence: env > config file > defaults. Command-line flags
// are applied by the caller.
func Load(cfgFile string) (*Global, error) {
	return load(cfgFile, true)
}

// LoadFile loads defaults and the optional config file only. Use it before
// Save so that QUIZLOOM_* and GEMINI_KEY_n values are not written to disk.
func LoadFile(cfgFile string) (*Global, error) {
	return load(cfgFile, false)
}

func load(cfgFile string, withEnv bool) (*Global, error) {
	v := viper.New()
	if withEnv {
		v.SetEnvPrefix("QUIZLOOM")
		v.AutomaticEnv()
	}

	v.SetDefault("input_dir", "./references")
	v.SetDefault("output_dir", "./activities")
	v.SetDefault("log_dir", "")
	v.SetDefault("log_file", "quiz_generator.log")
	v.SetDefault("provider", ai.ProviderGemini)
	v.SetDefault("model", "gemini-2.5-flash")
	v.SetDefault("openrouter_base_url", "")
	v.SetDefault("http_timeout_sec", 120)
	v.SetDefault("result_name", "Quiz")
	v.SetDefault("difficulty", "medium")
	v.SetDefault("supplementary_difficulty", "easy")
	v.SetDefault("strict", false)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(filepath.Dir(p))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if withEnv {
		c.envCredentials = envCredentials(os.Getenv)
	}
	return &c, nil
}

func envCredentials(getenv func(string) string) []ai.Credential {
	var out []ai.Credential
	for i := 1; i <= 9; i++ {
		name := EnvKeyPrefix + strconv.Itoa(i)
		if key := getenv(name); key != "" {
			out = append(out, ai.Credential{Label: name, Key: key})
		}
	}
	return out
}

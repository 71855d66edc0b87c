package ai

import "strings"

// Credential is a labelled secret used to authenticate one request.
// A slice of credentials is ordered by priority.
type Credential struct {
	Label string `mapstructure:"label" yaml:"label"`
	Key   string `mapstructure:"key" yaml:"key"`
}

// Usable reports whether the credential carries a secret.
func (c Credential) Usable() bool { return strings.TrimSpace(c.Key) != "" }

// Mask hides all but the last four characters of a secret.
func Mask(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return "(empty)"
	}
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", 4) + key[len(key)-4:]
}

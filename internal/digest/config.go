package digest

import (
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const defaultRequestTimeout = 10 * time.Second

// Config controls the daily digest job.
type Config struct {
	DailyAt        string   `yaml:"daily_at"`
	Users          []string `yaml:"users"`
	WebhookURL     string   `yaml:"webhook_url"`
	RequestTimeout string   `yaml:"request_timeout"`
}

// LoadConfig loads digest config from yaml or env. The yaml path comes
// from DIGEST_CONFIG; env values fill fields the file leaves empty.
func LoadConfig() (Config, error) {
	var cfg Config

	if path := os.Getenv("DIGEST_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}

	if cfg.DailyAt == "" {
		cfg.DailyAt = os.Getenv("DIGEST_DAILY_AT")
	}
	if cfg.WebhookURL == "" {
		cfg.WebhookURL = os.Getenv("DIGEST_WEBHOOK_URL")
	}
	if len(cfg.Users) == 0 {
		cfg.Users = splitCSV(os.Getenv("DIGEST_USERS"))
	}
	return cfg, nil
}

// Enabled reports whether the digest is fully configured. A partially
// configured digest stays off rather than erroring at startup.
func (c Config) Enabled() bool {
	return c.DailyAt != "" && c.WebhookURL != "" && len(c.Users) > 0
}

// Timeout returns the per-run timeout.
func (c Config) Timeout() time.Duration {
	if c.RequestTimeout == "" {
		return defaultRequestTimeout
	}
	parsed, err := time.ParseDuration(c.RequestTimeout)
	if err != nil || parsed <= 0 {
		return defaultRequestTimeout
	}
	return parsed
}

func splitCSV(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	var result []string
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			result = append(result, part)
		}
	}
	return result
}

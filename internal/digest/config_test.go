package digest

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "digest.yaml")
	content := `daily_at: "07:30"
users:
  - user-1
  - user-2
webhook_url: https://hooks.example.com/digest
request_timeout: 5s
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("DIGEST_CONFIG", path)
	t.Setenv("DIGEST_DAILY_AT", "")
	t.Setenv("DIGEST_WEBHOOK_URL", "")
	t.Setenv("DIGEST_USERS", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.DailyAt != "07:30" {
		t.Fatalf("daily_at: got %q", cfg.DailyAt)
	}
	if len(cfg.Users) != 2 || cfg.Users[0] != "user-1" {
		t.Fatalf("users: got %v", cfg.Users)
	}
	if cfg.WebhookURL != "https://hooks.example.com/digest" {
		t.Fatalf("webhook_url: got %q", cfg.WebhookURL)
	}
	if !cfg.Enabled() {
		t.Fatal("expected config to be enabled")
	}
	if cfg.Timeout() != 5*time.Second {
		t.Fatalf("timeout: got %v", cfg.Timeout())
	}
}

func TestLoadConfigEnvFallbacks(t *testing.T) {
	t.Setenv("DIGEST_CONFIG", "")
	t.Setenv("DIGEST_DAILY_AT", "06:15")
	t.Setenv("DIGEST_WEBHOOK_URL", "https://hooks.example.com/digest")
	t.Setenv("DIGEST_USERS", "user-1, user-2 ,,user-3")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.DailyAt != "06:15" {
		t.Fatalf("daily_at: got %q", cfg.DailyAt)
	}
	want := []string{"user-1", "user-2", "user-3"}
	if len(cfg.Users) != len(want) {
		t.Fatalf("users: got %v", cfg.Users)
	}
	for i, user := range want {
		if cfg.Users[i] != user {
			t.Fatalf("users[%d]: got %q want %q", i, cfg.Users[i], user)
		}
	}
}

func TestConfigEnabled(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		want bool
	}{
		{"empty", Config{}, false},
		{"missing users", Config{DailyAt: "07:00", WebhookURL: "https://x"}, false},
		{"missing webhook", Config{DailyAt: "07:00", Users: []string{"u"}}, false},
		{"missing daily_at", Config{WebhookURL: "https://x", Users: []string{"u"}}, false},
		{"complete", Config{DailyAt: "07:00", WebhookURL: "https://x", Users: []string{"u"}}, true},
	}
	for _, tc := range cases {
		if got := tc.cfg.Enabled(); got != tc.want {
			t.Fatalf("%s: enabled=%v want %v", tc.name, got, tc.want)
		}
	}
}

func TestConfigTimeout(t *testing.T) {
	cases := []struct {
		raw  string
		want time.Duration
	}{
		{"", defaultRequestTimeout},
		{"250ms", 250 * time.Millisecond},
		{"bogus", defaultRequestTimeout},
		{"-5s", defaultRequestTimeout},
	}
	for _, tc := range cases {
		cfg := Config{RequestTimeout: tc.raw}
		if got := cfg.Timeout(); got != tc.want {
			t.Fatalf("timeout %q: got %v want %v", tc.raw, got, tc.want)
		}
	}
}

package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ShutdownTimeout: time.Second,
			RequestTimeout:  time.Minute,
			PublicBaseURL:   "http://localhost:8080",
		},
		Upload:   UploadConfig{MaxFileSize: 1, MaxConcurrent: 1, MaxWaitTime: time.Second},
		Rate:     RateLimitConfig{Enabled: true, RequestsPerMinute: 100},
		Logging:  LoggingConfig{Level: "info", Format: "text"},
		Mail:     MailConfig{Provider: MailProviderNone, MaxParallel: 1},
		Campaign: CampaignConfig{IdleTTL: time.Hour, PruneSchedule: "@every 15m", PageSize: 10},
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, "0.0.0.0")
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 8080)
	}
	if cfg.Upload.MaxConcurrent != 5 {
		t.Errorf("Upload.MaxConcurrent = %d, want %d", cfg.Upload.MaxConcurrent, 5)
	}
	if cfg.Upload.MaxFileSize != 10485760 {
		t.Errorf("Upload.MaxFileSize = %d, want %d", cfg.Upload.MaxFileSize, 10485760)
	}
	if cfg.Rate.RequestsPerMinute != 100 {
		t.Errorf("Rate.RequestsPerMinute = %d, want %d", cfg.Rate.RequestsPerMinute, 100)
	}
	if cfg.Mail.Provider != MailProviderNone {
		t.Errorf("Mail.Provider = %q, want %q", cfg.Mail.Provider, MailProviderNone)
	}
	if cfg.Campaign.PageSize != 10 {
		t.Errorf("Campaign.PageSize = %d, want %d", cfg.Campaign.PageSize, 10)
	}
}

func TestLoad_OverrideDefaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("UPLOAD_MAX_CONCURRENT", "10")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("MAIL_PROVIDER", "Dev")
	t.Setenv("PUBLIC_BASE_URL", "https://invites.example.com/")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 9090)
	}
	if cfg.Upload.MaxConcurrent != 10 {
		t.Errorf("Upload.MaxConcurrent = %d, want %d", cfg.Upload.MaxConcurrent, 10)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
	if cfg.Mail.Provider != MailProviderDev {
		t.Errorf("Mail.Provider = %q, want %q", cfg.Mail.Provider, MailProviderDev)
	}
	if cfg.Server.PublicBaseURL != "https://invites.example.com" {
		t.Errorf("Server.PublicBaseURL = %q, want trailing slash trimmed", cfg.Server.PublicBaseURL)
	}
}

func TestLoad_Duration(t *testing.T) {
	t.Setenv("SERVER_READ_TIMEOUT", "45s")
	t.Setenv("UPLOAD_MAX_WAIT_TIME", "1m30s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.ReadTimeout != 45*time.Second {
		t.Errorf("Server.ReadTimeout = %v, want %v", cfg.Server.ReadTimeout, 45*time.Second)
	}
	if cfg.Upload.MaxWaitTime != 90*time.Second {
		t.Errorf("Upload.MaxWaitTime = %v, want %v", cfg.Upload.MaxWaitTime, 90*time.Second)
	}
}

func TestLoad_APIKeysTrimmed(t *testing.T) {
	t.Setenv("REQUIRE_API_KEY", "true")
	t.Setenv("API_KEYS", "alpha, beta ,,gamma")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	expected := []string{"alpha", "beta", "gamma"}
	if len(cfg.Security.APIKeys) != len(expected) {
		t.Fatalf("APIKeys = %v, want %v", cfg.Security.APIKeys, expected)
	}
	for i, v := range expected {
		if cfg.Security.APIKeys[i] != v {
			t.Errorf("APIKeys[%d] = %q, want %q", i, cfg.Security.APIKeys[i], v)
		}
	}
}

func TestLoad_InvalidInteger(t *testing.T) {
	t.Setenv("SERVER_PORT", "eighty")

	if _, err := Load(); err == nil {
		t.Fatal("Load() expected error for non-numeric SERVER_PORT")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"invalid port", func(c *Config) { c.Server.Port = 99999 }, "SERVER_PORT"},
		{"invalid log level", func(c *Config) { c.Logging.Level = "verbose" }, "LOG_LEVEL"},
		{"invalid log format", func(c *Config) { c.Logging.Format = "xml" }, "LOG_FORMAT"},
		{"relative base url", func(c *Config) { c.Server.PublicBaseURL = "/invites" }, "PUBLIC_BASE_URL"},
		{"api key required without keys", func(c *Config) { c.Security.RequireAPIKey = true }, "API_KEYS"},
		{"unknown mail provider", func(c *Config) { c.Mail.Provider = "smtp" }, "MAIL_PROVIDER"},
		{"postmark without token", func(c *Config) { c.Mail.Provider = MailProviderPostmark }, "POSTMARK_SERVER_TOKEN"},
		{"bad prune schedule", func(c *Config) { c.Campaign.PruneSchedule = "every now and then" }, "CAMPAIGN_PRUNE_SCHEDULE"},
		{"zero page size", func(c *Config) { c.Campaign.PageSize = 0 }, "CAMPAIGN_PAGE_SIZE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error mentioning %s", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error should mention %s: %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidate_ReportsAllFailures(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = 0
	cfg.Logging.Level = "loud"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error")
	}
	for _, want := range []string{"SERVER_PORT", "LOG_LEVEL"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error should mention %s: %v", want, err)
		}
	}
}

func TestServerAddr(t *testing.T) {
	tests := []struct {
		host string
		port int
		want string
	}{
		{"", 8080, ":8080"},
		{"0.0.0.0", 8080, "0.0.0.0:8080"},
		{"127.0.0.1", 3000, "127.0.0.1:3000"},
		{"localhost", 443, "localhost:443"},
	}

	for _, tt := range tests {
		cfg := &ServerConfig{Host: tt.host, Port: tt.port}
		got := cfg.Addr()
		if got != tt.want {
			t.Errorf("Addr() with host=%q, port=%d = %q, want %q", tt.host, tt.port, got, tt.want)
		}
	}
}

func TestConfigString_MasksSecrets(t *testing.T) {
	cfg := validConfig()
	cfg.Security.APIKeys = []string{"super-secret-key"}
	cfg.Mail.PostmarkServerToken = "pm-token-value"

	str := cfg.String()
	if strings.Contains(str, "super-secret-key") || strings.Contains(str, "pm-token-value") {
		t.Error("String() should mask secrets")
	}
	if !strings.Contains(str, "MASKED") {
		t.Error("String() should contain MASKED placeholder")
	}
}

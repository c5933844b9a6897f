package config

import (
	"os"
	"testing"
	"time"
)

func TestRequireEnv(t *testing.T) {
	tests := []struct {
		name      string
		key       string
		value     string
		shouldSet bool
		wantPanic bool
	}{
		{
			name:      "variable set",
			key:       "TEST_VAR",
			value:     "test_value",
			shouldSet: true,
			wantPanic: false,
		},
		{
			name:      "variable not set",
			key:       "TEST_VAR_MISSING",
			shouldSet: false,
			wantPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.shouldSet {
				if err := os.Setenv(tt.key, tt.value); err != nil {
					t.Fatalf("failed to set env var: %v", err)
				}
				defer func() {
					if err := os.Unsetenv(tt.key); err != nil {
						t.Errorf("failed to unset env var: %v", err)
					}
				}()
			}

			if tt.wantPanic {
				defer func() {
					if r := recover(); r == nil {
						t.Errorf("requireEnv() should have panicked")
					}
				}()
			}

			result := requireEnv(tt.key)
			if !tt.wantPanic && result != tt.value {
				t.Errorf("requireEnv() = %v, want %v", result, tt.value)
			}
		})
	}
}

func TestMustDuration(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    string
		def      time.Duration
		expected time.Duration
	}{
		{
			name:     "valid duration",
			key:      "TEST_DUR",
			value:    "45s",
			def:      time.Minute,
			expected: 45 * time.Second,
		},
		{
			name:     "invalid duration falls back to default",
			key:      "TEST_DUR_INVALID",
			value:    "soon",
			def:      10 * time.Minute,
			expected: 10 * time.Minute,
		},
		{
			name:     "missing variable uses default",
			key:      "TEST_DUR_MISSING",
			value:    "",
			def:      30 * time.Second,
			expected: 30 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				if err := os.Setenv(tt.key, tt.value); err != nil {
					t.Fatalf("failed to set env var: %v", err)
				}
				defer func() {
					if err := os.Unsetenv(tt.key); err != nil {
						t.Errorf("failed to unset env var: %v", err)
					}
				}()
			}

			if got := mustDuration(tt.key, tt.def); got != tt.expected {
				t.Errorf("mustDuration() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestMustBool(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    string
		def      bool
		expected bool
	}{
		{name: "true", key: "TEST_BOOL", value: "true", def: false, expected: true},
		{name: "false", key: "TEST_BOOL", value: "false", def: true, expected: false},
		{name: "garbage falls back to default", key: "TEST_BOOL", value: "yes please", def: true, expected: true},
		{name: "missing uses default", key: "TEST_BOOL_MISSING", value: "", def: false, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				if err := os.Setenv(tt.key, tt.value); err != nil {
					t.Fatalf("failed to set env var: %v", err)
				}
				defer func() {
					if err := os.Unsetenv(tt.key); err != nil {
						t.Errorf("failed to unset env var: %v", err)
					}
				}()
			}

			if got := mustBool(tt.key, tt.def); got != tt.expected {
				t.Errorf("mustBool() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestSplitAndTrim(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "comma separated with spaces",
			input:    "10.0.0.0/8, 192.168.1.0/24",
			expected: []string{"10.0.0.0/8", "192.168.1.0/24"},
		},
		{
			name:     "quoted entries",
			input:    `"vaporshelf.app", 'www.vaporshelf.app'`,
			expected: []string{"vaporshelf.app", "www.vaporshelf.app"},
		},
		{
			name:     "empty string",
			input:    "",
			expected: nil,
		},
		{
			name:     "stray commas",
			input:    ",a,,b,",
			expected: []string{"a", "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitAndTrim(tt.input)
			if len(got) != len(tt.expected) {
				t.Fatalf("splitAndTrim() = %v, want %v", got, tt.expected)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("splitAndTrim()[%d] = %v, want %v", i, got[i], tt.expected[i])
				}
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("EDGE_GITHUB_REPO", "vaporshelf/vaporshelf")
	t.Setenv("EDGE_RELEASES_URL", "https://github.com/vaporshelf/vaporshelf/releases")

	cfg := Load()

	if cfg.ListenPort != ":8080" {
		t.Errorf("ListenPort = %v, want :8080", cfg.ListenPort)
	}
	if cfg.ReleaseTTL != 5*time.Minute {
		t.Errorf("ReleaseTTL = %v, want 5m", cfg.ReleaseTTL)
	}
	if cfg.PresenceTTL != 30*time.Second {
		t.Errorf("PresenceTTL = %v, want 30s", cfg.PresenceTTL)
	}
	if cfg.HealthTTL != 10*time.Minute {
		t.Errorf("HealthTTL = %v, want 10m", cfg.HealthTTL)
	}
	if cfg.ProbeTimeout != 15*time.Second {
		t.Errorf("ProbeTimeout = %v, want 15s", cfg.ProbeTimeout)
	}
	if cfg.RedisAddr != "" {
		t.Errorf("RedisAddr = %v, want empty (disabled)", cfg.RedisAddr)
	}
	if cfg.DebugSecret != "" {
		t.Errorf("DebugSecret = %v, want empty", cfg.DebugSecret)
	}
}

func TestLoadRedisPasswordRequired(t *testing.T) {
	t.Setenv("EDGE_GITHUB_REPO", "vaporshelf/vaporshelf")
	t.Setenv("EDGE_RELEASES_URL", "https://github.com/vaporshelf/vaporshelf/releases")
	t.Setenv("EDGE_REDIS_ADDR", "localhost:6379")
	t.Setenv("EDGE_REDIS_PASSWORD_REQUIRED", "true")

	defer func() {
		if r := recover(); r == nil {
			t.Errorf("Load() should have panicked without a Redis password")
		}
	}()

	Load()
}

package config

import (
	"testing"
	"time"
)

func TestGetenv(t *testing.T) {
	t.Setenv("SEEKMARK_TEST_KEY", "value")

	if got := getenv("SEEKMARK_TEST_KEY", "def"); got != "value" {
		t.Errorf("getenv() = %q, want %q", got, "value")
	}
	if got := getenv("SEEKMARK_TEST_MISSING", "def"); got != "def" {
		t.Errorf("getenv() default = %q, want %q", got, "def")
	}
}

func TestMustDuration(t *testing.T) {
	tests := []struct {
		name  string
		value string
		def   time.Duration
		want  time.Duration
	}{
		{"valid duration", "750ms", time.Second, 750 * time.Millisecond},
		{"invalid duration falls back", "notaduration", time.Second, time.Second},
		{"empty falls back", "", 2 * time.Second, 2 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("SEEKMARK_TEST_DURATION", tt.value)
			if got := mustDuration("SEEKMARK_TEST_DURATION", tt.def); got != tt.want {
				t.Errorf("mustDuration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMustBool(t *testing.T) {
	t.Setenv("SEEKMARK_TEST_BOOL", "false")
	if got := mustBool("SEEKMARK_TEST_BOOL", true); got != false {
		t.Errorf("mustBool() = %v, want false", got)
	}

	t.Setenv("SEEKMARK_TEST_BOOL", "garbage")
	if got := mustBool("SEEKMARK_TEST_BOOL", true); got != true {
		t.Errorf("mustBool() invalid value should fall back to default")
	}
}

func TestSplitAndTrim(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty", "", nil},
		{"single", "127.0.0.1/32", []string{"127.0.0.1/32"}},
		{"spaced list", " 127.0.0.1/32 , ::1/128 ", []string{"127.0.0.1/32", "::1/128"}},
		{"quoted entries", `"a", 'b'`, []string{"a", "b"}},
		{"skips empties", "a,,b,", []string{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitAndTrim(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("splitAndTrim(%q) = %v, want %v", tt.input, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("splitAndTrim(%q)[%d] = %q, want %q", tt.input, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.ListenPort != "127.0.0.1:7797" {
		t.Errorf("ListenPort = %q, want loopback default", cfg.ListenPort)
	}
	if cfg.WatchHost != "www.youtube.com" {
		t.Errorf("WatchHost = %q, want www.youtube.com", cfg.WatchHost)
	}
	if cfg.SeekAttempts != 15 {
		t.Errorf("SeekAttempts = %d, want 15", cfg.SeekAttempts)
	}
	if cfg.SeekBackoff != 500*time.Millisecond {
		t.Errorf("SeekBackoff = %v, want 500ms", cfg.SeekBackoff)
	}
	if cfg.SettleDelay != 800*time.Millisecond {
		t.Errorf("SettleDelay = %v, want 800ms", cfg.SettleDelay)
	}
	if len(cfg.AllowedCIDRS) != 2 {
		t.Errorf("AllowedCIDRS = %v, want loopback v4+v6", cfg.AllowedCIDRS)
	}
}

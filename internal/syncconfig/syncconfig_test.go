package syncconfig

import (
	"testing"
	"time"
)

// Point the config dir at a scratch home so tests never touch the real one.
func isolateHome(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
}

func TestParseInterval(t *testing.T) {
	cases := []struct {
		in   string
		want time.Duration
		ok   bool
	}{
		{"5m", 5 * time.Minute, true},
		{"90s", 90 * time.Second, true},
		{"0", 0, true},
		{"300000", 300 * time.Second, true}, // bare milliseconds
		{"-5", 0, false},
		{"-5m", 0, false},
		{"soon", 0, false},
	}
	for _, tc := range cases {
		got, ok := parseInterval(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Errorf("parseInterval(%q) = (%v, %v), want (%v, %v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestGetSyncInterval(t *testing.T) {
	isolateHome(t)

	t.Setenv("MX_SYNC_INTERVAL", "")
	if got := GetSyncInterval(); got != 5*time.Minute {
		t.Errorf("default interval mismatch: %v", got)
	}

	t.Setenv("MX_SYNC_INTERVAL", "30s")
	if got := GetSyncInterval(); got != 30*time.Second {
		t.Errorf("env interval mismatch: %v", got)
	}

	// "0" disables the timer.
	t.Setenv("MX_SYNC_INTERVAL", "0")
	if got := GetSyncInterval(); got != 0 {
		t.Errorf("disabled interval mismatch: %v", got)
	}

	// Garbage falls back to the default.
	t.Setenv("MX_SYNC_INTERVAL", "whenever")
	if got := GetSyncInterval(); got != 5*time.Minute {
		t.Errorf("fallback interval mismatch: %v", got)
	}
}

func TestGetServerURL(t *testing.T) {
	isolateHome(t)

	t.Setenv("MX_SERVER_URL", "")
	if got := GetServerURL(); got != "http://localhost:8080" {
		t.Errorf("default URL mismatch: %q", got)
	}

	t.Setenv("MX_SERVER_URL", "https://media.example.com")
	if got := GetServerURL(); got != "https://media.example.com" {
		t.Errorf("env URL mismatch: %q", got)
	}

	// config.json wins over the default but loses to the env var.
	t.Setenv("MX_SERVER_URL", "")
	cfg := &Config{}
	cfg.Sync.URL = "https://from-config.example.com"
	if err := SaveConfig(cfg); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}
	if got := GetServerURL(); got != "https://from-config.example.com" {
		t.Errorf("config URL mismatch: %q", got)
	}
}

func TestAutoSyncDefaults(t *testing.T) {
	isolateHome(t)
	t.Setenv("MX_AUTO_SYNC", "")
	t.Setenv("MX_AUTO_SYNC_ON_START", "")
	t.Setenv("MX_AUTO_SYNC_ON_RECONNECT", "")

	if !GetAutoSyncEnabled() || !GetAutoSyncOnStart() || !GetAutoSyncOnReconnect() {
		t.Error("auto-sync settings should default to true")
	}

	t.Setenv("MX_AUTO_SYNC", "false")
	if GetAutoSyncEnabled() {
		t.Error("MX_AUTO_SYNC=false not honored")
	}
	t.Setenv("MX_AUTO_SYNC", "0")
	if GetAutoSyncEnabled() {
		t.Error("MX_AUTO_SYNC=0 not honored")
	}
	// Unparseable values fall back to the default.
	t.Setenv("MX_AUTO_SYNC", "maybe")
	if !GetAutoSyncEnabled() {
		t.Error("bad MX_AUTO_SYNC should fall back to true")
	}

	off := false
	cfg := &Config{}
	cfg.Sync.Auto.OnStart = &off
	if err := SaveConfig(cfg); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}
	if GetAutoSyncOnStart() {
		t.Error("config on_start=false not honored")
	}
	if !GetAutoSyncOnReconnect() {
		t.Error("on_reconnect should stay default true")
	}
}

func TestAuthRoundTrip(t *testing.T) {
	isolateHome(t)
	t.Setenv("MX_API_KEY", "")
	t.Setenv("MX_DEVICE_ID", "")

	creds, err := LoadAuth()
	if err != nil {
		t.Fatalf("LoadAuth failed: %v", err)
	}
	if creds != nil {
		t.Fatal("expected no credentials in a fresh home")
	}
	if got := GetAPIKey(); got != "" {
		t.Errorf("expected empty API key, got %q", got)
	}

	if err := SaveAuth(&AuthCredentials{APIKey: "k-123", ServerURL: "https://media.example.com"}); err != nil {
		t.Fatalf("SaveAuth failed: %v", err)
	}
	if got := GetAPIKey(); got != "k-123" {
		t.Errorf("API key mismatch: %q", got)
	}

	t.Setenv("MX_API_KEY", "env-key")
	if got := GetAPIKey(); got != "env-key" {
		t.Errorf("env API key should win: %q", got)
	}

	if err := ClearAuth(); err != nil {
		t.Fatalf("ClearAuth failed: %v", err)
	}
	creds, _ = LoadAuth()
	if creds != nil {
		t.Error("credentials should be gone after ClearAuth")
	}
	// Clearing twice is fine.
	if err := ClearAuth(); err != nil {
		t.Fatalf("second ClearAuth failed: %v", err)
	}
}

func TestGetDeviceIDStable(t *testing.T) {
	isolateHome(t)
	t.Setenv("MX_DEVICE_ID", "")

	first, err := GetDeviceID()
	if err != nil {
		t.Fatalf("GetDeviceID failed: %v", err)
	}
	if len(first) != 32 {
		t.Errorf("device ID should be 16 bytes hex, got %q", first)
	}

	// The generated ID is persisted and reused.
	second, err := GetDeviceID()
	if err != nil {
		t.Fatalf("GetDeviceID failed: %v", err)
	}
	if second != first {
		t.Errorf("device ID not stable: %q then %q", first, second)
	}

	t.Setenv("MX_DEVICE_ID", "override-device")
	got, err := GetDeviceID()
	if err != nil {
		t.Fatalf("GetDeviceID failed: %v", err)
	}
	if got != "override-device" {
		t.Errorf("env device ID should win: %q", got)
	}
}

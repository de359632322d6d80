package syncconfig

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// AutoSyncConfig holds auto-sync settings.
type AutoSyncConfig struct {
	Enabled     *bool  `json:"enabled,omitempty"`      // nil = default true
	OnStart     *bool  `json:"on_start,omitempty"`     // nil = default true
	OnReconnect *bool  `json:"on_reconnect,omitempty"` // nil = default true
	Interval    string `json:"interval,omitempty"`     // duration string, default "5m", "0" disables
}

// SyncConfig holds sync-related settings.
type SyncConfig struct {
	URL     string         `json:"url"`
	Enabled bool           `json:"enabled"`
	Auto    AutoSyncConfig `json:"auto"`
}

// Config is the global mx config stored at ~/.config/mx/config.json.
type Config struct {
	Sync SyncConfig `json:"sync"`
}

// AuthCredentials stores authentication state at ~/.config/mx/auth.json.
type AuthCredentials struct {
	APIKey    string `json:"api_key"`
	ServerURL string `json:"server_url"`
	DeviceID  string `json:"device_id"`
}

const (
	defaultServerURL    = "http://localhost:8080"
	defaultSyncInterval = 5 * time.Minute
)

// ConfigDir returns ~/.config/mx, creating it if necessary.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	dir := filepath.Join(home, ".config", "mx")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create config dir: %w", err)
	}
	return dir, nil
}

// LoadConfig reads the global config from ~/.config/mx/config.json.
func LoadConfig() (*Config, error) {
	dir, err := ConfigDir()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(dir, "config.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SaveConfig writes the global config to ~/.config/mx/config.json.
func SaveConfig(cfg *Config) error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0644)
}

// LoadAuth reads auth credentials from ~/.config/mx/auth.json.
func LoadAuth() (*AuthCredentials, error) {
	dir, err := ConfigDir()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(dir, "auth.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var creds AuthCredentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, err
	}
	return &creds, nil
}

// SaveAuth writes auth credentials to ~/.config/mx/auth.json (0600 perms).
func SaveAuth(creds *AuthCredentials) error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "auth.json"), data, 0600)
}

// ClearAuth removes the auth.json file.
func ClearAuth() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	err = os.Remove(filepath.Join(dir, "auth.json"))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// GetServerURL returns the media server URL.
// Priority: MX_SERVER_URL env > config.json > default.
func GetServerURL() string {
	if v := os.Getenv("MX_SERVER_URL"); v != "" {
		return v
	}
	cfg, err := LoadConfig()
	if err == nil && cfg.Sync.URL != "" {
		return cfg.Sync.URL
	}
	return defaultServerURL
}

// GetAPIKey returns the API key.
// Priority: MX_API_KEY env > auth.json.
func GetAPIKey() string {
	if v := os.Getenv("MX_API_KEY"); v != "" {
		return v
	}
	creds, err := LoadAuth()
	if err == nil && creds != nil {
		return creds.APIKey
	}
	return ""
}

// GetDeviceID returns the device ID from auth.json, generating and saving
// one on first use so the server sees a stable identity.
func GetDeviceID() (string, error) {
	if v := os.Getenv("MX_DEVICE_ID"); v != "" {
		return v, nil
	}
	creds, err := LoadAuth()
	if err != nil {
		return "", err
	}
	if creds != nil && creds.DeviceID != "" {
		return creds.DeviceID, nil
	}
	id, err := GenerateDeviceID()
	if err != nil {
		return "", err
	}
	if creds == nil {
		creds = &AuthCredentials{}
	}
	creds.DeviceID = id
	if err := SaveAuth(creds); err != nil {
		return "", err
	}
	return id, nil
}

// GenerateDeviceID creates a new random device ID (16 bytes hex).
func GenerateDeviceID() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// parseBoolEnv returns nil if env not set, pointer to bool if set.
func parseBoolEnv(envKey string) *bool {
	v := os.Getenv(envKey)
	if v == "" {
		return nil
	}
	v = strings.ToLower(v)
	if v == "1" || v == "true" {
		b := true
		return &b
	}
	if v == "0" || v == "false" {
		b := false
		return &b
	}
	return nil
}

// GetAutoSyncEnabled reports whether background auto-sync is on.
// Priority: MX_AUTO_SYNC env > config.json > default (true).
func GetAutoSyncEnabled() bool {
	if b := parseBoolEnv("MX_AUTO_SYNC"); b != nil {
		return *b
	}
	cfg, err := LoadConfig()
	if err == nil && cfg.Sync.Auto.Enabled != nil {
		return *cfg.Sync.Auto.Enabled
	}
	return true
}

// GetAutoSyncOnStart reports whether a sync should run when the manager starts.
// Priority: MX_AUTO_SYNC_ON_START env > config.json > default (true).
func GetAutoSyncOnStart() bool {
	if b := parseBoolEnv("MX_AUTO_SYNC_ON_START"); b != nil {
		return *b
	}
	cfg, err := LoadConfig()
	if err == nil && cfg.Sync.Auto.OnStart != nil {
		return *cfg.Sync.Auto.OnStart
	}
	return true
}

// GetAutoSyncOnReconnect reports whether a sync should run when the server
// becomes reachable again.
// Priority: MX_AUTO_SYNC_ON_RECONNECT env > config.json > default (true).
func GetAutoSyncOnReconnect() bool {
	if b := parseBoolEnv("MX_AUTO_SYNC_ON_RECONNECT"); b != nil {
		return *b
	}
	cfg, err := LoadConfig()
	if err == nil && cfg.Sync.Auto.OnReconnect != nil {
		return *cfg.Sync.Auto.OnReconnect
	}
	return true
}

// GetSyncInterval returns the periodic sync interval. Zero disables the
// periodic timer.
// Priority: MX_SYNC_INTERVAL env > config.json > default (5m).
// Accepts Go duration strings ("90s") or bare milliseconds ("300000").
func GetSyncInterval() time.Duration {
	if v := os.Getenv("MX_SYNC_INTERVAL"); v != "" {
		if d, ok := parseInterval(v); ok {
			return d
		}
	}
	cfg, err := LoadConfig()
	if err == nil && cfg.Sync.Auto.Interval != "" {
		if d, ok := parseInterval(cfg.Sync.Auto.Interval); ok {
			return d
		}
	}
	return defaultSyncInterval
}

func parseInterval(v string) (time.Duration, bool) {
	if ms, err := strconv.Atoi(v); err == nil {
		if ms < 0 {
			return 0, false
		}
		return time.Duration(ms) * time.Millisecond, true
	}
	if d, err := time.ParseDuration(v); err == nil && d >= 0 {
		return d, true
	}
	return 0, false
}

// Package settings manages persistent user settings for the rosctl CLI.
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"
)

// Settings holds persistent user preferences
type Settings struct {
	// DefaultDevice is the inventory device to use when -d is not specified
	DefaultDevice string `json:"default_device,omitempty"`

	// DefaultUser is the SSH login when the inventory has none
	DefaultUser string `json:"default_user,omitempty"`

	// Port overrides the SSH port (22) when the inventory has none
	Port int `json:"port,omitempty"`

	KnownHostsFile  string `json:"known_hosts_file,omitempty"`
	InsecureHostKey bool   `json:"insecure_host_key,omitempty"`

	// Inventory is the default inventory file for -I
	Inventory string `json:"inventory,omitempty"`

	// AuditLog overrides the audit log path
	AuditLog string `json:"audit_log,omitempty"`

	// RedisAddr enables the per-device lock when set
	RedisAddr string `json:"redis_addr,omitempty"`
	LockTTL   string `json:"lock_ttl,omitempty"`
}

// DefaultSettingsPath returns the default path for the settings file
func DefaultSettingsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "rosctl_settings.json"
	}
	return filepath.Join(home, ".rosctl", "settings.json")
}

// Load reads settings from the default location
func Load() (*Settings, error) {
	return LoadFrom(DefaultSettingsPath())
}

// LoadFrom reads settings from a specific path
func LoadFrom(path string) (*Settings, error) {
	s := &Settings{}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Return empty settings if file doesn't exist
			return s, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, s); err != nil {
		return nil, err
	}

	return s, nil
}

// Save writes settings to the default location
func (s *Settings) Save() error {
	return s.SaveTo(DefaultSettingsPath())
}

// SaveTo writes settings to a specific path
func (s *Settings) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

// GetAuditLog returns the audit log path (with fallback)
func (s *Settings) GetAuditLog() string {
	if s.AuditLog != "" {
		return s.AuditLog
	}
	return filepath.Join(filepath.Dir(DefaultSettingsPath()), "audit.log")
}

// GetLockTTL parses LockTTL. Zero means the lock package default.
func (s *Settings) GetLockTTL() time.Duration {
	if s.LockTTL == "" {
		return 0
	}
	d, err := time.ParseDuration(s.LockTTL)
	if err != nil {
		return 0
	}
	return d
}

// setters maps the settings key used by "rosctl settings set" to a parser.
var setters = map[string]func(s *Settings, v string) error{
	"default_device": func(s *Settings, v string) error { s.DefaultDevice = v; return nil },
	"default_user":   func(s *Settings, v string) error { s.DefaultUser = v; return nil },
	"port": func(s *Settings, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 || n > 65535 {
			return fmt.Errorf("invalid port %q", v)
		}
		s.Port = n
		return nil
	},
	"known_hosts_file": func(s *Settings, v string) error { s.KnownHostsFile = v; return nil },
	"insecure_host_key": func(s *Settings, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid boolean %q", v)
		}
		s.InsecureHostKey = b
		return nil
	},
	"inventory":  func(s *Settings, v string) error { s.Inventory = v; return nil },
	"audit_log":  func(s *Settings, v string) error { s.AuditLog = v; return nil },
	"redis_addr": func(s *Settings, v string) error { s.RedisAddr = v; return nil },
	"lock_ttl": func(s *Settings, v string) error {
		if v != "" {
			if _, err := time.ParseDuration(v); err != nil {
				return fmt.Errorf("invalid duration %q", v)
			}
		}
		s.LockTTL = v
		return nil
	},
}

// Keys returns the settable keys, sorted.
func Keys() []string {
	keys := make([]string, 0, len(setters))
	for k := range setters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Set assigns value to the named key. An empty value resets a string key.
func (s *Settings) Set(key, value string) error {
	set, ok := setters[key]
	if !ok {
		return fmt.Errorf("unknown setting %q (valid: %v)", key, Keys())
	}
	return set(s, value)
}

// Clear resets all settings to defaults
func (s *Settings) Clear() {
	*s = Settings{}
}

package settings

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSettings_Defaults(t *testing.T) {
	s := &Settings{}

	if got := s.GetLockTTL(); got != 0 {
		t.Errorf("GetLockTTL() default = %v, want 0", got)
	}
	if got := s.GetAuditLog(); filepath.Base(got) != "audit.log" {
		t.Errorf("GetAuditLog() default = %q", got)
	}
	if s.DefaultDevice != "" || s.RedisAddr != "" {
		t.Error("zero Settings should be empty")
	}
}

func TestSettings_Set(t *testing.T) {
	tests := []struct {
		key     string
		value   string
		wantErr bool
		check   func(*Settings) bool
	}{
		{"default_device", "core-rtr1", false, func(s *Settings) bool { return s.DefaultDevice == "core-rtr1" }},
		{"default_user", "admin", false, func(s *Settings) bool { return s.DefaultUser == "admin" }},
		{"port", "2222", false, func(s *Settings) bool { return s.Port == 2222 }},
		{"port", "ssh", true, nil},
		{"port", "70000", true, nil},
		{"insecure_host_key", "true", false, func(s *Settings) bool { return s.InsecureHostKey }},
		{"insecure_host_key", "maybe", true, nil},
		{"redis_addr", "127.0.0.1:6379", false, func(s *Settings) bool { return s.RedisAddr == "127.0.0.1:6379" }},
		{"lock_ttl", "90s", false, func(s *Settings) bool { return s.GetLockTTL() == 90*time.Second }},
		{"lock_ttl", "soon", true, nil},
		{"audit_log", "/var/log/rosctl.log", false, func(s *Settings) bool { return s.GetAuditLog() == "/var/log/rosctl.log" }},
		{"network", "x", true, nil},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			s := &Settings{}
			err := s.Set(tt.key, tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Set() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.check != nil && !tt.check(s) {
				t.Errorf("Set(%s, %s) not applied: %+v", tt.key, tt.value, s)
			}
		})
	}
}

func TestKeys(t *testing.T) {
	keys := Keys()
	if len(keys) != len(setters) {
		t.Fatalf("Keys() = %v", keys)
	}
	for i := 1; i < len(keys); i++ {
		if keys[i-1] > keys[i] {
			t.Errorf("Keys() not sorted: %v", keys)
		}
	}
}

func TestSettings_Clear(t *testing.T) {
	s := &Settings{
		DefaultDevice: "core-rtr1",
		Port:          2222,
		RedisAddr:     "127.0.0.1:6379",
	}

	s.Clear()

	if s.DefaultDevice != "" || s.Port != 0 || s.RedisAddr != "" {
		t.Error("Clear() should reset all fields")
	}
}

func TestSettings_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")

	original := &Settings{
		DefaultDevice:   "core-rtr1",
		DefaultUser:     "admin",
		Port:            2222,
		InsecureHostKey: true,
		LockTTL:         "30s",
	}

	if err := original.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() failed: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() failed: %v", err)
	}
	if *loaded != *original {
		t.Errorf("LoadFrom() = %+v, want %+v", loaded, original)
	}
}

func TestSettings_LoadNonExistent(t *testing.T) {
	s, err := LoadFrom("/nonexistent/path/settings.json")
	if err != nil {
		t.Fatalf("LoadFrom() non-existent should not error: %v", err)
	}
	if s == nil || s.DefaultDevice != "" {
		t.Error("LoadFrom() non-existent should return empty settings")
	}
}

func TestSettings_LoadInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte("invalid json {"), 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	if _, err := LoadFrom(path); err == nil {
		t.Error("LoadFrom() with invalid JSON should error")
	}
}

func TestLoadFrom_ReadError(t *testing.T) {
	dirAsFile := filepath.Join(t.TempDir(), "settings.json")
	if err := os.Mkdir(dirAsFile, 0755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}

	if _, err := LoadFrom(dirAsFile); err == nil {
		t.Error("LoadFrom() should error when path is a directory")
	}
}

func TestSaveTo_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subdir", "nested", "settings.json")

	s := &Settings{DefaultDevice: "core-rtr1"}
	if err := s.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() should create directories: %v", err)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("SaveTo() should have created the file")
	}
}

func TestSaveTo_MkdirError(t *testing.T) {
	blockingFile := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blockingFile, []byte("blocking"), 0644); err != nil {
		t.Fatalf("Failed to create blocking file: %v", err)
	}

	s := &Settings{DefaultDevice: "core-rtr1"}
	if err := s.SaveTo(filepath.Join(blockingFile, "subdir", "settings.json")); err == nil {
		t.Error("SaveTo() should fail when directory creation fails")
	}
}

func TestLoadSave_Home(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	s, err := Load()
	if err != nil {
		t.Fatalf("Load() with non-existent file should not error: %v", err)
	}
	if s.DefaultDevice != "" {
		t.Error("Load() with non-existent file should return empty settings")
	}

	s.DefaultDevice = "saved-device"
	if err := s.Save(); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	expected := filepath.Join(os.Getenv("HOME"), ".rosctl", "settings.json")
	if DefaultSettingsPath() != expected {
		t.Errorf("DefaultSettingsPath() = %q, want %q", DefaultSettingsPath(), expected)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load() after Save() failed: %v", err)
	}
	if loaded.DefaultDevice != "saved-device" {
		t.Errorf("DefaultDevice = %q, want saved-device", loaded.DefaultDevice)
	}
}

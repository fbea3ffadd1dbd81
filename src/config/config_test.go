package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetDefaultConfig(t *testing.T) {
	config := GetDefaultConfig()

	if config.Engine.Command != "node" {
		t.Errorf("Expected default engine command to be node, got %s", config.Engine.Command)
	}
	if config.Engine.BundledPath == "" {
		t.Error("Expected default bundled path to be set")
	}
	if config.ScanDepth <= 0 {
		t.Errorf("Expected positive default scan depth, got %d", config.ScanDepth)
	}
	if config.LogLevel != "info" {
		t.Errorf("Expected default log level to be info, got %s", config.LogLevel)
	}
}

func TestSaveAndLoadConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	original := &Config{
		Engine: EngineConfig{
			Command:     "node",
			Args:        []string{"--enable-source-maps"},
			BundledPath: "/opt/typegate/engine",
		},
		ScanDepth: 3,
		LogLevel:  "debug",
	}
	if err := SaveConfig(original, path); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if loaded.Engine.Command != original.Engine.Command {
		t.Errorf("Expected command %s, got %s", original.Engine.Command, loaded.Engine.Command)
	}
	if loaded.Engine.BundledPath != original.Engine.BundledPath {
		t.Errorf("Expected bundled path %s, got %s", original.Engine.BundledPath, loaded.Engine.BundledPath)
	}
	if loaded.ScanDepth != 3 {
		t.Errorf("Expected scan depth 3, got %d", loaded.ScanDepth)
	}
}

func TestLoadConfigRejectsMissingEngineCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "engine:\n  bundled_path: /opt/typegate/engine\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadConfig(path); err == nil {
		t.Error("Expected error for config without engine command")
	}
}

func TestLoadConfigRejectsNegativeScanDepth(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "engine:\n  command: node\n  bundled_path: /opt/typegate/engine\nscan_depth: -1\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadConfig(path); err == nil {
		t.Error("Expected error for negative scan_depth")
	}
}

func TestLoadOrDefaultMissingFile(t *testing.T) {
	config, err := LoadOrDefault(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadOrDefault failed: %v", err)
	}
	if config.Engine.Command != "node" {
		t.Errorf("Expected default config, got engine command %s", config.Engine.Command)
	}
}

func TestLoadOrDefaultBrokenFileIsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("engine: ["), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadOrDefault(path); err == nil {
		t.Error("Expected error for unparseable config file")
	}
}

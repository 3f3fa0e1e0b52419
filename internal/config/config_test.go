// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"miner-cli/internal/testutil"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(context.Background(), LoadOptions{ConfigDirPath: t.TempDir()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.JarRoot != "jars" || cfg.ExeRoot != "servers" || cfg.BakRoot != "bak" {
		t.Errorf("roots = %q %q %q", cfg.JarRoot, cfg.ExeRoot, cfg.BakRoot)
	}
	if cfg.GameVersion != DefaultGameVersion {
		t.Errorf("GameVersion = %q, want %q", cfg.GameVersion, DefaultGameVersion)
	}
	if cfg.RCON.Host != DefaultRCONHost || cfg.RCON.Port != DefaultRCONPort {
		t.Errorf("RCON = %+v", cfg.RCON)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	content := `
jar_root = "/srv/mc/jars"
game_version = "1.19.4"

[rcon]
port = 35575
`
	testutil.MustWriteFile(t, filepath.Join(dir, "config.toml"), content)

	cfg, err := Load(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.JarRoot != "/srv/mc/jars" {
		t.Errorf("JarRoot = %q", cfg.JarRoot)
	}
	if cfg.GameVersion != "1.19.4" {
		t.Errorf("GameVersion = %q", cfg.GameVersion)
	}
	if cfg.RCON.Port != 35575 {
		t.Errorf("RCON.Port = %d", cfg.RCON.Port)
	}
	// Untouched keys keep their defaults.
	if cfg.ExeRoot != "servers" {
		t.Errorf("ExeRoot = %q", cfg.ExeRoot)
	}
}

func TestLoadExplicitFileMissing(t *testing.T) {
	_, err := Load(context.Background(), LoadOptions{
		ConfigFilePath: filepath.Join(t.TempDir(), "nope.toml"),
	})
	if err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	testutil.MustWriteFile(t, path, "jar_root = [unclosed")

	_, err := Load(context.Background(), LoadOptions{ConfigFilePath: path})
	if err == nil {
		t.Fatal("expected error for malformed config file")
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("MINER_RCON_PORT", "45575")
	t.Setenv("MINER_GAME_VERSION", "1.21")

	cfg, err := Load(context.Background(), LoadOptions{ConfigDirPath: t.TempDir()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.RCON.Port != 45575 {
		t.Errorf("RCON.Port = %d, want env override 45575", cfg.RCON.Port)
	}
	if cfg.GameVersion != "1.21" {
		t.Errorf("GameVersion = %q, want env override 1.21", cfg.GameVersion)
	}
}

func TestLoadCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Load(ctx, LoadOptions{}); err == nil {
		t.Fatal("expected error for canceled context")
	}
}

func TestConfigIsValid(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{name: "defaults valid", mutate: func(*Config) {}},
		{
			name:    "empty jar root",
			mutate:  func(c *Config) { c.JarRoot = "  " },
			wantErr: ErrInvalidRootPath,
		},
		{
			name:    "rcon port out of range",
			mutate:  func(c *Config) { c.RCON.Port = 70000 },
			wantErr: ErrInvalidRCONConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			valid, errs := cfg.IsValid()
			if tt.wantErr == nil {
				if !valid {
					t.Fatalf("IsValid = false, errs = %v", errs)
				}
				return
			}
			if valid {
				t.Fatal("IsValid = true, want invalid")
			}
			if !errors.Is(errs[0], ErrInvalidConfig) {
				t.Errorf("top-level error %v does not wrap ErrInvalidConfig", errs[0])
			}
			var ice *InvalidConfigError
			if !errors.As(errs[0], &ice) {
				t.Fatalf("expected *InvalidConfigError, got %T", errs[0])
			}
			found := false
			for _, fe := range ice.FieldErrors {
				if errors.Is(fe, tt.wantErr) {
					found = true
				}
			}
			if !found {
				t.Errorf("field errors %v do not wrap %v", ice.FieldErrors, tt.wantErr)
			}
		})
	}
}

func TestConfigDirOverride(t *testing.T) {
	t.Cleanup(Reset)
	SetConfigDirOverride("/tmp/miner-test-config")

	dir, err := ConfigDir()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dir != "/tmp/miner-test-config" {
		t.Errorf("ConfigDir = %q", dir)
	}
}

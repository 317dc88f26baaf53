package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kriansa/check-mount/internal/source"
)

func writeFile(t *testing.T, name, content string, perm os.FileMode) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), perm))
	return path
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, &Config{}, cfg)
}

func TestLoad(t *testing.T) {
	path := writeFile(t, "check-mount.toml", `
source = "proc"
mount_command = "/usr/bin/mount"
proc_mounts = "/proc/1/mounts"
timeout = "3s"
ignore_types = ["tmpfs", "overlay"]
default_warning = "2:"
default_critical = ""
`, 0644)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "proc", cfg.Source)
	assert.Equal(t, "/usr/bin/mount", cfg.MountCommand)
	assert.Equal(t, "/proc/1/mounts", cfg.ProcMounts)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.Equal(t, []string{"tmpfs", "overlay"}, cfg.IgnoreTypes)
	assert.Equal(t, "2:", cfg.DefaultWarning)
	require.NotNil(t, cfg.DefaultCritical)
	assert.Equal(t, "", *cfg.DefaultCritical, "an explicit empty default disables it")
}

func TestLoadInvalid(t *testing.T) {
	path := writeFile(t, "bad.toml", "source = [unterminated", 0644)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config file")
}

func TestMerge(t *testing.T) {
	cfg := &Config{Source: "proc", MountCommand: "/usr/bin/mount", Timeout: time.Second}

	cfg.Merge("", "", 0)
	assert.Equal(t, "proc", cfg.Source, "empty CLI values keep file values")
	assert.Equal(t, "/usr/bin/mount", cfg.MountCommand)
	assert.Equal(t, time.Second, cfg.Timeout)

	cfg.Merge("command", "/opt/bin/mount", 5*time.Second)
	assert.Equal(t, "command", cfg.Source)
	assert.Equal(t, "/opt/bin/mount", cfg.MountCommand)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.ApplyDefaults()

	assert.Equal(t, DefaultSource, cfg.Source)
	assert.Equal(t, DefaultMountCommand(), cfg.MountCommand)
	assert.Equal(t, source.DefaultProcMounts, cfg.ProcMounts)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	require.NotNil(t, cfg.DefaultCritical)
	assert.Equal(t, DefaultCritical, *cfg.DefaultCritical)
	assert.Nil(t, cfg.IgnoreTypes)
}

func TestValidate(t *testing.T) {
	executable := writeFile(t, "mount", "#!/bin/sh\n", 0755)
	plain := writeFile(t, "mount", "", 0644)

	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"command ok", Config{Source: "command", MountCommand: executable}, ""},
		{"proc ok", Config{Source: "proc"}, ""},
		{"systemd ok", Config{Source: "systemd"}, ""},
		{"missing mount", Config{Source: "command", MountCommand: "/nonexistent/mount"}, "mount not found"},
		{"not executable", Config{Source: "command", MountCommand: plain}, "not executable"},
		{"directory", Config{Source: "command", MountCommand: t.TempDir()}, "not executable"},
		{"unknown source", Config{Source: "fstab"}, "source must be"},
		{"negative timeout", Config{Source: "proc", Timeout: -time.Second}, "timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

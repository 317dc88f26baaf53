package config

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/kriansa/check-mount/internal/source"
)

const (
	// DefaultConfigPath is the default location for the config file
	DefaultConfigPath = "/etc/check-mount.toml"
	// DefaultSource is the default mount table source
	DefaultSource = "command"
	// DefaultTimeout bounds the time spent obtaining the mount table
	DefaultTimeout = 10 * time.Second
	// DefaultCritical is applied when neither --warning nor --critical is
	// given: at least one mount (or each requested path) must be present
	DefaultCritical = "1:"
)

// DefaultMountCommand returns the platform's mount(8) location
func DefaultMountCommand() string {
	if runtime.GOOS == "linux" {
		return "/bin/mount"
	}
	return "/sbin/mount"
}

// Config holds the plugin configuration
type Config struct {
	// Source is the mount table source: "command", "proc" or "systemd"
	Source string `toml:"source"`
	// MountCommand is the path to mount(8)
	MountCommand string `toml:"mount_command"`
	// ProcMounts is the mounts file read by the proc source
	ProcMounts string `toml:"proc_mounts"`
	// Timeout bounds the time spent obtaining the mount table
	Timeout time.Duration `toml:"timeout"`
	// IgnoreTypes replaces the built-in list of pseudo filesystem types
	// excluded from aggregate counts. nil keeps the built-in list.
	IgnoreTypes []string `toml:"ignore_types"`
	// DefaultWarning is used when neither --warning nor --critical is given
	DefaultWarning string `toml:"default_warning"`
	// DefaultCritical is used when neither --warning nor --critical is given
	DefaultCritical *string `toml:"default_critical"`
}

// Load loads configuration from a TOML file
// Returns an empty config if the file doesn't exist
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	return cfg, nil
}

// Merge merges CLI flags into the config, with CLI flags taking precedence
// over config file values. Empty CLI values are ignored.
func (c *Config) Merge(source, mountCommand string, timeout time.Duration) {
	if source != "" {
		c.Source = source
	}
	if mountCommand != "" {
		c.MountCommand = mountCommand
	}
	if timeout != 0 {
		c.Timeout = timeout
	}
}

// ApplyDefaults applies default values for any unset fields
func (c *Config) ApplyDefaults() {
	if c.Source == "" {
		c.Source = DefaultSource
	}
	if c.MountCommand == "" {
		c.MountCommand = DefaultMountCommand()
	}
	if c.ProcMounts == "" {
		c.ProcMounts = source.DefaultProcMounts
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.DefaultCritical == nil {
		critical := DefaultCritical
		c.DefaultCritical = &critical
	}
}

// Validate validates the configuration
// Note: range syntax is validated when the thresholds are parsed
func (c *Config) Validate() error {
	switch c.Source {
	case "command":
		if err := checkExecutable(c.MountCommand); err != nil {
			return err
		}
	case "proc", "systemd":
	default:
		return fmt.Errorf("source must be 'command', 'proc' or 'systemd', got %q", c.Source)
	}

	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", c.Timeout)
	}

	return nil
}

func checkExecutable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("mount not found at %s", path)
	}
	if info.IsDir() || info.Mode().Perm()&0111 == 0 {
		return fmt.Errorf("mount at %s is not executable", path)
	}
	return nil
}

// Package config loads apcontrold's runtime configuration from YAML.
package config

import (
	"fmt"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is apcontrold's top-level runtime configuration.
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Hostapd HostapdConfig `yaml:"hostapd"`
	Health  HealthConfig  `yaml:"health"`
	HTTP    HTTPConfig    `yaml:"http"`
}

// LoggingConfig configures internal/logger.
type LoggingConfig struct {
	Path       string `yaml:"path"`
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// HostapdConfig configures how apcontrold reaches the AP daemon.
type HostapdConfig struct {
	// SocketDir is the directory holding one control socket per
	// interface, named after the interface (reference: /var/run/hostapd).
	SocketDir string `yaml:"socket_dir"`
	// CommandTimeout bounds how long send_command waits for a reply.
	CommandTimeout time.Duration `yaml:"command_timeout"`
	// ProbeTimeout bounds apmanager.Manager.RegisterDiscoveryAgent's
	// wait for the initial enumeration to complete.
	ProbeTimeout time.Duration `yaml:"probe_timeout"`
}

// HealthConfig configures internal/health.
type HealthConfig struct {
	Enabled          bool          `yaml:"enabled"`
	CheckInterval    time.Duration `yaml:"check_interval"`
	WatchdogEnabled  bool          `yaml:"watchdog_enabled"`
	WatchdogTimeout  time.Duration `yaml:"watchdog_timeout"`
	RestartOnFailure bool          `yaml:"restart_on_failure"`
}

// HTTPConfig configures the diagnostics HTTP surface.
type HTTPConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Logging: LoggingConfig{Level: "info", Format: "console"},
		Hostapd: HostapdConfig{
			SocketDir:      "/var/run/hostapd",
			CommandTimeout: 2 * time.Second,
			ProbeTimeout:   3 * time.Second,
		},
		Health: HealthConfig{
			Enabled:         true,
			CheckInterval:   10 * time.Second,
			WatchdogEnabled: true,
			WatchdogTimeout: 30 * time.Second,
		},
		HTTP: HTTPConfig{Enabled: true, Addr: "127.0.0.1:8642"},
	}
}

// Manager owns the live Config and can reload it from disk.
type Manager struct {
	mu         sync.RWMutex
	configPath string
	config     Config
}

// NewManager loads configPath, falling back to Default when the path is
// empty. A missing-but-named file is an error.
func NewManager(configPath string) (*Manager, error) {
	m := &Manager{configPath: configPath, config: Default()}
	if configPath == "" {
		return m, nil
	}
	if err := m.Reload(); err != nil {
		return nil, err
	}
	return m, nil
}

// Reload re-reads the configuration file from disk.
func (m *Manager) Reload() error {
	data, err := os.ReadFile(m.configPath)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	m.mu.Lock()
	m.config = cfg
	m.mu.Unlock()
	return nil
}

// Get returns a copy of the current configuration.
func (m *Manager) Get() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

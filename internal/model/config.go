package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// PopupConfig holds timing and sizing for transient notification toasts.
type PopupConfig struct {
	// PollIntervalMS is how often (in milliseconds) the popup controller
	// re-checks the persisted notification count.
	PollIntervalMS int `mapstructure:"poll_interval_ms" yaml:"poll_interval_ms"`

	// DurationMS is how long a visible toast stays on screen.
	DurationMS int `mapstructure:"duration_ms" yaml:"duration_ms"`

	// MaxVisible caps how many toasts render at once. Overflow stays
	// queued and is shown as slots free up.
	MaxVisible int `mapstructure:"max_visible" yaml:"max_visible"`

	// SoundAsset is an optional path to an audio file played on enqueue.
	// When absent or unplayable, a terminal bell is used instead.
	SoundAsset string `mapstructure:"sound_asset" yaml:"sound_asset"`
}

// MailConfig holds SMTP settings for best-effort invoice email.
type MailConfig struct {
	Enabled  bool   `mapstructure:"enabled" yaml:"enabled"`
	Host     string `mapstructure:"host" yaml:"host"`
	Port     int    `mapstructure:"port" yaml:"port"`
	From     string `mapstructure:"from" yaml:"from"`
	Username string `mapstructure:"username" yaml:"username"`
}

// StorageConfig locates the durable local store and log output.
type StorageConfig struct {
	Path    string `mapstructure:"path" yaml:"path"`
	LogPath string `mapstructure:"log_path" yaml:"log_path"`
}

// DisplayConfig holds UI preferences.
type DisplayConfig struct {
	Theme string `mapstructure:"theme" yaml:"theme"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	Popup   PopupConfig   `mapstructure:"popup" yaml:"popup"`
	Mail    MailConfig    `mapstructure:"mail" yaml:"mail"`
	Display DisplayConfig `mapstructure:"display" yaml:"display"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/zervos/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "zervos", "config.yaml")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	dataDir := filepath.Join(".", "zervos")
	if home, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(home, ".local", "share", "zervos")
	}
	return &AppConfig{
		Storage: StorageConfig{
			Path:    filepath.Join(dataDir, "zervos.db"),
			LogPath: filepath.Join(dataDir, "zervos.log"),
		},
		Popup: PopupConfig{
			PollIntervalMS: 1000,
			DurationMS:     5000,
			MaxVisible:     5,
		},
		Mail: MailConfig{
			Port: 587,
		},
		Display: DisplayConfig{
			Theme: "default",
		},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	defaults := defaultAppConfig()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("storage.path", defaults.Storage.Path)
	v.SetDefault("storage.log_path", defaults.Storage.LogPath)
	v.SetDefault("popup.poll_interval_ms", defaults.Popup.PollIntervalMS)
	v.SetDefault("popup.duration_ms", defaults.Popup.DurationMS)
	v.SetDefault("popup.max_visible", defaults.Popup.MaxVisible)
	v.SetDefault("mail.port", defaults.Mail.Port)
	v.SetDefault("display.theme", defaults.Display.Theme)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaults, nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaults, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("storage", cfg.Storage)
	v.Set("popup", cfg.Popup)
	v.Set("mail", cfg.Mail)
	v.Set("display", cfg.Display)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}

// Package conf loads and validates the application configuration from
// config.yaml, environment variables and defaults using viper.
package conf

import (
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/spf13/viper"

	"github.com/sonory/soundscape-go/internal/errors"
)

// MainSettings carries service identity and log file settings.
type MainSettings struct {
	Name string      `yaml:"name"` // service name used in logs and API payloads
	Log  LogSettings `yaml:"log"`
}

// LogSettings configures the rotating service log file.
type LogSettings struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// ModelSettings configures the acoustic classifier.
type ModelSettings struct {
	Path       string `yaml:"path"`       // TFLite model file path
	LabelsPath string `yaml:"labelspath"` // class map CSV path
	Threads    int    `yaml:"threads"`    // 0 lets the interpreter decide
	TopK       int    `yaml:"topk"`       // default number of class scores kept per analysis
}

// AudioSettings configures acquisition and preprocessing.
type AudioSettings struct {
	FfmpegPath   string  `yaml:"ffmpegpath"`   // path to ffmpeg, defaults to binary name in PATH
	FetchTimeout int     `yaml:"fetchtimeout"` // URL download timeout in seconds
	MaxRetries   int     `yaml:"maxretries"`   // default additional fetch attempts
	RMSScale     float64 `yaml:"rmsscale"`     // divisor scale for RMS normalization
}

// SoundscapeSettings configures the category mapper.
type SoundscapeSettings struct {
	MinScore float64 `yaml:"minscore"` // classes scoring below this are ignored by the mapper
}

// WebServerSettings configures the HTTP API.
type WebServerSettings struct {
	Enabled bool   `yaml:"enabled"`
	Port    string `yaml:"port"`
	Debug   bool   `yaml:"debug"`
}

// Settings is the root configuration structure.
type Settings struct {
	Debug bool `yaml:"debug"` // true to enable debug logging

	Main       MainSettings       `yaml:"main"`
	Model      ModelSettings      `yaml:"model"`
	Audio      AudioSettings      `yaml:"audio"`
	Soundscape SoundscapeSettings `yaml:"soundscape"`
	WebServer  WebServerSettings  `yaml:"webserver"`
}

var (
	settingsInstance *Settings
	once             sync.Once
	settingsMutex    sync.RWMutex
)

// Load reads the configuration file and environment variables into a new
// Settings instance and stores it as the global instance.
func Load() (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	settings := &Settings{}

	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	settingsInstance = settings
	return settingsInstance, nil
}

// initViper initializes viper with default values and reads the configuration file.
func initViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}

	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	viper.SetEnvPrefix("SOUNDSCAPE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaultConfig()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			// Missing config file is fine, defaults and env apply
			return nil
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}

	return nil
}

// Setting returns the current settings instance, initializing it if necessary.
func Setting() *Settings {
	once.Do(func() {
		if settingsInstance == nil {
			if _, err := Load(); err != nil {
				log.Fatalf("Error loading settings: %v", err)
			}
		}
	})
	return GetSettings()
}

// GetSettings returns the current settings instance.
func GetSettings() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

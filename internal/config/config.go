// Package config loads nxncube settings through viper.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// FileName is the config file name searched for, without extension.
const FileName = "nxncube"

// Settings is the resolved configuration.
type Settings struct {
	Dimension       int
	ScrambleTimes   int
	ScrambleDegree  int
	DragThreshold   float64
	DragSensitivity float64
	ScramblePause   time.Duration
	Seed            uint64
	LogLevel        string
	LogFile         string
	DBPath          string
	StateFile       string
	ServeAddr       string
}

// SetDefaults registers every default value.
func SetDefaults() {
	viper.SetDefault("dimension", 3)
	viper.SetDefault("scrambleTimes", 10)
	viper.SetDefault("scrambleDegree", 90)
	viper.SetDefault("dragThreshold", 50.0)
	viper.SetDefault("dragSensitivity", 0.3)
	viper.SetDefault("scramblePause", "100ms")
	viper.SetDefault("seed", 0)
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logFile", "")
	viper.SetDefault("dbPath", "")
	viper.SetDefault("stateFile", "")
	viper.SetDefault("serve.addr", "127.0.0.1:8765")
}

// Load sets defaults and reads nxncube.yaml from configDir. A missing file
// is not an error.
func Load(configDir string) error {
	SetDefaults()

	viper.SetConfigName(FileName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configDir)
	viper.SetEnvPrefix("NXNCUBE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("error reading config file: %w", err)
	}
	return nil
}

// Current returns the settings as viper currently resolves them.
func Current() Settings {
	return Settings{
		Dimension:       viper.GetInt("dimension"),
		ScrambleTimes:   viper.GetInt("scrambleTimes"),
		ScrambleDegree:  viper.GetInt("scrambleDegree"),
		DragThreshold:   viper.GetFloat64("dragThreshold"),
		DragSensitivity: viper.GetFloat64("dragSensitivity"),
		ScramblePause:   viper.GetDuration("scramblePause"),
		Seed:            viper.GetUint64("seed"),
		LogLevel:        viper.GetString("logLevel"),
		LogFile:         viper.GetString("logFile"),
		DBPath:          viper.GetString("dbPath"),
		StateFile:       viper.GetString("stateFile"),
		ServeAddr:       viper.GetString("serve.addr"),
	}
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// Set overrides a config value, e.g. from a command-line flag.
func Set(key string, value any) {
	viper.Set(key, value)
}

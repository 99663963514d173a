// Package config loads the server's configuration surface: tick rate,
// socket ports, telemetry file path, and the zone seed list.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// ZoneSeed describes one zone to create at startup.
type ZoneSeed struct {
	ID            uint32 `mapstructure:"id"`
	Name          string `mapstructure:"name"`
	NPCPopulation int    `mapstructure:"npcPopulation"`
	NPCBaseID     uint64 `mapstructure:"npcBaseId"`
}

// Config is the fully-resolved server configuration.
type Config struct {
	TickRateHz      int        `mapstructure:"tickRateHz"`
	GamePort        int        `mapstructure:"gamePort"`
	ControlPort     int        `mapstructure:"controlPort"`
	TelemetryPath   string     `mapstructure:"telemetryPath"`
	Zones           []ZoneSeed `mapstructure:"zones"`
}

// Load reads configuration from configDir (a directory containing
// server.yaml/json/toml, per viper's format auto-detection), falling back to
// defaults for anything unset. A missing config file is not an error —
// defaults alone are enough to run.
func Load(configDir string) (Config, error) {
	v := viper.New()
	v.SetDefault("tickRateHz", 20)
	v.SetDefault("gamePort", 8080)
	v.SetDefault("controlPort", 8081)
	v.SetDefault("telemetryPath", "./telemetry.log")
	v.SetDefault("zones", []map[string]any{
		{"id": 1, "name": "zone-1", "npcPopulation": 0},
	})

	v.SetConfigName("server")
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return Config{}, fmt.Errorf("config: error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: error decoding config: %w", err)
	}
	return cfg, nil
}

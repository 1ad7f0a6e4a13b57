package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Config holds all service configuration.
type Config struct {
	HTTPAddress string

	MongoURI      string
	MongoDatabase string

	// RedisAddress is optional. When empty the dependency lookup cache is
	// disabled and every check goes straight to MongoDB.
	RedisAddress   string
	RedisPassword  string
	LookupCacheTTL time.Duration
}

// LoadConfig loads configuration from a config file and environment variables.
func LoadConfig() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	envMappings := map[string]string{
		"HTTPAddress":    "HTTP_ADDRESS",
		"MongoURI":       "MONGO_URI",
		"MongoDatabase":  "MONGO_DATABASE",
		"RedisAddress":   "REDIS_ADDRESS",
		"RedisPassword":  "REDIS_PASSWORD",
		"LookupCacheTTL": "LOOKUP_CACHE_TTL",
	}

	for configKey, envVar := range envMappings {
		if err := v.BindEnv(configKey, envVar); err != nil {
			log.Warn().Err(err).Msgf("Failed to bind environment variable %s for %s", envVar, configKey)
		}
	}

	v.SetConfigName("insightloop_config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("$HOME/.insightloop")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}

		log.Debug().Msg("Config file not found, using environment variables and defaults")
	} else {
		log.Info().Msgf("Using config file: %s", v.ConfigFileUsed())
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if config.MongoURI == "" {
		return nil, fmt.Errorf("MONGO_URI is required")
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("HTTPAddress", ":8080")
	v.SetDefault("MongoURI", "mongodb://localhost:27017")
	v.SetDefault("MongoDatabase", "insightloop")
	v.SetDefault("LookupCacheTTL", 30*time.Second)
}

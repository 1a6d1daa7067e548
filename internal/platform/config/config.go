package config

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool
	// SnapshotRetentionMonths bounds how many cached report months survive
	// a snapshot regeneration.
	SnapshotRetentionMonths int
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("SNAPSHOT_RETENTION_MONTHS", 1)

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")

	cfg.SnapshotRetentionMonths = viper.GetInt("SNAPSHOT_RETENTION_MONTHS")
	if cfg.SnapshotRetentionMonths < 1 {
		log.Printf("Warning: SNAPSHOT_RETENTION_MONTHS must be at least 1, got %d. Defaulting to 1.\n", cfg.SnapshotRetentionMonths)
		cfg.SnapshotRetentionMonths = 1
	}

	return cfg, nil
}

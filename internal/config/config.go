package config

import (
	"time"

	"github.com/estatery/service-rental/internal/platform/config"
)

// ServiceConfig holds all configuration for the rental service.
type ServiceConfig struct {
	Port        string
	AppEnv      string
	DBConfig    config.DatabaseConfig
	JWTConfig   config.JWTConfig
	KafkaConfig config.KafkaConfig

	// LockTimeout bounds how long a transaction waits for a property or booking row lock.
	LockTimeout time.Duration

	// ScheduleCron is when the scheduler runs the daily lifecycle sweep.
	ScheduleCron string
}

// Load reads configuration from RENTAL_* environment variables.
func Load() (*ServiceConfig, error) {
	v, err := config.Load("RENTAL")
	if err != nil {
		return nil, err
	}
	v.SetDefault("DB_NAME", "rental")
	v.SetDefault("LOCK_TIMEOUT", "5s")
	v.SetDefault("SCHEDULE_CRON", "5 0 * * *")

	return &ServiceConfig{
		Port:         config.GetServicePort(v, "SERVICE_PORT"),
		AppEnv:       config.GetAppEnv(v),
		DBConfig:     config.LoadDatabaseConfig(v, "DB_NAME"),
		JWTConfig:    config.LoadJWTConfig(v),
		KafkaConfig:  config.LoadKafkaConfig(v),
		LockTimeout:  v.GetDuration("LOCK_TIMEOUT"),
		ScheduleCron: v.GetString("SCHEDULE_CRON"),
	}, nil
}

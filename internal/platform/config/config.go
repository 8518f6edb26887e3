// Package config wraps viper with the environment conventions shared by the rental services.
package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
)

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// JWTConfig holds the shared secret used to validate bearer tokens.
type JWTConfig struct {
	Secret string
}

// KafkaConfig holds broker addresses and the consumer group prefix.
type KafkaConfig struct {
	Brokers     []string
	GroupPrefix string
}

// Load returns a viper instance bound to environment variables with the given prefix
// (e.g. RENTAL_DB_HOST). An optional config.yaml in the working directory is merged underneath.
func Load(prefix string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(prefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("SERVICE_PORT", "8080")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("KAFKA_GROUP_PREFIX", "")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}
	return v, nil
}

// GetServicePort returns the listen address for the given port key, e.g. ":8080".
func GetServicePort(v *viper.Viper, key string) string {
	port := v.GetString(key)
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

// GetAppEnv returns the deployment environment name.
func GetAppEnv(v *viper.Viper) string {
	return v.GetString("APP_ENV")
}

// LoadDatabaseConfig reads the DB_* keys; dbNameKey selects the database name key.
func LoadDatabaseConfig(v *viper.Viper, dbNameKey string) DatabaseConfig {
	return DatabaseConfig{
		Host:     v.GetString("DB_HOST"),
		Port:     v.GetString("DB_PORT"),
		User:     v.GetString("DB_USER"),
		Password: v.GetString("DB_PASSWORD"),
		DBName:   v.GetString(dbNameKey),
		SSLMode:  v.GetString("DB_SSLMODE"),
	}
}

// LoadJWTConfig reads JWT_SECRET.
func LoadJWTConfig(v *viper.Viper) JWTConfig {
	return JWTConfig{Secret: v.GetString("JWT_SECRET")}
}

// LoadKafkaConfig reads the comma-separated KAFKA_BROKERS list and KAFKA_GROUP_PREFIX.
func LoadKafkaConfig(v *viper.Viper) KafkaConfig {
	var brokers []string
	for _, b := range strings.Split(v.GetString("KAFKA_BROKERS"), ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return KafkaConfig{
		Brokers:     brokers,
		GroupPrefix: v.GetString("KAFKA_GROUP_PREFIX"),
	}
}

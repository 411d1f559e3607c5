// Package config provides application configuration loaded from
// environment variables, with an optional .env file for local development.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// PostgresDSN is the database connection string, assembled from the
	// POSTGRES_* environment variables.
	PostgresDSN string

	// ServerPort is the HTTP listen port.
	ServerPort string

	// DebugMode controls gin's mode ("True" keeps debug output).
	DebugMode string

	// RateLimitRPS and RateLimitBurst bound the API request rate.
	RateLimitRPS   float64
	RateLimitBurst int
}

func Load() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, using environment variables")
	}

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		getEnv("POSTGRES_HOST", "localhost"),
		getEnv("POSTGRES_USER", "postgres"),
		getEnv("POSTGRES_PASSWORD", ""),
		getEnv("POSTGRES_DB", "tradebook"),
		getEnv("POSTGRES_PORT", "5432"),
		getEnv("POSTGRES_SSLMODE", "disable"),
	)

	return &Config{
		PostgresDSN:    dsn,
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		DebugMode:      getEnv("DEBUGMODE", "True"),
		RateLimitRPS:   float64(getEnvInt("RATE_LIMIT_RPS", 10)),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 20),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

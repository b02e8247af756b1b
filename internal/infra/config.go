package infra

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	HTTPListenAddress string
	DBPath            string
	HashAlgorithm     string
	HashWorkers       int
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using environment variables and defaults")
	}

	return &Config{
		HTTPListenAddress: getEnv("HTTP_LISTEN_ADDRESS", ":8080"),
		DBPath:            getEnv("DB_PATH", "trees.db"),
		HashAlgorithm:     getEnv("HASH_ALGORITHM", "sha256"),
		HashWorkers:       getEnvAsInt("HASH_WORKERS", 0),
	}
}

func getEnv(key string, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

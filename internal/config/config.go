package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ProjectID string
	Region    string
	LogLevel  string
	Port      string

	VertexModel string
	AITimeout   time.Duration

	MaxActiveMissions int

	// Duplicate-detection policy thresholds (ratios in [0,1]).
	TitleSimilarity       float64
	DescriptionSimilarity float64
}

func New() *Config {
	// Local development reads a .env file; deployed environments set real
	// environment variables and the load is a no-op.
	_ = godotenv.Load()

	return &Config{
		ProjectID:             os.Getenv("PROJECTID"),
		Region:                os.Getenv("REGION"),
		LogLevel:              os.Getenv("LOGLEVEL"),
		Port:                  getString("PORT", "8080"),
		VertexModel:           os.Getenv("VERTEXMODEL"),
		AITimeout:             getDuration("AITIMEOUT", 20*time.Second),
		MaxActiveMissions:     getInt("MAXACTIVEMISSIONS", 3),
		TitleSimilarity:       getFloat("TITLESIMILARITY", 0.85),
		DescriptionSimilarity: getFloat("DESCRIPTIONSIMILARITY", 0.75),
	}
}

func getString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func getFloat(key string, fallback float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil || v <= 0 || v > 1 {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

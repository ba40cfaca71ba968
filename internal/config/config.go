package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port           int
	DatabaseURL    string
	NatsURL        string
	NatsToken      string
	LogLevel       string
	OpenAIAPIKey   string
	TwinModel      string
	EmbeddingModel string
	Temperature    float64
	APIToken       string
}

func Load() Config {
	return Config{
		Port:           envInt("UNREAL_PORT", 8780),
		DatabaseURL:    envStr("DATABASE_URL", ""),
		NatsURL:        envStr("NATS_URL", ""),
		NatsToken:      envStr("NATS_TOKEN", ""),
		LogLevel:       envStr("LOG_LEVEL", "info"),
		OpenAIAPIKey:   envStr("OPENAI_API_KEY", ""),
		TwinModel:      envStr("TWIN_MODEL", "gpt-4o-mini"),
		EmbeddingModel: envStr("TWIN_EMBEDDING_MODEL", "text-embedding-3-small"),
		Temperature:    envFloat("TWIN_TEMPERATURE", 0.9),
		APIToken:       envStr("UNREAL_API_TOKEN", ""),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

package config

import (
	"log"
	"os"
	"strconv"
)

type R2 struct {
	AccountID     string
	AccessKey     string
	SecretKey     string
	BucketName    string
	PublicBaseURL string
}

type Pipeline struct {
	MorningHour int
	EveningHour int
	Timezone    string
}

type Config struct {
	MetaAppID          string
	MetaAppSecret      string
	InstagramAccountID string
	FacebookPageID     string
	AccessToken        string
	OpenAIAPIKey       string
	PerplexityAPIKey   string
	UnsplashAccessKey  string
	PostgresURI        string
	Port               string
	GraphBaseURL       string
	TmpDir             string
	R2                 R2
	Pipeline           Pipeline
}

func LoadConfig() *Config {
	return &Config{
		MetaAppID:          requireEnv("META_APP_ID"),
		MetaAppSecret:      requireEnv("META_APP_SECRET"),
		InstagramAccountID: requireEnv("INSTAGRAM_ACCOUNT_ID"),
		FacebookPageID:     requireEnv("FACEBOOK_PAGE_ID"),
		AccessToken:        requireEnv("ACCESS_TOKEN"),
		PostgresURI:        requireEnv("POSTGRES_URI"),
		OpenAIAPIKey:       getEnv("OPENAI_API_KEY", ""),
		PerplexityAPIKey:   getEnv("PERPLEXITY_API_KEY", ""),
		UnsplashAccessKey:  getEnv("UNSPLASH_ACCESS_KEY", ""),
		Port:               getEnv("PORT", "3000"),
		GraphBaseURL:       getEnv("GRAPH_BASE_URL", "https://graph.facebook.com/v25.0"),
		TmpDir:             getEnv("TMP_DIR", "tmp"),
		R2: R2{
			AccountID:     getEnv("R2_ACCOUNT_ID", ""),
			AccessKey:     getEnv("R2_ACCESS_KEY", ""),
			SecretKey:     getEnv("R2_SECRET_KEY", ""),
			BucketName:    getEnv("R2_BUCKET_NAME", ""),
			PublicBaseURL: getEnv("R2_PUBLIC_BASE_URL", ""),
		},
		Pipeline: Pipeline{
			MorningHour: getEnvInt("PIPELINE_MORNING_HOUR", 9),
			EveningHour: getEnvInt("PIPELINE_EVENING_HOUR", 18),
			Timezone:    getEnv("PIPELINE_TIMEZONE", "Local"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Fatalf("Environment variable %s must be an integer, got %q", key, value)
	}
	return n
}

func requireEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		log.Fatalf("Missing required environment variable: %s", key)
	}
	return value
}

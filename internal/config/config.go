package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Addr             string        `env:"ADDR"              envDefault:":8080"`
	GroqAPIKey       string        `env:"GROQ_API_KEY"`
	GroqBaseURL      string        `env:"GROQ_BASE_URL"     envDefault:"https://api.groq.com/openai/v1/"`
	Model            string        `env:"MODEL"             envDefault:"llama3-70b-8192"`
	TemplatePath     string        `env:"TEMPLATE_PATH"     envDefault:"template.json"`
	DBPath           string        `env:"DB_PATH"           envDefault:"db.sqlite"`
	FetchTimeout     time.Duration `env:"FETCH_TIMEOUT"     envDefault:"2m"`
	SummaryTimeout   time.Duration `env:"SUMMARY_TIMEOUT"   envDefault:"2m"`
	HistoryLimit     int           `env:"HISTORY_LIMIT"     envDefault:"10"`
	HistoryRetention time.Duration `env:"HISTORY_RETENTION" envDefault:"720h"`
}

// LoadConfig reads an optional .env file and then the environment. GROQ_API_KEY
// is deliberately not required here: a missing key surfaces as an authorization
// failure on the first summarization attempt.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

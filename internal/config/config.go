package config

import (
	"errors"
	"log"
	"os"
	"strings"
)

// Config holds everything the server reads from the environment.
// It is loaded once at startup and never mutated afterwards.
type Config struct {
	Port                string
	JWTSecret           string
	DatabaseURL         string
	QuestionsCollection string
	ResponsesCollection string
	CORSOrigins         []string
	AuthDisabled        bool
}

// Load reads the environment into a Config. Required variables that
// are missing make startup fail here rather than at first use.
func Load() (*Config, error) {
	cfg := &Config{
		Port:         os.Getenv("PORT"),
		JWTSecret:    os.Getenv("JWT_SECRET"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		AuthDisabled: strings.EqualFold(os.Getenv("AUTH_DISABLED"), "true"),
	}

	if cfg.Port == "" {
		cfg.Port = "9999"
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "sqlite://mentorq.db"
		log.Println("DATABASE_URL not set, defaulting to 'sqlite://mentorq.db'")
	}

	questions := os.Getenv("DB_COLLECTION_NAME")
	if questions == "" {
		questions = "questions"
	}
	cfg.QuestionsCollection = questions
	cfg.ResponsesCollection = questions + "-responses"

	// Auth can only be skipped when explicitly disabled for local dev.
	if cfg.JWTSecret == "" && !cfg.AuthDisabled {
		return nil, errors.New("JWT_SECRET UNAVAILABLE (set it, or set AUTH_DISABLED=true for local dev)")
	}
	if cfg.AuthDisabled {
		log.Println("AUTH_DISABLED=true: requests are not authenticated and role checks are skipped")
	}

	origins := os.Getenv("CORS_ORIGINS")
	if origins == "" {
		cfg.CORSOrigins = []string{"*"} // Default to allow all for local dev
	} else {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, o)
			}
		}
	}

	return cfg, nil
}

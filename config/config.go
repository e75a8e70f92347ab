package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config holds every environment-backed setting the server needs.
type Config struct {
	Port               string
	MongoURI           string
	MongoDB            string
	JWTSecret          string
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	FrontendURL        string
	CORSOrigin         string
	GinMode            string
}

// Load reads .env if present and builds the config from the environment.
// Required values are validated by the caller, not here.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:               getEnv("PORT", "8080"),
		MongoURI:           getEnv("MONGODB_URI", "mongodb://127.0.0.1:27017"),
		MongoDB:            getEnv("MONGODB_NAME", "vybsync"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", "http://localhost:8080/users/auth/google/callback"),
		FrontendURL:        getEnv("FRONTEND_URL", "http://localhost:5173"),
		CORSOrigin:         getEnv("CORS_ORIGIN", "http://localhost:5173"),
		GinMode:            getEnv("GIN_MODE", "debug"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

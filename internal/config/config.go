package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const defaultDatabaseURL = "sqlite3://app.db"

type Config struct {
	// DatabaseURL selects the driver by scheme: postgres:// or sqlite3://<path>.
	DatabaseURL string

	ServerPort string

	JWTSecret string

	AccessTokenMaxAge  int
	RefreshTokenMaxAge int

	PostsPerPage int

	// RedisURL is optional. Login throttling is disabled when it is empty.
	RedisURL           string
	LoginMaxAttempts   int
	LoginAttemptWindow int
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found or error loading it, relying on environment variables")
	}

	databaseURL := firstEnv("DATABASE_URL", "DATABASE_URI")
	if databaseURL == "" {
		databaseURL = defaultDatabaseURL
	}

	serverPort := os.Getenv("SERVER_PORT")
	if serverPort == "" {
		serverPort = "8080"
	}

	jwtSecret := firstEnv("JWT_SECRET", "SECRET_KEY")
	if jwtSecret == "" {
		log.Println("JWT_SECRET is not set, using an insecure development secret")
		jwtSecret = "you-will-never-guess"
	}

	return &Config{
		DatabaseURL: databaseURL,
		ServerPort:  serverPort,
		JWTSecret:   jwtSecret,

		AccessTokenMaxAge:  intEnv("ACCESS_TOKEN_MAX_AGE", 900),
		RefreshTokenMaxAge: intEnv("REFRESH_TOKEN_MAX_AGE", 2592000),

		PostsPerPage: intEnv("POSTS_PER_PAGE", 25),

		RedisURL:           os.Getenv("REDIS_URL"),
		LoginMaxAttempts:   intEnv("LOGIN_MAX_ATTEMPTS", 5),
		LoginAttemptWindow: intEnv("LOGIN_ATTEMPT_WINDOW", 900),
	}, nil
}

// firstEnv returns the first non-empty value among keys.
func firstEnv(keys ...string) string {
	for _, key := range keys {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return ""
}

// intEnv reads a positive integer, falling back when unset or invalid.
func intEnv(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

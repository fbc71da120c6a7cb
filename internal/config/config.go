package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// MinBcryptCost is the lowest password hashing cost the server accepts.
const MinBcryptCost = 10

type Config struct {
	HTTPAddr             string
	DatabaseURL          string
	DBMaxConns           int
	CORSAllowedOrigins   []string
	CORSAllowCredentials bool

	JWTSecret    string
	SessionTTL   time.Duration
	BcryptCost   int
	CookieSecure bool

	LogLevel  string
	LogFormat string
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		HTTPAddr:             getenv("HTTP_ADDR", ":8080"),
		DatabaseURL:          getenv("DATABASE_URL", ""),
		CORSAllowCredentials: getenv("CORS_ALLOW_CREDENTIALS", "false") == "true",
		CookieSecure:         getenv("COOKIE_SECURE", "false") == "true",
		JWTSecret:            getenv("JWT_SECRET", ""),
		LogLevel:             strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogFormat:            strings.ToLower(getenv("LOG_FORMAT", "console")),
	}

	if cfg.DatabaseURL == "" {
		return cfg, errors.New("missing env: DATABASE_URL")
	}
	if cfg.JWTSecret == "" {
		return cfg, errors.New("missing env: JWT_SECRET")
	}

	origins := strings.Split(getenv("CORS_ALLOWED_ORIGINS", ""), ",")
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
		}
	}

	var err error
	if cfg.DBMaxConns, err = getint("DB_MAX_CONNS", 10); err != nil {
		return cfg, err
	}
	if cfg.DBMaxConns <= 0 {
		return cfg, fmt.Errorf("DB_MAX_CONNS must be positive, got %d", cfg.DBMaxConns)
	}

	if cfg.BcryptCost, err = getint("BCRYPT_COST", MinBcryptCost); err != nil {
		return cfg, err
	}
	if cfg.BcryptCost < MinBcryptCost {
		return cfg, fmt.Errorf("BCRYPT_COST must be at least %d, got %d", MinBcryptCost, cfg.BcryptCost)
	}

	ttl := getenv("SESSION_TTL", "720h")
	if cfg.SessionTTL, err = time.ParseDuration(ttl); err != nil {
		return cfg, fmt.Errorf("invalid SESSION_TTL %q: %w", ttl, err)
	}
	if cfg.SessionTTL <= 0 {
		return cfg, fmt.Errorf("SESSION_TTL must be positive, got %s", cfg.SessionTTL)
	}

	return cfg, nil
}

func getenv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func getint(key string, def int) (int, error) {
	v := getenv(key, "")
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

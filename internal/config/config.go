package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env  string
	Port int

	MongoURL string
	MongoDB  string

	JWTSecret          string
	JWTAlgorithm       string
	AccessTokenExpires time.Duration

	CORSOrigins []string

	OTELEndpoint string
}

func Load() Config {
	env := getEnv("APP_ENV", "dev")
	port := getEnvInt("PORT", 8080)

	expireMinutes := getEnvInt("ACCESS_TOKEN_EXPIRE_MINUTES", 30)

	return Config{
		Env:                env,
		Port:               port,
		MongoURL:           getEnv("MONGODB_URL", "mongodb://127.0.0.1:27017"),
		MongoDB:            getEnv("MONGODB_DATABASE", "nextgen"),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		JWTAlgorithm:       getEnv("JWT_ALGORITHM", "HS256"),
		AccessTokenExpires: time.Duration(expireMinutes) * time.Minute,
		CORSOrigins:        splitCSV(getEnv("CORS_ORIGINS", "")),
		OTELEndpoint:       getEnv("OTEL_EXPORTER_ENDPOINT", ""),
	}
}

// Validate covers the startup-fatal misconfigurations. Anything wrong here
// should kill the process before it serves a single request.
func (c Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}

	switch c.JWTAlgorithm {
	case "HS256", "HS384", "HS512":
		// supported HMAC family
	default:
		return fmt.Errorf("unsupported JWT_ALGORITHM %q", c.JWTAlgorithm)
	}

	if c.AccessTokenExpires <= 0 {
		return errors.New("ACCESS_TOKEN_EXPIRE_MINUTES must be positive")
	}

	return nil
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func splitCSV(v string) []string {
	if v == "" {
		return nil
	}

	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))

	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}

	return out
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			fmt.Println(err)
		}

		return num
	}
	return fallback
}

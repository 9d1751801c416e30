package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	Env         string
	MetricsPort string

	LogLevel  string
	LogFormat string

	DBDriver    string // postgres | sqlite
	PostgresUrl string
	SQLitePath  string
	PostStore   string // postgres | mongo
	MongoURI    string
	MongoDB     string

	RedisURL string

	AuthProvider            string // jwt | firebase
	JWTSecret               string
	FirebaseCredentialsPath string

	CORSOrigin         string
	WSRejectAnonymous  bool
	WSAllowQueryUserID bool
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	IdleTimeout        time.Duration
	ShutdownTimeout    time.Duration
}

// Load reads the configuration from the environment, after loading an optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:                    getEnv("PORT", "8080"),
		Env:                     getEnv("ENV", "development"),
		MetricsPort:             getEnv("METRICS_PORT", "9090"),
		LogLevel:                getEnv("LOG_LEVEL", "info"),
		LogFormat:               getEnv("LOG_FORMAT", "json"),
		DBDriver:                strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		PostgresUrl:             getEnv("POSTGRES_CONN_STR", ""),
		SQLitePath:              getEnv("SQLITE_PATH", "nano-comments.db"),
		PostStore:               strings.ToLower(getEnv("POST_STORE", "postgres")),
		MongoURI:                getEnv("MONGO_URI", ""),
		MongoDB:                 getEnv("MONGO_DATABASE", "socialmedia"),
		RedisURL:                getEnv("REDIS_URL", ""),
		AuthProvider:            strings.ToLower(getEnv("AUTH_PROVIDER", "jwt")),
		JWTSecret:               getEnv("JWT_SECRET", ""),
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
		CORSOrigin:              getEnv("CORS_ORIGIN", "http://localhost:3000"),
		WSRejectAnonymous:       getEnvBool("WS_REJECT_ANONYMOUS", false),
		WSAllowQueryUserID:      getEnvBool("WS_ALLOW_QUERY_USER_ID", true),
		ReadTimeout:             getEnvDuration("HTTP_READ_TIMEOUT", 30*time.Second),
		WriteTimeout:            getEnvDuration("HTTP_WRITE_TIMEOUT", 30*time.Second),
		IdleTimeout:             getEnvDuration("HTTP_IDLE_TIMEOUT", 120*time.Second),
		ShutdownTimeout:         getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsDevelopment reports whether development-only routes may be served.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c *Config) validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	switch c.DBDriver {
	case "postgres":
		if c.PostgresUrl == "" {
			return fmt.Errorf("POSTGRES_CONN_STR is required when DB_DRIVER=postgres")
		}
	case "sqlite":
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required when DB_DRIVER=sqlite")
		}
	default:
		return fmt.Errorf("DB_DRIVER must be postgres or sqlite, got %q", c.DBDriver)
	}
	switch c.PostStore {
	case "postgres":
	case "mongo":
		if c.MongoURI == "" {
			return fmt.Errorf("MONGO_URI is required when POST_STORE=mongo")
		}
	default:
		return fmt.Errorf("POST_STORE must be postgres or mongo, got %q", c.PostStore)
	}
	switch c.AuthProvider {
	case "jwt":
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required when AUTH_PROVIDER=jwt")
		}
	case "firebase":
		if c.FirebaseCredentialsPath == "" {
			return fmt.Errorf("FIREBASE_CREDENTIALS_PATH is required when AUTH_PROVIDER=firebase")
		}
	default:
		return fmt.Errorf("AUTH_PROVIDER must be jwt or firebase, got %q", c.AuthProvider)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

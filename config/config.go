package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	AppEnv      string
	CORSOrigins string

	DBDriver    string
	DatabaseURL string
	MySQLDSN    string
	SQLitePath  string

	JWTSecret         string
	AdminPassword     string
	AdminPasswordHash string

	DailyLimit     time.Duration
	Location       *time.Location
	BackupDir      string
	BackupSchedule string

	RedisURL string
	NATSURL  string
}

// Load reads .env (if present) and the process environment.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	cfg := Config{
		Port:              getEnv("PORT", "3000"),
		AppEnv:            getEnv("APP_ENV", "development"),
		CORSOrigins:       getEnv("CORS_ORIGINS", "*"),
		DBDriver:          strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		MySQLDSN:          os.Getenv("MYSQL_DSN"),
		SQLitePath:        getEnv("SQLITE_PATH", "./data/mathking.db"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		AdminPassword:     os.Getenv("ADMIN_PASSWORD"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		DailyLimit:        time.Duration(getEnvInt("DAILY_LIMIT_MINUTES", 30)) * time.Minute,
		Location:          loadLocation(os.Getenv("TIMEZONE")),
		BackupDir:         getEnv("BACKUP_DIR", "./backups"),
		BackupSchedule:    getEnv("BACKUP_SCHEDULE", "@daily"),
		RedisURL:          os.Getenv("REDIS_URL"),
		NATSURL:           os.Getenv("NATS_URL"),
	}

	if cfg.DatabaseURL == "" && cfg.DBDriver == "postgres" {
		cfg.DatabaseURL = postgresDSNFromParts()
	}

	return cfg
}

// IsProduction reports whether APP_ENV=production.
func (c Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Validate checks the settings the server cannot run without.
func (c Config) Validate() {
	if c.JWTSecret == "" {
		log.Fatal("FATAL: JWT_SECRET environment variable must be set. Generate one with: openssl rand -base64 64")
	}
	if len(c.JWTSecret) < 32 {
		log.Fatal("FATAL: JWT_SECRET must be at least 32 characters long")
	}
	if c.AdminPassword == "" && c.AdminPasswordHash == "" {
		log.Fatal("FATAL: ADMIN_PASSWORD or ADMIN_PASSWORD_HASH must be set")
	}

	if c.IsProduction() && (c.CORSOrigins == "" || c.CORSOrigins == "*") {
		log.Println("WARNING: CORS_ORIGINS not properly configured for production")
	}
}

func postgresDSNFromParts() string {
	host := getEnv("DB_HOST", "localhost")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "postgres")
	password := getEnv("DB_PASSWORD", "")
	dbname := getEnv("DB_NAME", "mathking")
	sslmode := getEnv("DB_SSLMODE", "disable")

	return "host=" + host + " port=" + port + " user=" + user + " password=" + password +
		" dbname=" + dbname + " sslmode=" + sslmode
}

func loadLocation(name string) *time.Location {
	if name == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Printf("Warning: unknown TIMEZONE %q, falling back to local time", name)
		return time.Local
	}
	return loc
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, def int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return def
}

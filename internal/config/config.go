package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

type DB struct {
	Driver   string `yaml:"driver"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"`
}

type Session struct {
	SecretKey        string        `yaml:"secret_key"`
	CookieName       string        `yaml:"cookie_name"`
	Duration         time.Duration `yaml:"duration"`
	RememberDuration time.Duration `yaml:"remember_duration"`
	SecureCookie     bool          `yaml:"secure_cookie"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type Config struct {
	ServerPort    int     `yaml:"server_port"`
	DB            DB      `yaml:"db"`
	Session       Session `yaml:"session"`
	Log           Log     `yaml:"log"`
	BcryptCost    int     `yaml:"bcrypt_cost"`
	RunMigrations bool    `yaml:"run_migrations"`
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return fallback
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	duration, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return duration
}

func LoadDB() DB {
	return DB{
		Driver:   getEnv("DB_DRIVER", "postgres"),
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", "password"),
		Name:     getEnv("DB_NAME", "postboard"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}
}

func LoadSession() Session {
	return Session{
		SecretKey:        getEnv("SESSION_SECRET_KEY", ""),
		CookieName:       getEnv("SESSION_COOKIE_NAME", "session"),
		Duration:         parseDuration(getEnv("SESSION_DURATION", "12h"), 12*time.Hour),
		RememberDuration: parseDuration(getEnv("SESSION_REMEMBER_DURATION", "720h"), 720*time.Hour),
		SecureCookie:     getEnvBool("SESSION_SECURE_COOKIE", false),
	}
}

// LoadConfig reads .env and the process environment, then applies the YAML file
// named by CONFIG_FILE on top when one is set.
func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	cfg := &Config{
		ServerPort: getEnvAsInt("SERVER_PORT", 8080),
		DB:         LoadDB(),
		Session:    LoadSession(),
		Log: Log{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
		BcryptCost:    getEnvAsInt("BCRYPT_COST", bcrypt.DefaultCost),
		RunMigrations: getEnvBool("RUN_MIGRATIONS", true),
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// applyFile overlays non-zero values from a YAML file. A boolean set to false in the
// file cannot switch off a value enabled in the environment.
func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	if file.ServerPort != 0 {
		c.ServerPort = file.ServerPort
	}
	overrideString(&c.DB.Driver, file.DB.Driver)
	overrideString(&c.DB.Host, file.DB.Host)
	overrideString(&c.DB.Port, file.DB.Port)
	overrideString(&c.DB.User, file.DB.User)
	overrideString(&c.DB.Password, file.DB.Password)
	overrideString(&c.DB.Name, file.DB.Name)
	overrideString(&c.DB.SSLMode, file.DB.SSLMode)

	overrideString(&c.Session.SecretKey, file.Session.SecretKey)
	overrideString(&c.Session.CookieName, file.Session.CookieName)
	if file.Session.Duration != 0 {
		c.Session.Duration = file.Session.Duration
	}
	if file.Session.RememberDuration != 0 {
		c.Session.RememberDuration = file.Session.RememberDuration
	}
	c.Session.SecureCookie = c.Session.SecureCookie || file.Session.SecureCookie

	overrideString(&c.Log.Level, file.Log.Level)
	overrideString(&c.Log.Format, file.Log.Format)

	if file.BcryptCost != 0 {
		c.BcryptCost = file.BcryptCost
	}
	c.RunMigrations = c.RunMigrations || file.RunMigrations

	return nil
}

func overrideString(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

// Validate reports every missing or out-of-range setting at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Session.SecretKey == "" {
		errs = append(errs, errors.New("SESSION_SECRET_KEY is not set"))
	}
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid server port %d", c.ServerPort))
	}
	if c.DB.Driver != "postgres" && c.DB.Driver != "pgx" {
		errs = append(errs, fmt.Errorf("unsupported DB_DRIVER %q", c.DB.Driver))
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost))
	}

	return errors.Join(errs...)
}

// Package config loads application configuration from environment variables.
// A .env file in the working directory is read first when present; variables
// already set in the environment win.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Store backends selectable with APP_STORE.
const (
	StoreMySQL  = "mysql"
	StoreMemory = "memory"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.
type Config struct {
	Env         string // APP_ENV: dev, test, prod
	Port        string // APP_PORT
	DBUser      string // DB_USER
	DBPass      string // DB_PASS, empty allowed
	DBHost      string // DB_HOST
	DBPort      string // DB_PORT
	DBName      string // DB_NAME
	JWTSecret   string // JWT_SECRET signs session tokens
	BcryptCost  int    // BCRYPT_COST
	Store       string // APP_STORE: mysql or memory
	AutoMigrate bool   // DB_AUTO_MIGRATE applies migrations at startup
	AMQPURL     string // AMQP_URL or RABBITMQ_URL; empty disables events
	LogLevel    string // LOG_LEVEL

	// ADMIN_LOGIN and ADMIN_PASSWORD: the account cmd/seed provisions, and
	// the one created at startup with APP_STORE=memory.
	AdminLogin    string
	AdminPassword string
}

// IsDev reports whether the process runs in a development environment.
// Session cookies drop the Secure flag there.
func (c Config) IsDev() bool {
	switch strings.ToLower(c.Env) {
	case "dev", "development", "local", "test":
		return true
	}
	return false
}

// Load reads configuration from the environment.  Every missing or
// malformed required variable is reported in a single error so a broken
// deployment is fixed in one pass.
func Load() (Config, error) {
	_ = godotenv.Load()

	var p problems
	cfg := Config{
		Env:         p.must("APP_ENV"),
		Port:        p.must("APP_PORT"),
		JWTSecret:   p.must("JWT_SECRET"),
		Store:       strings.ToLower(envStr("APP_STORE", StoreMySQL)),
		AutoMigrate: envBool("DB_AUTO_MIGRATE", true),
		AMQPURL:     envStr("AMQP_URL", os.Getenv("RABBITMQ_URL")),
		LogLevel:    envStr("LOG_LEVEL", "info"),
		BcryptCost:  p.bcryptCost(),

		AdminLogin:    envStr("ADMIN_LOGIN", ""),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}
	switch cfg.Store {
	case StoreMySQL:
		p.database(&cfg)
	case StoreMemory:
	default:
		p.add(fmt.Sprintf("invalid APP_STORE %q (want mysql or memory)", cfg.Store))
	}
	return cfg, p.err()
}

// LoadDatabase reads only what the migrate and seed commands need: the DB_*
// variables, BCRYPT_COST, LOG_LEVEL and the ADMIN_* pair.
func LoadDatabase() (Config, error) {
	_ = godotenv.Load()

	var p problems
	cfg := Config{
		Store:      StoreMySQL,
		LogLevel:   envStr("LOG_LEVEL", "info"),
		BcryptCost: p.bcryptCost(),

		AdminLogin:    envStr("ADMIN_LOGIN", ""),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}
	p.database(&cfg)
	return cfg, p.err()
}

// problems collects configuration errors.
type problems []string

func (p *problems) add(msg string) { *p = append(*p, msg) }

func (p *problems) must(key string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		p.add("missing " + key)
	}
	return v
}

func (p *problems) database(cfg *Config) {
	cfg.DBUser = p.must("DB_USER")
	cfg.DBPass = os.Getenv("DB_PASS")
	cfg.DBHost = p.must("DB_HOST")
	cfg.DBPort = p.must("DB_PORT")
	cfg.DBName = p.must("DB_NAME")
}

func (p *problems) bcryptCost() int {
	s := os.Getenv("BCRYPT_COST")
	if s == "" {
		return 10
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 4 || n > 31 {
		p.add(fmt.Sprintf("invalid BCRYPT_COST %q", s))
		return 10
	}
	return n
}

func (p problems) err() error {
	if len(p) == 0 {
		return nil
	}
	return fmt.Errorf("config: %s", strings.Join(p, "; "))
}

package config

import (
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	gomysql "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Storage  StorageConfig  `yaml:"storage"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Auth     AuthConfig     `yaml:"auth"`
	Prefs    PrefsConfig    `yaml:"prefs"`
}

type LogConfig struct {
	Level      string `yaml:"level" env:"LOG_LEVEL"`
	Format     string `yaml:"format" env:"LOG_FORMAT"`
	File       string `yaml:"file" env:"LOG_FILE"`
	Console    bool   `yaml:"console"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

type ServerConfig struct {
	Port         int      `yaml:"port" env:"PORT"`
	AllowOrigins []string `yaml:"allow_origins" env:"ALLOW_ORIGINS"`
}

// StorageConfig selects the shared slot backend.
type StorageConfig struct {
	// Driver is one of memory, mysql, sqlite, pebble, redis.
	Driver       string        `yaml:"driver" env:"STORAGE_DRIVER"`
	Path         string        `yaml:"path" env:"STORAGE_PATH"`
	Namespace    string        `yaml:"namespace" env:"STORAGE_NAMESPACE"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"STORAGE_WRITE_TIMEOUT"`
	LoadTimeout  time.Duration `yaml:"load_timeout" env:"STORAGE_LOAD_TIMEOUT"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host" env:"DB_HOST"`
	Port     int    `yaml:"port" env:"DB_PORT"`
	User     string `yaml:"user" env:"DB_USER"`
	Password string `yaml:"password" env:"DB_PASS"`
	Name     string `yaml:"name" env:"DB_NAME"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB"`
}

type AuthConfig struct {
	JWTSecret  string        `yaml:"jwt_secret" env:"JWT_SECRET"`
	TokenTTL   time.Duration `yaml:"token_ttl"`
	DefaultPIN string        `yaml:"default_pin" env:"GM_PIN"`
}

// PrefsConfig points at the device-local preference file.
type PrefsConfig struct {
	File string `yaml:"file" env:"PREFS_FILE"`
}

func Load(configFile string) *Config {
	c := &Config{
		Server:   ServerConfig{Port: 9871, AllowOrigins: []string{"*"}},
		Log:      LogConfig{Level: "info", Format: "json", Console: true, MaxSizeMB: 100, MaxBackups: 3, MaxAgeDays: 30},
		Storage:  StorageConfig{Driver: "sqlite", Path: "data/chronik.db", Namespace: "wtm-s-", WriteTimeout: 5 * time.Second, LoadTimeout: 10 * time.Second},
		Database: DatabaseConfig{Port: 3306, Name: "chronik"},
		Redis:    RedisConfig{Addr: "localhost:6379"},
		Auth:     AuthConfig{JWTSecret: "chronik-secret-change-me", TokenTTL: 7 * 24 * time.Hour, DefaultPIN: "1234"},
		Prefs:    PrefsConfig{File: "data/prefs.yaml"},
	}

	paths := []string{"etc/config-dev.yaml", "/etc/chronik/config.yaml"}
	if configFile != "" {
		paths = []string{configFile}
	}
	for _, path := range paths {
		if data, err := os.ReadFile(path); err == nil {
			yaml.Unmarshal(data, c)
			break
		}
	}

	_ = godotenv.Load()
	if err := env.Parse(c); err != nil {
		fmt.Fprintf(os.Stderr, "config: ignoring env overrides: %v\n", err)
	}
	return c
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

func (c *Config) OpenGormDB() (*gorm.DB, error) {
	cfg := gomysql.NewConfig()
	cfg.User = c.Database.User
	cfg.Passwd = c.Database.Password
	cfg.Net = "tcp"
	cfg.Addr = fmt.Sprintf("%s:%d", c.Database.Host, c.Database.Port)
	cfg.DBName = c.Database.Name
	cfg.ParseTime = true

	connector, err := gomysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("create connector: %w", err)
	}
	sqlDB := sql.OpenDB(connector)
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}

	return gorm.Open(mysql.New(mysql.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
}

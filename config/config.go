package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Mail       MailConfig       `yaml:"mail"`
	Attendance AttendanceConfig `yaml:"attendance"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
}

// ServerConfig holds the HTTP server configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// MailConfig holds the SMTP settings for outbound lifecycle emails.
type MailConfig struct {
	Host               string        `yaml:"host"`
	Port               int           `yaml:"port"`
	Username           string        `yaml:"username"`
	Password           string        `yaml:"password"`
	From               string        `yaml:"from"`
	SendTimeoutSeconds int           `yaml:"send_timeout_seconds"`
	SendTimeout        time.Duration `yaml:"-"` // Ignored by YAML parser
}

// AttendanceConfig holds the policy knobs for the clock ledger and timecards.
type AttendanceConfig struct {
	Timezone               string        `yaml:"timezone"`
	LateGraceMinutes       int           `yaml:"late_grace_minutes"`
	EarlyLeaveGraceMinutes int           `yaml:"early_leave_grace_minutes"`
	OvertimeThresholdHours float64       `yaml:"overtime_threshold_hours"`
	LookupCacheTTLSeconds  int           `yaml:"lookup_cache_ttl_seconds"`
	LookupCacheTTL         time.Duration `yaml:"-"`
}

// WorkerPoolConfig holds the configuration for the notification worker pool.
type WorkerPoolConfig struct {
	Size      int `yaml:"size"`
	QueueSize int `yaml:"queue_size"`
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	if cfg.Mail.SendTimeoutSeconds <= 0 {
		cfg.Mail.SendTimeoutSeconds = 10
	}
	cfg.Mail.SendTimeout = time.Duration(cfg.Mail.SendTimeoutSeconds) * time.Second

	if cfg.Attendance.Timezone == "" {
		cfg.Attendance.Timezone = "UTC"
	}
	if cfg.Attendance.OvertimeThresholdHours <= 0 {
		cfg.Attendance.OvertimeThresholdHours = 8
	}
	if cfg.Attendance.LookupCacheTTLSeconds <= 0 {
		cfg.Attendance.LookupCacheTTLSeconds = 300
	}
	cfg.Attendance.LookupCacheTTL = time.Duration(cfg.Attendance.LookupCacheTTLSeconds) * time.Second

	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 60
	}

	if cfg.WorkerPool.Size <= 0 {
		log.Printf("worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}
	if cfg.WorkerPool.QueueSize <= 0 {
		cfg.WorkerPool.QueueSize = 64
	}

	return &cfg, nil
}

// Location resolves the configured attendance timezone, falling back to UTC.
func (a *AttendanceConfig) Location() *time.Location {
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		log.Printf("invalid attendance.timezone %q, falling back to UTC: %v", a.Timezone, err)
		return time.UTC
	}
	return loc
}

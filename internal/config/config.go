package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Database     DatabaseConfig  `yaml:"database"`
	Redis        RedisConfig     `yaml:"redis"`
	RabbitMQ     RabbitMQConfig  `yaml:"rabbitmq"`
	HTTP         HTTPConfig      `yaml:"http"`
	Platforms    PlatformsConfig `yaml:"platforms"`
	Retry        RetryConfig     `yaml:"retry"`
	StorageRetry RetryConfig     `yaml:"storage_retry"`
	Sync         SyncConfig      `yaml:"sync"`
	Identity     IdentityConfig  `yaml:"identity"`
	Health       HealthConfig    `yaml:"health"`
	LogLevel     string          `yaml:"log_level"`
}

type RabbitMQConfig struct {
	URL              string `yaml:"url"`
	Exchange         string `yaml:"exchange"`
	RoutingKey       string `yaml:"routing_key"`
	QueueName        string `yaml:"queue_name"`
	EventsRoutingKey string `yaml:"events_routing_key"`
	EventsQueueName  string `yaml:"events_queue_name"`
}

type DatabaseConfig struct {
	Driver          string        `yaml:"driver"`
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	DBName          string        `yaml:"dbname"`
	SSLMode         string        `yaml:"sslmode"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

type HTTPConfig struct {
	Addr        string `yaml:"addr"`
	MetricsPath string `yaml:"metrics_path"`
}

type PlatformsConfig struct {
	Zoom  PlatformConfig `yaml:"zoom"`
	Teams PlatformConfig `yaml:"teams"`
}

type PlatformConfig struct {
	BaseURL  string        `yaml:"base_url"`
	TokenURL string        `yaml:"token_url"`
	Timeout  time.Duration `yaml:"timeout"`
	PageSize int           `yaml:"page_size"`
	MaxPages int           `yaml:"max_pages"`
}

type RetryConfig struct {
	MaxAttempts    int           `yaml:"max_attempts"`
	InitialBackoff time.Duration `yaml:"initial_backoff"`
	MaxBackoff     time.Duration `yaml:"max_backoff"`
	Multiplier     float64       `yaml:"multiplier"`
}

type SyncConfig struct {
	Interval          time.Duration `yaml:"interval"`
	RunTimeout        time.Duration `yaml:"run_timeout"`
	BatchSize         int           `yaml:"batch_size"`
	MaxHistoricalDays int           `yaml:"max_historical_days"`
	PartialThreshold  float64       `yaml:"partial_threshold"`
	LateAfter         time.Duration `yaml:"late_after"`
	LeftEarlyBefore   time.Duration `yaml:"left_early_before"`
	MinPresence       time.Duration `yaml:"min_presence"`
	Workers           int           `yaml:"workers"`
}

// LeaseTTL is how long an in-progress mark protects a meeting before it is
// considered abandoned.
func (s SyncConfig) LeaseTTL() time.Duration {
	return 2 * s.RunTimeout
}

type IdentityConfig struct {
	ScoreThreshold int           `yaml:"score_threshold"`
	CacheTTL       time.Duration `yaml:"cache_ttl"`
}

type HealthConfig struct {
	StaleAfter     time.Duration `yaml:"stale_after"`
	WarningIssues  int           `yaml:"warning_issues"`
	CriticalIssues int           `yaml:"critical_issues"`
	RecentDays     int           `yaml:"recent_days"`
	RecentLimit    int           `yaml:"recent_limit"`
	CacheTTL       time.Duration `yaml:"cache_ttl"`
}

func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	return Parse(data)
}

// Parse expands ${VAR} references and applies defaults.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.setDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "postgres", "memory":
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	if c.Sync.PartialThreshold <= 0 || c.Sync.PartialThreshold > 1 {
		return fmt.Errorf("sync.partial_threshold must be in (0, 1], got %v", c.Sync.PartialThreshold)
	}
	if c.Health.CriticalIssues < c.Health.WarningIssues {
		return fmt.Errorf("health.critical_issues (%d) must not be below warning_issues (%d)",
			c.Health.CriticalIssues, c.Health.WarningIssues)
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.Database.Driver == "" {
		c.Database.Driver = "postgres"
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 20
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Database.ConnMaxLifetime == 0 {
		c.Database.ConnMaxLifetime = 30 * time.Minute
	}
	if c.RabbitMQ.Exchange == "" {
		c.RabbitMQ.Exchange = "meeting_sync"
	}
	if c.RabbitMQ.RoutingKey == "" {
		c.RabbitMQ.RoutingKey = "sync.requested"
	}
	if c.RabbitMQ.QueueName == "" {
		c.RabbitMQ.QueueName = "meeting_sync_tasks"
	}
	if c.RabbitMQ.EventsRoutingKey == "" {
		c.RabbitMQ.EventsRoutingKey = "sync.run.completed"
	}
	if c.RabbitMQ.EventsQueueName == "" {
		c.RabbitMQ.EventsQueueName = "meeting_sync_events"
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	if c.HTTP.MetricsPath == "" {
		c.HTTP.MetricsPath = "/metrics"
	}
	c.Platforms.Zoom.setDefaults(300)
	c.Platforms.Teams.setDefaults(50)
	c.Retry.setDefaults(3, time.Second, 30*time.Second)
	c.StorageRetry.setDefaults(3, 200*time.Millisecond, 2*time.Second)
	if c.Sync.Interval == 0 {
		c.Sync.Interval = 15 * time.Minute
	}
	if c.Sync.RunTimeout == 0 {
		c.Sync.RunTimeout = 5 * time.Minute
	}
	if c.Sync.BatchSize == 0 {
		c.Sync.BatchSize = 50
	}
	if c.Sync.MaxHistoricalDays == 0 {
		c.Sync.MaxHistoricalDays = 30
	}
	if c.Sync.PartialThreshold == 0 {
		c.Sync.PartialThreshold = 0.5
	}
	if c.Sync.LateAfter == 0 {
		c.Sync.LateAfter = 10 * time.Minute
	}
	if c.Sync.LeftEarlyBefore == 0 {
		c.Sync.LeftEarlyBefore = 10 * time.Minute
	}
	if c.Sync.MinPresence == 0 {
		c.Sync.MinPresence = time.Minute
	}
	if c.Sync.Workers == 0 {
		c.Sync.Workers = 4
	}
	if c.Identity.ScoreThreshold == 0 {
		c.Identity.ScoreThreshold = 100
	}
	if c.Identity.CacheTTL == 0 {
		c.Identity.CacheTTL = 5 * time.Minute
	}
	if c.Health.StaleAfter == 0 {
		c.Health.StaleAfter = 24 * time.Hour
	}
	if c.Health.WarningIssues == 0 {
		c.Health.WarningIssues = 1
	}
	if c.Health.CriticalIssues == 0 {
		c.Health.CriticalIssues = 3
	}
	if c.Health.RecentDays == 0 {
		c.Health.RecentDays = 7
	}
	if c.Health.RecentLimit == 0 {
		c.Health.RecentLimit = 200
	}
	if c.Health.CacheTTL == 0 {
		c.Health.CacheTTL = time.Minute
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

func (p *PlatformConfig) setDefaults(pageSize int) {
	if p.Timeout == 0 {
		p.Timeout = 30 * time.Second
	}
	if p.PageSize == 0 {
		p.PageSize = pageSize
	}
	if p.MaxPages == 0 {
		p.MaxPages = 50
	}
}

func (r *RetryConfig) setDefaults(attempts int, initial, max time.Duration) {
	if r.MaxAttempts == 0 {
		r.MaxAttempts = attempts
	}
	if r.InitialBackoff == 0 {
		r.InitialBackoff = initial
	}
	if r.MaxBackoff == 0 {
		r.MaxBackoff = max
	}
	if r.Multiplier == 0 {
		r.Multiplier = 2
	}
}

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type AppConfig struct {
	API      *APIConfig      `mapstructure:"api"`
	Gin      *GinConfig      `mapstructure:"gin"`
	Postgres *PostgresConfig `mapstructure:"postgres"`
	Store    *StoreConfig    `mapstructure:"store"`
	Market   *MarketConfig   `mapstructure:"market"`
	Cron     *CronConfig     `mapstructure:"cron"`
	Notify   *NotifyConfig   `mapstructure:"notify"`
	Log      *LogConfig      `mapstructure:"log"`
}

type APIConfig struct {
	Environment        string   `mapstructure:"environment"`
	Port               string   `mapstructure:"port"`
	BaseURL            string   `mapstructure:"base_url"`
	AllowedCORSDomains []string `mapstructure:"allowed_cors_domains"`
	// CronSigningKey protects the cron trigger and item creation. Empty disables the check.
	CronSigningKey          string `mapstructure:"cron_signing_key"`
	CronSigningKeyParameter string `mapstructure:"cron_signing_key_parameter"`
}

type GinConfig struct {
	Mode string `mapstructure:"mode"`
}

type PostgresConfig struct {
	// URL, when set, replaces the discrete connection fields below.
	URL      string `mapstructure:"url"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	// Password is the privileged store credential. It stays on the server.
	Password          string `mapstructure:"password"`
	PasswordParameter string `mapstructure:"password_parameter"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
	TimeZone string `mapstructure:"timezone"`

	CreateDatabase  bool          `mapstructure:"create_database"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN returns a connection string understood by both gorm and pgx.
func (c *PostgresConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}

	return c.dsn(c.DBName)
}

// AdminDSN connects to the maintenance database of the same server.
func (c *PostgresConfig) AdminDSN() string {
	return c.dsn("postgres")
}

func (c *PostgresConfig) dsn(dbName string) string {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, dbName, c.SSLMode,
	)
	if c.TimeZone != "" {
		dsn += fmt.Sprintf(" TimeZone=%s", c.TimeZone)
	}

	return dsn
}

// StoreConfig is what browsers may know about the store.
type StoreConfig struct {
	URL       string `mapstructure:"url"`
	PublicKey string `mapstructure:"public_key"`
}

const (
	CollectModeBlind  = "blind"
	CollectModeAtomic = "atomic"
)

type MarketConfig struct {
	Seed          bool   `mapstructure:"seed"`
	CollectMode   string `mapstructure:"collect_mode"`
	RecordHistory bool   `mapstructure:"record_history"`
}

type CronConfig struct {
	// Interval of the in-process demand job. Zero leaves scheduling to the external trigger.
	Interval time.Duration `mapstructure:"interval"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type NotifyConfig struct {
	Channel           string        `mapstructure:"channel"`
	ReconnectInterval time.Duration `mapstructure:"reconnect_interval"`
	SubscriberBuffer  int           `mapstructure:"subscriber_buffer"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputFile string `mapstructure:"output_file"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.environment", "dev")
	v.SetDefault("api.port", "8080")
	v.SetDefault("api.base_url", "localhost:8080")
	v.SetDefault("api.cron_signing_key", "")
	v.SetDefault("api.cron_signing_key_parameter", "")
	v.SetDefault("gin.mode", "debug")
	v.SetDefault("postgres.url", "")
	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "postgres")
	v.SetDefault("postgres.password", "")
	v.SetDefault("postgres.password_parameter", "")
	v.SetDefault("postgres.dbname", "camp_economy")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("store.url", "")
	v.SetDefault("store.public_key", "")
	v.SetDefault("market.collect_mode", CollectModeBlind)
	v.SetDefault("cron.timeout", 10*time.Second)
	v.SetDefault("notify.channel", "market_updates")
	v.SetDefault("notify.reconnect_interval", 3*time.Second)
	v.SetDefault("notify.subscriber_buffer", 64)
	v.SetDefault("log.level", "info")
}

func newViper(path string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(path)

	// API_PORT overrides api.port, POSTGRES_PASSWORD overrides postgres.password, etc.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("postgres.url", "DATABASE_URL")
	setDefaults(v)

	return v
}

func decode(v *viper.Viper) (*AppConfig, error) {
	conf := &AppConfig{}
	if err := v.Unmarshal(conf); err != nil {
		return nil, fmt.Errorf("v.Unmarshal -> %w", err)
	}

	if err := conf.validate(); err != nil {
		return nil, err
	}

	return conf, nil
}

func (c *AppConfig) validate() error {
	switch c.Market.CollectMode {
	case CollectModeBlind, CollectModeAtomic:
	default:
		return fmt.Errorf("invalid market.collect_mode %q", c.Market.CollectMode)
	}

	if c.Cron.Interval < 0 {
		return fmt.Errorf("invalid cron.interval %v", c.Cron.Interval)
	}

	return nil
}

func Load(path string) (*AppConfig, error) {
	v := newViper(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("v.ReadInConfig -> %w", err)
	}

	return decode(v)
}

// LoadAndWatch loads the config at path and calls onChange with the freshly
// decoded config every time the file is rewritten. Invalid rewrites are
// logged and skipped.
func LoadAndWatch(path string, onChange func(*AppConfig)) (*AppConfig, error) {
	v := newViper(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("v.ReadInConfig -> %w", err)
	}

	conf, err := decode(v)
	if err != nil {
		return nil, err
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		updated, err := decode(v)
		if err != nil {
			zap.L().Warn("ignoring invalid config change", zap.String("file", e.Name), zap.Error(err))
			return
		}

		zap.L().Info("config reloaded", zap.String("file", e.Name), zap.String("op", e.Op.String()))
		onChange(updated)
	})
	v.WatchConfig()

	return conf, nil
}

package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"assetfin-backend/internal/infrastructure/logging"

	"github.com/spf13/viper"
)

const envPrefix = "ASSETFIN"

type Config struct {
	App         AppConfig         `mapstructure:"app"`
	MySQL       MySQLConfig       `mapstructure:"mysql"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Log         logging.Config    `mapstructure:"log"`
	Idempotency IdempotencyConfig `mapstructure:"idempotency"`
	Cache       CacheConfig       `mapstructure:"cache"`
	Kafka       KafkaConfig       `mapstructure:"kafka"`
	Provider    ProviderConfig    `mapstructure:"provider"`
	Refresh     RefreshConfig     `mapstructure:"refresh"`
	Migrations  MigrationsConfig  `mapstructure:"migrations"`
}

type AppConfig struct {
	Port string `mapstructure:"port"`
}

type MySQLConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
	DB   string `mapstructure:"db"`
	User string `mapstructure:"user"`
	Pass string `mapstructure:"pass"`

	MaxOpenConns  int           `mapstructure:"max_open_conns"`
	MaxIdleConns  int           `mapstructure:"max_idle_conns"`
	SlowThreshold time.Duration `mapstructure:"slow_threshold"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	DB       int    `mapstructure:"db"`
	Password string `mapstructure:"password"`
}

type IdempotencyConfig struct {
	TTLSeconds int `mapstructure:"ttl_seconds"`
}

type CacheConfig struct {
	SeriesTTL time.Duration `mapstructure:"series_ttl"`
}

// KafkaConfig with no brokers disables event publishing.
type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type ProviderConfig struct {
	EquipmentURL string        `mapstructure:"equipment_url"`
	VehicleURL   string        `mapstructure:"vehicle_url"`
	EquipmentKey string        `mapstructure:"equipment_key"`
	VehicleKey   string        `mapstructure:"vehicle_key"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// RefreshConfig schedules the monthly valuation refresh at Day/Hour UTC.
type RefreshConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Day     int  `mapstructure:"day"`
	Hour    int  `mapstructure:"hour"`
}

type MigrationsConfig struct {
	Path      string `mapstructure:"path"`
	OnStartup bool   `mapstructure:"on_startup"`
}

// newViper maps nested keys to env vars, e.g. mysql.host -> ASSETFIN_MYSQL_HOST.
// Every key gets a default so AutomaticEnv can see it during Unmarshal.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("app.port", "8080")
	v.SetDefault("mysql.host", "mysql")
	v.SetDefault("mysql.port", "3306")
	v.SetDefault("mysql.db", "assetfin")
	v.SetDefault("mysql.user", "assetfin")
	v.SetDefault("mysql.pass", "assetfin")
	v.SetDefault("mysql.max_open_conns", 30)
	v.SetDefault("mysql.max_idle_conns", 10)
	v.SetDefault("mysql.slow_threshold", "500ms")
	v.SetDefault("redis.addr", "redis:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.password", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output_paths", []string{"stdout"})
	v.SetDefault("idempotency.ttl_seconds", 300)
	v.SetDefault("cache.series_ttl", "10m")
	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", "assetfin.events")
	v.SetDefault("provider.equipment_url", "https://equipmentwatchapi.com/v1")
	v.SetDefault("provider.vehicle_url", "https://pricedigestsapi.com/v1")
	v.SetDefault("provider.equipment_key", "")
	v.SetDefault("provider.vehicle_key", "")
	v.SetDefault("provider.timeout", "15s")
	v.SetDefault("refresh.enabled", true)
	v.SetDefault("refresh.day", 1)
	v.SetDefault("refresh.hour", 1)
	v.SetDefault("migrations.path", "migrations")
	v.SetDefault("migrations.on_startup", true)
	return v
}

// Load reads configPath when given, then applies ASSETFIN_* overrides.
func Load(configPath string) (*Config, error) {
	v := newViper()
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %q: %w", configPath, err)
		}
	}
	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	if c.MySQL.Host == "" || c.MySQL.Port == "" || c.MySQL.DB == "" || c.MySQL.User == "" {
		return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
	}
	// ensure port is valid
	if _, err := net.LookupPort("tcp", c.MySQL.Port); err != nil {
		return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQL.Port, err)
	}
	if c.App.Port == "" {
		return errors.New("missing APP_PORT")
	}
	if c.Refresh.Day < 1 || c.Refresh.Day > 28 {
		return fmt.Errorf("refresh day %d outside 1..28", c.Refresh.Day)
	}
	if c.Refresh.Hour < 0 || c.Refresh.Hour > 23 {
		return fmt.Errorf("refresh hour %d outside 0..23", c.Refresh.Hour)
	}
	return nil
}

func (c *Config) IdempotencyTTL() time.Duration {
	return time.Duration(c.Idempotency.TTLSeconds) * time.Second
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQL.Host, c.MySQL.Port) }

func (c *Config) MySQLDSN() string {
	// multiStatements=true is handy for migrations; parseTime needed for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?multiStatements=true&parseTime=true&charset=utf8mb4,utf8",
		c.MySQL.User, c.MySQL.Pass, c.mysqlAddr(), c.MySQL.DB)
}

// MigrateURL is the DSN in golang-migrate's mysql:// form.
func (c *Config) MigrateURL() string {
	return fmt.Sprintf("mysql://%s:%s@tcp(%s)/%s?multiStatements=true",
		c.MySQL.User, c.MySQL.Pass, c.mysqlAddr(), c.MySQL.DB)
}

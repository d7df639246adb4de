package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	NATS       NATSConfig       `mapstructure:"nats"`
	Valkey     ValkeyConfig     `mapstructure:"valkey"`
	Telemetry  TelemetryConfig  `mapstructure:"telemetry"`
	Temporal   TemporalConfig   `mapstructure:"temporal"`
	Clustering ClusteringConfig `mapstructure:"clustering"`
	Navigation NavigationConfig `mapstructure:"navigation"`
	GPS        GPSConfig        `mapstructure:"gps"`
	Log        LogConfig        `mapstructure:"log"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type NATSConfig struct {
	URL string `mapstructure:"url"`
}

type ValkeyConfig struct {
	Addr string `mapstructure:"addr"`
}

type TelemetryConfig struct {
	ServiceName  string `mapstructure:"service_name"`
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	Enabled      bool   `mapstructure:"enabled"`
}

type TemporalConfig struct {
	HostPort  string `mapstructure:"host_port"`
	Namespace string `mapstructure:"namespace"`
	TaskQueue string `mapstructure:"task_queue"`
}

// ClusteringConfig tunes marker clustering. Radii are in km.
type ClusteringConfig struct {
	MinZoomForIndividual float64 `mapstructure:"min_zoom_for_individual"`
	RadiusLow            float64 `mapstructure:"radius_low"`
	RadiusMedium         float64 `mapstructure:"radius_medium"`
	RadiusHigh           float64 `mapstructure:"radius_high"`
	Padding              float64 `mapstructure:"padding"`
	PerformanceTarget    string  `mapstructure:"performance_target"`
	CacheTTL             int     `mapstructure:"cache_ttl"` // seconds
	MaxSpots             int     `mapstructure:"max_spots"`
}

type NavigationConfig struct {
	Window          int    `mapstructure:"window"`
	ResetGapSeconds int    `mapstructure:"reset_gap_seconds"`
	Source          string `mapstructure:"source"` // serial, mqtt or nats
}

// ResetGap is the silence after which a vessel's stream restarts.
func (n NavigationConfig) ResetGap() time.Duration {
	return time.Duration(n.ResetGapSeconds) * time.Second
}

type GPSConfig struct {
	SerialPort   string `mapstructure:"serial_port"`
	BaudRate     int    `mapstructure:"baud_rate"`
	MQTTBroker   string `mapstructure:"mqtt_broker"`
	MQTTTopic    string `mapstructure:"mqtt_topic"`
	MQTTClientID string `mapstructure:"mqtt_client_id"`
	VesselID     string `mapstructure:"vessel_id"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()
	setDefaults(v, service)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: GEOCORE_DATABASE_HOST → database.host
	v.SetEnvPrefix("GEOCORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper, service string) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "geocore")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "geocore")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.otlp_endpoint", "localhost:4317")
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("temporal.host_port", "localhost:7233")
	v.SetDefault("temporal.namespace", "default")
	v.SetDefault("temporal.task_queue", "marker-warmup")
	v.SetDefault("clustering.min_zoom_for_individual", 12)
	v.SetDefault("clustering.radius_low", 50)
	v.SetDefault("clustering.radius_medium", 20)
	v.SetDefault("clustering.radius_high", 10)
	v.SetDefault("clustering.padding", 0.1)
	v.SetDefault("clustering.performance_target", "balanced")
	v.SetDefault("clustering.cache_ttl", 60)
	v.SetDefault("clustering.max_spots", 5000)
	v.SetDefault("navigation.window", 5)
	v.SetDefault("navigation.reset_gap_seconds", 120)
	v.SetDefault("navigation.source", "nats")
	v.SetDefault("gps.serial_port", "/dev/ttyUSB0")
	v.SetDefault("gps.baud_rate", 9600)
	v.SetDefault("gps.mqtt_broker", "tcp://localhost:1883")
	v.SetDefault("gps.mqtt_topic", "geocore/fixes/+")
	v.SetDefault("gps.mqtt_client_id", service)
	v.SetDefault("gps.vessel_id", "local")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Database.Host == "" {
		errs = append(errs, "database.host is required")
	}
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", c.Database.Port))
	}
	if c.Database.User == "" {
		errs = append(errs, "database.user is required")
	}
	if c.Database.DBName == "" {
		errs = append(errs, "database.dbname is required")
	}
	if c.NATS.URL == "" {
		errs = append(errs, "nats.url is required")
	}
	if c.Valkey.Addr == "" {
		errs = append(errs, "valkey.addr is required")
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if c.Temporal.TaskQueue == "" {
		errs = append(errs, "temporal.task_queue is required")
	}

	cl := c.Clustering
	if cl.RadiusLow <= 0 || cl.RadiusMedium <= 0 || cl.RadiusHigh <= 0 {
		errs = append(errs, "clustering radii must be positive")
	} else if cl.RadiusLow < cl.RadiusMedium || cl.RadiusMedium < cl.RadiusHigh {
		errs = append(errs, fmt.Sprintf("clustering radii must shrink with zoom, got low=%g medium=%g high=%g",
			cl.RadiusLow, cl.RadiusMedium, cl.RadiusHigh))
	}
	if cl.MinZoomForIndividual <= 0 {
		errs = append(errs, "clustering.min_zoom_for_individual must be positive")
	}
	if cl.Padding < 0 {
		errs = append(errs, "clustering.padding must not be negative")
	}
	if cl.CacheTTL < 0 {
		errs = append(errs, "clustering.cache_ttl must not be negative")
	}

	if c.Navigation.Window <= 0 {
		errs = append(errs, "navigation.window must be positive")
	}
	if c.Navigation.ResetGapSeconds < 0 {
		errs = append(errs, "navigation.reset_gap_seconds must not be negative")
	}
	switch c.Navigation.Source {
	case "serial", "mqtt", "nats":
	default:
		errs = append(errs, fmt.Sprintf("navigation.source must be serial, mqtt or nats, got %q", c.Navigation.Source))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

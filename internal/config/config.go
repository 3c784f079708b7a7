// Package config loads process settings from configs/config.yml, with every key
// overridable through ROOMHUB_<SECTION>_<KEY> environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "ROOMHUB"

// Dedup modes for schedule firings.
const (
	DedupNone   = "none"
	DedupMemory = "memory"
	DedupRedis  = "redis"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	DB         DBConfig         `mapstructure:"db"`
	Dispatch   DispatchConfig   `mapstructure:"dispatch"`
	ConfigPush ConfigPushConfig `mapstructure:"config_push"`
	Schedule   ScheduleConfig   `mapstructure:"schedule"`
	Redis      RedisConfig      `mapstructure:"redis"`
	MQTT       MQTTConfig       `mapstructure:"mqtt"`
	InfluxDB   InfluxDBConfig   `mapstructure:"influxdb"`
	Camera     CameraConfig     `mapstructure:"camera"`
}

type ServerConfig struct {
	Port              string        `mapstructure:"port"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type DBConfig struct {
	Path string `mapstructure:"path"`
}

type DispatchConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
	Path    string        `mapstructure:"path"`
}

type ConfigPushConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
	Path    string        `mapstructure:"path"`
}

type ScheduleConfig struct {
	// Timezone is an IANA name; empty means the process local zone.
	Timezone string `mapstructure:"timezone"`
	Dedup    string `mapstructure:"dedup"`
}

type RedisConfig struct {
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

type MQTTConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Broker      string `mapstructure:"broker"`
	ClientID    string `mapstructure:"client_id"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	TopicPrefix string `mapstructure:"topic_prefix"`
	QoS         int    `mapstructure:"qos"`
}

type InfluxDBConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
	Token   string `mapstructure:"token"`
	Org     string `mapstructure:"org"`
	Bucket  string `mapstructure:"bucket"`
}

type CameraConfig struct {
	Path            string        `mapstructure:"path"`
	ViewerBuffer    int           `mapstructure:"viewer_buffer"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	MaxMessageBytes int64         `mapstructure:"max_message_bytes"`
	PongWait        time.Duration `mapstructure:"pong_wait"`
}

// defaults also registers every key, which AutomaticEnv needs to see env-only values.
var defaults = map[string]any{
	"server.port":                "8080",
	"server.read_header_timeout": 10 * time.Second,
	"server.write_timeout":       10 * time.Second,
	"server.idle_timeout":        60 * time.Second,
	"server.shutdown_timeout":    10 * time.Second,

	"log.level":  "info",
	"log.format": "console",

	"db.path": "roomhub.db",

	"dispatch.timeout":    3 * time.Second,
	"dispatch.path":       "/control",
	"config_push.timeout": 5 * time.Second,
	"config_push.path":    "/config",

	"schedule.timezone": "",
	"schedule.dedup":    DedupNone,

	"redis.addr":       "localhost:6379",
	"redis.password":   "",
	"redis.db":         0,
	"redis.key_prefix": "roomhub:fired:",

	"mqtt.enabled":      false,
	"mqtt.broker":       "tcp://localhost:1883",
	"mqtt.client_id":    "roomhub",
	"mqtt.username":     "",
	"mqtt.password":     "",
	"mqtt.topic_prefix": "roomhub",
	"mqtt.qos":          0,

	"influxdb.enabled": false,
	"influxdb.url":     "http://localhost:8086",
	"influxdb.token":   "",
	"influxdb.org":     "",
	"influxdb.bucket":  "",

	"camera.path":              "/ws/camera",
	"camera.viewer_buffer":     4,
	"camera.write_timeout":     5 * time.Second,
	"camera.max_message_bytes": 1 << 20,
	"camera.pong_wait":         60 * time.Second,
}

// Load reads the config file at path, or configs/config.yml when path is empty.
// A missing file in the default location is not an error; defaults and env apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath("configs") // configs/config.yml
		v.SetConfigName("config")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the process cannot start with.
func (c *Config) Validate() error {
	var errs []error
	positive := map[string]time.Duration{
		"server.read_header_timeout": c.Server.ReadHeaderTimeout,
		"server.write_timeout":       c.Server.WriteTimeout,
		"server.idle_timeout":        c.Server.IdleTimeout,
		"server.shutdown_timeout":    c.Server.ShutdownTimeout,
		"dispatch.timeout":           c.Dispatch.Timeout,
		"config_push.timeout":        c.ConfigPush.Timeout,
		"camera.write_timeout":       c.Camera.WriteTimeout,
		"camera.pong_wait":           c.Camera.PongWait,
	}
	for key, d := range positive {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %s", key, d))
		}
	}
	if c.Server.Port == "" {
		errs = append(errs, errors.New("server.port is required"))
	}
	if c.DB.Path == "" {
		errs = append(errs, errors.New("db.path is required"))
	}
	if c.Camera.ViewerBuffer <= 0 {
		errs = append(errs, fmt.Errorf("camera.viewer_buffer must be positive, got %d", c.Camera.ViewerBuffer))
	}
	if c.Camera.MaxMessageBytes <= 0 {
		errs = append(errs, fmt.Errorf("camera.max_message_bytes must be positive, got %d", c.Camera.MaxMessageBytes))
	}
	if _, err := c.Schedule.Location(); err != nil {
		errs = append(errs, err)
	}

	switch c.Schedule.Dedup {
	case DedupNone, DedupMemory:
	case DedupRedis:
		if c.Redis.Addr == "" {
			errs = append(errs, errors.New("redis.addr is required when schedule.dedup is redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown schedule.dedup %q (want none, memory or redis)", c.Schedule.Dedup))
	}

	if c.MQTT.Enabled {
		if c.MQTT.Broker == "" {
			errs = append(errs, errors.New("mqtt.broker is required when mqtt is enabled"))
		}
		if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
			errs = append(errs, fmt.Errorf("mqtt.qos must be 0, 1 or 2, got %d", c.MQTT.QoS))
		}
	}
	if c.InfluxDB.Enabled && (c.InfluxDB.URL == "" || c.InfluxDB.Org == "" || c.InfluxDB.Bucket == "") {
		errs = append(errs, errors.New("influxdb.url, influxdb.org and influxdb.bucket are required when influxdb is enabled"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// Location resolves the schedule time zone.
func (s ScheduleConfig) Location() (*time.Location, error) {
	if s.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return nil, fmt.Errorf("schedule.timezone: %w", err)
	}
	return loc, nil
}

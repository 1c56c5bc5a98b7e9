// Package config loads settings for the xbeemon command.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// SerialConfig selects and configures the port the module is attached to.
type SerialConfig struct {
	Port        string        `mapstructure:"port"`
	Baud        int           `mapstructure:"baud"`
	ReadTimeout time.Duration `mapstructure:"readTimeout"`
}

// DeviceConfig controls how the module is brought into API mode.
type DeviceConfig struct {
	// CommandMode switches a module in transparent mode to API mode at
	// startup using +++ / ATAP1 / ATCN.
	CommandMode bool   `mapstructure:"commandMode"`
	CommandChar string `mapstructure:"commandChar"`
	GuardTime   uint16 `mapstructure:"guardTime"` // ms
	RxCapacity  int    `mapstructure:"rxCapacity"`
}

type MonitorConfig struct {
	PollInterval time.Duration `mapstructure:"pollInterval"`
}

// LumberjackConfig configures log file rotation.
type LumberjackConfig struct {
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"maxSize"`
	MaxBackups int    `mapstructure:"maxBackups"`
	MaxAgeDays int    `mapstructure:"maxAge"`
	Compress   bool   `mapstructure:"compress"`
}

// LoggingConfig sets level and output. An empty File.Filename logs to stdout
// only.
type LoggingConfig struct {
	Level  string           `mapstructure:"level"`
	Format string           `mapstructure:"format"`
	File   LumberjackConfig `mapstructure:"file"`
}

type HTTPConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"readTimeout"`
	WriteTimeout    time.Duration `mapstructure:"writeTimeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdownTimeout"`
}

type MetricsConfig struct {
	Enable bool   `mapstructure:"enable"`
	Path   string `mapstructure:"path"`
}

type Config struct {
	Serial  SerialConfig  `mapstructure:"serial"`
	Device  DeviceConfig  `mapstructure:"device"`
	Monitor MonitorConfig `mapstructure:"monitor"`
	Logging LoggingConfig `mapstructure:"logging"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// flag name -> config key
var flagKeys = map[string]string{
	"port":         "serial.port",
	"baud":         "serial.baud",
	"command-mode": "device.commandMode",
	"log-level":    "logging.level",
	"log-format":   "logging.format",
	"http-addr":    "http.addr",
}

// RegisterFlags adds the command line overrides Load understands to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "path to a YAML config file")
	fs.String("port", "", "serial port the module is attached to")
	fs.Int("baud", 0, "serial baud rate")
	fs.Bool("command-mode", false, "switch the module to API mode at startup")
	fs.String("log-level", "", "debug, info, warn or error")
	fs.String("log-format", "", "json or console")
	fs.String("http-addr", "", "status server listen address")
}

// Load reads configuration from defaults, the YAML file at path, XBEE_
// environment variables and flags in fs, later sources winning. Without a
// path it looks for configs/xbeemon.yaml and carries on without one. fs may
// be nil; only flags the user actually set override other sources.
func Load(path string, fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.SetConfigName("xbeemon")
		v.SetConfigType("yaml")
	}

	setDefaults(v)

	v.SetEnvPrefix("XBEE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("serial.port", "/dev/ttyUSB0")
	v.SetDefault("serial.baud", 9600)
	v.SetDefault("serial.readTimeout", "100ms")

	v.SetDefault("device.commandMode", false)
	v.SetDefault("device.commandChar", "+")
	v.SetDefault("device.guardTime", 1000)
	v.SetDefault("device.rxCapacity", 512)

	v.SetDefault("monitor.pollInterval", "50ms")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.file.filename", "")
	v.SetDefault("logging.file.maxSize", 100)
	v.SetDefault("logging.file.maxBackups", 7)
	v.SetDefault("logging.file.maxAge", 30)
	v.SetDefault("logging.file.compress", true)

	v.SetDefault("http.addr", ":9109")
	v.SetDefault("http.readTimeout", "5s")
	v.SetDefault("http.writeTimeout", "10s")
	v.SetDefault("http.shutdownTimeout", "5s")

	v.SetDefault("metrics.enable", true)
	v.SetDefault("metrics.path", "/metrics")
}

// Validate rejects settings the driver cannot work with.
func (c *Config) Validate() error {
	if c.Serial.Port == "" {
		return errors.New("config: serial.port is required")
	}
	if c.Serial.Baud <= 0 {
		return fmt.Errorf("config: invalid serial.baud %d", c.Serial.Baud)
	}
	if len(c.Device.CommandChar) != 1 {
		return fmt.Errorf("config: device.commandChar must be one byte, got %q", c.Device.CommandChar)
	}
	if c.Device.RxCapacity < 16 {
		return fmt.Errorf("config: device.rxCapacity %d too small", c.Device.RxCapacity)
	}
	if c.Monitor.PollInterval <= 0 {
		return fmt.Errorf("config: invalid monitor.pollInterval %s", c.Monitor.PollInterval)
	}
	return nil
}

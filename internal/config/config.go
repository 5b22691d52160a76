// Package config loads daemon configuration from flags, environment and an
// optional config file.
//
// Precedence, highest first: command-line flags, DHTDISPLAY_* environment
// variables, the file named by --config, built-in defaults.
package config

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sweeney/dht-display/internal/app"
	"github.com/sweeney/dht-display/internal/debounce"
	"github.com/sweeney/dht-display/internal/dht"
	"github.com/sweeney/dht-display/internal/gpio"
	"github.com/sweeney/dht-display/internal/lcd"
	"github.com/sweeney/dht-display/internal/logger"
)

// EnvPrefix prefixes every environment variable.
const EnvPrefix = "DHTDISPLAY"

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid configuration")

// Config is the daemon configuration.
type Config struct {
	LogLevel string

	Sensor    string
	Chip      string
	PinSensor int
	PinButton int

	I2CBus     string // empty selects the first bus
	LCDAddress int
	LCDCols    int
	LCDRows    int

	Poll      time.Duration
	Debounce  time.Duration
	Resample  time.Duration
	Backlight time.Duration
	Heartbeat time.Duration // 0 disables

	Broker   string // empty disables MQTT
	HTTPAddr string // empty disables the status server

	// Once samples the sensor, prints the reading and exits.
	Once bool
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("dht-display", pflag.ContinueOnError)
	fs.String("config", "", "config file (yaml, toml or json)")
	fs.String("log-level", logger.InfoLevel, "log level: debug, info, warn, error")

	fs.String("sensor", dht.DHT22.String(), "sensor variant: DHT11, DHT22, AM2301")
	fs.String("chip", gpio.DefaultChip, "GPIO chip")
	fs.Int("pin-sensor", gpio.DefaultPinSensor, "GPIO offset of the sensor data line")
	fs.Int("pin-button", gpio.DefaultPinButton, "GPIO offset of the button")

	fs.String("i2c-bus", "", "I2C bus for the LCD (empty for the first bus)")
	fs.Int("lcd-address", lcd.DefaultAddress, "I2C address of the LCD backpack")
	fs.Int("lcd-cols", 20, "LCD columns")
	fs.Int("lcd-rows", 4, "LCD rows")

	fs.Duration("poll", 5*time.Millisecond, "main loop polling interval")
	fs.Duration("debounce", debounce.DefaultWindowMs*time.Millisecond, "button debounce window")
	fs.Duration("resample", app.DefaultResampleMs*time.Millisecond, "sensor resample period")
	fs.Duration("backlight", app.DefaultBacklightMs*time.Millisecond, "backlight inactivity timeout")
	fs.Duration("heartbeat", 15*time.Minute, "heartbeat interval (0 to disable)")

	fs.String("broker", "tcp://192.168.1.200:1883", "MQTT broker address (empty to disable)")
	fs.String("http", ":80", "HTTP status address (empty to disable)")

	fs.Bool("once", false, "sample the sensor once, print the reading and exit")
	return fs
}

// Load parses args (without the program name) and merges environment and
// config file values. It returns pflag.ErrHelp when --help was given.
func Load(args []string) (*Config, error) {
	fs := newFlagSet()
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("bind flags: %w", err)
	}

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{
		LogLevel:   v.GetString("log-level"),
		Sensor:     v.GetString("sensor"),
		Chip:       v.GetString("chip"),
		PinSensor:  v.GetInt("pin-sensor"),
		PinButton:  v.GetInt("pin-button"),
		I2CBus:     v.GetString("i2c-bus"),
		LCDAddress: v.GetInt("lcd-address"),
		LCDCols:    v.GetInt("lcd-cols"),
		LCDRows:    v.GetInt("lcd-rows"),
		Poll:       v.GetDuration("poll"),
		Debounce:   v.GetDuration("debounce"),
		Resample:   v.GetDuration("resample"),
		Backlight:  v.GetDuration("backlight"),
		Heartbeat:  v.GetDuration("heartbeat"),
		Broker:     v.GetString("broker"),
		HTTPAddr:   v.GetString("http"),
		Once:       v.GetBool("once"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges and names.
func (c *Config) Validate() error {
	if !logger.ValidLevel(c.LogLevel) {
		return fmt.Errorf("%w: log level %q", ErrInvalid, c.LogLevel)
	}
	if _, err := dht.ParseVariant(c.Sensor); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if c.PinSensor < 0 || c.PinButton < 0 {
		return fmt.Errorf("%w: negative GPIO offset", ErrInvalid)
	}
	if c.PinSensor == c.PinButton {
		return fmt.Errorf("%w: sensor and button share offset %d", ErrInvalid, c.PinSensor)
	}
	if c.LCDAddress < 0x03 || c.LCDAddress > 0x77 {
		return fmt.Errorf("%w: LCD address 0x%x", ErrInvalid, c.LCDAddress)
	}
	if c.LCDCols <= 0 || c.LCDRows <= 0 || c.LCDRows > 4 {
		return fmt.Errorf("%w: LCD geometry %dx%d", ErrInvalid, c.LCDCols, c.LCDRows)
	}
	if c.LCDRows <= app.HumidityRow {
		return fmt.Errorf("%w: LCD needs at least %d rows", ErrInvalid, app.HumidityRow+1)
	}
	if c.Poll <= 0 {
		return fmt.Errorf("%w: poll must be positive", ErrInvalid)
	}
	for name, d := range map[string]time.Duration{
		"debounce":  c.Debounce,
		"resample":  c.Resample,
		"backlight": c.Backlight,
	} {
		if d < time.Millisecond || d.Milliseconds() > math.MaxUint32 {
			return fmt.Errorf("%w: %s %v out of range", ErrInvalid, name, d)
		}
	}
	if c.Heartbeat < 0 || c.Heartbeat.Milliseconds() > math.MaxUint32 {
		return fmt.Errorf("%w: heartbeat %v out of range", ErrInvalid, c.Heartbeat)
	}
	return nil
}

// Variant returns the parsed sensor variant.
func (c *Config) Variant() dht.Variant {
	v, _ := dht.ParseVariant(c.Sensor)
	return v
}

// DebounceMs returns the debounce window in milliseconds.
func (c *Config) DebounceMs() uint32 { return uint32(c.Debounce.Milliseconds()) }

// ResampleMs returns the resample period in milliseconds.
func (c *Config) ResampleMs() uint32 { return uint32(c.Resample.Milliseconds()) }

// BacklightMs returns the backlight timeout in milliseconds.
func (c *Config) BacklightMs() uint32 { return uint32(c.Backlight.Milliseconds()) }

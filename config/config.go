// Package config loads tubecut settings from a file, the environment and
// command line flags.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/mastercactapus/tubecut/machine"
	"github.com/mastercactapus/tubecut/serialport"
)

// EnvPrefix is prepended to environment overrides, e.g. TUBECUT_SERIAL_PORT.
const EnvPrefix = "TUBECUT"

type Config struct {
	Serial  SerialConfig  `mapstructure:"serial"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Poll    PollConfig    `mapstructure:"poll"`
	Machine MachineConfig `mapstructure:"machine"`
	Cut     CutConfig     `mapstructure:"cut"`
	Log     LogConfig     `mapstructure:"log"`
}

type SerialConfig struct {
	Port string `mapstructure:"port"`
	Baud int    `mapstructure:"baud"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

type PollConfig struct {
	// Interval between background status queries; zero disables polling.
	Interval time.Duration `mapstructure:"interval"`
}

type MachineConfig struct {
	HomeFeedrate float64 `mapstructure:"home_feedrate"`
	JogFeedrate  float64 `mapstructure:"jog_feedrate"`
}

type CutConfig struct {
	TubeWidth         float64 `mapstructure:"tube_width"`
	Angle             float64 `mapstructure:"angle"`
	Feedrate          float64 `mapstructure:"feedrate"`
	PierceDelay       float64 `mapstructure:"pierce_delay"`
	SecondPierceDelay float64 `mapstructure:"second_pierce_delay"`
	Method            string  `mapstructure:"method"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// flagKeys maps command line flag names to config keys.
var flagKeys = map[string]string{
	"port":          "serial.port",
	"baud":          "serial.baud",
	"addr":          "http.addr",
	"poll-interval": "poll.interval",
	"log-level":     "log.level",
	"dev":           "log.development",
}

func setDefaults(v *viper.Viper) {
	cut := machine.DefaultCutOptions()

	v.SetDefault("serial.port", "/dev/ttyUSB0")
	v.SetDefault("serial.baud", 115200)
	v.SetDefault("http.addr", ":9091")
	v.SetDefault("poll.interval", "250ms")
	v.SetDefault("machine.home_feedrate", machine.DefaultHomeFeedrate)
	v.SetDefault("machine.jog_feedrate", machine.DefaultJogFeedrate)
	v.SetDefault("cut.tube_width", cut.TubeWidth)
	v.SetDefault("cut.angle", cut.CutAngle)
	v.SetDefault("cut.feedrate", cut.Feedrate)
	v.SetDefault("cut.pierce_delay", cut.PierceDelay)
	v.SetDefault("cut.second_pierce_delay", cut.SecondPierceDelay)
	v.SetDefault("cut.method", string(cut.Method))
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
}

// Load reads the config file at path (if any), then applies environment
// overrides and any flags in fs that were set explicitly.
func Load(path string, fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if fs != nil {
		for name, key := range flagKeys {
			f := fs.Lookup(name)
			if f == nil {
				continue
			}
			err := v.BindPFlag(key, f)
			if err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		err := v.ReadInConfig()
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	err := v.Unmarshal(&cfg)
	if err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	err := c.SerialOptions().Validate()
	if err != nil {
		return err
	}
	if c.Poll.Interval < 0 {
		return errors.New("poll interval must not be negative")
	}
	if c.Machine.HomeFeedrate <= 0 || c.Machine.JogFeedrate <= 0 {
		return errors.New("machine feedrates must be positive")
	}
	_, err = zap.ParseAtomicLevel(c.Log.Level)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	err = c.CutOptions().Validate()
	if err != nil {
		return fmt.Errorf("cut: %w", err)
	}
	return nil
}

func (c *Config) SerialOptions() serialport.Options {
	return serialport.Options{Port: c.Serial.Port, Baud: c.Serial.Baud}
}

// CutOptions returns the configured cut defaults starting at the origin.
func (c *Config) CutOptions() machine.CutOptions {
	opt := machine.DefaultCutOptions()
	opt.TubeWidth = c.Cut.TubeWidth
	opt.CutAngle = c.Cut.Angle
	opt.Feedrate = c.Cut.Feedrate
	opt.PierceDelay = c.Cut.PierceDelay
	opt.SecondPierceDelay = c.Cut.SecondPierceDelay
	opt.Method = machine.CutMethod(c.Cut.Method)
	return opt
}

// Logger builds a zap logger for the configured level.
func (c LogConfig) Logger() (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(c.Level)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	if c.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = lvl
	return zc.Build()
}

// Package config resolves the server's runtime configuration from flags,
// environment variables, and an optional config file, with that precedence
// order, via viper. Unlike the original's mutable global tuning knobs, the
// resolved Config is threaded explicitly through the call chain.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"robotctl/internal/robot"
)

// Config is every knob the server needs at startup. A subset (the timeouts
// and the target cell, held by Store and changed through Store.Apply) can
// also be changed live via the admin HTTP surface.
type Config struct {
	ListenAddr string `mapstructure:"listen_addr"`
	AdminAddr  string `mapstructure:"admin_addr"`

	LogPath  string `mapstructure:"log_path"`
	LogLevel string `mapstructure:"log_level"`

	NormalTimeout   time.Duration `mapstructure:"normal_timeout"`
	RechargeTimeout time.Duration `mapstructure:"recharge_timeout"`

	TargetX int `mapstructure:"target_x"`
	TargetY int `mapstructure:"target_y"`

	ServerKey uint16 `mapstructure:"server_key"`
	ClientKey uint16 `mapstructure:"client_key"`
}

// Default mirrors the spec's default constants, expressed as a Config so a
// process with no flags, env vars, or file still runs correctly.
func Default() Config {
	return Config{
		ListenAddr:      ":3999",
		AdminAddr:       ":8080",
		LogPath:         "robotctl.log",
		LogLevel:        "info",
		NormalTimeout:   1 * time.Second,
		RechargeTimeout: 5 * time.Second,
		TargetX:         -2,
		TargetY:         2,
		ServerKey:       54621,
		ClientKey:       45328,
	}
}

// BindFlags registers every knob on fs so callers get flag > env > file >
// default precedence once Load binds the same viper instance to fs.
func BindFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String("listen-addr", d.ListenAddr, "address the robot TCP protocol listens on")
	fs.String("admin-addr", d.AdminAddr, "address the admin/observability HTTP surface listens on")
	fs.String("log-path", d.LogPath, "path to the rotating log file")
	fs.String("log-level", d.LogLevel, "minimum log level (debug, info, warn, error)")
	fs.Duration("normal-timeout", d.NormalTimeout, "idle read timeout outside recharging")
	fs.Duration("recharge-timeout", d.RechargeTimeout, "idle read timeout while a robot is recharging")
	fs.Int("target-x", d.TargetX, "target cell X coordinate")
	fs.Int("target-y", d.TargetY, "target cell Y coordinate")
	fs.Uint16("server-key", d.ServerKey, "server hash key used during authentication")
	fs.Uint16("client-key", d.ClientKey, "client hash key used during authentication")
}

// Load resolves a Config from fs (already parsed), the ROBOTCTL_ env
// prefix, and an optional config file path. An empty cfgFile skips the
// file layer entirely rather than erroring.
func Load(fs *pflag.FlagSet, cfgFile string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("robotctl")
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	// Flags use dashed names (CLI convention); Config's mapstructure tags
	// use underscores. Bind each explicitly rather than relying on
	// BindPFlags' exact-name match, which would silently leave every field
	// at its zero value.
	binds := map[string]string{
		"listen_addr":      "listen-addr",
		"admin_addr":       "admin-addr",
		"log_path":         "log-path",
		"log_level":        "log-level",
		"normal_timeout":   "normal-timeout",
		"recharge_timeout": "recharge-timeout",
		"target_x":         "target-x",
		"target_y":         "target-y",
		"server_key":       "server-key",
		"client_key":       "client-key",
	}
	for key, flag := range binds {
		if err := v.BindPFlag(key, fs.Lookup(flag)); err != nil {
			return Config{}, fmt.Errorf("bind flag %s: %w", flag, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

// SessionConfig projects the fields robot.Session needs out of the wider
// process Config.
func (c Config) SessionConfig() robot.Config {
	return robot.Config{
		Keys:            robot.HashKeys{Server: c.ServerKey, Client: c.ClientKey},
		Target:          robot.Position{X: c.TargetX, Y: c.TargetY},
		NormalTimeout:   c.NormalTimeout,
		RechargeTimeout: c.RechargeTimeout,
	}
}

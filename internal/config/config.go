// Package config reads server settings from flags, falling back to
// SHOGIMAN_* environment variables and then to defaults.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/MrPicklePinosaur/shogiman/internal/shogi"
)

type Config struct {
	Addr          string
	AllowOrigins  string
	StartSFEN     string
	ClockTime     time.Duration
	Scale         float64
	Debug         bool
	MatchInterval time.Duration
}

func Default() Config {
	return Config{
		Addr:          ":3000",
		AllowOrigins:  "http://localhost:5173",
		StartSFEN:     shogi.StartSFEN,
		ClockTime:     600 * time.Second,
		Scale:         32,
		Debug:         false,
		MatchInterval: time.Second,
	}
}

// Load parses args (without the program name). lookup resolves environment
// variables; pass os.LookupEnv in production.
func Load(args []string, lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	if lookup == nil {
		lookup = os.LookupEnv
	}

	env := func(key, def string) string {
		if v, ok := lookup(key); ok && v != "" {
			return v
		}
		return def
	}
	clockSeconds, err := strconv.Atoi(env("SHOGIMAN_CLOCK_SECONDS", strconv.Itoa(int(cfg.ClockTime/time.Second))))
	if err != nil {
		return cfg, fmt.Errorf("SHOGIMAN_CLOCK_SECONDS: %w", err)
	}
	scale, err := strconv.ParseFloat(env("SHOGIMAN_SCALE", strconv.FormatFloat(cfg.Scale, 'f', -1, 64)), 64)
	if err != nil {
		return cfg, fmt.Errorf("SHOGIMAN_SCALE: %w", err)
	}
	debug, err := strconv.ParseBool(env("SHOGIMAN_DEBUG", strconv.FormatBool(cfg.Debug)))
	if err != nil {
		return cfg, fmt.Errorf("SHOGIMAN_DEBUG: %w", err)
	}
	interval, err := time.ParseDuration(env("SHOGIMAN_MATCH_INTERVAL", cfg.MatchInterval.String()))
	if err != nil {
		return cfg, fmt.Errorf("SHOGIMAN_MATCH_INTERVAL: %w", err)
	}

	fs := flag.NewFlagSet("shogiman", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&cfg.Addr, "addr", env("SHOGIMAN_ADDR", cfg.Addr), "listen address")
	fs.StringVar(&cfg.AllowOrigins, "allow-origins", env("SHOGIMAN_ALLOW_ORIGINS", cfg.AllowOrigins), "comma separated CORS origins")
	fs.StringVar(&cfg.StartSFEN, "start-sfen", env("SHOGIMAN_START_SFEN", cfg.StartSFEN), "default starting position")
	fs.IntVar(&clockSeconds, "clock-seconds", clockSeconds, "thinking time per side in seconds")
	fs.Float64Var(&cfg.Scale, "scale", scale, "world units per board square")
	fs.BoolVar(&cfg.Debug, "debug", debug, "development logging")
	fs.DurationVar(&cfg.MatchInterval, "match-interval", interval, "how often the matchmaking queue is drained")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	cfg.ClockTime = time.Duration(clockSeconds) * time.Second

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if _, err := shogi.ParseSFEN(c.StartSFEN); err != nil {
		return fmt.Errorf("start position: %w", err)
	}
	if c.ClockTime <= 0 {
		return fmt.Errorf("clock time must be positive, got %s", c.ClockTime)
	}
	if c.Scale <= 0 {
		return fmt.Errorf("scale must be positive, got %g", c.Scale)
	}
	if c.MatchInterval <= 0 {
		return fmt.Errorf("match interval must be positive, got %s", c.MatchInterval)
	}
	// Requests carry credentials, and a wildcard cannot be combined with them.
	for _, o := range strings.Split(c.AllowOrigins, ",") {
		if strings.TrimSpace(o) == "*" {
			return errors.New("allow origins must list explicit origins, not *")
		}
	}
	return nil
}

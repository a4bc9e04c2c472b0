package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/DoyleJ11/gridclaim/internal/engine"
	"github.com/DoyleJ11/gridclaim/internal/session"
	"github.com/joho/godotenv"
	"go.uber.org/multierr"
)

type Config struct {
	Addr           string
	Rules          engine.Rules
	Timing         session.Timing
	DefaultSession string
	ResultsDSN     string
	MsgRate        float64
	MsgBurst       int
	LogLevel       string
	LogFormat      string
}

// Load reads .env if present, then the environment. Every invalid variable is
// reported, not just the first.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

func FromEnv() (Config, error) {
	var p parser
	c := Config{
		Addr:           getenv("ADDR", ":8080"),
		DefaultSession: getenv("DEFAULT_SESSION", "MAIN"),
		ResultsDSN:     os.Getenv("RESULTS_DSN"),
		LogLevel:       getenv("LOG_LEVEL", "info"),
		LogFormat:      getenv("LOG_FORMAT", "json"),
		Rules: engine.Rules{
			GridSize:            p.int("GRID_SIZE", 10),
			WinCount:            p.int("WIN_COUNT", 30),
			DefaultNumPlayers:   p.int("DEFAULT_NUM_PLAYERS", 2),
			DefaultRoundSeconds: p.int("DEFAULT_ROUND_SECONDS", 3),
			MaxRoundSeconds:     p.int("MAX_ROUND_SECONDS", 30),
		},
		Timing: session.Timing{
			Tick:       p.duration("TICK_INTERVAL", time.Second),
			StartDelay: p.duration("START_DELAY", 500*time.Millisecond),
			RoundDelay: p.duration("ROUND_DELAY", 1500*time.Millisecond),
		},
		MsgRate:  p.float("MSG_RATE", 20),
		MsgBurst: p.int("MSG_BURST", 40),
	}

	if c.Rules.GridSize < 2 {
		p.fail("GRID_SIZE", errors.New("must be at least 2"))
	}
	if c.Rules.WinCount < 1 || c.Rules.WinCount > c.Rules.GridSize*c.Rules.GridSize {
		p.fail("WIN_COUNT", errors.New("must be between 1 and the number of cells"))
	}
	if c.Rules.MaxRoundSeconds < 1 {
		p.fail("MAX_ROUND_SECONDS", errors.New("must be positive"))
	}
	if c.Rules.DefaultRoundSeconds < 1 || c.Rules.DefaultRoundSeconds > c.Rules.MaxRoundSeconds {
		p.fail("DEFAULT_ROUND_SECONDS", errors.New("must be between 1 and MAX_ROUND_SECONDS"))
	}
	if c.Rules.DefaultNumPlayers < 1 {
		p.fail("DEFAULT_NUM_PLAYERS", errors.New("must be positive"))
	}
	if c.Timing.Tick <= 0 {
		p.fail("TICK_INTERVAL", errors.New("must be positive"))
	}
	if c.DefaultSession == "" {
		p.fail("DEFAULT_SESSION", errors.New("must not be empty"))
	}

	if p.err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", p.err)
	}
	return c, nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// parser collects every parse failure so Load can report them together.
type parser struct {
	err error
}

func (p *parser) fail(key string, err error) {
	p.err = multierr.Append(p.err, fmt.Errorf("%s: %w", key, err))
}

func (p *parser) int(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.fail(key, err)
		return def
	}
	return n
}

func (p *parser) float(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.fail(key, err)
		return def
	}
	return f
}

func (p *parser) duration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.fail(key, err)
		return def
	}
	return d
}

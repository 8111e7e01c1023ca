package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/garnizeh/talentflow/internal/fault"
	"github.com/garnizeh/talentflow/internal/service"
)

type Config struct {
	Addr           string           `yaml:"addr"`
	APITimeout     time.Duration    `yaml:"timeout"`
	DatabasePath   string           `yaml:"database_path"`
	MigrateOnStart bool             `yaml:"migrate_on_start"`
	LogLevel       string           `yaml:"log_level"`
	Fault          FaultConfig      `yaml:"fault"`
	Pagination     PaginationConfig `yaml:"pagination"`
}

// FaultConfig holds the simulated latency and failure profile per operation class.
type FaultConfig struct {
	Read  fault.Profile `yaml:"read"`
	Write fault.Profile `yaml:"write"`
}

type PaginationConfig struct {
	JobsPageSize       int `yaml:"jobs_page_size"`
	CandidatesPageSize int `yaml:"candidates_page_size"`
}

// LoadDotEnv loads variables from the given .env files (".env" when none are
// given) without overriding the process environment. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// LoadConfig builds the configuration from defaults, then the YAML file at path
// (if any), then TALENTFLOW_* environment overrides.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{
		Addr:           ":8080",
		APITimeout:     15 * time.Second,
		DatabasePath:   "talentflow.db",
		MigrateOnStart: true,
		LogLevel:       "info",
		Fault: FaultConfig{
			Read:  fault.DefaultRead(),
			Write: fault.DefaultWrite(),
		},
		Pagination: PaginationConfig{
			JobsPageSize:       service.DefaultJobsPageSize,
			CandidatesPageSize: service.DefaultCandidatesPageSize,
		},
	}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		if err := dec.Decode(cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.Addr = getEnv("TALENTFLOW_ADDR", c.Addr)
	c.DatabasePath = getEnv("TALENTFLOW_DATABASE_PATH", c.DatabasePath)
	c.LogLevel = getEnv("TALENTFLOW_LOG_LEVEL", c.LogLevel)

	var err error
	if c.APITimeout, err = durationEnv("TALENTFLOW_TIMEOUT", c.APITimeout); err != nil {
		return err
	}
	if c.MigrateOnStart, err = boolEnv("TALENTFLOW_MIGRATE_ON_START", c.MigrateOnStart); err != nil {
		return err
	}
	if c.Fault.Read.FailureRate, err = floatEnv("TALENTFLOW_READ_FAILURE_RATE", c.Fault.Read.FailureRate); err != nil {
		return err
	}
	if c.Fault.Write.FailureRate, err = floatEnv("TALENTFLOW_WRITE_FAILURE_RATE", c.Fault.Write.FailureRate); err != nil {
		return err
	}
	// One knob for both classes; handy to switch latency off in local runs.
	if v := os.Getenv("TALENTFLOW_MAX_LATENCY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("TALENTFLOW_MAX_LATENCY: %w", err)
		}
		c.Fault.Read.MaxLatency, c.Fault.Write.MaxLatency = d, d
		c.Fault.Read.MinLatency = min(c.Fault.Read.MinLatency, d)
		c.Fault.Write.MinLatency = min(c.Fault.Write.MinLatency, d)
	}
	return nil
}

// Validate checks that every value is usable before the server starts.
func (c *Config) Validate() error {
	var problems []string
	if strings.TrimSpace(c.Addr) == "" {
		problems = append(problems, "addr is required")
	}
	if strings.TrimSpace(c.DatabasePath) == "" {
		problems = append(problems, "database_path is required")
	}
	if c.APITimeout <= 0 {
		problems = append(problems, "timeout must be positive")
	}
	if _, err := c.SlogLevel(); err != nil {
		problems = append(problems, err.Error())
	}
	problems = append(problems, checkProfile("fault.read", c.Fault.Read)...)
	problems = append(problems, checkProfile("fault.write", c.Fault.Write)...)
	if c.Pagination.JobsPageSize < 0 || c.Pagination.CandidatesPageSize < 0 {
		problems = append(problems, "pagination page sizes must not be negative")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

func checkProfile(name string, p fault.Profile) []string {
	var problems []string
	if p.MinLatency < 0 || p.MaxLatency < 0 {
		problems = append(problems, name+": latency must not be negative")
	}
	if p.MinLatency > p.MaxLatency {
		problems = append(problems, name+": min_latency exceeds max_latency")
	}
	if p.FailureRate < 0 || p.FailureRate > 1 {
		problems = append(problems, name+": failure_rate must be within [0, 1]")
	}
	return problems
}

// SlogLevel parses LogLevel (debug, info, warn, error).
func (c *Config) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level: unknown level %q", c.LogLevel)
	}
	return lvl, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func boolEnv(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func floatEnv(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

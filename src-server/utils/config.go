package utils

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"
	"typedcal/src-server/ical"

	"github.com/olebedev/when"
)

type Config struct {
	databasePath string
	location     *time.Location
	logLevel     slog.Level

	metricsAddr string

	workerCount   int
	lenientDates  bool
	batchPolicy   ical.Policy
	watchSchedule string
}

func NewConfig() *Config {
	return &Config{
		databasePath: func() string {
			databasePath := os.Getenv("DATABASE_PATH")
			if databasePath == "" {
				databasePath = "./typedcal.db"
			}
			slog.Debug("env", "DATABASE_PATH", databasePath)
			return filepath.Clean(databasePath)
		}(),
		location: func() *time.Location {
			timezoneStr := os.Getenv("TIMEZONE")
			var loc *time.Location
			var err error
			switch timezoneStr {
			case "":
				slog.Debug("TIMEZONE is not set, using local timezone", "timezone", time.Local)
				loc = time.Local
			case "UTC":
				loc = time.UTC
			default:
				loc, err = time.LoadLocation(timezoneStr)
				if err != nil {
					slog.Error("invalid timezone", "timezone", timezoneStr, "error", err)
					os.Exit(1)
				}
			}
			slog.Debug("env", "TIMEZONE", timezoneStr)
			return loc
		}(),
		logLevel: func() slog.Level {
			level := slog.LevelInfo
			logLevel := os.Getenv("LOG_LEVEL")
			if logLevel == "" {
				return level
			}
			if err := level.UnmarshalText([]byte(logLevel)); err != nil {
				slog.Warn("invalid LOG_LEVEL, using info", "LOG_LEVEL", logLevel, "error", err)
				return slog.LevelInfo
			}
			return level
		}(),

		metricsAddr: func() string {
			metricsAddr := os.Getenv("METRICS_ADDR")
			slog.Debug("env", "METRICS_ADDR", metricsAddr)
			return metricsAddr
		}(),

		workerCount: func() int {
			workerCount := os.Getenv("WORKER_COUNT")
			if workerCount == "" {
				return 4
			}
			n, err := strconv.Atoi(workerCount)
			if err != nil || n < 1 {
				slog.Error("WORKER_COUNT must be a positive integer", "WORKER_COUNT", workerCount)
				os.Exit(1)
			}
			slog.Debug("env", "WORKER_COUNT", n)
			return n
		}(),
		lenientDates: func() bool {
			lenientDates := os.Getenv("LENIENT_DATES")
			if lenientDates == "" {
				return false
			}
			enabled, err := strconv.ParseBool(lenientDates)
			if err != nil {
				slog.Error("invalid LENIENT_DATES", "LENIENT_DATES", lenientDates, "error", err)
				os.Exit(1)
			}
			slog.Debug("env", "LENIENT_DATES", enabled)
			return enabled
		}(),
		batchPolicy: func() ical.Policy {
			policy, err := ical.ParsePolicy(os.Getenv("BATCH_POLICY"))
			if err != nil {
				slog.Error("invalid BATCH_POLICY", "error", err)
				os.Exit(1)
			}
			slog.Debug("env", "BATCH_POLICY", policy)
			return policy
		}(),
		watchSchedule: func() string {
			watchSchedule := os.Getenv("WATCH_SCHEDULE")
			if watchSchedule == "" {
				watchSchedule = "*/15 * * * *"
			}
			slog.Debug("env", "WATCH_SCHEDULE", watchSchedule)
			return watchSchedule
		}(),
	}
}

// Get DATABASE_PATH env, default to ./typedcal.db
func (c *Config) GetDatabasePath() string {
	return c.databasePath
}

// Get TIMEZONE env, the location of floating times
func (c *Config) GetLocation() *time.Location {
	return c.location
}

// Get LOG_LEVEL env, default to info
func (c *Config) GetLogLevel() slog.Level {
	return c.logLevel
}

// Get METRICS_ADDR env, empty when metrics are off
func (c *Config) GetMetricsAddr() string {
	return c.metricsAddr
}

// Get WORKER_COUNT env, default to 4
func (c *Config) GetWorkerCount() int {
	return c.workerCount
}

// Get LENIENT_DATES env
func (c *Config) GetLenientDates() bool {
	return c.lenientDates
}

// Get BATCH_POLICY env, default to skip
func (c *Config) GetBatchPolicy() ical.Policy {
	return c.batchPolicy
}

// Get WATCH_SCHEDULE env, default to every 15 minutes
func (c *Config) GetWatchSchedule() string {
	return c.watchSchedule
}

// Options for ical.FromProperties and ical.Convert. parser is only used
// when LENIENT_DATES is on.
func (c *Config) ConvertOptions(parser *when.Parser) []ical.Option {
	opts := []ical.Option{
		ical.WithLocation(c.location),
		ical.WithWorkers(c.workerCount),
	}
	if c.lenientDates {
		opts = append(opts, ical.WithLenientDates(parser, time.Now().In(c.location)))
	}
	return opts
}

// Values given on the command line, zero values mean "not given".
type Overrides struct {
	MetricsAddr  string
	WorkerCount  int
	LenientDates bool
	Policy       string
	Timezone     string
}

// Apply CLI flag values over the env ones.
func (c *Config) Override(o Overrides) error {
	if o.MetricsAddr != "" {
		c.metricsAddr = o.MetricsAddr
	}
	if o.WorkerCount > 0 {
		c.workerCount = o.WorkerCount
	}
	if o.LenientDates {
		c.lenientDates = true
	}
	if o.Policy != "" {
		policy, err := ical.ParsePolicy(o.Policy)
		if err != nil {
			return fmt.Errorf("Override: %w", err)
		}
		c.batchPolicy = policy
	}
	if o.Timezone != "" {
		loc, err := time.LoadLocation(o.Timezone)
		if err != nil {
			return fmt.Errorf("Override: invalid timezone %s: %w", o.Timezone, err)
		}
		c.location = loc
	}
	return nil
}

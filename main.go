package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
	"typedcal/src-server/ical"
	"typedcal/src-server/metric"
	"typedcal/src-server/scheduler"
	"typedcal/src-server/utils"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/urfave/cli/v2"
)

var logLevel = new(slog.LevelVar)

func init() {
	if err := godotenv.Load(); err != nil {
		slog.Info(err.Error())
	}
	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      logLevel,
			TimeFormat: time.RFC1123Z,
		}),
	))
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		slog.Error("typedcal failed", "error", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	var config *utils.Config

	return &cli.App{
		Name:  "typedcal",
		Usage: "Convert iCalendar VEVENTs into typed events and store them.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "metrics", Usage: "serve Prometheus metrics on this address, e.g. :9100 (METRICS_ADDR)"},
			&cli.StringFlag{Name: "policy", Usage: "what to do with an event that fails to convert: skip or abort (BATCH_POLICY)"},
			&cli.IntFlag{Name: "workers", Usage: "number of conversion workers (WORKER_COUNT)"},
			&cli.BoolFlag{Name: "lenient", Usage: "accept non-iCalendar date-times such as 2024-01-15 09:30 (LENIENT_DATES)"},
			&cli.StringFlag{Name: "timezone", Usage: "IANA timezone of floating times (TIMEZONE)"},
		},
		Before: func(c *cli.Context) error {
			config = utils.NewConfig()
			if err := config.Override(utils.Overrides{
				MetricsAddr:  c.String("metrics"),
				WorkerCount:  c.Int("workers"),
				LenientDates: c.Bool("lenient"),
				Policy:       c.String("policy"),
				Timezone:     c.String("timezone"),
			}); err != nil {
				return err
			}
			logLevel.Set(config.GetLogLevel())

			metric.Init()
			if addr := config.GetMetricsAddr(); addr != "" {
				go func() {
					if err := metric.Serve(c.Context, addr); err != nil {
						slog.Error("cannot start metrics server", "error", err)
					}
				}()
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "convert",
				Usage:     "Convert a calendar and print one line per event.",
				ArgsUsage: "<path|url>",
				Action: func(c *cli.Context) error {
					location, err := singleArg(c)
					if err != nil {
						return err
					}
					return convert(c.Context, c.App.Writer, config, location)
				},
			},
			{
				Name:      "import",
				Usage:     "Convert a calendar and store its events in the database.",
				ArgsUsage: "<path|url>",
				Action: func(c *cli.Context) error {
					location, err := singleArg(c)
					if err != nil {
						return err
					}
					as, err := utils.NewAppState(c.Context, config)
					if err != nil {
						return err
					}
					defer as.Close()

					report := scheduler.ImportCalendar(c.Context, as, location)
					if report.Err != nil {
						return report.Err
					}
					if report.Unchanged {
						fmt.Fprintf(c.App.Writer, "%s: unchanged\n", location)
						return nil
					}
					fmt.Fprintf(c.App.Writer, "%s: %d stored, %d skipped\n", location, report.Stored, report.Skipped)
					return nil
				},
			},
			{
				Name:      "watch",
				Usage:     "Import every *.ics file of a directory, then again on a schedule.",
				ArgsUsage: "<dir>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "schedule", Usage: "cron schedule, e.g. \"*/15 * * * *\" or \"@every 10m\" (WATCH_SCHEDULE)"},
				},
				Action: func(c *cli.Context) error {
					dir, err := singleArg(c)
					if err != nil {
						return err
					}
					schedule := c.String("schedule")
					if schedule == "" {
						schedule = config.GetWatchSchedule()
					}
					as, err := utils.NewAppState(c.Context, config)
					if err != nil {
						return err
					}
					defer as.Close()

					slog.Info("app is now running, press Ctrl+C to exit")
					return scheduler.Watch(c.Context, as, dir, schedule)
				},
			},
		},
	}
}

func singleArg(c *cli.Context) (string, error) {
	if c.NArg() != 1 {
		return "", fmt.Errorf("%s: expected exactly one argument %s", c.Command.Name, c.Command.ArgsUsage)
	}
	return c.Args().First(), nil
}

// Print `UID<TAB>START<TAB>SUMMARY` per converted event and
// `#INDEX<TAB>ERROR` per failed one, in input order.
func convert(ctx context.Context, w io.Writer, config *utils.Config, location string) error {
	source, err := ical.Open(ctx, location)
	if err != nil {
		return err
	}
	batch, err := source.Events()
	if err != nil {
		return err
	}

	results, convertErr := ical.Convert(ctx, batch, config.GetBatchPolicy(), config.ConvertOptions(utils.NewWhenParser())...)
	for _, result := range results {
		if result.Err != nil {
			fmt.Fprintf(w, "#%d\t%s\n", result.Index, result.Err)
			continue
		}
		start := "-"
		if dt := result.Event.Start(); dt != nil {
			start = dt.Format()
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", result.Event.UID(), start, result.Event.Summary())
	}
	return convertErr
}

package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"typedcal/src-server/utils"

	"github.com/robfig/cron/v3"
)

// cron.Logger on top of slog
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	slog.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	slog.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}

// Import dir once, then again on every tick of schedule (standard 5-field
// cron syntax or descriptors such as "@every 10m") until ctx is done. A run
// still in progress when the next tick fires makes that tick a no-op.
func Watch(ctx context.Context, as *utils.AppState, dir string, schedule string) error {
	run := func() {
		reports, err := UpdateDir(ctx, as, dir)
		if err != nil {
			slog.Warn("Watch: update interrupted", "dir", dir, "error", err)
			return
		}
		slog.Info("Watch: directory updated", "dir", dir, "calendars", len(reports))
	}

	logger := cronLogger{}
	c := cron.New(cron.WithLogger(logger))
	job := cron.NewChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)).Then(cron.FuncJob(run))
	if _, err := c.AddJob(schedule, job); err != nil {
		return fmt.Errorf("Watch: invalid schedule %q: %w", schedule, err)
	}

	job.Run()
	c.Start()
	slog.Info("Watch: watching", "dir", dir, "schedule", schedule)

	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}

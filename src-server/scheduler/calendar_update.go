package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"sync"
	"time"
	"typedcal/src-server/ical"
	"typedcal/src-server/metric"
	"typedcal/src-server/model"
	"typedcal/src-server/utils"
)

const importTimeout = 5 * time.Minute

// The outcome of importing one calendar source.
type Report struct {
	Location string
	// the stored hash matched, nothing was converted
	Unchanged bool
	Stored    int
	Skipped   int
	Err       error
}

// Fetch, convert and store one calendar, replacing what was stored for the
// same location. Under PolicyAbort a failed event leaves the stored calendar
// untouched.
func ImportCalendar(ctx context.Context, as *utils.AppState, location string) Report {
	report := Report{Location: location}
	ctx, cancel := context.WithTimeout(ctx, importTimeout)
	defer cancel()

	source, err := ical.Open(ctx, location)
	if err != nil {
		report.Err = err
		return report
	}

	unchanged, err := model.IsUnchanged(ctx, as.BunDB, location, source.Hash)
	if err != nil {
		report.Err = err
		return report
	}
	if unchanged {
		slog.Debug("calendar unchanged", "location", location, "hash", source.Hash)
		report.Unchanged = true
		return report
	}

	batch, err := source.Events()
	if err != nil {
		report.Err = err
		return report
	}
	results, err := ical.Convert(ctx, batch, as.Config.GetBatchPolicy(), as.ConvertOptions()...)
	if err != nil {
		report.Err = fmt.Errorf("ImportCalendar: %s: %w", location, err)
		return report
	}
	events := ical.Events(results)
	report.Stored = len(events)
	report.Skipped = len(results) - len(events)

	startTimer := time.Now()
	if _, err := model.ReplaceCalendar(ctx, as.BunDB, location, source.Hash, events, report.Skipped); err != nil {
		report.Err = err
		return report
	}
	metric.ObserveImport(location, report.Stored, time.Since(startTimer))

	slog.Info("calendar imported", "location", location, "stored", report.Stored, "skipped", report.Skipped)
	return report
}

// Import every *.ics file of dir across WORKER_COUNT workers. Reports are
// sorted by location.
func UpdateDir(ctx context.Context, as *utils.AppState, dir string) ([]Report, error) {
	locations, err := filepath.Glob(filepath.Join(dir, "*.ics"))
	if err != nil {
		return nil, fmt.Errorf("UpdateDir: %w", err)
	}
	sort.Strings(locations)

	reports := make([]Report, len(locations))
	jobs := make(chan int, len(locations))
	for i := range locations {
		jobs <- i
	}
	close(jobs)

	var wg sync.WaitGroup
	for range as.Config.GetWorkerCount() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				reports[i] = ImportCalendar(ctx, as, locations[i])
				if reports[i].Err != nil {
					slog.Warn("UpdateDir: can't import calendar", "location", locations[i], "error", reports[i].Err)
				}
			}
		}()
	}
	wg.Wait()

	return reports, ctx.Err()
}

package ical

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
	"typedcal/src-server/ical/event"
	"typedcal/src-server/ical/property"
	"typedcal/src-server/metric"
)

const defaultWorkerCount = 4

// What Convert does with an event that fails to convert.
type Policy int

const (
	// log the failure, keep it in the results and carry on
	PolicySkip Policy = iota
	// stop at the first failure in input order
	PolicyAbort
)

// Parse a policy name as used by the BATCH_POLICY env and the CLI.
func ParsePolicy(name string) (Policy, error) {
	switch name {
	case "", "skip":
		return PolicySkip, nil
	case "abort":
		return PolicyAbort, nil
	default:
		return PolicySkip, fmt.Errorf("unknown batch policy %q, expected skip or abort", name)
	}
}

func (p Policy) String() string {
	if p == PolicyAbort {
		return "abort"
	}
	return "skip"
}

// The outcome of one event of a batch. Exactly one of Event and Err is set.
type Result struct {
	Index int
	Event *event.Event
	Err   error
}

// Collect the events of the successful results, in order.
func Events(results []Result) []*event.Event {
	events := make([]*event.Event, 0, len(results))
	for _, result := range results {
		if result.Event != nil {
			events = append(events, result.Event)
		}
	}
	return events
}

// An error reported by Convert under PolicyAbort.
type BatchError struct {
	Index int
	Err   error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("event #%d: %s", e.Index, e.Err)
}

func (e *BatchError) Unwrap() error {
	return e.Err
}

func resultLabel(err error) string {
	var convErr *event.ConversionError
	if errors.As(err, &convErr) {
		return string(convErr.Reason)
	}
	return "error"
}

// Convert every event of a batch across a pool of workers. Results are
// returned in input order whatever the scheduling was.
//
//   - PolicySkip: failures are logged and kept in the results, the returned
//     error is only ever ctx.Err().
//   - PolicyAbort: the failure with the lowest index is returned as a
//     *BatchError, together with the results converted so far.
func Convert(ctx context.Context, batch [][]property.RawProperty, policy Policy, opts ...Option) ([]Result, error) {
	c := newConfig(opts)
	results := make([]Result, len(batch))

	// lowest failing index so far, len(batch) when none
	var firstFailure atomic.Int64
	firstFailure.Store(int64(len(batch)))

	jobs := make(chan int, len(batch))
	for i := range batch {
		jobs <- i
	}
	close(jobs)

	var wg sync.WaitGroup
	for range min(c.workers, max(len(batch), 1)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if ctx.Err() != nil {
					return
				}
				// anything after a known failure is never reported
				if policy == PolicyAbort && int64(i) > firstFailure.Load() {
					continue
				}

				start := time.Now()
				evt, err := fromProperties(batch[i], c)
				results[i] = Result{Index: i, Event: evt, Err: err}
				if err != nil {
					metric.ObserveConversion(resultLabel(err), time.Since(start))
					if policy == PolicyAbort {
						for {
							current := firstFailure.Load()
							if int64(i) >= current || firstFailure.CompareAndSwap(current, int64(i)) {
								break
							}
						}
					}
					continue
				}
				metric.ObserveConversion(metric.ResultOK, time.Since(start))
			}
		}()
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return results, err
	}

	if policy == PolicyAbort {
		if i := int(firstFailure.Load()); i < len(batch) {
			slog.Warn("aborting batch", "index", i, "error", results[i].Err)
			return results[:i], &BatchError{Index: i, Err: results[i].Err}
		}
		return results, nil
	}

	for _, result := range results {
		if result.Err != nil {
			slog.Warn("skipping event", "index", result.Index, "error", result.Err)
		}
	}
	return results, nil
}

package metric

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	conversions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "typedcal_conversions_total",
		Help: "Number of converted events by result",
	}, []string{"result"})
	conversionLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "typedcal_conversion_microsec",
		Help:    "The latency of a single event conversion in microseconds",
		Buckets: prometheus.ExponentialBuckets(1, 4, 10),
	})
	databaseWrite = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "typedcal_database_write_microsec",
		Help: "The latency of the last database write query in microseconds",
	})
	importLatency = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "typedcal_import_microsec",
		Help: "The latency of the last calendar import in microseconds",
	})
	importedEvents = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "typedcal_imported_events",
		Help: "Number of events stored by the last import of a source",
	}, []string{"source"})
)

// Result label of a successful conversion. Failures use the reason of their
// *event.ConversionError.
const ResultOK = "ok"

func register(name string, collector prometheus.Collector) {
	if err := prometheus.Register(collector); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
			slog.Error("can't register "+name+" metric", "error", err)
			return
		}
	}
	slog.Debug(name + " metric registered")
}

// Register every collector on the default registry. Safe to call more than
// once.
func Init() {
	register("typedcal_conversions_total", conversions)
	register("typedcal_conversion_microsec", conversionLatency)
	register("typedcal_database_write_microsec", databaseWrite)
	register("typedcal_import_microsec", importLatency)
	register("typedcal_imported_events", importedEvents)
}

// Record one event conversion.
func ObserveConversion(result string, latency time.Duration) {
	conversions.WithLabelValues(result).Inc()
	conversionLatency.Observe(float64(latency.Microseconds()))
}

// Record one calendar import.
func ObserveImport(source string, events int, latency time.Duration) {
	importedEvents.WithLabelValues(source).Set(float64(events))
	importLatency.Set(float64(latency.Microseconds()))
}

// Record one INSERT, UPDATE or DELETE query.
func ObserveDatabaseWrite(latency time.Duration) {
	databaseWrite.Set(float64(latency.Microseconds()))
}

// Serve /metrics on addr until ctx is done.
func Serve(ctx context.Context, addr string) error {
	muxer := http.NewServeMux()
	muxer.Handle("GET /metrics", promhttp.Handler())
	server := &http.Server{Addr: addr, Handler: muxer}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Warn("can't shut down metrics server", "error", err)
		}
	}()

	slog.Info("serving metrics", "addr", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

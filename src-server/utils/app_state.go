package utils

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
	"typedcal/src-server/ical"
	"typedcal/src-server/metric"
	"typedcal/src-server/model"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

type AppState struct {
	Config *Config
	RawDB  *sql.DB
	BunDB  *bun.DB
	// natural-language fallback for LENIENT_DATES
	When *when.Parser
}

func NewAppState(ctx context.Context, config *Config) (*AppState, error) {
	as := &AppState{Config: config}

	as.When = NewWhenParser()

	// database
	var err error
	as.RawDB, err = sql.Open(sqliteshim.ShimName, config.GetDatabasePath()+"?mode=rwc")
	if err != nil {
		return nil, fmt.Errorf("NewAppState: cannot open sqlite database: %w", err)
	}
	// sqlite allows one writer, keep every query on the same connection
	as.RawDB.SetMaxOpenConns(1)

	as.BunDB = bun.NewDB(as.RawDB, sqlitedialect.New())
	as.BunDB.AddQueryHook(queryHook{})

	if err := model.CreateSchema(ctx, as.BunDB); err != nil {
		as.Close()
		return nil, fmt.Errorf("NewAppState: %w", err)
	}

	return as, nil
}

// English and numeric natural-language date parser.
func NewWhenParser() *when.Parser {
	parser := when.New(nil)
	parser.Add(en.All...)
	parser.Add(common.All...)
	return parser
}

func (as *AppState) ConvertOptions() []ical.Option {
	return as.Config.ConvertOptions(as.When)
}

func (as *AppState) Close() {
	if err := as.BunDB.Close(); err != nil {
		slog.Warn("can't close database", "error", err)
	}
}

// Logs every query at debug level and reports write latency.
type queryHook struct{}

func (queryHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (queryHook) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	elapsed := time.Since(event.StartTime)
	if event.Err != nil && event.Err != sql.ErrNoRows {
		slog.Warn("query failed", "query", event.Query, "error", event.Err)
		return
	}
	slog.Debug("query", "operation", event.Operation(), "took", elapsed)
	switch event.Operation() {
	case "INSERT", "UPDATE", "DELETE":
		metric.ObserveDatabaseWrite(elapsed)
	}
}

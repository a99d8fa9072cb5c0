// Package workload implements the report execution engine: a fixed set of
// workers, each holding one database connection, draining a queue of
// reports.
package workload

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pgEdge/pgedge-goldreports/internal/db"
	"github.com/pgEdge/pgedge-goldreports/internal/logging"
	"github.com/pgEdge/pgedge-goldreports/internal/reports"
)

// Conn is a worker connection.
type Conn interface {
	reports.Querier
	Close(ctx context.Context) error
}

// ConnectFunc opens the connection for one worker.
type ConnectFunc func(ctx context.Context, workerID int) (Conn, error)

// RunFunc executes one report on a connection.
type RunFunc func(ctx context.Context, q reports.Querier, r *reports.Report, p reports.Params) (*reports.Result, error)

// ExecutorConfig holds configuration for the report executor.
type ExecutorConfig struct {
	ConnString     string // Connection string for creating per-worker connections
	Reports        []*reports.Report
	Params         reports.Params
	Concurrency    int
	ReportInterval int // seconds, 0 disables progress logging

	// Connect and Run default to db.ConnectSingle and reports.Run.
	Connect ConnectFunc
	Run     RunFunc
}

// Outcome is the result of one report in a run.
type Outcome struct {
	Report   *reports.Report
	Result   *reports.Result
	Err      error
	Duration time.Duration
	WorkerID int
}

// Executor runs a list of reports across worker connections.
type Executor struct {
	reports        []*reports.Report
	params         reports.Params
	concurrency    int
	reportInterval time.Duration
	connect        ConnectFunc
	run            RunFunc

	// Metrics
	completed       atomic.Int64
	successReports  atomic.Int64
	failedReports   atomic.Int64
	totalRows       atomic.Int64
	totalDurationNs atomic.Int64
	startTime       time.Time
	elapsed         time.Duration

	// Per-report metrics
	reportMetrics sync.Map // map[string]*reportMetric
}

type reportMetric struct {
	rows       atomic.Int64
	durationNs atomic.Int64
	errors     atomic.Int64
}

// NewExecutor creates a new report executor.
func NewExecutor(cfg ExecutorConfig) (*Executor, error) {
	if len(cfg.Reports) == 0 {
		return nil, errors.New("no reports to run")
	}

	concurrency := cfg.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	if concurrency > len(cfg.Reports) {
		concurrency = len(cfg.Reports)
	}

	connect := cfg.Connect
	if connect == nil {
		if cfg.ConnString == "" {
			return nil, errors.New("connection string is required")
		}
		connString := cfg.ConnString
		connect = func(ctx context.Context, id int) (Conn, error) {
			conn, err := db.ConnectSingle(ctx, connString, fmt.Sprintf("worker %d", id+1))
			if err != nil {
				return nil, err
			}
			return conn, nil
		}
	}

	run := cfg.Run
	if run == nil {
		run = reports.Run
	}

	return &Executor{
		reports:        cfg.Reports,
		params:         cfg.Params,
		concurrency:    concurrency,
		reportInterval: time.Duration(cfg.ReportInterval) * time.Second,
		connect:        connect,
		run:            run,
	}, nil
}

// Concurrency returns the number of workers Run starts.
func (e *Executor) Concurrency() int {
	return e.concurrency
}

// Run executes every report once and returns the outcomes in input order.
// A failing report does not stop the others. When ctx is cancelled, reports
// that have not started are reported with the context error and Run returns
// that error alongside the partial outcomes.
func (e *Executor) Run(ctx context.Context) ([]Outcome, error) {
	e.startTime = time.Now()
	defer func() { e.elapsed = time.Since(e.startTime) }()

	logging.Info().
		Int("reports", len(e.reports)).
		Int("workers", e.concurrency).
		Msg("Starting report execution")

	outcomes := make([]Outcome, len(e.reports))
	started := make([]bool, len(e.reports))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for i := 0; i < e.concurrency; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			e.worker(ctx, workerID, jobs, outcomes)
		}(i)
	}

	reporterCtx, stopReporter := context.WithCancel(ctx)
	defer stopReporter()
	if e.reportInterval > 0 {
		go e.reporter(reporterCtx)
	}

enqueue:
	for i := range e.reports {
		select {
		case <-ctx.Done():
			break enqueue
		case jobs <- i:
			started[i] = true
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		for i, ok := range started {
			if !ok {
				outcomes[i] = Outcome{Report: e.reports[i], Err: err, WorkerID: -1}
			}
		}
		return outcomes, err
	}
	return outcomes, nil
}

// worker owns one connection and runs the reports it receives. If the
// connection cannot be opened, every report it receives fails with that
// error so the queue still drains.
func (e *Executor) worker(ctx context.Context, id int, jobs <-chan int, outcomes []Outcome) {
	logging.Debug().Int("worker_id", id).Msg("Report worker started")

	conn, connErr := e.connect(ctx, id)
	if connErr != nil {
		logging.Error().Err(connErr).Int("worker_id", id).Msg("Failed to create worker connection")
		connErr = fmt.Errorf("worker %d connection: %w", id+1, connErr)
	} else {
		defer conn.Close(context.Background())
	}

	for i := range jobs {
		r := e.reports[i]
		if connErr != nil {
			outcomes[i] = Outcome{Report: r, Err: connErr, WorkerID: id}
			e.record(r.Name, nil, connErr, 0)
			continue
		}

		start := time.Now()
		res, err := e.run(ctx, conn, r, e.params)
		d := time.Since(start)

		outcomes[i] = Outcome{Report: r, Result: res, Err: err, Duration: d, WorkerID: id}
		e.record(r.Name, res, err, d)

		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Warn().
				Err(err).
				Str("report", r.Name).
				Int("worker_id", id).
				Msg("Report failed")
		}
	}

	logging.Debug().Int("worker_id", id).Msg("Report worker stopped")
}

func (e *Executor) record(name string, res *reports.Result, err error, d time.Duration) {
	m := e.getOrCreateReportMetric(name)
	e.completed.Add(1)
	e.totalDurationNs.Add(int64(d))
	m.durationNs.Add(int64(d))

	if err != nil {
		e.failedReports.Add(1)
		m.errors.Add(1)
		return
	}
	e.successReports.Add(1)
	if res != nil {
		e.totalRows.Add(int64(len(res.Rows)))
		m.rows.Add(int64(len(res.Rows)))
	}
}

func (e *Executor) getOrCreateReportMetric(name string) *reportMetric {
	if m, ok := e.reportMetrics.Load(name); ok {
		return m.(*reportMetric)
	}

	m := &reportMetric{}
	actual, _ := e.reportMetrics.LoadOrStore(name, m)
	return actual.(*reportMetric)
}

// Stats is a snapshot of the executor counters.
type Stats struct {
	Completed int64
	Succeeded int64
	Failed    int64
	Rows      int64
	Duration  time.Duration // sum of report durations
}

// Stats returns the current counters.
func (e *Executor) Stats() Stats {
	return Stats{
		Completed: e.completed.Load(),
		Succeeded: e.successReports.Load(),
		Failed:    e.failedReports.Load(),
		Rows:      e.totalRows.Load(),
		Duration:  time.Duration(e.totalDurationNs.Load()),
	}
}

func (e *Executor) reporter(ctx context.Context) {
	ticker := time.NewTicker(e.reportInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s := e.Stats()
			logging.Info().
				Int64("completed", s.Completed).
				Int("total", len(e.reports)).
				Int64("failed", s.Failed).
				Int64("rows", s.Rows).
				Dur("elapsed", time.Since(e.startTime)).
				Msg("Progress")
		}
	}
}

// PrintSummary logs a final summary of the run and per-report statistics in
// catalog order.
func (e *Executor) PrintSummary() {
	s := e.Stats()
	elapsed := e.elapsed
	if elapsed == 0 {
		elapsed = time.Since(e.startTime)
	}

	var avgLatencyMs float64
	if s.Completed > 0 {
		avgLatencyMs = float64(s.Duration) / float64(s.Completed) / 1e6
	}

	logging.Info().
		Int("workers", e.concurrency).
		Dur("duration", elapsed).
		Int64("total_reports", s.Completed).
		Int64("successful", s.Succeeded).
		Int64("failed", s.Failed).
		Int64("rows", s.Rows).
		Float64("avg_latency_ms", avgLatencyMs).
		Msg("Final summary")

	for _, r := range e.reports {
		v, ok := e.reportMetrics.Load(r.Name)
		if !ok {
			continue
		}
		m := v.(*reportMetric)
		logging.Info().
			Str("report", r.Name).
			Int64("rows", m.rows.Load()).
			Int64("errors", m.errors.Load()).
			Float64("latency_ms", float64(m.durationNs.Load())/1e6).
			Msg("")
	}
}

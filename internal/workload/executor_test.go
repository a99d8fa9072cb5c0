//-------------------------------------------------------------------------
//
// pgEdge Gold Reports
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package workload

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/pgEdge/pgedge-goldreports/internal/reports"
	"github.com/pgEdge/pgedge-goldreports/internal/reports/reportstest"
)

type fakeConn struct {
	reportstest.Querier
	closed atomic.Bool
}

func (c *fakeConn) Close(ctx context.Context) error {
	c.closed.Store(true)
	return nil
}

func testReports(names ...string) []*reports.Report {
	out := make([]*reports.Report, len(names))
	for i, n := range names {
		out[i] = &reports.Report{Name: n, Category: reports.CategoryMeasures, Build: reports.Static("SELECT 1")}
	}
	return out
}

func oneRow(string, []any) (pgx.Rows, error) {
	return reportstest.NewRows([]string{"n"}, []any{int64(1)}), nil
}

func TestNewExecutor(t *testing.T) {
	tests := []struct {
		name        string
		cfg         ExecutorConfig
		wantWorkers int
		wantError   bool
	}{
		{"no reports", ExecutorConfig{ConnString: "postgres://localhost/db"}, 0, true},
		{"no connection string", ExecutorConfig{Reports: testReports("a")}, 0, true},
		{"default concurrency", ExecutorConfig{ConnString: "postgres://localhost/db", Reports: testReports("a", "b")}, 1, false},
		{"capped by reports", ExecutorConfig{ConnString: "postgres://localhost/db", Reports: testReports("a", "b"), Concurrency: 8}, 2, false},
		{"custom connect", ExecutorConfig{
			Reports:     testReports("a", "b", "c"),
			Concurrency: 2,
			Connect: func(context.Context, int) (Conn, error) {
				return &fakeConn{}, nil
			},
		}, 2, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := NewExecutor(tt.cfg)
			if tt.wantError {
				if err == nil {
					t.Error("Expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if e.Concurrency() != tt.wantWorkers {
				t.Errorf("Concurrency() = %d, want %d", e.Concurrency(), tt.wantWorkers)
			}
		})
	}
}

func TestRunAllReports(t *testing.T) {
	var mu sync.Mutex
	var conns []*fakeConn

	e, err := NewExecutor(ExecutorConfig{
		Reports:     testReports("a", "b", "c", "d", "e"),
		Concurrency: 3,
		Params:      reports.Params{Schema: "gold"},
		Connect: func(ctx context.Context, id int) (Conn, error) {
			c := &fakeConn{}
			c.Respond = oneRow
			mu.Lock()
			conns = append(conns, c)
			mu.Unlock()
			return c, nil
		},
	})
	if err != nil {
		t.Fatalf("NewExecutor failed: %v", err)
	}

	outcomes, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(outcomes) != 5 {
		t.Fatalf("Expected 5 outcomes, got %d", len(outcomes))
	}

	for i, name := range []string{"a", "b", "c", "d", "e"} {
		o := outcomes[i]
		if o.Report.Name != name {
			t.Errorf("Outcome %d: expected report %s, got %s", i, name, o.Report.Name)
		}
		if o.Err != nil {
			t.Errorf("Outcome %d: unexpected error %v", i, o.Err)
		}
		if o.Result == nil || len(o.Result.Rows) != 1 {
			t.Errorf("Outcome %d: expected one row", i)
		}
	}

	if len(conns) != 3 {
		t.Errorf("Expected 3 worker connections, got %d", len(conns))
	}
	total := 0
	for _, c := range conns {
		if !c.closed.Load() {
			t.Error("Worker connection was not closed")
		}
		total += len(c.Calls())
	}
	if total != 5 {
		t.Errorf("Expected 5 queries across workers, got %d", total)
	}

	s := e.Stats()
	if s.Completed != 5 || s.Succeeded != 5 || s.Failed != 0 || s.Rows != 5 {
		t.Errorf("Unexpected stats: %+v", s)
	}

	e.PrintSummary()
}

func TestRunFailureDoesNotStopOthers(t *testing.T) {
	boom := errors.New("relation does not exist")

	e, err := NewExecutor(ExecutorConfig{
		Reports:     testReports("ok1", "bad", "ok2"),
		Concurrency: 1,
		Connect: func(context.Context, int) (Conn, error) {
			return &fakeConn{}, nil
		},
		Run: func(ctx context.Context, q reports.Querier, r *reports.Report, p reports.Params) (*reports.Result, error) {
			if r.Name == "bad" {
				return nil, boom
			}
			return &reports.Result{Report: r.Name}, nil
		},
	})
	if err != nil {
		t.Fatalf("NewExecutor failed: %v", err)
	}

	outcomes, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !errors.Is(outcomes[1].Err, boom) {
		t.Errorf("Expected failure for 'bad', got %v", outcomes[1].Err)
	}
	if outcomes[0].Err != nil || outcomes[2].Err != nil {
		t.Errorf("Healthy reports should succeed: %v, %v", outcomes[0].Err, outcomes[2].Err)
	}
	if s := e.Stats(); s.Failed != 1 || s.Succeeded != 2 {
		t.Errorf("Unexpected stats: %+v", s)
	}
}

func TestRunConnectionFailure(t *testing.T) {
	connErr := errors.New("connection refused")

	e, err := NewExecutor(ExecutorConfig{
		Reports:     testReports("a", "b"),
		Concurrency: 2,
		Connect: func(context.Context, int) (Conn, error) {
			return nil, connErr
		},
	})
	if err != nil {
		t.Fatalf("NewExecutor failed: %v", err)
	}

	done := make(chan struct{})
	var outcomes []Outcome
	go func() {
		defer close(done)
		outcomes, _ = e.Run(context.Background())
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not finish when workers could not connect")
	}

	for _, o := range outcomes {
		if !errors.Is(o.Err, connErr) {
			t.Errorf("Report %s: expected connection error, got %v", o.Report.Name, o.Err)
		}
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	release := make(chan struct{})

	e, err := NewExecutor(ExecutorConfig{
		Reports:     testReports("first", "second", "third"),
		Concurrency: 1,
		Connect: func(context.Context, int) (Conn, error) {
			return &fakeConn{}, nil
		},
		Run: func(ctx context.Context, q reports.Querier, r *reports.Report, p reports.Params) (*reports.Result, error) {
			if r.Name == "first" {
				cancel()
				<-release
			}
			return &reports.Result{Report: r.Name}, ctx.Err()
		},
	})
	if err != nil {
		t.Fatalf("NewExecutor failed: %v", err)
	}

	go func() {
		time.Sleep(50 * time.Millisecond)
		close(release)
	}()

	outcomes, err := e.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	if len(outcomes) != 3 {
		t.Fatalf("Expected 3 outcomes, got %d", len(outcomes))
	}
	for _, o := range outcomes {
		if o.Report == nil {
			t.Fatal("Every outcome should name its report")
		}
		if !errors.Is(o.Err, context.Canceled) {
			t.Errorf("Report %s: expected cancellation, got %v", o.Report.Name, o.Err)
		}
	}
}

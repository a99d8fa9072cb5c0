// Package reportstest provides in-memory query fakes for testing code that
// runs reports without a database.
package reportstest

import (
	"context"
	"errors"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Rows is a pgx.Rows over fixed values.
type Rows struct {
	Columns []string
	Data    [][]any

	// Failure is returned from Err once iteration ends.
	Failure error

	pos    int
	closed bool
}

// NewRows returns Rows with the given columns and data.
func NewRows(columns []string, data ...[]any) *Rows {
	return &Rows{Columns: columns, Data: data}
}

func (r *Rows) Close() { r.closed = true }

// Closed reports whether Close has been called.
func (r *Rows) Closed() bool { return r.closed }

func (r *Rows) Err() error { return r.Failure }

func (r *Rows) CommandTag() pgconn.CommandTag { return pgconn.NewCommandTag("SELECT") }

func (r *Rows) FieldDescriptions() []pgconn.FieldDescription {
	fds := make([]pgconn.FieldDescription, len(r.Columns))
	for i, c := range r.Columns {
		fds[i] = pgconn.FieldDescription{Name: c}
	}
	return fds
}

func (r *Rows) Next() bool {
	if r.closed || r.pos >= len(r.Data) {
		r.closed = true
		return false
	}
	r.pos++
	return true
}

func (r *Rows) Scan(dest ...any) error {
	return errors.New("reportstest: Scan is not supported, use Values")
}

func (r *Rows) Values() ([]any, error) {
	if r.pos == 0 || r.pos > len(r.Data) {
		return nil, errors.New("reportstest: no current row")
	}
	return r.Data[r.pos-1], nil
}

func (r *Rows) RawValues() [][]byte { return nil }

func (r *Rows) Conn() *pgx.Conn { return nil }

// Call records one Query invocation.
type Call struct {
	SQL  string
	Args []any
}

// Querier answers every query with rows produced by Respond and records the
// calls it receives. It is safe for concurrent use.
type Querier struct {
	Respond func(sql string, args []any) (pgx.Rows, error)

	mu    sync.Mutex
	calls []Call
}

// Query implements reports.Querier.
func (q *Querier) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	q.mu.Lock()
	q.calls = append(q.calls, Call{SQL: sql, Args: args})
	q.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if q.Respond == nil {
		return NewRows(nil), nil
	}
	return q.Respond(sql, args)
}

// Calls returns a copy of the recorded calls.
func (q *Querier) Calls() []Call {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]Call(nil), q.calls...)
}

package services

import (
	"context"
	"sync"

	"github.com/ekaya-inc/fraudwatch/pkg/adapters/warehouse"
)

type queryCall struct {
	statement string
	args      []any
}

// fakeQuerier records statements and answers them with fn.
type fakeQuerier struct {
	mu    sync.Mutex
	calls []queryCall
	fn    func(statement string, args []any) (*warehouse.QueryResult, error)
}

func (f *fakeQuerier) Query(_ context.Context, statement string, args ...any) (*warehouse.QueryResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, queryCall{statement: statement, args: args})
	f.mu.Unlock()

	if f.fn == nil {
		return warehouse.NewQueryResult(), nil
	}
	return f.fn(statement, args)
}

func (f *fakeQuerier) Calls() []queryCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]queryCall(nil), f.calls...)
}

// returning answers every statement with the same result.
func returning(result *warehouse.QueryResult, err error) *fakeQuerier {
	return &fakeQuerier{fn: func(string, []any) (*warehouse.QueryResult, error) {
		return result, err
	}}
}

func resultOf(columns []string, rows ...warehouse.Row) *warehouse.QueryResult {
	r := warehouse.NewQueryResult(columns...)
	r.Rows = append(r.Rows, rows...)
	return r
}

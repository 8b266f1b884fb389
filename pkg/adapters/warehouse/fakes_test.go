package warehouse

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

type fakeConn struct {
	id      int
	cred    Credential
	queryFn func(ctx context.Context, statement string, args ...any) (*QueryResult, error)
	closed  atomic.Bool
	closeFn func() error
	queries atomic.Int32
}

func (c *fakeConn) Query(ctx context.Context, statement string, args ...any) (*QueryResult, error) {
	c.queries.Add(1)
	if c.queryFn != nil {
		return c.queryFn(ctx, statement, args...)
	}
	return NewQueryResult("N"), nil
}

func (c *fakeConn) Close() error {
	c.closed.Store(true)
	if c.closeFn != nil {
		return c.closeFn()
	}
	return nil
}

type fakeConnector struct {
	mu      sync.Mutex
	conns   []*fakeConn
	err     error
	newConn func(id int) *fakeConn
}

func (f *fakeConnector) Connect(_ context.Context, cred Credential) (Conn, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}

	id := len(f.conns) + 1
	conn := &fakeConn{id: id}
	if f.newConn != nil {
		conn = f.newConn(id)
	}
	conn.cred = cred
	f.conns = append(f.conns, conn)
	return conn, nil
}

func (f *fakeConnector) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.conns)
}

func (f *fakeConnector) get(i int) *fakeConn {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.conns[i]
}

type fakeTokens struct {
	mu    sync.Mutex
	token string
}

func (f *fakeTokens) set(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = token
}

func (f *fakeTokens) Token() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token, f.token != ""
}

var errRefused = errors.New("dial tcp: connection refused")

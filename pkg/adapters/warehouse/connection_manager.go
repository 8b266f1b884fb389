package warehouse

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/ekaya-inc/fraudwatch/pkg/apperrors"
	"github.com/ekaya-inc/fraudwatch/pkg/logging"
)

// ErrManagerClosed is returned by Get after Close.
var ErrManagerClosed = errors.New("connection manager is closed")

// ConnectionManager keeps one lazily opened warehouse session.
//
// Before handing out the cached session it re-reads the token source: when a
// token is present and differs from the one the session was opened with, the
// session is replaced and the old one is closed in the background. With no
// token present, or the same token, the cached session is reused without a
// liveness probe. The whole check-then-connect sequence runs under one mutex,
// so concurrent first use opens exactly one session.
type ConnectionManager struct {
	connector Connector
	tokens    TokenSource
	static    StaticCredentials
	account   string
	logger    *zap.Logger

	mu          sync.Mutex
	conn        Conn
	cachedToken string
	closed      bool
	stats       ConnectionStats

	teardowns sync.WaitGroup
}

// ConnectionStats counts session lifecycle events.
type ConnectionStats struct {
	Connects      int  `json:"connects"`
	Rotations     int  `json:"rotations"`
	Invalidations int  `json:"invalidations"`
	Connected     bool `json:"connected"`
	OAuth         bool `json:"oauth"`
}

// NewConnectionManager creates a manager. account is only used to label errors and logs.
func NewConnectionManager(connector Connector, tokens TokenSource, static StaticCredentials, account string, logger *zap.Logger) *ConnectionManager {
	return &ConnectionManager{
		connector: connector,
		tokens:    tokens,
		static:    static,
		account:   account,
		logger:    logger.Named("warehouse"),
	}
}

// Get returns the cached session, opening or replacing it as needed.
// Connection failures are returned as *apperrors.ConnectionError.
func (m *ConnectionManager) Get(ctx context.Context) (Conn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrManagerClosed
	}

	token, hasToken := m.tokens.Token()

	if m.conn != nil {
		if !hasToken || token == m.cachedToken {
			return m.conn, nil
		}

		m.logger.Info("Session token changed, reconnecting")
		m.stats.Rotations++
		m.teardownLocked()
	}

	cred := m.static.resolve(token, hasToken)
	conn, err := m.connector.Connect(ctx, cred)
	if err != nil {
		m.logger.Error("Failed to connect to warehouse",
			zap.String("account", m.account),
			zap.Bool("oauth", cred.IsOAuth()),
			zap.String("error", logging.SanitizeError(err)),
		)
		return nil, &apperrors.ConnectionError{Account: m.account, Err: err}
	}

	m.conn = conn
	m.cachedToken = token
	m.stats.Connects++
	m.stats.OAuth = cred.IsOAuth()

	m.logger.Info("Connected to warehouse",
		zap.String("account", m.account),
		zap.Bool("oauth", cred.IsOAuth()),
	)
	return conn, nil
}

// Invalidate drops conn if it is still the cached session, so the next Get
// reconnects. A session that was already replaced is left alone.
func (m *ConnectionManager) Invalidate(conn Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if conn == nil || m.conn != conn {
		return
	}

	m.stats.Invalidations++
	m.teardownLocked()
}

// teardownLocked clears the slot and closes the old session asynchronously.
// Caller must hold m.mu.
func (m *ConnectionManager) teardownLocked() {
	old := m.conn
	m.conn = nil
	m.cachedToken = ""

	m.teardowns.Add(1)
	go func() {
		defer m.teardowns.Done()
		if err := old.Close(); err != nil {
			m.logger.Warn("Failed to close replaced warehouse session",
				zap.String("error", logging.SanitizeError(err)),
			)
		}
	}()
}

// Stats returns a snapshot of lifecycle counters.
func (m *ConnectionManager) Stats() ConnectionStats {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := m.stats
	stats.Connected = m.conn != nil
	return stats
}

// Close closes the cached session and waits for background teardowns.
// This method is idempotent and safe to call multiple times.
func (m *ConnectionManager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true

	var err error
	if m.conn != nil {
		err = m.conn.Close()
		m.conn = nil
	}
	m.mu.Unlock()

	m.teardowns.Wait()
	m.logger.Info("Connection manager closed")
	return err
}

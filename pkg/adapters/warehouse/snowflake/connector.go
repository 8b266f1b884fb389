package snowflake

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/snowflakedb/gosnowflake"
	"go.uber.org/zap"

	"github.com/ekaya-inc/fraudwatch/pkg/adapters/warehouse"
	"github.com/ekaya-inc/fraudwatch/pkg/logging"
)

// Connector opens Snowflake sessions.
type Connector struct {
	config Config
	logger *zap.Logger
}

var _ warehouse.Connector = (*Connector)(nil)

// NewConnector creates a connector for the given target.
func NewConnector(cfg Config, logger *zap.Logger) *Connector {
	return &Connector{
		config: cfg,
		logger: logger.Named("snowflake"),
	}
}

// QuietDriverLogs limits gosnowflake's own logger to errors.
func QuietDriverLogs() error {
	return gosnowflake.GetLogger().SetLogLevel("error")
}

// Connect opens a session and verifies it with a ping, so a bad credential or
// unreachable account fails here rather than on the first statement.
func (c *Connector) Connect(ctx context.Context, cred warehouse.Credential) (warehouse.Conn, error) {
	driverCfg := c.config.driverConfig(cred)
	db := sql.OpenDB(gosnowflake.NewConnector(gosnowflake.SnowflakeDriver{}, *driverCfg))
	db.SetMaxIdleConns(2)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		if dsn, dsnErr := gosnowflake.DSN(driverCfg); dsnErr == nil {
			c.logger.Debug("Session ping failed",
				zap.String("dsn", logging.SanitizeDSN(dsn)),
				zap.Bool("oauth", cred.IsOAuth()))
		}
		return nil, translateError(err)
	}

	c.logger.Debug("Opened session",
		zap.String("account", c.config.Account),
		zap.String("warehouse", c.config.Warehouse),
		zap.String("database", c.config.Database),
		zap.String("schema", c.config.Schema),
	)

	return &session{db: db}, nil
}

// session is one sql.DB bound to a single credential.
type session struct {
	db *sql.DB
}

// Query runs a statement and collects every row.
func (s *session) Query(ctx context.Context, statement string, args ...any) (*warehouse.QueryResult, error) {
	rows, err := s.db.QueryContext(ctx, statement, args...)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	columnNames, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}

	columnTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("failed to get column types: %w", err)
	}

	dbTypes := make([]string, len(columnTypes))
	for i, ct := range columnTypes {
		dbTypes[i] = ct.DatabaseTypeName()
	}

	result := warehouse.NewQueryResult(columnNames...)
	for rows.Next() {
		values := make([]any, len(columnNames))
		valuePtrs := make([]any, len(columnNames))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		row := make(warehouse.Row, len(columnNames))
		for i, col := range columnNames {
			row[col] = normalizeValue(values[i], dbTypes[i])
		}
		result.Rows = append(result.Rows, row)
	}

	if err := rows.Err(); err != nil {
		return nil, translateError(err)
	}

	return result, nil
}

// Close closes the underlying pool; statements already running finish first.
func (s *session) Close() error {
	return s.db.Close()
}

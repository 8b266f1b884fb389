// Package warehouse holds the single cached analytics-warehouse session and
// the statement executor built on top of it.
package warehouse

import "context"

// Credential is how a session authenticates. A non-empty Token selects OAuth;
// otherwise User/Password are sent as-is.
type Credential struct {
	Token    string
	User     string
	Password string
}

// IsOAuth reports whether the credential carries a session token.
func (c Credential) IsOAuth() bool {
	return c.Token != ""
}

// Conn is a live warehouse session.
type Conn interface {
	// Query runs one statement with positional (?) arguments.
	Query(ctx context.Context, statement string, args ...any) (*QueryResult, error)

	// Close releases the session.
	Close() error
}

// Connector opens warehouse sessions.
type Connector interface {
	Connect(ctx context.Context, cred Credential) (Conn, error)
}

// Querier is the statement-execution surface services depend on.
type Querier interface {
	Query(ctx context.Context, statement string, args ...any) (*QueryResult, error)
}

// Row is one result record keyed by column name.
type Row = map[string]any

// QueryResult contains the ordered columns and records of one statement.
// Rows is never nil.
type QueryResult struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// NewQueryResult returns an empty result with the given columns.
func NewQueryResult(columns ...string) *QueryResult {
	return &QueryResult{Columns: columns, Rows: make([]Row, 0)}
}

// Len returns the number of rows.
func (r *QueryResult) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Rows)
}

// First returns the first row, if any.
func (r *QueryResult) First() (Row, bool) {
	if r.Len() == 0 {
		return nil, false
	}
	return r.Rows[0], true
}

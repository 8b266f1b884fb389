package warehouse

import (
	"os"
	"strings"
)

// DefaultTokenPath is where the hosting platform mounts the session token.
const DefaultTokenPath = "/snowflake/session/token"

// TokenSource yields the current OAuth session token, if any.
type TokenSource interface {
	Token() (string, bool)
}

// FileTokenSource reads the token from a file on every call; the platform
// rewrites the file when it rotates the token.
type FileTokenSource struct {
	Path string
}

// Token returns the trimmed file contents. A missing, unreadable, or blank
// file means no token.
func (s FileTokenSource) Token() (string, bool) {
	path := s.Path
	if path == "" {
		path = DefaultTokenPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}

	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", false
	}
	return token, true
}

// StaticCredentials is the username/password fallback.
type StaticCredentials struct {
	User     string
	Password string
}

// resolve prefers the token when one is present.
func (s StaticCredentials) resolve(token string, hasToken bool) Credential {
	if hasToken {
		return Credential{Token: token}
	}
	return Credential{User: s.User, Password: s.Password}
}

// Package identity resolves the stable anonymous token that identifies a
// machine across notebook sessions. The token lives in a plain-text file at a
// fixed per-user path; as long as that file exists, every process on the
// machine resolves the same token.
package identity

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// DefaultPath returns the per-user identity file location
// ($HOME/.nbpulse/identity).
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("identity: resolve home dir: %w", err)
	}
	return filepath.Join(home, ".nbpulse", "identity"), nil
}

// Resolver reads or creates the identity token. It caches the token after the
// first successful resolve, so a process performs at most one file write.
type Resolver struct {
	path string

	mu    sync.Mutex
	token string
}

// NewResolver returns a resolver backed by the file at path.
func NewResolver(path string) *Resolver {
	return &Resolver{path: path}
}

// Resolve returns the identity token. An existing, readable file wins
// unconditionally: its trimmed contents are returned unchanged. Otherwise a
// fresh time-ordered token is generated and persisted. If persisting fails
// the token is still returned along with the error, so instrumentation can
// proceed for the rest of the session.
//
// The cold-start write is first-writer-wins: if another process creates the
// file concurrently, the token it wrote is adopted.
func (r *Resolver) Resolve() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.token != "" {
		return r.token, nil
	}
	data, readErr := os.ReadFile(r.path)
	if readErr == nil {
		if tok := strings.TrimSpace(string(data)); tok != "" {
			r.token = tok
			return tok, nil
		}
		// Corrupt or empty file: rewrite it in place.
		tok := newToken()
		r.token = tok
		if err := os.WriteFile(r.path, []byte(tok), 0o600); err != nil {
			return tok, fmt.Errorf("identity: persist token: %w", err)
		}
		return tok, nil
	}
	tok := newToken()
	if err := r.persist(tok); err != nil {
		// A racing writer beat us to the file; adopt its token.
		if existing := readToken(r.path); existing != "" {
			r.token = existing
			return existing, nil
		}
		r.token = tok
		return tok, fmt.Errorf("identity: persist token: %w", err)
	}
	r.token = tok
	return tok, nil
}

// persist writes tok to the identity file, creating parent directories. The
// file is created exclusively so concurrent cold starts cannot clobber each
// other; os.ErrExist surfaces for the caller to re-read.
func (r *Resolver) persist(tok string) error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0o700); err != nil {
		return err
	}
	f, err := os.OpenFile(r.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(tok); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func readToken(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// newToken generates a time-ordered unique token (UUID v7), falling back to a
// random UUID if v7 generation fails.
func newToken() string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return id.String()
}

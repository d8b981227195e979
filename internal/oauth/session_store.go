package oauth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"apsmcp/pkg/logging"
	pkgoauth "apsmcp/pkg/oauth"
)

// TokenRecord is the persisted interactive session. ExpiresAt is Unix
// milliseconds.
type TokenRecord struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"`
	Scope        string `json:"scope"`
}

// Expiry returns ExpiresAt as a time.
func (r *TokenRecord) Expiry() time.Time {
	return time.UnixMilli(r.ExpiresAt)
}

func recordFromToken(tok *pkgoauth.Token) *TokenRecord {
	return &TokenRecord{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    tok.ExpiresAt.UnixMilli(),
		Scope:        tok.Scope,
	}
}

// SessionStore persists at most one TokenRecord.
type SessionStore interface {
	// Load returns ErrNoSession when nothing is stored.
	Load() (*TokenRecord, error)
	Save(record *TokenRecord) error
	// Clear is a no-op when nothing is stored.
	Clear() error
}

// FileSessionStore keeps the record in a single JSON file.
type FileSessionStore struct {
	path string
}

// NewFileSessionStore creates a store backed by path. The parent directory
// is created on first save.
func NewFileSessionStore(path string) *FileSessionStore {
	return &FileSessionStore{path: path}
}

// Path returns the session file location.
func (s *FileSessionStore) Path() string {
	return s.path
}

// Load implements SessionStore.
func (s *FileSessionStore) Load() (*TokenRecord, error) {
	// #nosec G304 -- path comes from configuration, not tool input
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var record TokenRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to parse session file %s: %w", s.path, err)
	}
	if record.AccessToken == "" && record.RefreshToken == "" {
		return nil, ErrNoSession
	}
	return &record, nil
}

// Save implements SessionStore. The file is replaced atomically.
func (s *FileSessionStore) Save(record *TokenRecord) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".session-*.json")
	if err != nil {
		return fmt.Errorf("failed to create session file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if err := tmp.Chmod(0600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to restrict session file permissions: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		logging.Audit("session_store_failed",
			"path", s.path,
			"error", err.Error(),
		)
		return fmt.Errorf("failed to persist session: %w", err)
	}

	logging.Audit("session_stored",
		"path", s.path,
		"expiry", record.Expiry().UTC().Format(time.RFC3339),
		"has_refresh_token", record.RefreshToken != "",
		"scope", record.Scope,
	)
	return nil
}

// Clear implements SessionStore.
func (s *FileSessionStore) Clear() error {
	err := os.Remove(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		logging.Audit("session_delete_failed",
			"path", s.path,
			"error", err.Error(),
		)
		return fmt.Errorf("failed to delete session file: %w", err)
	}

	logging.Audit("session_deleted",
		"path", s.path,
	)
	return nil
}

// MemorySessionStore keeps the record in memory only.
type MemorySessionStore struct {
	mu     sync.Mutex
	record *TokenRecord
}

// NewMemorySessionStore creates an empty in-memory store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{}
}

// Load implements SessionStore.
func (s *MemorySessionStore) Load() (*TokenRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.record == nil {
		return nil, ErrNoSession
	}
	r := *s.record
	return &r, nil
}

// Save implements SessionStore.
func (s *MemorySessionStore) Save(record *TokenRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := *record
	s.record = &r
	return nil
}

// Clear implements SessionStore.
func (s *MemorySessionStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record = nil
	return nil
}

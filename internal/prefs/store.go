// Package prefs implements the key-value preference store that lives
// outside the relational database: session state (current user id,
// logged-in flag) and light preferences (theme, currency, language).
// Reads are synchronous point-in-time lookups; writes persist immediately.
package prefs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Preference keys.
const (
	keyCurrentUserID = "current_user_id"
	keyLoggedIn      = "is_logged_in"
	keyTheme         = "theme_mode"
	keyCurrency      = "currency"
	keyLanguage      = "language"
)

// Store is a file-backed string key-value store. The whole map is held in
// memory and flushed to disk on every write via an atomic rename.
type Store struct {
	mu   sync.RWMutex
	path string
	data map[string]string
}

// Open loads the store from path, starting empty if the file does not exist.
func Open(path string) (*Store, error) {
	s := &Store{path: path, data: make(map[string]string)}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read preferences: %w", err)
	}

	if err := json.Unmarshal(raw, &s.data); err != nil {
		return nil, fmt.Errorf("decode preferences: %w", err)
	}
	return s, nil
}

// get returns the value for key, or "" when absent.
func (s *Store) get(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data[key]
}

// set stores key=value and flushes to disk.
func (s *Store) set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return s.flushLocked()
}

// delete removes keys and flushes to disk.
func (s *Store) delete(keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.data, k)
	}
	return s.flushLocked()
}

// flushLocked writes the store atomically. Callers must hold mu.
func (s *Store) flushLocked() error {
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create preferences dir: %w", err)
	}
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("write preferences: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace preferences: %w", err)
	}
	return nil
}

// SetSession records the logged-in user.
func (s *Store) SetSession(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[keyCurrentUserID] = userID
	s.data[keyLoggedIn] = "true"
	return s.flushLocked()
}

// ClearSession removes the session keys.
func (s *Store) ClearSession() error {
	return s.delete(keyCurrentUserID, keyLoggedIn)
}

// CurrentUserID returns the logged-in user's id, or "" when logged out.
func (s *Store) CurrentUserID() string {
	return s.get(keyCurrentUserID)
}

// IsLoggedIn reports whether a session is active.
func (s *Store) IsLoggedIn() bool {
	return s.get(keyLoggedIn) == "true"
}

// Theme returns the stored theme mode, or "" when unset.
func (s *Store) Theme() string { return s.get(keyTheme) }

// SetTheme stores the theme mode.
func (s *Store) SetTheme(mode string) error { return s.set(keyTheme, mode) }

// Currency returns the stored currency preference, or "" when unset.
func (s *Store) Currency() string { return s.get(keyCurrency) }

// SetCurrency stores the currency preference.
func (s *Store) SetCurrency(code string) error { return s.set(keyCurrency, code) }

// Language returns the stored language preference, or "" when unset.
func (s *Store) Language() string { return s.get(keyLanguage) }

// SetLanguage stores the language preference.
func (s *Store) SetLanguage(lang string) error { return s.set(keyLanguage, lang) }

// Package apitoken keeps the loopback API access token in the OS keychain,
// with a file fallback for systems that have no keyring service.
package apitoken

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/zalando/go-keyring"
)

const (
	DefaultService = "scorekeeper-desktop"
	account        = "api-token"
)

// ErrNotFound is returned when no token has been stored yet.
var ErrNotFound = keyring.ErrNotFound

// Store reads and writes the token.
type Store struct {
	service      string
	fallbackPath string
	mu           sync.Mutex
}

// New creates a store. fallbackPath may be empty to disable the file fallback.
func New(service, fallbackPath string) *Store {
	if strings.TrimSpace(service) == "" {
		service = DefaultService
	}
	return &Store{service: service, fallbackPath: fallbackPath}
}

// Get returns the stored token.
func (s *Store) Get() (string, error) {
	val, err := keyring.Get(s.service, account)
	if err == nil {
		return val, nil
	}
	if !unavailable(err) && !errors.Is(err, keyring.ErrNotFound) {
		return "", fmt.Errorf("apitoken: keyring get: %w", err)
	}
	return s.readFallback()
}

// Set stores value, falling back to the file when the keyring is unavailable.
func (s *Store) Set(value string) error {
	err := keyring.Set(s.service, account, value)
	if err == nil {
		return nil
	}
	if !unavailable(err) {
		return fmt.Errorf("apitoken: keyring set: %w", err)
	}
	return s.writeFallback(value)
}

// Ensure returns the stored token, creating one with generate on first use.
func (s *Store) Ensure(generate func() string) (string, error) {
	tok, err := s.Get()
	if err == nil && tok != "" {
		return tok, nil
	}
	if err != nil && !errors.Is(err, ErrNotFound) {
		return "", err
	}
	tok = generate()
	if err := s.Set(tok); err != nil {
		return "", err
	}
	return tok, nil
}

// Reset removes the token from the keyring and the fallback file.
func (s *Store) Reset() error {
	if err := keyring.Delete(s.service, account); err != nil &&
		!errors.Is(err, keyring.ErrNotFound) && !unavailable(err) {
		return fmt.Errorf("apitoken: keyring delete: %w", err)
	}
	if s.fallbackPath == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.fallbackPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("apitoken: remove fallback: %w", err)
	}
	return nil
}

func unavailable(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "secret service") ||
		strings.Contains(msg, "dbus") ||
		strings.Contains(msg, "no keychain") ||
		strings.Contains(msg, "keyring backend not available")
}

func (s *Store) readFallback() (string, error) {
	if s.fallbackPath == "" {
		return "", ErrNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, err := os.ReadFile(s.fallbackPath)
	if os.IsNotExist(err) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("apitoken: read fallback: %w", err)
	}
	tok := strings.TrimSpace(string(raw))
	if tok == "" {
		return "", ErrNotFound
	}
	return tok, nil
}

func (s *Store) writeFallback(value string) error {
	if s.fallbackPath == "" {
		return errors.New("apitoken: keyring unavailable and no fallback path configured")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(s.fallbackPath), 0o700); err != nil {
		return fmt.Errorf("apitoken: mkdir fallback dir: %w", err)
	}
	if err := os.WriteFile(s.fallbackPath, []byte(value), 0o600); err != nil {
		return fmt.Errorf("apitoken: write fallback: %w", err)
	}
	return nil
}

package main

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// tokenStore keeps the access token between invocations.
type tokenStore struct {
	path string
}

func defaultTokenStore() (*tokenStore, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return &tokenStore{path: filepath.Join(home, ".inventoryctl", "token")}, nil
}

// Load returns an empty token when none was saved.
func (s *tokenStore) Load() (string, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

func (s *tokenStore) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(s.path, []byte(token+"\n"), 0o600)
}

func (s *tokenStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

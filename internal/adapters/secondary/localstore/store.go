package localstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// MemoryStore : équivalent du localStorage pour les tests.
type MemoryStore map[string]string

func NewMemoryStore() MemoryStore { return MemoryStore{} }

func (m MemoryStore) Get(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

func (m MemoryStore) Set(key, value string) error {
	m[key] = value
	return nil
}

func (m MemoryStore) Remove(key string) error {
	delete(m, key)
	return nil
}

// FileStore persiste les clés dans un fichier JSON (un seul écrivain : la CLI).
type FileStore struct {
	path string
	data map[string]string
}

// OpenFileStore charge le fichier s'il existe ; un fichier absent donne un store vide.
func OpenFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path, data: map[string]string{}}

	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read store: %w", err)
	}
	if len(raw) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(raw, &s.data); err != nil {
		return nil, fmt.Errorf("decode store %s: %w", path, err)
	}
	return s, nil
}

func (s *FileStore) Get(key string) (string, bool) {
	v, ok := s.data[key]
	return v, ok
}

func (s *FileStore) Set(key, value string) error {
	s.data[key] = value
	return s.flush()
}

func (s *FileStore) Remove(key string) error {
	if _, ok := s.data[key]; !ok {
		return nil
	}
	delete(s.data, key)
	return s.flush()
}

// flush écrit dans un fichier temporaire puis renomme.
func (s *FileStore) flush() error {
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("encode store: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("write store: %w", err)
	}
	return os.Rename(tmp, s.path)
}

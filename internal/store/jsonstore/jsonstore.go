package jsonstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// JSON-backed key-value medium. Single file holding one object that maps
// keys to string values, the same shape browser local storage has.
// No locking; one process owns the file at a time.

const (
	dataFileName  = "todos.json"
	corruptSuffix = ".corrupt"
)

type Store struct {
	path string
	log  zerolog.Logger
}

type Option func(*Store)

func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// Open returns a store rooted at dir, creating dir if needed.
func Open(dir string, opts ...Option) (*Store, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getwd: %w", err)
		}
		dir = wd
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir: %w", err)
	}
	s := &Store{path: filepath.Join(dir, dataFileName), log: zerolog.Nop()}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

func (s *Store) Path() string { return s.path }

func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	m, err := s.readAll()
	if err != nil {
		return nil, false, err
	}
	v, ok := m[key]
	if !ok {
		return nil, false, nil
	}
	return []byte(v), true, nil
}

func (s *Store) Set(_ context.Context, key string, value []byte) error {
	m, err := s.readAll()
	if err != nil {
		return err
	}
	m[key] = string(value)
	return s.writeAll(m)
}

func (s *Store) Close() error { return nil }

func (s *Store) readAll() (map[string]string, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("read file: %w", err)
	}
	m := map[string]string{}
	if len(b) == 0 {
		return m, nil
	}
	if err := json.Unmarshal(b, &m); err != nil {
		// An undecodable file holds no keys. It is moved aside so the next
		// write starts fresh and the old bytes stay recoverable.
		backup := s.path + corruptSuffix
		ev := s.log.Warn().Err(err).Str("path", s.path)
		if rerr := os.Rename(s.path, backup); rerr != nil {
			ev = ev.AnErr("backup_err", rerr)
		} else {
			ev = ev.Str("backup", backup)
		}
		ev.Msg("data file is not a key-value object, treating it as empty")
		return map[string]string{}, nil
	}
	return m, nil
}

// writeAll replaces the file atomically so a crash never leaves half a list.
func (s *Store) writeAll(m map[string]string) error {
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), dataFileName+".*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

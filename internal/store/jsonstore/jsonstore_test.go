package jsonstore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestGetMissingFile(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	v, found, err := s.Get(context.Background(), "k")
	if err != nil || found || v != nil {
		t.Fatalf("got %q, %v, %v", v, found, err)
	}
}

func TestSetGet(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, _ := Open(dir)

	if err := s.Set(ctx, "a", []byte(`[1,2]`)); err != nil {
		t.Fatal(err)
	}
	if err := s.Set(ctx, "b", []byte("x")); err != nil {
		t.Fatal(err)
	}
	if err := s.Set(ctx, "a", []byte(`[3]`)); err != nil {
		t.Fatal(err)
	}

	// reopen to make sure it hit the disk
	s2, _ := Open(dir)
	v, found, err := s2.Get(ctx, "a")
	if err != nil || !found || string(v) != "[3]" {
		t.Fatalf("a: got %q, %v, %v", v, found, err)
	}
	v, _, _ = s2.Get(ctx, "b")
	if string(v) != "x" {
		t.Errorf("b: got %q", v)
	}
}

func TestFileShape(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, _ := Open(dir)
	s.Set(ctx, "@to-do-list:todos", []byte(`[]`))

	b, err := os.ReadFile(filepath.Join(dir, dataFileName))
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]string
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("file is not a JSON object: %v", err)
	}
	if m["@to-do-list:todos"] != "[]" {
		t.Errorf("got %v", m)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %v", entries)
	}
}

func TestCorruptFileIsEmptyAndBackedUp(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	// a list in the older {title, done} layout, not a key-value object
	old := []byte(`[{"title":"old","done":false}]`)
	os.WriteFile(filepath.Join(dir, dataFileName), old, 0o644)
	s, _ := Open(dir)

	v, found, err := s.Get(ctx, "k")
	if err != nil || found || v != nil {
		t.Fatalf("Get: got %q, %v, %v", v, found, err)
	}
	backup, err := os.ReadFile(filepath.Join(dir, dataFileName+corruptSuffix))
	if err != nil || string(backup) != string(old) {
		t.Fatalf("backup: got %q, %v", backup, err)
	}

	if err := s.Set(ctx, "k", []byte("[]")); err != nil {
		t.Fatalf("Set over corrupt file: %v", err)
	}
	v, found, err = s.Get(ctx, "k")
	if err != nil || !found || string(v) != "[]" {
		t.Fatalf("after Set: got %q, %v, %v", v, found, err)
	}
}

func TestSetOverCorruptFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, dataFileName), []byte("garbage"), 0o644)
	s, _ := Open(dir)

	if err := s.Set(ctx, "k", []byte("x")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	v, _, _ := s.Get(ctx, "k")
	if string(v) != "x" {
		t.Errorf("got %q", v)
	}
}

func TestOpenCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	s, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Dir(s.Path()) != dir {
		t.Errorf("path: %s", s.Path())
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("dir not created: %v", err)
	}
}

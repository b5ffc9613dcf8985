package file

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

func readLines(t *testing.T, dir string) []string {
	t.Helper()
	parts, err := filepath.Glob(filepath.Join(dir, "part-*"))
	if err != nil {
		t.Fatalf("listing parts: %v", err)
	}
	lines := make([]string, 0)
	for _, p := range parts {
		data, err := os.ReadFile(p)
		if err != nil {
			t.Fatalf("reading %s: %v", p, err)
		}
		lines = append(lines, strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")...)
	}
	sort.Strings(lines)
	return lines
}

func mustWrite(t *testing.T, s *Store, name string, lines ...string) *CollectionWriter {
	t.Helper()
	w, err := s.Create(name, 2)
	if err != nil {
		t.Fatalf("creating %s: %v", name, err)
	}
	for i, line := range lines {
		if err := w.WriteLine(i%2, line); err != nil {
			t.Fatalf("writing line: %v", err)
		}
	}
	return w.(*CollectionWriter)
}

func TestStoreCommit(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(filepath.Join(dir, "out"))
	if err != nil {
		t.Fatalf("getting store: %v", err)
	}
	w := mustWrite(t, s, "nodes_albums", "Live", "Studio", "Demo")
	if _, err := os.Stat(filepath.Join(s.Dir, "nodes_albums")); !os.IsNotExist(err) {
		t.Fatalf("collection visible before commit: %v", err)
	}
	if err := w.Commit(); err != nil {
		t.Fatalf("committing: %v", err)
	}
	coll := filepath.Join(s.Dir, "nodes_albums")
	if _, err := os.Stat(filepath.Join(coll, SuccessMarker)); err != nil {
		t.Fatalf("missing success marker: %v", err)
	}
	if _, err := os.Stat(filepath.Join(coll, PartName(1))); err != nil {
		t.Fatalf("missing partition 1: %v", err)
	}
	got := readLines(t, coll)
	exp := []string{"Demo", "Live", "Studio"}
	if strings.Join(got, "|") != strings.Join(exp, "|") {
		t.Fatalf("expected %v, got %v", exp, got)
	}
	if err := w.Commit(); err == nil {
		t.Fatal("expected error committing twice")
	}
	if err := w.Abort(); err != nil {
		t.Fatalf("abort after commit should be a no-op: %v", err)
	}
}

func TestStoreReplace(t *testing.T) {
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("getting store: %v", err)
	}
	if err := mustWrite(t, s, "nodes_years", "1967", "1999", "2001").Commit(); err != nil {
		t.Fatalf("committing first version: %v", err)
	}
	if err := mustWrite(t, s, "nodes_years", "1984").Commit(); err != nil {
		t.Fatalf("committing second version: %v", err)
	}
	got := readLines(t, filepath.Join(s.Dir, "nodes_years"))
	// partition 1 of the second version is empty.
	if strings.Join(got, "|") != "|1984" {
		t.Fatalf("expected only the second version, got %q", got)
	}
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		t.Fatalf("reading store: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "nodes_years" {
		t.Fatalf("unexpected entries left in store: %v", entries)
	}
}

func TestStoreAbort(t *testing.T) {
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("getting store: %v", err)
	}
	if err := mustWrite(t, s, "rel_performs", "AR1,TR1").Commit(); err != nil {
		t.Fatalf("committing: %v", err)
	}
	w := mustWrite(t, s, "rel_performs", "AR2,TR2")
	if err := w.Abort(); err != nil {
		t.Fatalf("aborting: %v", err)
	}
	got := readLines(t, filepath.Join(s.Dir, "rel_performs"))
	if strings.Join(got, "|") != "|AR1,TR1" {
		t.Fatalf("abort changed the committed version: %q", got)
	}
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		t.Fatalf("reading store: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("staging directory left behind: %v", entries)
	}
}

func TestStoreErrors(t *testing.T) {
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("getting store: %v", err)
	}
	for _, name := range []string{"", ".hidden", "a/b", ".."} {
		if _, err := s.Create(name, 1); err == nil {
			t.Fatalf("expected error creating collection %q", name)
		}
	}
	w, err := s.Create("nodes_tags", 1)
	if err != nil {
		t.Fatalf("creating: %v", err)
	}
	defer w.Abort()
	if err := w.WriteLine(1, "x"); err == nil {
		t.Fatal("expected error writing to partition out of range")
	}
	if err := w.WriteLine(-1, "x"); err == nil {
		t.Fatal("expected error writing to negative partition")
	}
}

func TestStoreNoPartitions(t *testing.T) {
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("getting store: %v", err)
	}
	w, err := s.Create("rel_similar_songs", 0)
	if err != nil {
		t.Fatalf("creating: %v", err)
	}
	if err := w.Commit(); err != nil {
		t.Fatalf("committing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(s.Dir, "rel_similar_songs", SuccessMarker)); err != nil {
		t.Fatalf("empty collection not committed: %v", err)
	}
}

func TestSwapRestoresPrevious(t *testing.T) {
	dir := t.TempDir()
	final := filepath.Join(dir, "nodes_years")
	if err := os.MkdirAll(final, 0700); err != nil {
		t.Fatalf("making final: %v", err)
	}
	if err := os.WriteFile(filepath.Join(final, "part-00000"), []byte("1967\n"), 0600); err != nil {
		t.Fatalf("writing part: %v", err)
	}
	tests := []struct {
		staging string
	}{
		{staging: filepath.Join(dir, ".nodes_years-missing")},
		{staging: filepath.Join(dir, "no", "such", "dir")},
	}
	for i, test := range tests {
		old, err := swap(test.staging, final)
		if err == nil {
			t.Fatalf("test %d: expected rename of missing staging dir to fail", i)
		}
		if old != "" {
			t.Fatalf("test %d: expected no previous version to remove, got %s", i, old)
		}
		got := readLines(t, final)
		if strings.Join(got, "|") != "1967" {
			t.Fatalf("test %d: previous version not restored, got %q", i, got)
		}
		if _, err := os.Stat(test.staging + ".old"); !os.IsNotExist(err) {
			t.Fatalf("test %d: moved-aside copy left behind: %v", i, err)
		}
	}
}

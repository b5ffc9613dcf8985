package songgraph

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// MismatchFile is the name of the exclusion reference file inside the
// mismatch directory.
const MismatchFile = "sid_mismatches.txt"

// The song and track ids live at a fixed offset in every mismatch line, e.g.
// "ERROR: <SOUMNSI12AB0182807 TRMMGKQ128F9325E10> Digital Underground ..."
const (
	exclusionStart = 8
	exclusionEnd   = 45
)

// ExclusionEntry identifies one known-bad (song, track) pairing.
type ExclusionEntry struct {
	SongID  string
	TrackID string
}

// ExclusionSet is an immutable set of ExclusionEntry. It is built once before
// any reader runs and is safe for concurrent use afterwards.
type ExclusionSet struct {
	entries map[ExclusionEntry]struct{}
}

// NewExclusionSet builds a set from entries.
func NewExclusionSet(entries ...ExclusionEntry) *ExclusionSet {
	s := &ExclusionSet{entries: make(map[ExclusionEntry]struct{}, len(entries))}
	for _, e := range entries {
		s.entries[e] = struct{}{}
	}
	return s
}

// Contains reports whether the pairing is excluded. A nil set excludes
// nothing.
func (s *ExclusionSet) Contains(songID, trackID string) bool {
	if s == nil {
		return false
	}
	_, ok := s.entries[ExclusionEntry{SongID: songID, TrackID: trackID}]
	return ok
}

// Len returns the number of distinct excluded pairings.
func (s *ExclusionSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

// LoadExclusions parses MismatchFile inside dir.
func LoadExclusions(dir string) (*ExclusionSet, error) {
	name := filepath.Join(dir, MismatchFile)
	f, err := os.Open(name)
	if err != nil {
		return nil, errors.Wrap(err, "opening mismatch file")
	}
	defer f.Close()
	set, err := ParseExclusions(f)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", name)
	}
	return set, nil
}

// ParseExclusions reads one exclusion per non-blank line. Any line too short
// to hold both ids, or whose id span does not hold exactly two ids, fails the
// whole parse.
func ParseExclusions(r io.Reader) (*ExclusionSet, error) {
	set := &ExclusionSet{entries: make(map[ExclusionEntry]struct{})}
	scan := bufio.NewScanner(r)
	line := 0
	for scan.Scan() {
		line++
		txt := scan.Text()
		if strings.TrimSpace(txt) == "" {
			continue
		}
		entry, err := parseMismatch(txt)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		set.entries[entry] = struct{}{}
	}
	if err := scan.Err(); err != nil {
		return nil, errors.Wrapf(err, "scanning after line %d", line)
	}
	return set, nil
}

func parseMismatch(line string) (ExclusionEntry, error) {
	if len(line) < exclusionEnd {
		return ExclusionEntry{}, errors.Errorf("mismatch line too short (%d bytes, need %d): %q", len(line), exclusionEnd, line)
	}
	ids := strings.Fields(line[exclusionStart:exclusionEnd])
	if len(ids) != 2 {
		return ExclusionEntry{}, errors.Errorf("expected song and track id in %q, got %d fields", line[exclusionStart:exclusionEnd], len(ids))
	}
	return ExclusionEntry{SongID: ids[0], TrackID: ids[1]}, nil
}

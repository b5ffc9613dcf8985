// Package file persists output collections as directories of part files on
// local disk.
package file

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/pilosa/songgraph"
	"github.com/pkg/errors"
)

// SuccessMarker is written into every committed collection directory.
const SuccessMarker = "_SUCCESS"

// Store is a songgraph.OutputStore which writes each collection to a
// directory named after it inside Dir.
type Store struct {
	Dir string
}

// NewStore gets a Store rooted at dir, creating dir if needed.
func NewStore(dir string) (*Store, error) {
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return nil, errors.Wrap(err, "making output directory")
	}
	return &Store{Dir: dir}, nil
}

// Create implements songgraph.OutputStore. Lines go to a hidden staging
// directory until Commit.
func (s *Store) Create(name string, partitions int) (songgraph.CollectionWriter, error) {
	if name == "" || name != filepath.Base(name) || name[0] == '.' {
		return nil, errors.Errorf("invalid collection name '%s'", name)
	}
	staging := filepath.Join(s.Dir, fmt.Sprintf(".%s-%s", name, uuid.New()))
	err := os.Mkdir(staging, 0755)
	if err != nil {
		return nil, errors.Wrap(err, "making staging directory")
	}
	cw := &CollectionWriter{
		final:   filepath.Join(s.Dir, name),
		staging: staging,
		parts:   make([]*part, partitions),
	}
	for i := range cw.parts {
		f, err := os.Create(filepath.Join(staging, PartName(i)))
		if err != nil {
			cw.Abort()
			return nil, errors.Wrapf(err, "creating partition %d", i)
		}
		cw.parts[i] = &part{f: f, w: bufio.NewWriter(f)}
	}
	return cw, nil
}

// PartName returns the file name of a partition.
func PartName(i int) string {
	return fmt.Sprintf("part-%05d", i)
}

type part struct {
	mu sync.Mutex
	f  *os.File
	w  *bufio.Writer
}

// CollectionWriter writes one collection version into its staging
// directory.
type CollectionWriter struct {
	final   string
	staging string
	parts   []*part

	done bool
}

// WriteLine implements songgraph.CollectionWriter.
func (cw *CollectionWriter) WriteLine(partition int, line string) error {
	if partition < 0 || partition >= len(cw.parts) {
		return errors.Errorf("partition %d out of range [0,%d)", partition, len(cw.parts))
	}
	p := cw.parts[partition]
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, err := p.w.WriteString(line); err != nil {
		return err
	}
	return p.w.WriteByte('\n')
}

// Commit flushes every partition, then swaps the staging directory into
// place. A previous version is moved aside before the swap and removed after
// it, so the collection directory is never observed half-written.
func (cw *CollectionWriter) Commit() error {
	if cw.done {
		return errors.New("collection already committed or aborted")
	}
	if err := cw.closeParts(); err != nil {
		return err
	}
	marker, err := os.Create(filepath.Join(cw.staging, SuccessMarker))
	if err != nil {
		return errors.Wrap(err, "writing success marker")
	}
	if err := marker.Close(); err != nil {
		return errors.Wrap(err, "closing success marker")
	}

	old, err := swap(cw.staging, cw.final)
	if err != nil {
		return err
	}
	cw.done = true
	if old != "" {
		if err := os.RemoveAll(old); err != nil {
			return errors.Wrap(err, "removing previous version")
		}
	}
	return nil
}

// swap renames staging to final. An existing final is moved to staging+".old"
// first and is put back if the rename fails. The returned path, if any, is
// the moved-aside version for the caller to remove.
func swap(staging, final string) (old string, err error) {
	if _, err := os.Stat(final); err == nil {
		old = staging + ".old"
		if err := os.Rename(final, old); err != nil {
			return "", errors.Wrap(err, "moving previous version aside")
		}
	} else if !os.IsNotExist(err) {
		return "", errors.Wrap(err, "checking for previous version")
	}
	if err := os.Rename(staging, final); err != nil {
		if old != "" {
			if rerr := os.Rename(old, final); rerr != nil {
				return "", errors.Wrapf(err, "renaming staging directory (restoring previous version: %v)", rerr)
			}
		}
		return "", errors.Wrap(err, "renaming staging directory")
	}
	return old, nil
}

// Abort discards the staging directory. It is a no-op after Commit.
func (cw *CollectionWriter) Abort() error {
	if cw.done {
		return nil
	}
	cw.done = true
	cw.closeParts()
	return errors.Wrap(os.RemoveAll(cw.staging), "removing staging directory")
}

func (cw *CollectionWriter) closeParts() error {
	var firstErr error
	for i, p := range cw.parts {
		if p == nil || p.f == nil {
			continue
		}
		if err := p.w.Flush(); err != nil && firstErr == nil {
			firstErr = errors.Wrapf(err, "flushing partition %d", i)
		}
		if err := p.f.Close(); err != nil && firstErr == nil {
			firstErr = errors.Wrapf(err, "closing partition %d", i)
		}
		p.f = nil
	}
	return firstErr
}

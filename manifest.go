package songgraph

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// Manifest file names expected inside the input directory.
const (
	MeasurementManifest = "list_hdf5_files.txt"
	TaggingManifest     = "list_lastfm_files.txt"
)

// ReadManifest reads a line-delimited list of paths and returns them grouped
// into at most partitions line-aligned partitions (fewer if the manifest is
// short). Blank lines are skipped. Partition assignment carries no meaning.
func ReadManifest(name string, partitions int) ([][]string, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, errors.Wrap(err, "opening manifest")
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil, errors.Wrap(err, "getting manifest size")
	}
	cuts, err := manifestCuts(f, info.Size(), partitions)
	if err != nil {
		return nil, errors.Wrapf(err, "splitting manifest %s", name)
	}

	parts := make([][]string, 0, len(cuts)-1)
	for i := 1; i < len(cuts); i++ {
		paths := make([]string, 0)
		scan := bufio.NewScanner(io.NewSectionReader(f, cuts[i-1], cuts[i]-cuts[i-1]))
		for scan.Scan() {
			p := strings.TrimSpace(scan.Text())
			if p == "" {
				continue
			}
			paths = append(paths, p)
		}
		if err := scan.Err(); err != nil {
			return nil, errors.Wrapf(err, "scanning partition %d of %s", i-1, name)
		}
		if len(paths) > 0 {
			parts = append(parts, paths)
		}
	}
	return parts, nil
}

// manifestCuts returns the ascending offsets which split a manifest of the
// given size into at most partitions sections, each ending just past a
// newline or at the end of the manifest. The first cut is 0 and the last is
// size.
func manifestCuts(r io.ReaderAt, size int64, partitions int) ([]int64, error) {
	if partitions < 1 {
		partitions = 1
	}
	share := size / int64(partitions)
	cuts := []int64{0}
	buf := make([]byte, 4096)
	for share > 0 {
		from := cuts[len(cuts)-1] + share
		if from >= size {
			break
		}
		next, err := nextLineStart(r, from, size, buf)
		if err != nil {
			return nil, err
		}
		if next >= size {
			break
		}
		cuts = append(cuts, next)
	}
	return append(cuts, size), nil
}

// nextLineStart returns the offset just past the first newline at or after
// off, or size if no newline follows.
func nextLineStart(r io.ReaderAt, off, size int64, buf []byte) (int64, error) {
	for off < size {
		n, err := r.ReadAt(buf, off)
		if i := bytes.IndexByte(buf[:n], '\n'); i >= 0 {
			return off + int64(i) + 1, nil
		}
		off += int64(n)
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, errors.Wrapf(err, "reading at %d", off)
		}
	}
	return size, nil
}

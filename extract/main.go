// Package extract binds the configuration of a full extraction run to the
// songgraph pipeline.
package extract

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pilosa/songgraph"
	"github.com/pilosa/songgraph/aws/s3"
	"github.com/pilosa/songgraph/boltdb"
	"github.com/pilosa/songgraph/file"
	"github.com/pilosa/songgraph/lastfm"
	"github.com/pilosa/songgraph/msd"
	"github.com/pilosa/songgraph/termstat"
	"github.com/pkg/errors"
)

// Dedup store kinds.
const (
	DedupMemory  = "memory"
	DedupLevelDB = "leveldb"
	DedupBolt    = "bolt"
)

// Main contains the configuration for one extraction.
type Main struct {
	InputDir    string `help:"Directory holding list_hdf5_files.txt and list_lastfm_files.txt."`
	OutputDir   string `help:"Directory to write the node and relationship collections into."`
	MismatchDir string `help:"Directory holding sid_mismatches.txt."`
	Partitions  int    `help:"Number of partitions each manifest is split into. Also bounds how many projections run at once."`
	Dedup       string `help:"Where distinct rows are tracked: memory, leveldb, or bolt."`
	DedupPath   string `help:"Directory in which a scratch entry for dedup state is created and later removed. Defaults to the system temp directory."`
	Region      string `help:"AWS region used to fetch s3:// manifest entries."`
	Verbose     bool   `help:"Enable debug logging."`
	Stats       bool   `help:"Print running counters to stderr."`

	// Decoders may be replaced before Run, mostly for testing.
	MeasurementDecoder songgraph.MeasurementDecoder `flag:"-"`
	TaggingDecoder     songgraph.TaggingDecoder     `flag:"-"`
	Log                songgraph.Logger             `flag:"-"`
	Stderr             io.Writer                    `flag:"-"`
}

// NewMain gets a new Main with the default configuration.
func NewMain() *Main {
	return &Main{
		Partitions: 4,
		Dedup:      DedupMemory,
		Region:     "us-east-1",
	}
}

func (m *Main) validate() error {
	if m.InputDir == "" {
		return errors.New("input-dir is required")
	}
	if m.OutputDir == "" {
		return errors.New("output-dir is required")
	}
	if m.MismatchDir == "" {
		return errors.New("mismatch-dir is required")
	}
	if m.Partitions < 1 {
		return errors.Errorf("partitions must be positive, got %d", m.Partitions)
	}
	switch m.Dedup {
	case DedupMemory, DedupLevelDB, DedupBolt:
	default:
		return errors.Errorf("unknown dedup store '%s'", m.Dedup)
	}
	return nil
}

// Run runs the extraction.
func (m *Main) Run(ctx context.Context) (err error) {
	start := time.Now()
	if err := m.validate(); err != nil {
		return errors.Wrap(err, "validating configuration")
	}
	if m.Stderr == nil {
		m.Stderr = os.Stderr
	}
	if m.Log == nil {
		zl, err := songgraph.NewZapLogger(m.Verbose)
		if err != nil {
			return errors.Wrap(err, "setting up logger")
		}
		defer zl.Sync()
		m.Log = zl
	}
	if m.MeasurementDecoder == nil {
		m.MeasurementDecoder = msd.NewDecoder()
	}
	if m.TaggingDecoder == nil {
		m.TaggingDecoder = lastfm.NewDecoder()
	}

	excl, err := songgraph.LoadExclusions(m.MismatchDir)
	if err != nil {
		return errors.Wrap(err, "loading exclusions")
	}
	m.Log.Printf("loaded %d exclusions", excl.Len())

	resolver, err := s3.NewResolver(s3.OptResRegion(m.Region))
	if err != nil {
		return errors.Wrap(err, "getting s3 resolver")
	}
	store, err := file.NewStore(m.OutputDir)
	if err != nil {
		return errors.Wrap(err, "getting output store")
	}
	dedup, err := m.newDeduper()
	if err != nil {
		return errors.Wrap(err, "getting dedup store")
	}
	defer func() {
		if cerr := dedup.Close(); cerr != nil && err == nil {
			err = errors.Wrap(cerr, "closing dedup store")
		}
	}()

	ex := songgraph.NewExtractor(
		&songgraph.MeasurementReader{Decoder: m.MeasurementDecoder, Exclusions: excl, Resolver: resolver},
		&songgraph.TaggingReader{Decoder: m.TaggingDecoder, Resolver: resolver},
		store,
	)
	ex.Partitions = m.Partitions
	ex.Dedup = dedup
	ex.Log = m.Log
	if m.Stats {
		collector := termstat.NewCollector(m.Stderr)
		defer collector.Close()
		ex.Stats = collector
	}

	err = ex.Run(ctx,
		filepath.Join(m.InputDir, songgraph.MeasurementManifest),
		filepath.Join(m.InputDir, songgraph.TaggingManifest),
	)
	if err != nil {
		return err
	}
	m.Log.Printf("done in %v", time.Since(start))
	return nil
}

func (m *Main) newDeduper() (songgraph.Deduper, error) {
	switch m.Dedup {
	case DedupLevelDB:
		return songgraph.NewLevelDeduper(m.DedupPath)
	case DedupBolt:
		return boltdb.NewDeduper(m.DedupPath)
	}
	return songgraph.NewMapDeduper(), nil
}

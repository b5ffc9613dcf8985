package songgraph

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Songs is the cached, partitioned collection of validated measurement
// records. It is read many times and never modified after it is built.
type Songs [][]*MeasurementRecord

// Len returns the total number of records.
func (s Songs) Len() (n int) {
	for _, p := range s {
		n += len(p)
	}
	return n
}

// Tags is the cached, partitioned collection of tagging records.
type Tags [][]*TaggingRecord

// Len returns the total number of records.
func (t Tags) Len() (n int) {
	for _, p := range t {
		n += len(p)
	}
	return n
}

// Extractor reads both catalogs once and materializes every projection from
// the cached results.
type Extractor struct {
	// Partitions is the number of manifest partitions to read concurrently,
	// and the number of projections to run at once.
	Partitions int

	Measurements *MeasurementReader
	Taggings     *TaggingReader
	Dedup        Deduper
	Output       OutputStore
	Projections  []Projection

	Log   Logger
	Stats Statter
}

// NewExtractor gets an Extractor with every projection, an in-memory Deduper,
// and no logging or stats.
func NewExtractor(measurements *MeasurementReader, taggings *TaggingReader, out OutputStore) *Extractor {
	return &Extractor{
		Partitions:   1,
		Measurements: measurements,
		Taggings:     taggings,
		Dedup:        NewMapDeduper(),
		Output:       out,
		Projections:  Projections(),
		Log:          NopLogger{},
		Stats:        NopStatter{},
	}
}

// Run reads both manifests and writes every projection. The first error
// aborts the run; collections which were already committed stay in place.
func (e *Extractor) Run(ctx context.Context, measurementManifest, taggingManifest string) error {
	start := time.Now()
	songs, err := e.ReadMeasurements(ctx, measurementManifest)
	if err != nil {
		return errors.Wrap(err, "reading measurement records")
	}
	e.Log.Printf("read %d measurement records in %d partitions", songs.Len(), len(songs))

	tags, err := e.ReadTaggings(ctx, taggingManifest)
	if err != nil {
		return errors.Wrap(err, "reading tagging records")
	}
	e.Log.Printf("read %d tagging records in %d partitions", tags.Len(), len(tags))

	if err := e.Project(ctx, songs, tags); err != nil {
		return errors.Wrap(err, "projecting")
	}
	e.Log.Printf("extraction done in %v", time.Since(start))
	return nil
}

// ReadMeasurements reads every record listed in the manifest, one goroutine
// per manifest partition, and drops excluded records.
func (e *Extractor) ReadMeasurements(ctx context.Context, manifest string) (Songs, error) {
	parts, err := ReadManifest(manifest, e.Partitions)
	if err != nil {
		return nil, err
	}
	songs := make(Songs, len(parts))
	eg, ctx := errgroup.WithContext(ctx)
	for i, paths := range parts {
		i, paths := i, paths
		eg.Go(func() error {
			recs := make([]*MeasurementRecord, 0, len(paths))
			for _, path := range paths {
				if err := ctx.Err(); err != nil {
					return err
				}
				rec, err := e.Measurements.Read(path)
				if err != nil {
					return err
				}
				if rec == nil {
					e.Log.Debugf("excluding %s", path)
					e.Stats.Count("measurements.excluded", 1, 1)
					continue
				}
				e.Stats.Count("measurements.read", 1, 1)
				recs = append(recs, rec)
			}
			songs[i] = recs
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return songs, nil
}

// ReadTaggings reads every record listed in the manifest, one goroutine per
// manifest partition.
func (e *Extractor) ReadTaggings(ctx context.Context, manifest string) (Tags, error) {
	parts, err := ReadManifest(manifest, e.Partitions)
	if err != nil {
		return nil, err
	}
	tags := make(Tags, len(parts))
	eg, ctx := errgroup.WithContext(ctx)
	for i, paths := range parts {
		i, paths := i, paths
		eg.Go(func() error {
			recs := make([]*TaggingRecord, 0, len(paths))
			for _, path := range paths {
				if err := ctx.Err(); err != nil {
					return err
				}
				rec, err := e.Taggings.Read(path)
				if err != nil {
					return err
				}
				e.Stats.Count("taggings.read", 1, 1)
				recs = append(recs, rec)
			}
			tags[i] = recs
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return tags, nil
}

// Project runs every projection over the cached collections. Projections are
// independent of each other and run concurrently.
func (e *Extractor) Project(ctx context.Context, songs Songs, tags Tags) error {
	eg, ctx := errgroup.WithContext(ctx)
	if e.Partitions > 0 {
		eg.SetLimit(e.Partitions)
	}
	for _, p := range e.Projections {
		p := p
		eg.Go(func() error {
			return e.project(ctx, p, songs, tags)
		})
	}
	return eg.Wait()
}

func (e *Extractor) project(ctx context.Context, p Projection, songs Songs, tags Tags) (err error) {
	start := time.Now()
	numParts := 0
	if p.Songs != nil {
		numParts += len(songs)
	}
	if p.Tags != nil {
		numParts += len(tags)
	}
	w, err := e.Output.Create(p.Name, numParts)
	if err != nil {
		return errors.Wrapf(err, "creating collection %s", p.Name)
	}
	defer func() {
		if err == nil {
			return
		}
		if aerr := w.Abort(); aerr != nil {
			e.Log.Printf("aborting %s: %v", p.Name, aerr)
		}
	}()

	var rows, size int64
	eg, ctx := errgroup.WithContext(ctx)
	// song partitions come first, tag partitions follow them.
	offset := 0
	if p.Songs != nil {
		for i, recs := range songs {
			part := offset + i
			eg.Go(func() error {
				for _, rec := range recs {
					lines, err := p.Songs(rec)
					if err != nil {
						return errors.Wrapf(err, "track %s", rec.TrackID)
					}
					n, b, err := e.emit(ctx, w, p, part, lines)
					if err != nil {
						return err
					}
					atomic.AddInt64(&rows, n)
					atomic.AddInt64(&size, b)
				}
				return nil
			})
		}
		offset += len(songs)
	}
	if p.Tags != nil {
		for i, recs := range tags {
			part := offset + i
			eg.Go(func() error {
				for _, rec := range recs {
					lines, err := p.Tags(rec)
					if err != nil {
						return errors.Wrapf(err, "track %s", rec.TrackID)
					}
					n, b, err := e.emit(ctx, w, p, part, lines)
					if err != nil {
						return err
					}
					atomic.AddInt64(&rows, n)
					atomic.AddInt64(&size, b)
				}
				return nil
			})
		}
	}
	if err = eg.Wait(); err != nil {
		return errors.Wrapf(err, "projecting %s", p.Name)
	}
	if err = w.Commit(); err != nil {
		return errors.Wrapf(err, "committing %s", p.Name)
	}
	e.Stats.Timing("projection."+p.Name, time.Since(start), 1)
	e.Log.Printf("wrote %d rows (%v) to %s in %v", rows, Bytes(size), p.Name, time.Since(start))
	return nil
}

// emit writes lines to one partition, skipping lines already seen if the
// projection is distinct. It returns the number of lines and bytes written.
func (e *Extractor) emit(ctx context.Context, w CollectionWriter, p Projection, part int, lines []string) (n, size int64, err error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}
	for _, line := range lines {
		if p.Distinct {
			fresh, err := e.Dedup.Add(p.Name, []byte(line))
			if err != nil {
				return n, size, errors.Wrapf(err, "deduplicating %s", p.Name)
			}
			if !fresh {
				e.Stats.Count("rows."+p.Name+".duplicate", 1, 1)
				continue
			}
		}
		if err := w.WriteLine(part, line); err != nil {
			return n, size, errors.Wrapf(err, "writing %s partition %d", p.Name, part)
		}
		n++
		size += int64(len(line)) + 1
	}
	e.Stats.Count("rows."+p.Name, n, 1)
	return n, size, nil
}

package songgraph

import (
	"github.com/pkg/errors"
)

// Resolver makes a manifest entry available as a local file. The returned
// release func must be called once the caller is done with the local path.
type Resolver interface {
	Resolve(path string) (local string, release func(), err error)
}

// LocalResolver treats every manifest entry as a local path.
type LocalResolver struct{}

// Resolve implements Resolver.
func (LocalResolver) Resolve(path string) (string, func(), error) {
	return path, func() {}, nil
}

// MeasurementReader reads and filters measurement records. It holds no
// mutable state, so one reader can serve every partition.
type MeasurementReader struct {
	Decoder    MeasurementDecoder
	Exclusions *ExclusionSet
	Resolver   Resolver
}

// Read returns the validated record at path, or nil with a nil error if the
// record's (song_id, track_id) pairing is excluded. Callers must drop nil
// records. If the decoder implements MeasurementIDDecoder, excluded files are
// never decoded past their ids.
func (r *MeasurementReader) Read(path string) (*MeasurementRecord, error) {
	local, release, err := resolve(r.Resolver, path)
	if err != nil {
		return nil, err
	}
	defer release()
	if ids, ok := r.Decoder.(MeasurementIDDecoder); ok && r.Exclusions.Len() > 0 {
		songID, trackID, err := ids.DecodeIDs(local)
		if err != nil {
			return nil, errors.Wrapf(err, "decoding ids of measurement record %s", path)
		}
		if r.Exclusions.Contains(songID, trackID) {
			return nil, nil
		}
	}
	rec, err := r.Decoder.DecodeMeasurement(local)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding measurement record %s", path)
	}
	// excluded records are dropped whatever else is wrong with them.
	if r.Exclusions.Contains(rec.SongID, rec.TrackID) {
		return nil, nil
	}
	if err := rec.Validate(); err != nil {
		if se, ok := err.(*SchemaError); ok {
			se.Path = path
		}
		return nil, err
	}
	return rec, nil
}

// TaggingReader reads tagging records. No exclusion filter applies to them.
type TaggingReader struct {
	Decoder  TaggingDecoder
	Resolver Resolver
}

// Read returns the tagging record at path.
func (r *TaggingReader) Read(path string) (*TaggingRecord, error) {
	local, release, err := resolve(r.Resolver, path)
	if err != nil {
		return nil, err
	}
	defer release()
	rec, err := r.Decoder.DecodeTagging(local)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding tagging record %s", path)
	}
	return rec, nil
}

func resolve(r Resolver, path string) (string, func(), error) {
	if r == nil {
		r = LocalResolver{}
	}
	local, release, err := r.Resolve(path)
	if err != nil {
		return "", nil, errors.Wrapf(err, "resolving %s", path)
	}
	return local, release, nil
}

package songgraph

import (
	"fmt"

	"github.com/pkg/errors"
)

// MeasurementRecord is one validated track from the measurement catalog. The
// term slices are parallel: ArtistTermFreqs[i] and ArtistTermWeights[i]
// describe ArtistTerms[i].
type MeasurementRecord struct {
	ArtistID         string
	ArtistExternalID string
	ArtistCatalogID  string
	ArtistName       string

	SongID       string
	TrackID      string
	Title        string
	Danceability float64
	Duration     float64
	Energy       float64
	Loudness     float64

	// Year is 0 when unknown.
	Year  int
	Album string

	SimilarArtists    []string
	ArtistTerms       []string
	ArtistTermFreqs   []float64
	ArtistTermWeights []float64
}

// Field implements csv.Fielder so that scalar columns can be selected by name.
func (m *MeasurementRecord) Field(name string) (interface{}, error) {
	switch name {
	case "artist_id":
		return m.ArtistID, nil
	case "artist_external_id":
		return m.ArtistExternalID, nil
	case "artist_catalog_id":
		return m.ArtistCatalogID, nil
	case "artist_name":
		return m.ArtistName, nil
	case "song_id":
		return m.SongID, nil
	case "track_id":
		return m.TrackID, nil
	case "title":
		return m.Title, nil
	case "danceability":
		return m.Danceability, nil
	case "duration":
		return m.Duration, nil
	case "energy":
		return m.Energy, nil
	case "loudness":
		return m.Loudness, nil
	case "year":
		return m.Year, nil
	case "album":
		return m.Album, nil
	}
	return nil, errors.Errorf("measurement record has no scalar field '%s'", name)
}

// Validate checks the invariants every decoded measurement record must hold
// before it can be projected.
func (m *MeasurementRecord) Validate() error {
	if m.SongID == "" {
		return &SchemaError{Field: "song_id", Reason: "empty"}
	}
	if m.TrackID == "" {
		return &SchemaError{Field: "track_id", Reason: "empty"}
	}
	if len(m.ArtistTermFreqs) != len(m.ArtistTerms) {
		return &SchemaError{Field: "artist_terms_freq", Reason: fmt.Sprintf("length %d does not match %d terms", len(m.ArtistTermFreqs), len(m.ArtistTerms))}
	}
	if len(m.ArtistTermWeights) != len(m.ArtistTerms) {
		return &SchemaError{Field: "artist_terms_weight", Reason: fmt.Sprintf("length %d does not match %d terms", len(m.ArtistTermWeights), len(m.ArtistTerms))}
	}
	return nil
}

// TaggingRecord is one track from the social tagging catalog.
type TaggingRecord struct {
	TrackID  string
	Tags     []TagWeight
	Similars []Similar
}

// TagWeight is a tag applied to a track. Null is set when the source had no
// tag text at all, as opposed to an empty string.
type TagWeight struct {
	Tag    string
	Weight float64
	Null   bool
}

// Named reports whether the tag has usable text.
func (t TagWeight) Named() bool {
	return !t.Null && t.Tag != ""
}

// Similar is a directed similarity from the owning track to TrackID.
type Similar struct {
	TrackID string
	Score   float64
}

// SchemaError is returned when a source item is missing a field or the field
// has the wrong shape.
type SchemaError struct {
	Path   string
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("schema error: field '%s': %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("schema error in %s: field '%s': %s", e.Path, e.Field, e.Reason)
}

package songgraph

import (
	"github.com/pilosa/songgraph/csv"
)

// Output collection names. Each becomes a directory of part files.
const (
	NodesArtists = "nodes_artists"
	NodesSongs   = "nodes_songs"
	NodesAlbums  = "nodes_albums"
	NodesYears   = "nodes_years"
	NodesTags    = "nodes_tags"

	RelSimilarArtists = "rel_similar_artists"
	RelPerforms       = "rel_performs"
	RelArtistHasAlbum = "rel_artist_has_album"
	RelArtistHasTag   = "rel_artist_has_tag"
	RelSongYear       = "rel_song_year"
	RelSongInAlbum    = "rel_song_in_album"
	RelSimilarSongs   = "rel_similar_songs"
	RelSongHasTag     = "rel_song_has_tag"
)

// Projection derives one output collection from the cached input
// collections. Songs and Tags turn a single record into zero or more CSV
// lines; either may be nil if the collection does not draw on that input.
// Both must be pure functions of their argument.
type Projection struct {
	Name string

	// Distinct drops lines which have already been emitted to this
	// collection from any partition.
	Distinct bool

	Songs func(*MeasurementRecord) ([]string, error)
	Tags  func(*TaggingRecord) ([]string, error)
}

// Projections returns every node and edge projection.
func Projections() []Projection {
	return append(NodeProjections(), EdgeProjections()...)
}

// serialize is a Songs func emitting exactly one line built from s.
func serialize(s *csv.Serializer) func(*MeasurementRecord) ([]string, error) {
	return func(rec *MeasurementRecord) ([]string, error) {
		line, err := s.Line(rec)
		if err != nil {
			return nil, err
		}
		return []string{line}, nil
	}
}

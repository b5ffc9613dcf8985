package songgraph

import (
	"github.com/pilosa/songgraph/csv"
)

var (
	artistNode = csv.NewSerializer("artist_id", "artist_external_id", "artist_catalog_id", "artist_name")
	songNode   = csv.NewSerializer("song_id", "track_id", "title", "danceability", "duration", "energy", "loudness")
	albumNode  = csv.NewSerializer("album")
	yearNode   = csv.NewSerializer("year")
)

// NodeProjections returns the projections for every node collection. All
// node collections are distinct.
func NodeProjections() []Projection {
	return []Projection{
		{Name: NodesArtists, Distinct: true, Songs: serialize(artistNode)},
		{Name: NodesSongs, Distinct: true, Songs: serialize(songNode)},
		{Name: NodesAlbums, Distinct: true, Songs: serialize(albumNode)},
		{Name: NodesYears, Distinct: true, Songs: years},
		// artist terms and song tags share one collection, so the union
		// is deduplicated as a whole.
		{Name: NodesTags, Distinct: true, Songs: artistTerms, Tags: songTags},
	}
}

// years drops the unknown year.
func years(rec *MeasurementRecord) ([]string, error) {
	if rec.Year <= 0 {
		return nil, nil
	}
	return serialize(yearNode)(rec)
}

func artistTerms(rec *MeasurementRecord) ([]string, error) {
	lines := make([]string, 0, len(rec.ArtistTerms))
	for _, term := range rec.ArtistTerms {
		if term == "" {
			continue
		}
		line, err := csv.FormatRow(term)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func songTags(rec *TaggingRecord) ([]string, error) {
	lines := make([]string, 0, len(rec.Tags))
	for _, tag := range rec.Tags {
		if !tag.Named() {
			continue
		}
		line, err := csv.FormatRow(tag.Tag)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, nil
}

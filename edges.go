package songgraph

import (
	"github.com/pilosa/songgraph/csv"
	"github.com/pkg/errors"
)

var (
	performsEdge   = csv.NewSerializer("artist_id", "track_id")
	hasAlbumEdge   = csv.NewSerializer("artist_id", "album")
	releasedInEdge = csv.NewSerializer("track_id", "year")
	inAlbumEdge    = csv.NewSerializer("track_id", "album")
)

// EdgeProjections returns the projections for every relationship collection.
// Unweighted edges are distinct. Weighted edges are emitted once per source
// record, so the same pair may appear more than once with values computed
// from different records.
func EdgeProjections() []Projection {
	return []Projection{
		{Name: RelSimilarArtists, Distinct: true, Songs: similarArtists},
		{Name: RelPerforms, Distinct: true, Songs: serialize(performsEdge)},
		{Name: RelArtistHasAlbum, Distinct: true, Songs: serialize(hasAlbumEdge)},
		{Name: RelArtistHasTag, Songs: artistHasTag},
		{Name: RelSongYear, Distinct: true, Songs: releasedIn},
		{Name: RelSongInAlbum, Distinct: true, Songs: serialize(inAlbumEdge)},
		{Name: RelSimilarSongs, Tags: similarSongs},
		{Name: RelSongHasTag, Tags: songHasTag},
	}
}

func similarArtists(rec *MeasurementRecord) ([]string, error) {
	lines := make([]string, 0, len(rec.SimilarArtists))
	for _, to := range rec.SimilarArtists {
		line, err := csv.FormatRow(rec.ArtistID, to)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func releasedIn(rec *MeasurementRecord) ([]string, error) {
	if rec.Year == 0 {
		return nil, nil
	}
	return serialize(releasedInEdge)(rec)
}

// artistHasTag emits artist,term,frequency,weight with frequencies and
// weights each normalized to sum to 1 within the record.
func artistHasTag(rec *MeasurementRecord) ([]string, error) {
	if len(rec.ArtistTerms) == 0 {
		return nil, nil
	}
	freqs, err := Normalize("artist_terms_freq", rec.ArtistTermFreqs)
	if err != nil {
		return nil, errors.Wrapf(err, "artist %s", rec.ArtistID)
	}
	weights, err := Normalize("artist_terms_weight", rec.ArtistTermWeights)
	if err != nil {
		return nil, errors.Wrapf(err, "artist %s", rec.ArtistID)
	}
	lines := make([]string, 0, len(rec.ArtistTerms))
	for i, term := range rec.ArtistTerms {
		line, err := csv.FormatRow(rec.ArtistID, term, freqs[i], weights[i])
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// songHasTag emits track,tag,weight with weight divided by the total of every
// tag entry in the record. Entries without tag text count towards the total
// but are not emitted.
func songHasTag(rec *TaggingRecord) ([]string, error) {
	if len(rec.Tags) == 0 {
		return nil, nil
	}
	raw := make([]float64, len(rec.Tags))
	for i, tag := range rec.Tags {
		raw[i] = tag.Weight
	}
	weights, err := Normalize("tag weights", raw)
	if err != nil {
		return nil, errors.Wrapf(err, "track %s", rec.TrackID)
	}
	lines := make([]string, 0, len(rec.Tags))
	for i, tag := range rec.Tags {
		if !tag.Named() {
			continue
		}
		line, err := csv.FormatRow(rec.TrackID, tag.Tag, weights[i])
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// similarSongs passes similarity scores through unchanged.
func similarSongs(rec *TaggingRecord) ([]string, error) {
	lines := make([]string, 0, len(rec.Similars))
	for _, sim := range rec.Similars {
		line, err := csv.FormatRow(rec.TrackID, sim.TrackID, sim.Score)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, nil
}

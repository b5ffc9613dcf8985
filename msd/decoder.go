// Package msd decodes Million Song Dataset track files (HDF5) into
// songgraph.MeasurementRecord values.
//
// Each file holds one track. Scalar values live in row 0 of three compound
// tables and the per-artist lists live in one dimensional arrays:
//
//	/metadata/songs             artist_id, artist_mbid, artist_7digitalid,
//	                            artist_name, song_id, title, release
//	/analysis/songs             track_id, danceability, duration, energy,
//	                            loudness
//	/musicbrainz/songs          year
//	/metadata/similar_artists   artist ids
//	/metadata/artist_terms      terms
//	/metadata/artist_terms_freq
//	/metadata/artist_terms_weight
package msd

import (
	"strconv"

	"github.com/pilosa/songgraph"
	"github.com/pkg/errors"
)

// Dataset paths.
const (
	MetadataSongs     = "/metadata/songs"
	AnalysisSongs     = "/analysis/songs"
	MusicbrainzSongs  = "/musicbrainz/songs"
	SimilarArtists    = "/metadata/similar_artists"
	ArtistTerms       = "/metadata/artist_terms"
	ArtistTermsFreq   = "/metadata/artist_terms_freq"
	ArtistTermsWeight = "/metadata/artist_terms_weight"
)

// source gives access to the datasets of one track file.
type source interface {
	table(name string) (*compound, error)
	strings(name string) ([]string, error)
	floats(name string) ([]float64, error)
}

// Decoder is a songgraph.MeasurementDecoder for HDF5 track files.
type Decoder struct{}

// NewDecoder gets a new Decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// DecodeMeasurement implements songgraph.MeasurementDecoder.
func (d *Decoder) DecodeMeasurement(path string) (*songgraph.MeasurementRecord, error) {
	src, err := openH5(path)
	if err != nil {
		return nil, err
	}
	defer src.Close()
	rec, err := decodeRecord(src)
	if err != nil {
		if se, ok := err.(*songgraph.SchemaError); ok {
			se.Path = path
		}
		return nil, err
	}
	return rec, nil
}

// DecodeIDs implements songgraph.MeasurementIDDecoder.
func (d *Decoder) DecodeIDs(path string) (songID, trackID string, err error) {
	src, err := openH5(path)
	if err != nil {
		return "", "", err
	}
	defer src.Close()
	songID, trackID, err = decodeIDs(src)
	if se, ok := err.(*songgraph.SchemaError); ok {
		se.Path = path
	}
	return songID, trackID, err
}

// decodeIDs reads only the song and track ids.
func decodeIDs(src source) (songID, trackID string, err error) {
	fr := &fieldReader{src: src, tables: make(map[string]*compound)}
	songID = fr.str(MetadataSongs, "song_id")
	trackID = fr.str(AnalysisSongs, "track_id")
	if fr.err != nil {
		return "", "", fr.err
	}
	return songID, trackID, nil
}

func decodeRecord(src source) (*songgraph.MeasurementRecord, error) {
	fr := &fieldReader{src: src, tables: make(map[string]*compound)}
	rec := &songgraph.MeasurementRecord{
		ArtistID:         fr.str(MetadataSongs, "artist_id"),
		ArtistExternalID: fr.str(MetadataSongs, "artist_mbid"),
		ArtistCatalogID:  strconv.FormatInt(fr.int(MetadataSongs, "artist_7digitalid"), 10),
		ArtistName:       fr.str(MetadataSongs, "artist_name"),

		SongID:       fr.str(MetadataSongs, "song_id"),
		TrackID:      fr.str(AnalysisSongs, "track_id"),
		Title:        fr.str(MetadataSongs, "title"),
		Danceability: fr.float(AnalysisSongs, "danceability"),
		Duration:     fr.float(AnalysisSongs, "duration"),
		Energy:       fr.float(AnalysisSongs, "energy"),
		Loudness:     fr.float(AnalysisSongs, "loudness"),

		Year:  int(fr.int(MusicbrainzSongs, "year")),
		Album: fr.str(MetadataSongs, "release"),

		SimilarArtists:    fr.strings(SimilarArtists),
		ArtistTerms:       fr.strings(ArtistTerms),
		ArtistTermFreqs:   fr.floats(ArtistTermsFreq),
		ArtistTermWeights: fr.floats(ArtistTermsWeight),
	}
	if fr.err != nil {
		return nil, fr.err
	}
	return rec, nil
}

// fieldReader reads fields one after another and keeps the first error, so
// decodeRecord can be written as a flat list of fields.
type fieldReader struct {
	src    source
	tables map[string]*compound
	err    error
}

func (fr *fieldReader) fail(field string, err error) {
	if fr.err == nil {
		fr.err = &songgraph.SchemaError{Field: field, Reason: err.Error()}
	}
}

func (fr *fieldReader) table(name string) *compound {
	if fr.err != nil {
		return nil
	}
	if c, ok := fr.tables[name]; ok {
		return c
	}
	c, err := fr.src.table(name)
	if err != nil {
		fr.fail(name, errors.Wrap(err, "reading table"))
		return nil
	}
	fr.tables[name] = c
	return c
}

func (fr *fieldReader) str(table, member string) string {
	c := fr.table(table)
	if c == nil {
		return ""
	}
	v, err := c.String(0, member)
	if err != nil {
		fr.fail(table+"/"+member, err)
	}
	return v
}

func (fr *fieldReader) float(table, member string) float64 {
	c := fr.table(table)
	if c == nil {
		return 0
	}
	v, err := c.Float(0, member)
	if err != nil {
		fr.fail(table+"/"+member, err)
	}
	return v
}

func (fr *fieldReader) int(table, member string) int64 {
	c := fr.table(table)
	if c == nil {
		return 0
	}
	v, err := c.Int(0, member)
	if err != nil {
		fr.fail(table+"/"+member, err)
	}
	return v
}

func (fr *fieldReader) strings(name string) []string {
	if fr.err != nil {
		return nil
	}
	v, err := fr.src.strings(name)
	if err != nil {
		fr.fail(name, err)
	}
	return v
}

func (fr *fieldReader) floats(name string) []float64 {
	if fr.err != nil {
		return nil
	}
	v, err := fr.src.floats(name)
	if err != nil {
		fr.fail(name, err)
	}
	return v
}

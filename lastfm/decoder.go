// Package lastfm decodes Last.fm tagging documents, one JSON object per track:
//
//	{"track_id": "TRAAAAW128F429D538",
//	 "tags": [["Hip-Hop", "100"], ["underground hip hop", "60"]],
//	 "similars": [["TRWJMMB128F429D550", 0.87], ...]}
//
// Tag weights are usually strings in the published dataset, but numbers are
// accepted too. Tag text may be null.
package lastfm

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"strconv"

	"github.com/pilosa/songgraph"
	"github.com/pkg/errors"
)

// Decoder is a songgraph.TaggingDecoder for Last.fm JSON files.
type Decoder struct{}

// NewDecoder gets a new Decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// DecodeTagging implements songgraph.TaggingDecoder.
func (d *Decoder) DecodeTagging(path string) (*songgraph.TaggingRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening tagging file")
	}
	defer f.Close()
	rec, err := d.Decode(f)
	if err != nil {
		if se, ok := errors.Cause(err).(*songgraph.SchemaError); ok {
			se.Path = path
		}
		return nil, err
	}
	return rec, nil
}

type document struct {
	TrackID  *string           `json:"track_id"`
	Tags     []json.RawMessage `json:"tags"`
	Similars []json.RawMessage `json:"similars"`
}

// Decode reads one whole JSON document from r.
func (d *Decoder) Decode(r io.Reader) (*songgraph.TaggingRecord, error) {
	var doc document
	dec := json.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "decoding json")
	}
	if doc.TrackID == nil || *doc.TrackID == "" {
		return nil, &songgraph.SchemaError{Field: "track_id", Reason: "missing"}
	}
	rec := &songgraph.TaggingRecord{
		TrackID:  *doc.TrackID,
		Tags:     make([]songgraph.TagWeight, 0, len(doc.Tags)),
		Similars: make([]songgraph.Similar, 0, len(doc.Similars)),
	}
	for i, raw := range doc.Tags {
		pair, err := decodePair(raw)
		if err != nil {
			return nil, &songgraph.SchemaError{Field: "tags", Reason: "entry " + strconv.Itoa(i) + ": " + err.Error()}
		}
		tw := songgraph.TagWeight{}
		if isNull(pair[0]) {
			tw.Null = true
		} else if err := json.Unmarshal(pair[0], &tw.Tag); err != nil {
			return nil, &songgraph.SchemaError{Field: "tags", Reason: "entry " + strconv.Itoa(i) + ": tag is not a string"}
		}
		tw.Weight, err = decodeNumber(pair[1])
		if err != nil {
			return nil, &songgraph.SchemaError{Field: "tags", Reason: "entry " + strconv.Itoa(i) + ": " + err.Error()}
		}
		rec.Tags = append(rec.Tags, tw)
	}
	for i, raw := range doc.Similars {
		pair, err := decodePair(raw)
		if err != nil {
			return nil, &songgraph.SchemaError{Field: "similars", Reason: "entry " + strconv.Itoa(i) + ": " + err.Error()}
		}
		sim := songgraph.Similar{}
		if err := json.Unmarshal(pair[0], &sim.TrackID); err != nil || sim.TrackID == "" {
			return nil, &songgraph.SchemaError{Field: "similars", Reason: "entry " + strconv.Itoa(i) + ": track id is not a non-empty string"}
		}
		sim.Score, err = decodeNumber(pair[1])
		if err != nil {
			return nil, &songgraph.SchemaError{Field: "similars", Reason: "entry " + strconv.Itoa(i) + ": " + err.Error()}
		}
		rec.Similars = append(rec.Similars, sim)
	}
	return rec, nil
}

func decodePair(raw json.RawMessage) ([]json.RawMessage, error) {
	var pair []json.RawMessage
	if err := json.Unmarshal(raw, &pair); err != nil {
		return nil, errors.New("not an array")
	}
	if len(pair) != 2 {
		return nil, errors.Errorf("expected 2 elements, got %d", len(pair))
	}
	return pair, nil
}

// decodeNumber accepts a JSON number or a string holding one.
func decodeNumber(raw json.RawMessage) (float64, error) {
	if isNull(raw) {
		return 0, errors.New("number is null")
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, errors.Wrap(err, "decoding string")
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, errors.Wrapf(err, "parsing '%s'", s)
		}
		return f, nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, errors.Errorf("%s is not a number", raw)
	}
	return f, nil
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

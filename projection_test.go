package songgraph_test

import (
	"math"
	"reflect"
	"strconv"
	"strings"
	"testing"

	"github.com/pilosa/songgraph"
)

func projection(t *testing.T, name string) songgraph.Projection {
	t.Helper()
	for _, p := range songgraph.Projections() {
		if p.Name == name {
			return p
		}
	}
	t.Fatalf("no projection named %s", name)
	return songgraph.Projection{}
}

func songLines(t *testing.T, name string, rec *songgraph.MeasurementRecord) []string {
	t.Helper()
	p := projection(t, name)
	if p.Songs == nil {
		return nil
	}
	lines, err := p.Songs(rec)
	if err != nil {
		t.Fatalf("projecting %s: %v", name, err)
	}
	return lines
}

func tagLines(t *testing.T, name string, rec *songgraph.TaggingRecord) []string {
	t.Helper()
	p := projection(t, name)
	if p.Tags == nil {
		return nil
	}
	lines, err := p.Tags(rec)
	if err != nil {
		t.Fatalf("projecting %s: %v", name, err)
	}
	return lines
}

func TestProjectionsCoverEveryCollection(t *testing.T) {
	names := map[string]bool{}
	for _, p := range songgraph.Projections() {
		if names[p.Name] {
			t.Fatalf("duplicate projection %s", p.Name)
		}
		names[p.Name] = true
		if p.Songs == nil && p.Tags == nil {
			t.Fatalf("projection %s reads nothing", p.Name)
		}
	}
	if len(names) != 13 {
		t.Fatalf("expected 13 collections, got %d", len(names))
	}
	for _, p := range songgraph.NodeProjections() {
		if !p.Distinct {
			t.Fatalf("node collection %s is not distinct", p.Name)
		}
	}
}

func TestEndToEndExample(t *testing.T) {
	song := &songgraph.MeasurementRecord{ArtistID: "ARD7", SongID: "SOX", TrackID: "TRK1", Year: 0, Album: "Live"}
	tag := &songgraph.TaggingRecord{
		TrackID:  "TRK1",
		Tags:     []songgraph.TagWeight{{Tag: "rock", Weight: 3.0}, {Tag: "", Weight: 1.0}},
		Similars: []songgraph.Similar{{TrackID: "TRK2", Score: 0.87}},
	}
	tests := []struct {
		name string
		exp  []string
	}{
		{name: songgraph.RelSongYear, exp: nil},
		{name: songgraph.NodesYears, exp: nil},
		{name: songgraph.RelSongInAlbum, exp: []string{"TRK1,Live"}},
		{name: songgraph.RelSongHasTag, exp: []string{"TRK1,rock,0.75"}},
		{name: songgraph.RelSimilarSongs, exp: []string{"TRK1,TRK2,0.87"}},
		{name: songgraph.RelPerforms, exp: []string{"ARD7,TRK1"}},
		{name: songgraph.RelArtistHasAlbum, exp: []string{"ARD7,Live"}},
		{name: songgraph.NodesTags, exp: []string{"rock"}},
	}
	for _, test := range tests {
		got := append(songLines(t, test.name, song), tagLines(t, test.name, tag)...)
		if len(got) == 0 && len(test.exp) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, test.exp) {
			t.Errorf("%s: expected %q, got %q", test.name, test.exp, got)
		}
	}
}

func TestYearFiltering(t *testing.T) {
	tests := []struct {
		year     int
		node     []string
		released []string
	}{
		{year: 0},
		{year: 1967, node: []string{"1967"}, released: []string{"T,1967"}},
		{year: -1, released: []string{"T,-1"}},
	}
	for i, test := range tests {
		rec := &songgraph.MeasurementRecord{SongID: "S", TrackID: "T", Year: test.year}
		if got := songLines(t, songgraph.NodesYears, rec); !reflect.DeepEqual(got, test.node) {
			t.Errorf("test %d: year nodes: expected %q, got %q", i, test.node, got)
		}
		if got := songLines(t, songgraph.RelSongYear, rec); !reflect.DeepEqual(got, test.released) {
			t.Errorf("test %d: released in: expected %q, got %q", i, test.released, got)
		}
	}
}

func TestNodeLines(t *testing.T) {
	rec := &songgraph.MeasurementRecord{
		ArtistID:         "AR1",
		ArtistExternalID: "mb-1",
		ArtistCatalogID:  "4711",
		ArtistName:       "Earth, Wind & Fire",
		SongID:           "SO1",
		TrackID:          "TR1",
		Title:            `Say "Hi"`,
		Danceability:     0,
		Duration:         218.932,
		Energy:           0.5,
		Loudness:         -11.197,
		Album:            "Live",
		ArtistTerms:      []string{"funk", "", "soul"},
	}
	tests := []struct {
		name string
		exp  []string
	}{
		{name: songgraph.NodesArtists, exp: []string{`AR1,mb-1,4711,"Earth, Wind & Fire"`}},
		{name: songgraph.NodesSongs, exp: []string{`SO1,TR1,"Say ""Hi""",0,218.932,0.5,-11.197`}},
		{name: songgraph.NodesAlbums, exp: []string{"Live"}},
		{name: songgraph.NodesTags, exp: []string{"funk", "soul"}},
	}
	for _, test := range tests {
		if got := songLines(t, test.name, rec); !reflect.DeepEqual(got, test.exp) {
			t.Errorf("%s: expected %q, got %q", test.name, test.exp, got)
		}
	}
}

func TestSimilarArtists(t *testing.T) {
	rec := &songgraph.MeasurementRecord{ArtistID: "AR1", SimilarArtists: []string{"AR2", "AR3"}}
	exp := []string{"AR1,AR2", "AR1,AR3"}
	if got := songLines(t, songgraph.RelSimilarArtists, rec); !reflect.DeepEqual(got, exp) {
		t.Fatalf("expected %q, got %q", exp, got)
	}
}

func TestArtistHasTagSums(t *testing.T) {
	rec := &songgraph.MeasurementRecord{
		ArtistID:          "AR1",
		ArtistTerms:       []string{"rock", "pop", "indie"},
		ArtistTermFreqs:   []float64{1, 0.8, 0.2},
		ArtistTermWeights: []float64{0.9, 0.6, 0.3},
	}
	lines := songLines(t, songgraph.RelArtistHasTag, rec)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %q", lines)
	}
	var freqSum, weightSum float64
	for i, line := range lines {
		fields := strings.Split(line, ",")
		if len(fields) != 4 || fields[0] != "AR1" || fields[1] != rec.ArtistTerms[i] {
			t.Fatalf("unexpected line %q", line)
		}
		freq, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			t.Fatalf("parsing frequency: %v", err)
		}
		weight, err := strconv.ParseFloat(fields[3], 64)
		if err != nil {
			t.Fatalf("parsing weight: %v", err)
		}
		freqSum += freq
		weightSum += weight
	}
	if math.Abs(freqSum-1) > 1e-9 || math.Abs(weightSum-1) > 1e-9 {
		t.Fatalf("expected sums of 1, got frequency %v and weight %v", freqSum, weightSum)
	}

	rec.ArtistTermFreqs = []float64{0, 0, 0}
	if _, err := projection(t, songgraph.RelArtistHasTag).Songs(rec); err == nil {
		t.Fatal("expected error for zero frequency sum")
	}
}

func TestSongHasTagWeights(t *testing.T) {
	rec := &songgraph.TaggingRecord{
		TrackID: "TR1",
		Tags: []songgraph.TagWeight{
			{Tag: "rock", Weight: 50},
			{Null: true, Weight: 25},
			{Tag: "metal, heavy", Weight: 25},
		},
	}
	exp := []string{"TR1,rock,0.5", `TR1,"metal, heavy",0.25`}
	if got := tagLines(t, songgraph.RelSongHasTag, rec); !reflect.DeepEqual(got, exp) {
		t.Fatalf("expected %q, got %q", exp, got)
	}
	if got := tagLines(t, songgraph.NodesTags, rec); !reflect.DeepEqual(got, []string{"rock", `"metal, heavy"`}) {
		t.Fatalf("unexpected tag nodes %q", got)
	}

	rec.Tags = []songgraph.TagWeight{{Tag: "rock", Weight: 0}}
	if _, err := projection(t, songgraph.RelSongHasTag).Tags(rec); err == nil {
		t.Fatal("expected error for zero weight sum")
	}
	rec.Tags = nil
	if got := tagLines(t, songgraph.RelSongHasTag, rec); len(got) != 0 {
		t.Fatalf("expected no lines, got %q", got)
	}
}

package songgraph_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pilosa/songgraph"
)

const mismatches = `ERROR: <SOUMNSI12AB0182807 TRMMGKQ128F9325E10> Digital Underground  -  The Way We Swing  !=  Linkwood  -  Whats up with the Underground
ERROR: <SOCMRBE12AB018C546 TRMMREB12903CEB1B1> Jimmy Reed  -  The Sun Is Shining (Digitally Remastered)  !=  Slim Harpo  -  I Got Love If You Want It

ERROR: <SOUMNSI12AB0182807 TRMMGKQ128F9325E10> Digital Underground  -  The Way We Swing  !=  Linkwood  -  Whats up with the Underground
`

func TestParseExclusions(t *testing.T) {
	set, err := songgraph.ParseExclusions(strings.NewReader(mismatches))
	if err != nil {
		t.Fatalf("parsing exclusions: %v", err)
	}
	if set.Len() != 2 {
		t.Fatalf("expected 2 distinct exclusions, got %d", set.Len())
	}
	tests := []struct {
		song  string
		track string
		exp   bool
	}{
		{song: "SOUMNSI12AB0182807", track: "TRMMGKQ128F9325E10", exp: true},
		{song: "SOCMRBE12AB018C546", track: "TRMMREB12903CEB1B1", exp: true},
		// the pairing is excluded, not either id on its own.
		{song: "SOUMNSI12AB0182807", track: "TRMMREB12903CEB1B1", exp: false},
		{song: "SOCMRBE12AB018C546", track: "TRAAAAW128F429D538", exp: false},
	}
	for i, test := range tests {
		if got := set.Contains(test.song, test.track); got != test.exp {
			t.Errorf("test %d: Contains(%s, %s) = %v, expected %v", i, test.song, test.track, got, test.exp)
		}
	}
}

func TestParseExclusionsMalformed(t *testing.T) {
	tests := []string{
		"ERROR: <SOUMNSI12AB0182807>",
		"ERROR: <SOUMNSI12AB0182807TRMMGKQ128F9325E10X> no separator here",
		"ERROR: <SOUMNSI12 AB0182807 TRMMGKQ128F9325E1> three ids",
	}
	for i, line := range tests {
		_, err := songgraph.ParseExclusions(strings.NewReader(mismatches + line + "\n"))
		if err == nil {
			t.Fatalf("test %d: expected error for %q", i, line)
		}
		if !strings.Contains(err.Error(), "line 5") {
			t.Fatalf("test %d: expected error to name line 5, got: %v", i, err)
		}
	}
}

func TestLoadExclusions(t *testing.T) {
	dir := t.TempDir()
	if _, err := songgraph.LoadExclusions(dir); err == nil {
		t.Fatal("expected error for missing mismatch file")
	}
	err := os.WriteFile(filepath.Join(dir, songgraph.MismatchFile), []byte(mismatches), 0644)
	if err != nil {
		t.Fatalf("writing mismatch file: %v", err)
	}
	set, err := songgraph.LoadExclusions(dir)
	if err != nil {
		t.Fatalf("loading exclusions: %v", err)
	}
	if !set.Contains("SOCMRBE12AB018C546", "TRMMREB12903CEB1B1") {
		t.Fatal("loaded set is missing an exclusion")
	}
}

func TestNilExclusionSet(t *testing.T) {
	var set *songgraph.ExclusionSet
	if set.Contains("SOUMNSI12AB0182807", "TRMMGKQ128F9325E10") {
		t.Fatal("nil set should exclude nothing")
	}
	if set.Len() != 0 {
		t.Fatalf("nil set has length %d", set.Len())
	}
}

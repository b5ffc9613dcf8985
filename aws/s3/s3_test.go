package s3

import (
	"testing"
)

func TestParseURL(t *testing.T) {
	tests := []struct {
		entry  string
		bucket string
		key    string
		ok     bool
	}{
		{entry: "s3://msd/A/A/A/TRAAAAW128F429D538.h5", bucket: "msd", key: "A/A/A/TRAAAAW128F429D538.h5", ok: true},
		{entry: "s3://msd/x.json", bucket: "msd", key: "x.json", ok: true},
		{entry: "/data/A/A/A/TRAAAAW128F429D538.h5"},
		{entry: "s3://msd"},
		{entry: "s3://msd/"},
		{entry: "s3:///key"},
	}
	for i, test := range tests {
		bucket, key, ok := ParseURL(test.entry)
		if bucket != test.bucket || key != test.key || ok != test.ok {
			t.Fatalf("test %d: expected (%s, %s, %v), got (%s, %s, %v)", i, test.bucket, test.key, test.ok, bucket, key, ok)
		}
	}
}

func TestResolveLocalPassthrough(t *testing.T) {
	r := &Resolver{}
	local, release, err := r.Resolve("/data/list.json")
	if err != nil {
		t.Fatalf("resolving local path: %v", err)
	}
	defer release()
	if local != "/data/list.json" {
		t.Fatalf("local path changed to %s", local)
	}
}

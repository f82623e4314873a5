package ref

import (
	"errors"
	"testing"
)

// Fixed identifier tokens with valid v4 version/variant nibbles.
const (
	featureID    = "f0000000000040008000000000000000"
	datasetID    = "d0000000000040008000000000000000"
	untaggedID   = "a0000000000040008000000000000000"
	notAnID      = "a000000000004000800000000000000" // 31 chars
	badVersionID = "f0000000000050008000000000000000"
)

func TestParseServiceURI(t *testing.T) {
	tests := []struct {
		uri      string
		provider string
		service  string
		feature  string
	}{
		{"usgs-nwis:iv/01529500", "usgs-nwis", "iv", "01529500"},
		{"gebco-bathymetry", "gebco-bathymetry", "", ""},
		{"usgs-ned:1-arc-second", "usgs-ned", "1-arc-second", ""},
		{"svc://usgs-nwis:dv/0800345522", "usgs-nwis", "dv", "0800345522"},
		{"svc://usgs-nwis:iv", "usgs-nwis", "iv", ""},
		{"svc://noaa-coast", "noaa-coast", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			provider, service, feature := ParseServiceURI(tt.uri)
			if provider != tt.provider || service != tt.service || feature != tt.feature {
				t.Fatalf("ParseServiceURI(%q) = (%q, %q, %q), want (%q, %q, %q)",
					tt.uri, provider, service, feature, tt.provider, tt.service, tt.feature)
			}
		})
	}
}

func TestServiceURI(t *testing.T) {
	if got := ServiceURI("usgs-nwis", "iv", "01529500"); got != "svc://usgs-nwis:iv/01529500" {
		t.Errorf("unexpected uri %q", got)
	}
	if got := ServiceURI("usgs-nwis", "iv", ""); got != "svc://usgs-nwis:iv" {
		t.Errorf("unexpected uri %q", got)
	}
}

func TestParseRoundTrip(t *testing.T) {
	uris := []string{
		"svc://usgs-nwis:iv/01529500",
		"svc://usgs-nwis:iv",
		"pub://hydroshare",
		featureID,
		datasetID,
		"my-collection",
	}
	for _, uri := range uris {
		r, err := Parse(uri)
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", uri, err)
		}
		if r.String() != uri {
			t.Errorf("round trip of %q gave %q", uri, r.String())
		}
	}
}

func TestParseKinds(t *testing.T) {
	tests := []struct {
		uri  string
		kind Kind
	}{
		{"svc://usgs-nwis:iv/01529500", KindService},
		{"pub://hydroshare", KindPublisher},
		{featureID, KindFeature},
		{datasetID, KindDataset},
		{untaggedID, KindCollection},
		{"rawcollection", KindCollection},
		{badVersionID, KindCollection},
	}

	for _, tt := range tests {
		r, err := Parse(tt.uri)
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", tt.uri, err)
		}
		if r.Kind != tt.kind {
			t.Errorf("Parse(%q).Kind = %s, want %s", tt.uri, r.Kind, tt.kind)
		}
	}
}

func TestParseInvalid(t *testing.T) {
	if _, err := Parse(""); !errors.Is(err, ErrEmptyRef) {
		t.Errorf("expected ErrEmptyRef, got %v", err)
	}
	for _, uri := range []string{"svc://", "pub://"} {
		if _, err := Parse(uri); !errors.Is(err, ErrInvalidRef) {
			t.Errorf("Parse(%q): expected ErrInvalidRef, got %v", uri, err)
		}
	}
}

func TestNewID(t *testing.T) {
	tests := []struct {
		kind   Kind
		prefix byte
	}{
		{KindFeature, 'f'},
		{KindDataset, 'd'},
	}
	for _, tt := range tests {
		id := NewID(tt.kind)
		if len(id) != 32 {
			t.Fatalf("NewID(%s) length = %d, want 32", tt.kind, len(id))
		}
		if id[0] != tt.prefix {
			t.Errorf("NewID(%s) prefix = %c, want %c", tt.kind, id[0], tt.prefix)
		}
		if !IsID(id) {
			t.Errorf("NewID(%s) = %q not recognized by IsID", tt.kind, id)
		}
	}

	// Collection IDs keep the random first character.
	id := NewID(KindCollection)
	if !IsID(id) {
		t.Errorf("NewID(collection) = %q not recognized by IsID", id)
	}
}

func TestIsID(t *testing.T) {
	tests := []struct {
		s    string
		want bool
	}{
		{featureID, true},
		{datasetID, true},
		{untaggedID, true},
		{notAnID, false},
		{badVersionID, false},
		{"svc://usgs-nwis:iv", false},
		{"", false},
		{"F0000000000040008000000000000000", false}, // uppercase rejected
	}
	for _, tt := range tests {
		if got := IsID(tt.s); got != tt.want {
			t.Errorf("IsID(%q) = %v, want %v", tt.s, got, tt.want)
		}
	}
}

func TestClassify(t *testing.T) {
	uris := []string{featureID, datasetID, "svc://a:b", "pub://c", "rawcollection"}

	groups, err := Classify(uris, ClassifyOptions{})
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	want := map[Kind]string{
		KindFeature:    featureID,
		KindDataset:    datasetID,
		KindService:    "svc://a:b",
		KindPublisher:  "pub://c",
		KindCollection: "rawcollection",
	}
	if len(groups) != len(want) {
		t.Fatalf("expected %d groups, got %d", len(want), len(groups))
	}
	for kind, uri := range want {
		got, ok := groups[kind]
		if !ok || len(got) != 1 || got[0] != uri {
			t.Errorf("group %s = %v, want [%s]", kind, got, uri)
		}
	}
}

func TestClassifyDeterministic(t *testing.T) {
	uris := []string{featureID, "svc://a:b", "col"}
	first, err := Classify(uris, ClassifyOptions{})
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	second, err := Classify(uris, ClassifyOptions{})
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	for kind, group := range first {
		other := second[kind]
		if len(other) != len(group) {
			t.Fatalf("group %s differs between runs", kind)
		}
		for i := range group {
			if group[i] != other[i] {
				t.Errorf("group %s order differs between runs", kind)
			}
		}
	}
}

func TestClassifyExclude(t *testing.T) {
	uris := []string{featureID, "rawcollection"}

	_, err := Classify(uris, ClassifyOptions{Exclude: []Kind{KindFeature}})
	if !errors.Is(err, ErrKindExcluded) {
		t.Errorf("expected ErrKindExcluded, got %v", err)
	}

	// Excluding a kind not present is fine.
	if _, err := Classify(uris, ClassifyOptions{Exclude: []Kind{KindDataset}}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestClassifyRequireSame(t *testing.T) {
	mixed := []string{featureID, "rawcollection"}
	if _, err := Classify(mixed, ClassifyOptions{RequireSame: true}); !errors.Is(err, ErrMixedKinds) {
		t.Errorf("expected ErrMixedKinds, got %v", err)
	}

	same := []string{"col1", "col2"}
	if _, err := Classify(same, ClassifyOptions{RequireSame: true}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

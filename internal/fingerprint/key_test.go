package fingerprint

import (
	"testing"

	"dupetrack/pkg/models"
)

func TestKeyIdenticalTuples(t *testing.T) {
	a := models.TrackMetadata{TrackNumber: 3, Title: "Song", Album: "LP", Artist: "Band", Path: "/a.mp3", BitrateKbps: 128, SizeBytes: 10}
	b := models.TrackMetadata{TrackNumber: 3, Title: "Song", Album: "LP", Artist: "Band", Path: "/b.mp3", BitrateKbps: 320, SizeBytes: 99}

	if Key(a) != Key(b) {
		t.Errorf("expected equal keys, got %q and %q", Key(a), Key(b))
	}
}

func TestKeyDistinctTuples(t *testing.T) {
	base := models.TrackMetadata{TrackNumber: 1, Title: "A", Album: "B", Artist: "C"}

	testCases := []struct {
		name  string
		other models.TrackMetadata
	}{
		{"track number", models.TrackMetadata{TrackNumber: 2, Title: "A", Album: "B", Artist: "C"}},
		{"title", models.TrackMetadata{TrackNumber: 1, Title: "X", Album: "B", Artist: "C"}},
		{"album", models.TrackMetadata{TrackNumber: 1, Title: "A", Album: "X", Artist: "C"}},
		{"artist", models.TrackMetadata{TrackNumber: 1, Title: "A", Album: "B", Artist: "X"}},
		{"case sensitive", models.TrackMetadata{TrackNumber: 1, Title: "a", Album: "B", Artist: "C"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if Key(base) == Key(tc.other) {
				t.Errorf("keys collided: %q", Key(base))
			}
		})
	}
}

func TestKeySeparatorInjection(t *testing.T) {
	testCases := []struct {
		name string
		a, b models.TrackMetadata
	}{
		{
			"dash in title",
			models.TrackMetadata{Title: "A-B"},
			models.TrackMetadata{Title: "A", Album: "B"},
		},
		{
			"spaced separator in title",
			models.TrackMetadata{Title: "A - B", Album: ""},
			models.TrackMetadata{Title: "A", Album: "B"},
		},
		{
			"quoted separator in album",
			models.TrackMetadata{Album: `x" - "y`},
			models.TrackMetadata{Album: "x", Artist: "y"},
		},
		{
			"digits leaking into title",
			models.TrackMetadata{TrackNumber: 1, Title: "2"},
			models.TrackMetadata{TrackNumber: 12, Title: ""},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if Key(tc.a) == Key(tc.b) {
				t.Errorf("separator injection collision: %q", Key(tc.a))
			}
		})
	}
}

func TestKeyEmptyRecordsCollide(t *testing.T) {
	a := models.TrackMetadata{Path: "/one.mp3"}
	b := models.TrackMetadata{Path: "/two.mp3"}
	if Key(a) != Key(b) {
		t.Error("records with all-empty tuples are expected to share a key")
	}
}

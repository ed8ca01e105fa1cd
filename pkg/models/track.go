package models

import "sort"

// TrackMetadata represents one physical audio file found during a scan.
// Every field has a usable default so fingerprinting never fails.
type TrackMetadata struct {
	Title       string `json:"title"`
	Album       string `json:"album"`
	Artist      string `json:"artist"`
	TrackNumber uint32 `json:"trackNumber"`
	SizeBytes   uint64 `json:"sizeBytes"`
	BitrateKbps uint32 `json:"bitrateKbps"` // 0 when the header could not be parsed
	Path        string `json:"path"`
}

// Groups maps a fingerprint to its members in discovery order
type Groups map[string][]TrackMetadata

// Add appends a track to the group for key
func (g Groups) Add(key string, track TrackMetadata) {
	g[key] = append(g[key], track)
}

// Merge appends every member of other onto the matching groups of g
func (g Groups) Merge(other Groups) {
	for key, tracks := range other {
		g[key] = append(g[key], tracks...)
	}
}

// Duplicates returns only the groups with at least two members
func (g Groups) Duplicates() Groups {
	out := make(Groups)
	for key, tracks := range g {
		if len(tracks) > 1 {
			out[key] = tracks
		}
	}
	return out
}

// Keys returns the fingerprints in lexicographic order
func (g Groups) Keys() []string {
	keys := make([]string, 0, len(g))
	for key := range g {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// PossibleSavings sums the sizes of every member except the first of each
// duplicate group. It is an upper bound computed before any resolution.
func (g Groups) PossibleSavings() uint64 {
	var total uint64
	for _, tracks := range g {
		if len(tracks) < 2 {
			continue
		}
		for _, t := range tracks[1:] {
			total += t.SizeBytes
		}
	}
	return total
}

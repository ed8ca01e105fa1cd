package fingerprint

import (
	"fmt"

	"dupetrack/pkg/models"
)

// Key derives the grouping key for a track: track number, title, album and
// artist, in that order. String fields are quoted so a separator inside one
// field can never be mistaken for a field boundary.
func Key(m models.TrackMetadata) string {
	return fmt.Sprintf("%d - %q - %q - %q", m.TrackNumber, m.Title, m.Album, m.Artist)
}

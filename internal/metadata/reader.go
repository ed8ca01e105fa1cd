package metadata

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dupetrack/pkg/models"

	"github.com/dhowden/tag"
	"github.com/go-audio/wav"
	"github.com/mewkiz/flac"
	"github.com/sirupsen/logrus"
	"github.com/tcolgate/mp3"
)

// Reader extracts TrackMetadata from audio files. It never fails: every
// error degrades the affected fields to their defaults and is logged.
type Reader struct {
	logger *logrus.Logger
}

// NewReader creates a metadata reader that reports degraded reads to logger
func NewReader(logger *logrus.Logger) *Reader {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Reader{logger: logger}
}

// Read extracts metadata from filePath
func (r *Reader) Read(filePath string) models.TrackMetadata {
	startTime := time.Now()
	fileName := filepath.Base(filePath)

	track := models.TrackMetadata{
		Title: fileName,
		Path:  filePath,
	}

	file, err := os.Open(filePath)
	if err != nil {
		r.degraded(filePath, err, "Failed to open audio file")
		track.SizeBytes = r.fileSize(filePath)
		return track
	}
	defer file.Close()

	track.SizeBytes = r.fileSize(filePath)
	track.BitrateKbps = r.bitrate(filePath)

	metadata, err := tag.ReadFrom(file)
	if err != nil {
		r.degraded(filePath, err, "Failed to read tag, using filename")
		return track
	}

	if title := metadata.Title(); title != "" {
		track.Title = title
	} else {
		r.logger.WithFields(logrus.Fields{
			"filePath": filePath,
			"title":    fileName,
		}).Warn("No track name found, using filename")
	}
	track.Album = metadata.Album()
	track.Artist = metadata.Artist()

	if trackNum, _ := metadata.Track(); trackNum > 0 {
		track.TrackNumber = uint32(trackNum)
	}

	r.logger.WithFields(logrus.Fields{
		"filePath":       filePath,
		"title":          track.Title,
		"artist":         track.Artist,
		"album":          track.Album,
		"bitrate":        track.BitrateKbps,
		"processingTime": time.Since(startTime),
	}).Debug("Successfully extracted metadata")

	return track
}

func (r *Reader) degraded(filePath string, err error, msg string) {
	r.logger.WithFields(logrus.Fields{
		"filePath": filePath,
		"error":    err.Error(),
	}).Warn(msg)
}

// fileSize stats the file separately so a size is known even when the
// file cannot be opened for reading.
func (r *Reader) fileSize(filePath string) uint64 {
	stat, err := os.Stat(filePath)
	if err != nil {
		r.degraded(filePath, err, "Failed to read file size")
		return 0
	}
	return uint64(stat.Size())
}

// bitrate parses the audio header independently of the tag and returns
// kbps, truncated from bits per second. Returns 0 when parsing fails.
func (r *Reader) bitrate(filePath string) uint32 {
	bps, err := BitrateBPS(filePath)
	if err != nil {
		r.degraded(filePath, err, "Failed to read audio header, bitrate set to 0")
		return 0
	}
	return uint32(bps / 1000)
}

// BitrateBPS returns the average bitrate of an audio file in bits per second
func BitrateBPS(filePath string) (int64, error) {
	ext := strings.ToLower(filepath.Ext(filePath))
	switch ext {
	case ".mp3":
		return bitrateMP3(filePath)
	case ".flac":
		return bitrateFLAC(filePath)
	case ".wav":
		return bitrateWAV(filePath)
	default:
		return 0, fmt.Errorf("unsupported format: %q", ext)
	}
}

// MP3 bitrate as the duration-weighted average over every frame; Xing/VBRI
// headers are not consulted.
func bitrateMP3(path string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	dec := mp3.NewDecoder(f)
	var bitMicros, micros int64
	var skipped int
	frames := 0
	for {
		var fr mp3.Frame
		if err := dec.Decode(&fr, &skipped); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			if frames == 0 {
				return 0, fmt.Errorf("decode mp3 frame: %w", err)
			}
			break // partial decode; use what we have
		}
		d := fr.Duration().Microseconds()
		bitMicros += int64(fr.Header().BitRate()) * d
		micros += d
		frames++
	}
	if frames == 0 || micros == 0 {
		return 0, errors.New("no mp3 frames found")
	}
	return bitMicros / micros, nil
}

// FLAC bitrate from the STREAMINFO block and the file size
func bitrateFLAC(path string) (int64, error) {
	stream, err := flac.ParseFile(path)
	if err != nil {
		return 0, err
	}
	defer stream.Close()

	si := stream.Info
	if si.NSamples == 0 || si.SampleRate == 0 {
		return 0, errors.New("flac stream missing sample info")
	}
	st, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	secs := float64(si.NSamples) / float64(si.SampleRate)
	return int64(float64(st.Size()*8) / secs), nil
}

// WAV bitrate from the PCM format header
func bitrateWAV(path string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return 0, errors.New("invalid wav file")
	}
	if dec.SampleRate == 0 || dec.BitDepth == 0 || dec.NumChans == 0 {
		return 0, errors.New("invalid wav header")
	}
	return int64(dec.SampleRate) * int64(dec.BitDepth) * int64(dec.NumChans), nil
}

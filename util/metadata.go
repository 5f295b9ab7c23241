package util

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dendrascience/vzip/version"
	"github.com/dendrascience/vzip/vzip"
	"github.com/google/uuid"
)

type Metadata struct {
	ArchiveDigest   string    `json:"archive_digest"`
	ArchiveSHA256   string    `json:"archive_sha256"`
	ArchiveSize     int64     `json:"archive_size"`
	ArchiveTag      string    `json:"archive_tag"`
	BufferSize      int       `json:"buffer_size"`
	Codec           string    `json:"codec"`
	CompressedSize  int64     `json:"compressed_size"`
	CompressionRate float64   `json:"compression_rate"`
	Created         time.Time `json:"created"`
	DurationSeconds float64   `json:"duration_seconds"`
	FrameCount      int       `json:"frame_count"`
	RawSize         int64     `json:"raw_size"`
	RunID           string    `json:"run_id"`
	SourceDir       string    `json:"source_dir"`
	TruncatedCount  int       `json:"truncated_count"`
	VZipVersion     string    `json:"vzip_version"`
	Workers         int       `json:"workers"`
}

// GetVersion returns the current vzip version string.
// It delegates to the version package to get the version information.
func GetVersion() string {
	return version.GetVersion()
}

// GenerateMetadata describes a completed run. If archivePath is not empty
// the archive is hashed and its size and tag recorded.
func GenerateMetadata(stats vzip.Stats, sourceDir, archivePath string) (Metadata, error) {
	m := Metadata{
		BufferSize:      stats.BufferSize,
		Codec:           stats.Codec,
		CompressedSize:  stats.CompressedBytes,
		CompressionRate: stats.CompressionRate(),
		Created:         time.Now().UTC(),
		DurationSeconds: stats.Duration.Seconds(),
		FrameCount:      stats.Files,
		RawSize:         stats.RawBytes,
		RunID:           uuid.New().String(),
		SourceDir:       sourceDir,
		TruncatedCount:  stats.Truncated,
		VZipVersion:     GetVersion(),
		Workers:         stats.Workers,
		ArchiveSize:     stats.ArchiveBytes,
	}
	if archivePath == "" {
		return m, nil
	}
	info, err := os.Stat(archivePath)
	if err != nil {
		return m, err
	}
	hash, err := GetFileHash(archivePath)
	if err != nil {
		return m, err
	}
	m.ArchiveSize = info.Size()
	m.ArchiveSHA256 = hash
	m.ArchiveDigest = ArchiveDigest(hash)
	m.ArchiveTag = ArchiveTag(hash)
	return m, nil
}

// MetadataPath returns the sidecar path of the run metadata for an archive.
func MetadataPath(archivePath string) string {
	return archivePath + ".meta.json"
}

func (m Metadata) Save(path string) error {
	return WriteJSONFile(path, m)
}

// LoadMetadata reads metadata written by Save.
func LoadMetadata(path string) (Metadata, error) {
	var m Metadata
	f, err := os.Open(path)
	if err != nil {
		return m, err
	}
	defer f.Close()
	if err := json.NewDecoder(f).Decode(&m); err != nil {
		return m, fmt.Errorf("decode %s: %w", path, err)
	}
	return m, nil
}

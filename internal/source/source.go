package source

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrMissingSource means the watched location does not exist (or a watched
// folder holds no notes). It is a normal "nothing to do" outcome for a cycle,
// not a failure.
var ErrMissingSource = errors.New("context source does not exist")

// Snapshot is the watched context document at a point in time.
type Snapshot struct {
	Text string

	// Fingerprint is the newest modification time across the watched
	// location, in Unix milliseconds. It only has to change when the content
	// changes; the engine never interprets it beyond equality.
	Fingerprint int64
}

// Source supplies the raw text and fingerprint of the watched context
// document.
type Source interface {
	Read() (Snapshot, error)
	Location() string
}

// FileSource reads a single markdown file, or a folder of .md notes
// concatenated in name order.
type FileSource struct {
	location string
}

// New creates a FileSource for the given file or folder path.
func New(location string) *FileSource {
	return &FileSource{location: location}
}

func (s *FileSource) Location() string {
	return s.location
}

func (s *FileSource) Read() (Snapshot, error) {
	info, err := os.Stat(s.location)
	if os.IsNotExist(err) {
		return Snapshot{}, ErrMissingSource
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to stat context source: %w", err)
	}

	if info.IsDir() {
		return s.readFolder()
	}

	data, err := os.ReadFile(s.location)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to read context source: %w", err)
	}
	return Snapshot{
		Text:        string(data),
		Fingerprint: info.ModTime().UnixMilli(),
	}, nil
}

// readFolder concatenates every .md file in the folder, sorted by name, and
// fingerprints the newest modification time among them.
func (s *FileSource) readFolder() (Snapshot, error) {
	entries, err := os.ReadDir(s.location)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to read context folder: %w", err)
	}

	var parts []string
	var newest int64

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}

		path := filepath.Join(s.location, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return Snapshot{}, fmt.Errorf("failed to read note %s: %w", entry.Name(), err)
		}
		info, err := entry.Info()
		if err != nil {
			return Snapshot{}, fmt.Errorf("failed to stat note %s: %w", entry.Name(), err)
		}

		if mtime := info.ModTime().UnixMilli(); mtime > newest {
			newest = mtime
		}
		parts = append(parts, string(data))
	}

	if len(parts) == 0 {
		return Snapshot{}, ErrMissingSource
	}

	return Snapshot{
		Text:        strings.Join(parts, "\n\n"),
		Fingerprint: newest,
	}, nil
}

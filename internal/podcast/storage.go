package podcast

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"blogcast/internal/tts"

	"github.com/google/uuid"
)

const (
	filePrefix = "podcast_"
	fileExt    = ".wav"

	DownloadName = "generated_podcast.wav"
	ContentType  = "audio/wav"
)

var ErrArtifactNotFound = errors.New("podcast not found")

// Artifact is a podcast file written to the output directory.
type Artifact struct {
	ID       string
	FileName string
	Path     string
	Size     int64
}

// Storage owns the output directory layout: <dir>/podcast_<uuid>.wav.
type Storage struct {
	dir string
}

func NewStorage(dir string) *Storage {
	return &Storage{dir: dir}
}

func (s *Storage) Dir() string {
	return s.dir
}

// Save decodes the provider audio, wraps it in a WAV container and writes it
// under a fresh random name.
func (s *Storage) Save(audio *tts.Audio) (*Artifact, error) {
	if audio == nil || strings.TrimSpace(audio.Base64) == "" {
		return nil, ErrNoAudio
	}

	pcm, err := base64.StdEncoding.DecodeString(audio.Base64)
	if err != nil {
		return nil, fmt.Errorf("decode audio: %w", err)
	}
	if len(pcm) == 0 {
		return nil, ErrNoAudio
	}

	sampleRate := audio.SampleRate
	if sampleRate <= 0 {
		if sampleRate, err = tts.SampleRate(audio.Format); err != nil {
			return nil, fmt.Errorf("resolve sample rate: %w", err)
		}
	}

	if err = os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	id := uuid.NewString()
	fileName := filePrefix + id + fileExt
	path := filepath.Join(s.dir, fileName)

	data := tts.EncodeWAV(pcm, sampleRate)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create file: %w", err)
	}

	if _, err = f.Write(data); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("write file: %w", err)
	}
	if err = f.Close(); err != nil {
		return nil, fmt.Errorf("close file: %w", err)
	}

	return &Artifact{
		ID:       id,
		FileName: fileName,
		Path:     path,
		Size:     int64(len(data)),
	}, nil
}

// Lookup resolves an artifact by id. Only canonical uuids are accepted.
func (s *Storage) Lookup(id string) (*Artifact, error) {
	parsed, err := uuid.Parse(id)
	if err != nil || parsed.String() != id {
		return nil, ErrArtifactNotFound
	}

	fileName := filePrefix + id + fileExt
	path := filepath.Join(s.dir, fileName)

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrArtifactNotFound
		}
		return nil, fmt.Errorf("stat file: %w", err)
	}

	return &Artifact{
		ID:       id,
		FileName: fileName,
		Path:     path,
		Size:     info.Size(),
	}, nil
}

// Sweep removes podcast files last modified before now-olderThan and returns
// how many were deleted.
func (s *Storage) Sweep(olderThan time.Duration, now time.Time) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("read output dir: %w", err)
	}

	cutoff := now.Add(-olderThan)
	removed := 0
	var errs []error

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileExt) {
			continue
		}

		info, infoErr := entry.Info()
		if infoErr != nil {
			errs = append(errs, fmt.Errorf("stat %s: %w", name, infoErr))
			continue
		}

		if !info.ModTime().Before(cutoff) {
			continue
		}

		if rmErr := os.Remove(filepath.Join(s.dir, name)); rmErr != nil {
			errs = append(errs, fmt.Errorf("remove %s: %w", name, rmErr))
			continue
		}
		removed++
	}

	return removed, errors.Join(errs...)
}

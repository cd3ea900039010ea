package podcast

import (
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"blogcast/internal/tts"
)

func TestStorageSaveWritesWAV(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	s := NewStorage(dir)

	a, err := s.Save(pcmAudio())
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if !strings.HasPrefix(a.FileName, "podcast_") || !strings.HasSuffix(a.FileName, ".wav") {
		t.Fatalf("file name = %q", a.FileName)
	}

	data, err := os.ReadFile(a.Path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		t.Fatalf("missing RIFF/WAVE header: %q", data[:12])
	}
	if len(data) != 44+8 {
		t.Fatalf("len(data) = %d, want %d", len(data), 44+8)
	}
}

func TestStorageSaveResolvesSampleRateFromFormat(t *testing.T) {
	s := NewStorage(t.TempDir())

	a, err := s.Save(&tts.Audio{
		Base64: base64.StdEncoding.EncodeToString([]byte{1, 0}),
		Format: "pcm_16000",
	})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	data, err := os.ReadFile(a.Path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	rate := uint32(data[24]) | uint32(data[25])<<8 | uint32(data[26])<<16 | uint32(data[27])<<24
	if rate != 16000 {
		t.Fatalf("sample rate = %d, want 16000", rate)
	}
}

func TestStorageSaveRejectsBadAudio(t *testing.T) {
	s := NewStorage(t.TempDir())

	for _, audio := range []*tts.Audio{nil, {}, {Base64: "   "}} {
		if _, err := s.Save(audio); !errors.Is(err, ErrNoAudio) {
			t.Fatalf("Save(%+v) error = %v, want ErrNoAudio", audio, err)
		}
	}

	if _, err := s.Save(&tts.Audio{Base64: "!!not base64!!", SampleRate: 22050}); err == nil {
		t.Fatal("Save(invalid base64) error = nil")
	}
}

func TestStorageLookup(t *testing.T) {
	s := NewStorage(t.TempDir())

	saved, err := s.Save(pcmAudio())
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := s.Lookup(saved.ID)
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if got.Path != saved.Path || got.Size != saved.Size {
		t.Fatalf("Lookup() = %+v, want %+v", got, saved)
	}

	for _, id := range []string{
		"",
		"../etc/passwd",
		strings.ToUpper(saved.ID),
		"00000000-0000-0000-0000-000000000000",
	} {
		if _, err := s.Lookup(id); !errors.Is(err, ErrArtifactNotFound) {
			t.Fatalf("Lookup(%q) error = %v, want ErrArtifactNotFound", id, err)
		}
	}
}

func TestStorageSweep(t *testing.T) {
	dir := t.TempDir()
	s := NewStorage(dir)

	oldArtifact, err := s.Save(pcmAudio())
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	freshArtifact, err := s.Save(pcmAudio())
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	other := filepath.Join(dir, "notes.txt")
	if err = os.WriteFile(other, []byte("keep"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	now := time.Now()
	past := now.Add(-48 * time.Hour)
	for _, path := range []string{oldArtifact.Path, other} {
		if err = os.Chtimes(path, past, past); err != nil {
			t.Fatalf("Chtimes() error = %v", err)
		}
	}

	removed, err := s.Sweep(24*time.Hour, now)
	if err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}

	if _, err = os.Stat(oldArtifact.Path); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("old artifact still exists: %v", err)
	}
	for _, path := range []string{freshArtifact.Path, other} {
		if _, err = os.Stat(path); err != nil {
			t.Fatalf("Stat(%q) error = %v", path, err)
		}
	}
}

func TestStorageSweepMissingDir(t *testing.T) {
	s := NewStorage(filepath.Join(t.TempDir(), "missing"))

	removed, err := s.Sweep(time.Hour, time.Now())
	if err != nil || removed != 0 {
		t.Fatalf("Sweep() = %d, %v", removed, err)
	}
}

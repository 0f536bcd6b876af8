package audio

import (
	"bytes"
	"io"
	"testing"
)

func TestEmulationAudioSourceStartupFillsBuffer(t *testing.T) {
	data := []byte{0x85, 0x01}
	src, err := NewEmulationAudioSource(CachingStreamingDynamic, 44100, 60.0, 0x1000, data, 0x1000, false)
	if err != nil {
		t.Fatalf("NewEmulationAudioSource: %v", err)
	}
	src.InjectPlaySound(0)

	buf := src.Startup(0.05)
	if buf.CompletedLength() == 0 {
		t.Fatalf("expected startup to fill some audio synchronously")
	}
}

func TestEmulationAudioSourceResetContent(t *testing.T) {
	src, err := NewEmulationAudioSource(CachingFullDynamic, 44100, 60.0, 0x1000, []byte{0x85, 0x01}, 0x1000, false)
	if err != nil {
		t.Fatalf("NewEmulationAudioSource: %v", err)
	}
	src.Startup(0.05)
	src.ResetContent()
	if src.Buffer().CompletedLength() != 0 {
		t.Fatalf("expected buffer cleared after ResetContent")
	}
}

func TestEmulationAudioSourceCheckForUnload(t *testing.T) {
	src, err := NewEmulationAudioSource(CachingFullDynamic, 44100, 60.0, 0x1000, []byte{0x85, 0x01}, 0x1000, false)
	if err != nil {
		t.Fatalf("NewEmulationAudioSource: %v", err)
	}
	if src.CheckForUnload(0) {
		t.Fatalf("freshly created source should not be eligible for unload immediately")
	}
}

type failingReadSeeker struct{}

func (failingReadSeeker) Read(p []byte) (int, error)               { return 0, io.EOF }
func (failingReadSeeker) Seek(offset int64, whence int) (int64, error) { return 0, nil }

func TestNewOggAudioSourceRejectsInvalidStream(t *testing.T) {
	_, err := NewOggAudioSource(CachingStatic, failingReadSeeker{}, -1)
	if err == nil {
		t.Fatalf("expected error opening a non-ogg stream")
	}
}

func TestNewOggAudioSourceRejectsEmptyBuffer(t *testing.T) {
	_, err := NewOggAudioSource(CachingStatic, bytes.NewReader(nil), -1)
	if err == nil {
		t.Fatalf("expected error opening an empty stream")
	}
}

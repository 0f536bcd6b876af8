package audio

import "testing"

func TestAudioSourceManagerReusesByRegistration(t *testing.T) {
	m := NewAudioSourceManager(44100, 60.0, false, nil)
	reg := &SourceRegistration{Kind: SourceKindEmulationBuffered, EmulatedROMAddr: 0x1000, EmulatedContent: []byte{0x85, 0x01}, EmulatedContentOffset: 0x1000}

	a, err := m.GetAudioSourceForPlayback(reg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := m.GetAudioSourceForPlayback(reg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a != b {
		t.Fatalf("expected the same AudioSource instance for the same registration")
	}
}

func TestAudioSourceManagerReusesByContentHash(t *testing.T) {
	m := NewAudioSourceManager(44100, 60.0, false, nil)
	reg1 := &SourceRegistration{Kind: SourceKindEmulationBuffered, EmulatedKeyID: "bgm_title", EmulatedContent: []byte{0x85, 0x01}, EmulatedContentOffset: 0x1000}
	reg2 := &SourceRegistration{Kind: SourceKindEmulationBuffered, EmulatedKeyID: "bgm_title", EmulatedContent: []byte{0x85, 0x01}, EmulatedContentOffset: 0x1000}

	a, err := m.GetAudioSourceForPlayback(reg1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := m.GetAudioSourceForPlayback(reg2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a != b {
		t.Fatalf("expected a collection reload (same content hash) to reuse the source")
	}
}

func TestAudioSourceManagerOggWithoutOpenerErrors(t *testing.T) {
	m := NewAudioSourceManager(44100, 60.0, false, nil)
	reg := &SourceRegistration{Kind: SourceKindFile, OggPath: "bgm/title.ogg"}
	if _, err := m.GetAudioSourceForPlayback(reg); err == nil {
		t.Fatalf("expected error with no ogg opener configured")
	}
}

func TestAudioSourceManagerClearForgetsSources(t *testing.T) {
	m := NewAudioSourceManager(44100, 60.0, false, nil)
	reg := &SourceRegistration{Kind: SourceKindEmulationBuffered, EmulatedROMAddr: 0x2000, EmulatedContent: []byte{0x85, 0x01}, EmulatedContentOffset: 0x2000}
	first, _ := m.GetAudioSourceForPlayback(reg)

	m.Clear()

	second, err := m.GetAudioSourceForPlayback(reg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first == second {
		t.Fatalf("expected a fresh source after Clear")
	}
}

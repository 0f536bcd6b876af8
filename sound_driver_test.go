package audio

import "testing"

func TestSoundDriverSetFixedContentRejectsEmpty(t *testing.T) {
	d := NewSoundDriver(false)
	if err := d.SetFixedContent(nil, 0); err == nil {
		t.Fatalf("expected error for empty content")
	}
}

func TestSoundDriverIdleProducesNoWrites(t *testing.T) {
	d := NewSoundDriver(false)
	result := d.Update()
	if result != UpdateFinished {
		t.Fatalf("expected UpdateFinished with nothing playing, got %v", result)
	}
	if len(d.GetSoundChipWrites()) != 0 {
		t.Fatalf("expected no writes with nothing playing")
	}
}

func TestSoundDriverPlaySoundStartsTrack(t *testing.T) {
	d := NewSoundDriver(false)
	// A tiny standalone program: immediate note then a duration byte that
	// keeps the track alive until the next tempo overflow counts it down,
	// after which it falls off the end.
	data := []byte{0x85, 0x01}
	if err := d.SetFixedContent(data, 0x1000); err != nil {
		t.Fatalf("SetFixedContent: %v", err)
	}
	d.SetSourceAddress(0x1000)
	d.PlaySound(0) // track 0: FM

	result := d.Update()
	if result != UpdateContinue {
		t.Fatalf("expected UpdateContinue while track is playing, got %v", result)
	}
	writes := d.GetSoundChipWrites()
	if len(writes) == 0 {
		t.Fatalf("expected chip writes from playing a note")
	}
	for _, w := range writes {
		if w.Target != SoundChipYamahaFMI {
			t.Fatalf("expected FM writes for track 0, got target %v", w.Target)
		}
	}
}

func TestSoundDriverResetSilencesAllTracks(t *testing.T) {
	d := NewSoundDriver(false)
	data := []byte{0x85, 0x01}
	d.SetFixedContent(data, 0x1000)
	d.SetSourceAddress(0x1000)
	d.PlaySound(0)
	d.Update()

	d.Reset()
	result := d.Update()
	if result != UpdateFinished {
		t.Fatalf("expected all tracks silenced after reset, got %v", result)
	}
}

func TestSoundDriverSetTempoSpeedupRecordsValue(t *testing.T) {
	d := NewSoundDriver(false)
	d.SetTempoSpeedup(0x40)
	if d.tempoSpeedup != 0x40 {
		t.Fatalf("expected tempo speedup to be recorded")
	}
}

func TestSoundDriverFadeInToPreviousStopsDriver(t *testing.T) {
	d := NewSoundDriver(false)
	// A note, then the fade-to-previous quirk flag, then an explicit stop.
	data := []byte{0x85, cfFadeInToPrevious, cfStop}
	if err := d.SetFixedContent(data, 0x1000); err != nil {
		t.Fatalf("SetFixedContent: %v", err)
	}
	d.SetSourceAddress(0x1000)
	d.PlaySound(0)

	if result := d.Update(); result != UpdateContinue {
		t.Fatalf("expected frame 1 (the note) to continue, got %v", result)
	}
	if result := d.Update(); result != UpdateContinue {
		t.Fatalf("expected frame 2 (flag fires, track stops) to still report continue, got %v", result)
	}
	if result := d.Update(); result != UpdateStop {
		t.Fatalf("expected frame 3 to report UpdateStop, got %v", result)
	}
}

func TestSoundDriverAllocateTrackForSoundRoutesByIDRange(t *testing.T) {
	d := NewSoundDriver(false)
	if slot := d.allocateTrackForSound(0x32); slot != &d.tracks[musicSlotID] {
		t.Fatalf("expected id 0x32 to route to the music slot")
	}
	if slot := d.allocateTrackForSound(0xdc); slot != &d.tracks[musicSlotID] {
		t.Fatalf("expected id 0xdc to route to the music slot")
	}
	if slot := d.allocateTrackForSound(0x33); slot == &d.tracks[musicSlotID] {
		t.Fatalf("expected id 0x33 to route to an SFX slot, not the music slot")
	}
}

package audio

import "testing"

func TestSoundChipMixerSilentFrame(t *testing.T) {
	m := NewSoundChipMixer(44100, 60.0)
	out := make([]int16, 44100) // generous upper bound for one frame

	n := m.Update(out, nil)
	if n == 0 {
		t.Fatalf("expected some samples for a frame")
	}
	for i := 0; i < n*2; i++ {
		if out[i] != 0 {
			t.Fatalf("sample %d: expected silence with no writes, got %d", i, out[i])
		}
	}
}

func TestSoundChipMixerAppliesWritesInCycleOrder(t *testing.T) {
	m := NewSoundChipMixer(44100, 60.0)
	out := make([]int16, 44100)

	writes := []SoundChipWrite{
		{Target: SoundChipSN76489, Data: 0x8B, Cycles: 0},
		{Target: SoundChipSN76489, Data: 0x10, Cycles: 10},
		{Target: SoundChipSN76489, Data: 0x90, Cycles: 20}, // max volume, channel 0
	}

	n := m.Update(out, writes)
	if n == 0 {
		t.Fatalf("expected samples back")
	}
	if got := m.psg.GetToneReg(0); got != 0x10B {
		t.Fatalf("expected latch then data to set tone 0 to 0x10B, got %#x", got)
	}
	if got := m.psg.GetVolume(0); got != 0 {
		t.Fatalf("expected channel 0 attenuation 0 after the volume write, got %d", got)
	}
}

func TestSoundChipMixerResetClearsState(t *testing.T) {
	m := NewSoundChipMixer(44100, 60.0)
	out := make([]int16, 44100)
	m.Update(out, []SoundChipWrite{{Target: SoundChipSN76489, Data: 0x90, Cycles: 0}})

	m.Reset()
	out2 := make([]int16, 44100)
	n := m.Update(out2, nil)
	for i := 0; i < n*2; i++ {
		if out2[i] != 0 {
			t.Fatalf("sample %d: expected silence after reset, got %d", i, out2[i])
		}
	}
}

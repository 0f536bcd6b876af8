package audio

import "testing"

func newTestYM2612() (*YM2612, *BlipBuffer, *BlipBuffer) {
	left := NewBlipBuffer(8192)
	right := NewBlipBuffer(8192)
	left.SetRates(7670454, 44100)
	right.SetRates(7670454, 44100)
	return NewYM2612(7670454, left, right), left, right
}

func TestYM2612SilentWithoutKeyOn(t *testing.T) {
	chip, left, right := newTestYM2612()
	chip.Advance(0, 7670454/60)
	left.EndFrame(7670454 / 60)
	right.EndFrame(7670454 / 60)

	dst := make([]int16, left.SamplesAvailable())
	left.ReadSamples(dst, len(dst), 1)
	for i, s := range dst {
		if s != 0 {
			t.Fatalf("sample %d: expected silence with no key-on, got %d", i, s)
		}
	}
}

func TestYM2612KeyOnPansToBothChannels(t *testing.T) {
	chip, left, right := newTestYM2612()

	// Algorithm 7: every operator feeds the output bus directly.
	chip.WriteRegister(0, 0, 0xB0, 7)
	chip.WriteRegister(0, 0, 0xB4, 0xC0) // both pan bits set
	chip.WriteRegister(0, 0, 0x30, 0x01) // operator 0 multiple=1
	chip.WriteRegister(0, 0, 0x40, 0x00) // total level 0 (loudest)
	chip.WriteRegister(0, 0, 0xA0, 0x69) // fnumber low byte nonzero
	chip.WriteRegister(0, 0, 0xA4, 0x20) // block 4, fnumber high bits 0
	chip.WriteRegister(0, 0, 0x28, 0xF0) // key on all operators of channel 0

	chip.Advance(0, 7670454/60)
	left.EndFrame(7670454 / 60)
	right.EndFrame(7670454 / 60)

	if left.SamplesAvailable() != right.SamplesAvailable() {
		t.Fatalf("expected matching sample counts, got left=%d right=%d", left.SamplesAvailable(), right.SamplesAvailable())
	}
	l := make([]int16, left.SamplesAvailable())
	r := make([]int16, right.SamplesAvailable())
	left.ReadSamples(l, len(l), 1)
	right.ReadSamples(r, len(r), 1)
	nonSilent := false
	for i := range l {
		if l[i] != r[i] {
			t.Fatalf("sample %d: expected identical left/right with both pan bits set, got %d vs %d", i, l[i], r[i])
		}
		if l[i] != 0 {
			nonSilent = true
		}
	}
	if !nonSilent {
		t.Fatalf("expected audible output on both channels after key-on")
	}
}

func TestYM2612DACBypassesOperators(t *testing.T) {
	chip, left, _ := newTestYM2612()
	chip.WriteRegister(0, 1, 0x2B, 0x80) // enable DAC on channel 6
	chip.WriteRegister(10, 1, 0x2A, 200) // DAC sample write

	if chip.channels[5].dacSample == 0 {
		t.Fatalf("expected DAC sample to be recorded")
	}
	_ = left
}

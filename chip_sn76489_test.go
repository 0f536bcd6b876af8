package audio

import "testing"

func newTestSN76489() (*SN76489, *BlipBuffer) {
	buf := NewBlipBuffer(4096)
	buf.SetRates(3579545, 44100)
	return NewSN76489(buf), buf
}

func TestSN76489SilentOnInit(t *testing.T) {
	chip, _ := newTestSN76489()
	for ch := 0; ch < 4; ch++ {
		if got := chip.GetVolume(ch); got != 0x0F {
			t.Errorf("channel %d: expected silent (0x0F), got 0x%02X", ch, got)
		}
	}
}

func TestSN76489VolumeRegisterWrite(t *testing.T) {
	chip, _ := newTestSN76489()
	cases := []struct {
		channel, volume uint8
	}{
		{0, 0x00},
		{1, 0x08},
		{2, 0x0F},
		{3, 0x05},
	}
	for _, tc := range cases {
		cmd := uint8(0x90) | (tc.channel << 5) | tc.volume
		chip.Write(0, cmd)
		if got := chip.GetVolume(int(tc.channel)); got != tc.volume {
			t.Errorf("channel %d: expected volume 0x%02X, got 0x%02X", tc.channel, tc.volume, got)
		}
	}
}

func TestSN76489ToneRegisterWrite(t *testing.T) {
	chip, _ := newTestSN76489()
	chip.Write(0, 0x8B)
	chip.Write(0, 0x1A)
	if got := chip.GetToneReg(0); got != 0x1AB {
		t.Errorf("channel 0 tone: expected 0x1AB, got 0x%03X", got)
	}
}

func TestSN76489NoiseRegisterWrite(t *testing.T) {
	chip, _ := newTestSN76489()
	for _, n := range []uint8{0x00, 0x03, 0x04, 0x07} {
		chip.Write(0, 0xE0|n)
		if got := chip.GetNoiseReg(); got != n {
			t.Errorf("expected noise reg 0x%02X, got 0x%02X", n, got)
		}
	}
}

func TestSN76489SilentMixProducesNoDeltas(t *testing.T) {
	chip, buf := newTestSN76489()
	chip.Advance(0, 3579545/60)
	buf.EndFrame(3579545 / 60)
	dst := make([]int16, buf.SamplesAvailable())
	buf.ReadSamples(dst, len(dst), 1)
	for i, s := range dst {
		if s != 0 {
			t.Fatalf("sample %d: expected silence, got %d", i, s)
		}
	}
}

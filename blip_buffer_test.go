package audio

import "testing"

func TestBlipBufferSilentWithNoDeltas(t *testing.T) {
	b := NewBlipBuffer(8192)
	b.SetRates(7670454, 44100)

	b.EndFrame(7670454 / 60)
	avail := b.SamplesAvailable()
	if avail == 0 {
		t.Fatalf("expected some samples available after endFrame")
	}

	dst := make([]int16, avail)
	n := b.ReadSamples(dst, avail, 1)
	if n != avail {
		t.Fatalf("expected to read %d samples, got %d", avail, n)
	}
	for i, s := range dst {
		if s != 0 {
			t.Fatalf("sample %d: expected silence with no deltas, got %d", i, s)
		}
	}
}

func TestBlipBufferIdempotentAcrossFrames(t *testing.T) {
	b := NewBlipBuffer(8192)
	b.SetRates(7670454, 44100)

	for frame := 0; frame < 5; frame++ {
		b.EndFrame(7670454 / 60)
		avail := b.SamplesAvailable()
		dst := make([]int16, avail)
		b.ReadSamples(dst, avail, 1)
		for i, s := range dst {
			if s != 0 {
				t.Fatalf("frame %d sample %d: expected continued silence, got %d", frame, i, s)
			}
		}
	}
}

// TestBlipBufferDCAccuracy checks that a single step delta, once fully
// drained through the kernel's settling tail, integrates to (approximately)
// the injected amplitude -- the defining property of a DC-accurate
// band-limited synthesis buffer.
func TestBlipBufferDCAccuracy(t *testing.T) {
	b := NewBlipBuffer(8192)
	b.SetRates(7670454, 44100)

	const delta = int32(4000)
	b.AddDelta(100, delta)
	b.EndFrame(7670454 / 60)

	avail := b.SamplesAvailable()
	dst := make([]int16, avail)
	b.ReadSamples(dst, avail, 1)

	final := dst[avail-1]
	diff := int32(final) - delta
	if diff < 0 {
		diff = -diff
	}
	// Allow rounding slack from the fixed-point kernel normalization.
	if diff > 8 {
		t.Fatalf("expected settled output near %d, got %d (diff %d)", delta, final, diff)
	}
}

func TestBlipBufferFastDeltaIsExact(t *testing.T) {
	b := NewBlipBuffer(8192)
	b.SetRates(7670454, 44100)

	const delta = int32(1234)
	b.AddDeltaFast(0, delta)
	b.EndFrame(7670454 / 60)

	avail := b.SamplesAvailable()
	dst := make([]int16, avail)
	b.ReadSamples(dst, avail, 1)

	if dst[avail-1] != int16(delta) {
		t.Fatalf("expected exact single-tap step of %d, got %d", delta, dst[avail-1])
	}
}

func TestBlipBufferStereoStride(t *testing.T) {
	b := NewBlipBuffer(8192)
	b.SetRates(7670454, 44100)
	b.AddDeltaFast(0, 500)
	b.EndFrame(7670454 / 60)

	avail := b.SamplesAvailable()
	dst := make([]int16, avail*2)
	n := b.ReadSamples(dst, avail, 2)
	if n != avail {
		t.Fatalf("expected %d samples written, got %d", avail, n)
	}
	// Odd (right-channel) slots must be untouched by a mono writer.
	for i := 1; i < len(dst); i += 2 {
		if dst[i] != 0 {
			t.Fatalf("slot %d: expected untouched stride gap, got %d", i, dst[i])
		}
	}
}

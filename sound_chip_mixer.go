// sound_chip_mixer.go - Per-frame sound chip orchestration: injects the
// sound driver's scheduled register writes, runs the YM2612/SN76489 chips
// to the end of the frame, and resamples their combined output to host
// rate.
//
// Grounded directly on SoundEmulation.cpp's update()/internalUpdate() loop:
// same per-frame cycle budget (MCYCLES_PER_FRAME), same "inject writes in
// cycle order, then run chips to frame end, then drain the resampler"
// shape. The original drives the FM chip through an intermediate raw
// sample buffer it resamples by hand (fm_cycles_ratio stepping +
// blip_add_delta); this engine's YM2612/SN76489 already emit deltas
// straight into their BlipBuffers, so that manual resampling step
// collapses into the chips' own Advance() calls.
package audio

const mcyclesPerFrame = 3420 * 262

// SoundChipMixer owns the YM2612 and SN76489 emulations plus their output
// BlipBuffers, and turns a frame's worth of SoundChipWrites into host
// sample data.
type SoundChipMixer struct {
	fm  *YM2612
	psg *SN76489

	left, right *BlipBuffer
	psgOut      *BlipBuffer // PSG output mixed into both channels equally

	sampleRate int
	frameRate  float64
}

// NewSoundChipMixer builds the mixer for the given host sample rate and
// simulation frame rate (e.g. 44100, 60.0 for NTSC).
func NewSoundChipMixer(sampleRate int, frameRate float64) *SoundChipMixer {
	bufSize := sampleRate/10 + 64
	left := NewBlipBuffer(bufSize)
	right := NewBlipBuffer(bufSize)
	psgOut := NewBlipBuffer(bufSize)

	mclk := float64(mcyclesPerFrame) * frameRate
	left.SetRates(mclk, float64(sampleRate))
	right.SetRates(mclk, float64(sampleRate))
	psgOut.SetRates(mclk/4, float64(sampleRate))

	return &SoundChipMixer{
		fm:         NewYM2612(mclk/7, left, right),
		psg:        NewSN76489(psgOut),
		left:       left,
		right:      right,
		psgOut:     psgOut,
		sampleRate: sampleRate,
		frameRate:  frameRate,
	}
}

// Reset clears all chip and resampler state, as at power-on.
func (m *SoundChipMixer) Reset() {
	m.fm = NewYM2612(m.fm.clockHz, m.left, m.right)
	m.psg = NewSN76489(m.psgOut)
	m.left.Clear()
	m.right.Clear()
	m.psgOut.Clear()
}

// Update runs one simulation frame: applies writes in cycle order, advances
// both chips to the frame boundary, and resamples into outBuffer (stereo
// interleaved int16). Returns the number of stereo sample pairs written.
func (m *SoundChipMixer) Update(outBuffer []int16, writes []SoundChipWrite) int {
	cursor := uint32(0)
	for _, w := range writes {
		if w.Target == SoundChipNone {
			break
		}
		if w.Cycles > cursor {
			m.advanceTo(cursor, w.Cycles)
			cursor = w.Cycles
		}
		switch w.Target {
		case SoundChipSN76489:
			m.psg.Write(w.Cycles, w.Data)
		case SoundChipYamahaFMI:
			m.fm.WriteRegister(w.Cycles, 0, w.Address, w.Data)
		case SoundChipYamahaFMII:
			m.fm.WriteRegister(w.Cycles, 1, w.Address, w.Data)
		}
	}
	if cursor < mcyclesPerFrame {
		m.advanceTo(cursor, mcyclesPerFrame)
	}

	m.left.EndFrame(mcyclesPerFrame)
	m.right.EndFrame(mcyclesPerFrame)
	m.psgOut.EndFrame(mcyclesPerFrame)

	size := m.left.SamplesAvailable()
	if r := m.right.SamplesAvailable(); r < size {
		size = r
	}
	if p := m.psgOut.SamplesAvailable(); p < size {
		size = p
	}

	m.left.ReadSamples(outBuffer, size, 2)
	m.right.ReadSamples(outBuffer[1:], size, 2)
	m.mixPSGInto(outBuffer, size)
	return size
}

func (m *SoundChipMixer) advanceTo(from, to uint32) {
	cycles := to - from
	m.fm.Advance(from, cycles)
	m.psg.Advance(from, cycles)
}

func (m *SoundChipMixer) mixPSGInto(outBuffer []int16, size int) {
	psg := make([]int16, size)
	m.psgOut.ReadSamples(psg, size, 1)
	for i := 0; i < size; i++ {
		l := int32(outBuffer[i*2]) + int32(psg[i])
		r := int32(outBuffer[i*2+1]) + int32(psg[i])
		outBuffer[i*2] = int16(clampInt32(l, -32768, 32767))
		outBuffer[i*2+1] = int16(clampInt32(r, -32768, 32767))
	}
}

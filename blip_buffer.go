// blip_buffer.go - Band-limited delta resampler from chip clock to output rate.

package audio

import "math"

const (
	blipTimeBits    = 20
	blipTimeUnit    = 1 << blipTimeBits
	blipPhaseBits   = 5
	blipPhaseCount  = 1 << blipPhaseBits
	blipHalfWidth   = 16 // kernel half-width; full kernel is 2*blipHalfWidth = 32 taps
	blipKernelWidth = blipHalfWidth * 2
	blipDeltaBits   = 15
	blipDeltaUnit   = 1 << blipDeltaBits
	blipBufExtra    = blipKernelWidth + 4
)

// blipKernel holds one precomputed band-limited step kernel per sub-sample
// phase. Built once at package init from a windowed-sinc step response so
// each addDelta call only needs a table lookup plus blipKernelWidth adds.
var blipKernel [blipPhaseCount][blipKernelWidth]int32

func init() {
	for phase := 0; phase < blipPhaseCount; phase++ {
		frac := float64(phase) / float64(blipPhaseCount)
		var taps [blipKernelWidth]float64
		sum := 0.0
		for i := 0; i < blipKernelWidth; i++ {
			// Sample position relative to the ideal (bandlimited) unit step,
			// offset by the phase fraction and centered in the window.
			x := float64(i-blipHalfWidth) + 1 - frac
			var step float64
			if x == 0 {
				step = 1
			} else {
				// Integral of a sinc low-pass step response sample, windowed
				// with a Hann window to keep the kernel compact and bandlimit
				// the result comfortably below Nyquist.
				sincVal := math.Sin(math.Pi*x) / (math.Pi * x)
				window := 0.5 - 0.5*math.Cos(2*math.Pi*(float64(i)+0.5)/float64(blipKernelWidth))
				step = sincVal * window
			}
			taps[i] = step
			sum += step
		}
		// Normalize so the kernel sums to exactly one unit step -> DC-accurate.
		scale := float64(blipDeltaUnit) / sum
		for i := 0; i < blipKernelWidth; i++ {
			blipKernel[phase][i] = int32(math.Round(taps[i] * scale))
		}
	}
}

// BlipBuffer accumulates chip-clock deltas and integrates them into a
// bandlimited output sample stream at a different (lower) sample rate.
type BlipBuffer struct {
	factor uint64 // fixed-point clocks -> samples ratio, Q(64-blipTimeBits).blipTimeBits
	offset uint64 // fixed-point write position within the current frame

	buf          []int32 // delta accumulation buffer
	integrator   int32   // running sum carried across readSamples calls
	writtenUpTo  int     // highest sample index touched by a delta this frame
	samplesAvail int     // samples ready to be read (set by endFrame)
}

// NewBlipBuffer creates a buffer with room for at least sizeSamples of
// fully-integrated output between endFrame calls.
func NewBlipBuffer(sizeSamples int) *BlipBuffer {
	b := &BlipBuffer{
		buf: make([]int32, sizeSamples+blipBufExtra),
	}
	return b
}

// SetRates configures the clocks-per-second -> samples-per-second ratio.
func (b *BlipBuffer) SetRates(clocksPerSecond, samplesPerSecond float64) {
	b.factor = uint64(samplesPerSecond/clocksPerSecond*blipTimeUnit + 0.5)
	if b.factor == 0 {
		b.factor = 1
	}
}

// Clear zeroes all accumulated state.
func (b *BlipBuffer) Clear() {
	for i := range b.buf {
		b.buf[i] = 0
	}
	b.integrator = 0
	b.offset = 0
	b.writtenUpTo = 0
	b.samplesAvail = 0
}

// AddDelta injects a step of amplitudeDelta at chip-clock time clockTime,
// convolved with the bandlimited step kernel.
func (b *BlipBuffer) AddDelta(clockTime uint32, amplitudeDelta int32) {
	if amplitudeDelta == 0 {
		return
	}
	fixed := uint64(clockTime)*b.factor + b.offset
	sampleIndex := int(fixed >> blipTimeBits)
	phase := int((fixed >> (blipTimeBits - blipPhaseBits)) & (blipPhaseCount - 1))

	kernel := &blipKernel[phase]
	base := sampleIndex
	b.ensureCapacity(base + blipKernelWidth)
	for i := 0; i < blipKernelWidth; i++ {
		idx := base + i
		if idx < 0 {
			continue
		}
		b.buf[idx] += amplitudeDelta * kernel[i] / blipDeltaUnit
	}
	if end := base + blipKernelWidth; end > b.writtenUpTo {
		b.writtenUpTo = end
	}
}

// AddDeltaFast injects a delta using a single-tap (nearest-sample) kernel,
// trading bandlimiting quality for speed.
func (b *BlipBuffer) AddDeltaFast(clockTime uint32, amplitudeDelta int32) {
	if amplitudeDelta == 0 {
		return
	}
	fixed := uint64(clockTime)*b.factor + b.offset
	sampleIndex := int(fixed >> blipTimeBits)
	b.ensureCapacity(sampleIndex + 1)
	b.buf[sampleIndex] += amplitudeDelta
	if sampleIndex+1 > b.writtenUpTo {
		b.writtenUpTo = sampleIndex + 1
	}
}

func (b *BlipBuffer) ensureCapacity(upTo int) {
	if upTo <= len(b.buf) {
		return
	}
	grown := make([]int32, upTo+blipBufExtra)
	copy(grown, b.buf)
	b.buf = grown
}

// EndFrame advances the virtual clock by clockDuration ticks, making any
// samples fully to the left of the new boundary available for reading.
func (b *BlipBuffer) EndFrame(clockDuration uint32) {
	fixed := uint64(clockDuration)*b.factor + b.offset
	b.samplesAvail += int(fixed >> blipTimeBits)
	b.offset = fixed & (blipTimeUnit - 1)
}

// SamplesAvailable returns the number of fully integrated samples ready.
func (b *BlipBuffer) SamplesAvailable() int {
	return b.samplesAvail
}

// ReadSamples copies and integrates count samples into dst starting at
// dst[0], advancing by stride per sample (stride=2 for stereo interleave).
func (b *BlipBuffer) ReadSamples(dst []int16, count int, stride int) int {
	if count > b.samplesAvail {
		count = b.samplesAvail
	}
	if count <= 0 {
		return 0
	}

	sum := b.integrator
	pos := 0
	for i := 0; i < count; i++ {
		sum += b.buf[i]
		s := sum
		if s > 32767 {
			s = 32767
		} else if s < -32768 {
			s = -32768
		}
		dst[pos] = int16(s)
		pos += stride
	}
	b.integrator = sum

	// Shift remaining (not-yet-read) deltas down to the front of the buffer.
	remaining := b.writtenUpTo - count
	if remaining > 0 {
		copy(b.buf, b.buf[count:b.writtenUpTo])
		for i := remaining; i < len(b.buf); i++ {
			b.buf[i] = 0
		}
	} else {
		for i := range b.buf {
			b.buf[i] = 0
		}
		remaining = 0
	}
	b.writtenUpTo = remaining
	b.samplesAvail -= count
	return count
}

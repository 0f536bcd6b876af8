// audio_buffer.go - Stereo 16-bit PCM ring owned by an AudioSource, written
// by streaming workers and read by the host audio callback.
//
// Grounded on spec section 4's AudioBuffer row: frequency, total length,
// a monotonically growing "completed length", a persistent flag (drop
// consumed data if false), and its own lock separate from the owning
// source's mutex -- producer appends at the tail, consumer reads between
// 0 and completedLength, so the two sides only ever touch disjoint
// regions while holding it.
package audio

import "sync"

// AudioBuffer holds interleaved stereo PCM samples at a fixed frequency.
type AudioBuffer struct {
	mu sync.Mutex

	frequency int
	samples   []int16 // interleaved L/R

	completedLength int // samples (per channel) fully written and safe to read
	readPosition    int // samples (per channel) already consumed, when !persistent

	persistent bool // if false, consumed data is dropped to bound memory
}

// NewAudioBuffer creates an empty buffer at the given frequency.
func NewAudioBuffer(frequency int, persistent bool) *AudioBuffer {
	return &AudioBuffer{frequency: frequency, persistent: persistent}
}

// Frequency returns the buffer's sample rate.
func (b *AudioBuffer) Frequency() int {
	return b.frequency
}

// Lock/Unlock expose the buffer's mutex directly to callers that need to
// hold it across several operations (e.g. the host mixer reading a run of
// samples), matching AudioBuffer::lock/unlock from the original.
func (b *AudioBuffer) Lock()   { b.mu.Lock() }
func (b *AudioBuffer) Unlock() { b.mu.Unlock() }

// Append adds newSamples (interleaved stereo) to the tail and advances
// completedLength. Must be called with the buffer unlocked; it takes the
// lock itself.
func (b *AudioBuffer) Append(newSamples []int16) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.samples = append(b.samples, newSamples...)
	b.completedLength += len(newSamples) / 2
	if !b.persistent {
		b.compact()
	}
}

// compact drops already-read data from the front once a source is not
// keeping full history, bounding memory for long-running streams.
func (b *AudioBuffer) compact() {
	base := b.completedLength - len(b.samples)/2 // absolute frame index of samples[0]
	drop := b.readPosition - base
	if drop <= 0 {
		return
	}
	dropSamples := drop * 2
	if dropSamples >= len(b.samples) {
		b.samples = b.samples[:0]
	} else {
		b.samples = append(b.samples[:0], b.samples[dropSamples:]...)
	}
}

// CompletedLength returns the number of fully-written sample frames
// (per-channel) currently safe to read.
func (b *AudioBuffer) CompletedLength() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.completedLength
}

// Read copies up to len(dst)/2 stereo frames starting at frame position
// from, returning the number of frames actually copied. Safe to call
// concurrently with Append.
func (b *AudioBuffer) Read(from int, dst []int16) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	if from >= b.completedLength {
		return 0
	}
	localOffset := from
	if !b.persistent {
		localOffset = from - (b.completedLength - len(b.samples)/2)
		if localOffset < 0 {
			localOffset = 0
		}
	}
	available := b.completedLength - from
	frames := len(dst) / 2
	if frames > available {
		frames = available
	}
	if frames <= 0 {
		return 0
	}
	copy(dst, b.samples[localOffset*2:localOffset*2+frames*2])
	if !b.persistent && from+frames > b.readPosition {
		b.readPosition = from + frames
	}
	return frames
}

// ByteSize returns the buffer's current backing storage size in bytes,
// the unit AudioSourceManager.MemoryUsage reports in.
func (b *AudioBuffer) ByteSize() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return int64(len(b.samples)) * 2
}

// Reset clears all content, for dynamic restart.
func (b *AudioBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.samples = b.samples[:0]
	b.completedLength = 0
	b.readPosition = 0
}

// audio_source.go - Common AudioSource contract: "fill an AudioBuffer up to
// time t", shared by emulated and Ogg-backed sources.
//
// Grounded on AudioSourceBase.h/.cpp: CachingType selection, the
// INACTIVE/STREAMING/COMPLETED state machine, startup/progress/
// checkForUnload/updateReadTime, and mapAudioRefPositionToTrackPosition.
package audio

import (
	"math"
	"sync"
)

// CachingType controls how aggressively an AudioSource's buffer is kept
// around versus streamed and discarded.
type CachingType int

const (
	CachingStatic CachingType = iota
	CachingStreamingDynamic
	CachingFullDynamic
)

// SourceState is the AudioSource lifecycle.
type SourceState int

const (
	SourceInactive SourceState = iota
	SourceStreaming
	SourceCompleted
)

// jobFunc is the cooperative unit of streaming work: it produces a bounded
// amount of PCM and returns true once the source has nothing left to do.
type jobFunc func(budgetSeconds float64) bool

// sourceCore is embedded by both AudioSource variants; it holds everything
// the base contract manages so each variant only has to supply its
// produce jobFunc (one "run the job function for budgetSeconds" step).
type sourceCore struct {
	mu sync.Mutex

	caching CachingType
	state   SourceState
	buffer  *AudioBuffer

	bufferedSeconds float64
	readTime        float64
	lastUsed        float64

	initialSeekPos float64
	trackLength    float64
	loopStart      float64

	produce jobFunc
}

func newSourceCore(frequency int, caching CachingType, produce jobFunc) sourceCore {
	persistent := caching == CachingStatic
	return sourceCore{
		caching: caching,
		state:   SourceInactive,
		buffer:  NewAudioBuffer(frequency, persistent),
		produce: produce,
		loopStart: -1,
	}
}

// Startup transitions the source to STREAMING and synchronously fills
// precacheSeconds worth of audio.
func (s *sourceCore) Startup(precacheSeconds float64) *AudioBuffer {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.caching != CachingStatic || s.state == SourceInactive {
		if s.caching != CachingStatic {
			s.buffer.Reset()
			s.bufferedSeconds = 0
			s.readTime = 0
		}
		s.state = SourceStreaming
	}
	s.fillLocked(precacheSeconds)
	return s.buffer
}

// Progress advances the streaming target toward precacheSeconds, returning
// the job priority (precacheSeconds - bufferedSeconds); positive means more
// work is queued.
func (s *sourceCore) Progress(precacheSeconds float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != SourceStreaming {
		return 0
	}
	priority := precacheSeconds - s.bufferedSeconds
	if priority > 0 {
		s.fillLocked(precacheSeconds)
	}
	return priority
}

func (s *sourceCore) fillLocked(target float64) {
	for s.bufferedSeconds < target {
		before := s.bufferedSeconds
		if s.produce(target - s.bufferedSeconds) {
			s.state = SourceCompleted
			return
		}
		if s.bufferedSeconds <= before {
			return
		}
	}
}

// UpdateReadTime is the consumer handshake: readTime only ever moves
// forward.
func (s *sourceCore) UpdateReadTime(t float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t > s.readTime {
		s.readTime = t
	}
}

// CheckForUnload applies the LRU eviction policy for the source's caching
// type, returning true if the source should be torn down.
func (s *sourceCore) CheckForUnload(now float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.caching {
	case CachingFullDynamic, CachingStreamingDynamic:
		return s.bufferedSeconds > 0.2 && now-s.lastUsed > 10.0
	default:
		return s.bufferedSeconds > 5.0 && now-s.lastUsed > 180.0
	}
}

// Touch marks the source as recently used, resetting the unload timer.
func (s *sourceCore) Touch(now float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUsed = now
}

// MapAudioRefPositionToTrackPosition is identity for static sources and
// sources without a loop point; for looping dynamic sources it offsets by
// the initial seek position and wraps positions past the track end back
// into the loop region.
func (s *sourceCore) MapAudioRefPositionToTrackPosition(pos float64) float64 {
	if s.caching == CachingStatic || s.loopStart < 0 {
		return pos
	}
	if s.trackLength <= 0 {
		return s.initialSeekPos + pos
	}
	p := s.initialSeekPos + pos
	if p < s.trackLength {
		return p
	}
	loopLen := s.trackLength - s.loopStart
	if loopLen <= 0 {
		return s.trackLength
	}
	return s.loopStart + (p-s.trackLength) - loopLen*math.Floor((p-s.trackLength)/loopLen)
}

// Buffer returns the backing AudioBuffer.
func (s *sourceCore) Buffer() *AudioBuffer { return s.buffer }

// State returns the current lifecycle state.
func (s *sourceCore) State() SourceState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// AudioSource is the uniform contract EmulationAudioSource and
// OggAudioSource both satisfy.
type AudioSource interface {
	Startup(precacheSeconds float64) *AudioBuffer
	Progress(precacheSeconds float64) float64
	UpdateReadTime(t float64)
	CheckForUnload(now float64) bool
	Touch(now float64)
	MapAudioRefPositionToTrackPosition(pos float64) float64
	Buffer() *AudioBuffer
	State() SourceState
}

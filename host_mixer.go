// host_mixer.go - Boundary interface to the host audio engine that owns
// the real output device and audio callback thread.
//
// Grounded on spec section 4's "host mixer" collaborator (addSound,
// setVolumeChange, setPosition, stop) and on this engine's existing
// oto-backed output path, generalized into an interface so AudioPlayer
// never depends on a concrete backend.
package audio

// AudioReference is an opaque handle the host mixer returns for a sound
// it has started playing, used for all subsequent per-sound control.
type AudioReference interface {
	// Valid reports whether the host mixer still considers this handle
	// live (false once playback has genuinely finished on the host side).
	Valid() bool
}

// PlaybackOptions configures how a sound is started on the host mixer.
type PlaybackOptions struct {
	Streaming   bool
	AudioMixerID int
	Volume      float64
	Looping     bool
	LoopStart   int64 // samples, only meaningful when Looping
}

// HostMixer is the boundary to the real output device: buffer pump,
// per-sound volume ramps, pause/resume, and position queries.
type HostMixer interface {
	AddSound(buffer *AudioBuffer, opts PlaybackOptions) AudioReference
	Stop(ref AudioReference)
	Pause(ref AudioReference)
	Resume(ref AudioReference)
	SetVolume(ref AudioReference, volume float64)
	SetVolumeChange(ref AudioReference, dBPerSecond float64)
	SetPosition(ref AudioReference, samples int64)
	GetPosition(ref AudioReference) int64

	// GlobalPlayedSamples and BufferSize let AudioPlayer keep its own
	// sample clock from drifting against the host's actual output
	// position, per spec's updatePlayback drift-clamp step.
	GlobalPlayedSamples() int64
	BufferSize() int
}

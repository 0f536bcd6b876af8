//go:build !headless

// oto_mixer.go - HostMixer backed by ebitengine/oto, the real output
// device and audio callback thread.
//
// Grounded on this codebase's audio_backend_oto.go: a context built from
// oto.NewContextOptions, one oto.Player per active sound implementing
// io.Reader, and an atomic/mutex split between the hot Read() path and
// setup/control calls. Adapted from that file's single chip-derived mono
// float32 stream to many independently playable stereo int16 buffers, one
// oto.Player per audio.AudioReference, matching this engine's "many
// concurrently playing sounds" model instead of a single chip ring.
package hostmixer

import (
	"sync"
	"sync/atomic"

	"github.com/ebitengine/oto/v3"

	audio "github.com/oxygen-engine/audio-core"
)

// OtoMixer implements audio.HostMixer on top of an oto.Context.
type OtoMixer struct {
	ctx        *oto.Context
	sampleRate int

	mu      sync.Mutex
	sounds  map[*otoRef]*oto.Player
	played  atomic.Int64
}

// otoRef is the concrete AudioReference OtoMixer hands back.
type otoRef struct {
	valid  atomic.Bool
	reader *bufferReader
}

func (r *otoRef) Valid() bool { return r.valid.Load() }

// NewOtoMixer opens an oto output context at sampleRate, stereo 16-bit.
func NewOtoMixer(sampleRate int) (*OtoMixer, error) {
	opts := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   0, // let oto pick a sensible platform default
	}
	ctx, ready, err := oto.NewContext(opts)
	if err != nil {
		return nil, err
	}
	<-ready

	return &OtoMixer{
		ctx:        ctx,
		sampleRate: sampleRate,
		sounds:     make(map[*otoRef]*oto.Player),
	}, nil
}

// bufferReader adapts an *audio.AudioBuffer's Read method to io.Reader,
// tracking how many frames this sound has had pulled from it (oto's
// GlobalPlayedSamples equivalent).
type bufferReader struct {
	buffer   *audio.AudioBuffer
	position int
	mixer    *OtoMixer
	looping  bool
}

func (r *bufferReader) Read(p []byte) (int, error) {
	frames := len(p) / 4 // stereo int16 = 4 bytes/frame
	if frames == 0 {
		return 0, nil
	}
	samples := make([]int16, frames*2)
	n := r.buffer.Read(r.position, samples)
	if n == 0 {
		if r.looping {
			r.position = 0
			n = r.buffer.Read(r.position, samples)
		}
		if n == 0 {
			for i := range p {
				p[i] = 0
			}
			return len(p), nil
		}
	}
	r.position += n
	r.mixer.played.Add(int64(n))

	for i := 0; i < n*2; i++ {
		p[i*2] = byte(samples[i])
		p[i*2+1] = byte(samples[i] >> 8)
	}
	for i := n * 4; i < len(p); i++ {
		p[i] = 0
	}
	return len(p), nil
}

// AddSound starts playing buffer and returns a handle for later control.
func (m *OtoMixer) AddSound(buffer *audio.AudioBuffer, opts audio.PlaybackOptions) audio.AudioReference {
	reader := &bufferReader{buffer: buffer, mixer: m, looping: opts.Looping}
	player := m.ctx.NewPlayer(reader)
	player.SetVolume(opts.Volume)
	player.Play()

	ref := &otoRef{reader: reader}
	ref.valid.Store(true)

	m.mu.Lock()
	m.sounds[ref] = player
	m.mu.Unlock()
	return ref
}

func (m *OtoMixer) playerFor(ref audio.AudioReference) (*oto.Player, bool) {
	r, ok := ref.(*otoRef)
	if !ok {
		return nil, false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.sounds[r]
	return p, ok
}

// Stop halts playback and releases the underlying oto.Player.
func (m *OtoMixer) Stop(ref audio.AudioReference) {
	r, ok := ref.(*otoRef)
	if !ok {
		return
	}
	m.mu.Lock()
	p, ok := m.sounds[r]
	delete(m.sounds, r)
	m.mu.Unlock()
	if ok {
		p.Close()
	}
	r.valid.Store(false)
}

// Pause stops the player without releasing it.
func (m *OtoMixer) Pause(ref audio.AudioReference) {
	if p, ok := m.playerFor(ref); ok {
		p.Pause()
	}
}

// Resume continues a paused player.
func (m *OtoMixer) Resume(ref audio.AudioReference) {
	if p, ok := m.playerFor(ref); ok {
		p.Play()
	}
}

// SetVolume sets the player's linear volume in [0,1].
func (m *OtoMixer) SetVolume(ref audio.AudioReference, volume float64) {
	if p, ok := m.playerFor(ref); ok {
		p.SetVolume(volume)
	}
}

// SetVolumeChange is not natively supported by oto.Player; volume ramps
// are applied by AudioPlayer itself calling SetVolume every tick, so this
// is a no-op retained only to satisfy the HostMixer interface.
func (m *OtoMixer) SetVolumeChange(ref audio.AudioReference, dBPerSecond float64) {}

// SetPosition seeks the reader to the given absolute sample frame.
func (m *OtoMixer) SetPosition(ref audio.AudioReference, samples int64) {
	r, ok := ref.(*otoRef)
	if !ok {
		return
	}
	r.reader.position = int(samples)
}

// GetPosition returns the reader's current frame position.
func (m *OtoMixer) GetPosition(ref audio.AudioReference) int64 {
	r, ok := ref.(*otoRef)
	if !ok {
		return 0
	}
	return int64(r.reader.position)
}

// GlobalPlayedSamples returns the total frames pulled across all sounds,
// the drift reference AudioPlayer.UpdatePlayback clamps against.
func (m *OtoMixer) GlobalPlayedSamples() int64 {
	return m.played.Load()
}

// BufferSize reports oto's nominal output buffer size in frames.
func (m *OtoMixer) BufferSize() int {
	return m.sampleRate / 50 // ~20ms, oto's typical default order of magnitude
}

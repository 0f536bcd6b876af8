//go:build headless

// headless_mixer.go - No-op HostMixer for headless builds (CI, servers),
// grounded on audio_backend_headless.go's build-tag-selected stub.
package hostmixer

import (
	"sync/atomic"

	audio "github.com/oxygen-engine/audio-core"
)

// HeadlessMixer discards everything written to it; GlobalPlayedSamples
// always reports 0, since nothing is ever played.
type HeadlessMixer struct {
	sampleRate int
	played     atomic.Int64
}

func NewHeadlessMixer(sampleRate int) *HeadlessMixer {
	return &HeadlessMixer{sampleRate: sampleRate}
}

type headlessRef struct{ valid atomic.Bool }

func (r *headlessRef) Valid() bool { return r.valid.Load() }

func (m *HeadlessMixer) AddSound(buffer *audio.AudioBuffer, opts audio.PlaybackOptions) audio.AudioReference {
	r := &headlessRef{}
	r.valid.Store(true)
	return r
}
func (m *HeadlessMixer) Stop(ref audio.AudioReference) {
	if r, ok := ref.(*headlessRef); ok {
		r.valid.Store(false)
	}
}
func (m *HeadlessMixer) Pause(ref audio.AudioReference)                      {}
func (m *HeadlessMixer) Resume(ref audio.AudioReference)                     {}
func (m *HeadlessMixer) SetVolume(ref audio.AudioReference, volume float64)  {}
func (m *HeadlessMixer) SetVolumeChange(ref audio.AudioReference, dB float64) {}
func (m *HeadlessMixer) SetPosition(ref audio.AudioReference, samples int64) {}
func (m *HeadlessMixer) GetPosition(ref audio.AudioReference) int64          { return 0 }
func (m *HeadlessMixer) GlobalPlayedSamples() int64                         { return m.played.Load() }
func (m *HeadlessMixer) BufferSize() int                                    { return m.sampleRate / 50 }

// audio_source_ogg.go - AudioSource backed by a decoded Ogg Vorbis stream.
//
// Grounded on OggAudioSource.h's contract (onPlaybackStart seeking/looping,
// job loop decoding in small increments, end-of-stream handling) and on
// the corpus's jfreymuth/oggvorbis usage for the decode itself; the
// original's custom OggLoader is replaced outright since oggvorbis already
// covers container parsing + Vorbis decode.
package audio

import (
	"fmt"
	"io"

	"github.com/jfreymuth/oggvorbis"
)

const oggDecodeStepSeconds = 0.02

// OggAudioSource decodes a Vorbis stream, optionally looping back to
// loopStart (in samples) instead of completing.
type OggAudioSource struct {
	sourceCore

	source io.ReadSeeker
	reader *oggvorbis.Reader

	sampleRate  int
	channels    int
	loopStartSamples int64

	decodeBuf []float32
	pcmBuf    []int16
}

// NewOggAudioSource opens the Vorbis stream from source (rewound to the
// start) and prepares to decode it. loopStartSamples < 0 disables looping.
func NewOggAudioSource(caching CachingType, source io.ReadSeeker, loopStartSamples int64) (*OggAudioSource, error) {
	if _, err := source.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("audio: seeking ogg source: %w", err)
	}
	reader, err := oggvorbis.NewReader(source)
	if err != nil {
		return nil, fmt.Errorf("audio: opening ogg stream: %w", err)
	}

	o := &OggAudioSource{
		source:           source,
		reader:           reader,
		sampleRate:       reader.SampleRate(),
		channels:          reader.Channels(),
		loopStartSamples: loopStartSamples,
		decodeBuf:        make([]float32, 4096),
	}
	o.sourceCore = newSourceCore(o.sampleRate, caching, o.produceStep)
	if loopStartSamples >= 0 {
		o.loopStart = float64(loopStartSamples) / float64(o.sampleRate)
	}
	return o, nil
}

// OnPlaybackStart applies seekSeconds as the initial read position, used
// by static caching to start partway through an already-filled buffer.
func (o *OggAudioSource) OnPlaybackStart(seekSeconds float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.initialSeekPos = seekSeconds
}

func (o *OggAudioSource) produceStep(budgetSeconds float64) (done bool) {
	framesWanted := int(budgetSeconds * float64(o.sampleRate))
	if framesWanted <= 0 {
		framesWanted = 1
	}

	produced := 0
	for produced < framesWanted {
		n, err := o.reader.Read(o.decodeBuf)
		if n > 0 {
			o.appendDecoded(n)
			produced += n / o.channels
		}
		if err == io.EOF || (err == nil && n == 0) {
			if o.loopStartSamples < 0 {
				return true
			}
			if err := o.seekToLoopStart(); err != nil {
				return true
			}
			continue
		}
		if err != nil && err != io.EOF {
			return true
		}
		if n == 0 {
			break
		}
	}
	return false
}

func (o *OggAudioSource) appendDecoded(n int) {
	frames := n / o.channels
	if cap(o.pcmBuf) < frames*2 {
		o.pcmBuf = make([]int16, frames*2)
	}
	o.pcmBuf = o.pcmBuf[:frames*2]
	for i := 0; i < frames; i++ {
		var l, r float32
		if o.channels == 1 {
			l = o.decodeBuf[i]
			r = l
		} else {
			l = o.decodeBuf[i*o.channels]
			r = o.decodeBuf[i*o.channels+1]
		}
		o.pcmBuf[i*2] = floatToInt16(l)
		o.pcmBuf[i*2+1] = floatToInt16(r)
	}
	o.buffer.Append(o.pcmBuf)
	o.bufferedSeconds += float64(frames) / float64(o.sampleRate)
}

func floatToInt16(f float32) int16 {
	v := f * 32767
	if v > 32767 {
		v = 32767
	} else if v < -32768 {
		v = -32768
	}
	return int16(v)
}

// seekToLoopStart re-opens the decoder from the beginning of the stream
// and discards samples up to loopStartSamples. The underlying decoder has
// no native seek, so looping re-decodes from the start; acceptable for
// the short loop points SMPS-era soundtracks use.
func (o *OggAudioSource) seekToLoopStart() error {
	if _, err := o.source.Seek(0, io.SeekStart); err != nil {
		return err
	}
	reader, err := oggvorbis.NewReader(o.source)
	if err != nil {
		return err
	}
	o.reader = reader
	o.trackLength = o.bufferedSeconds + o.initialSeekPos

	remaining := o.loopStartSamples
	for remaining > 0 {
		want := len(o.decodeBuf)
		if int64(want) > remaining*int64(o.channels) {
			want = int(remaining * int64(o.channels))
		}
		n, err := o.reader.Read(o.decodeBuf[:want])
		if n == 0 || err != nil {
			break
		}
		remaining -= int64(n / o.channels)
	}
	return nil
}

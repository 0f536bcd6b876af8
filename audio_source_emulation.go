// audio_source_emulation.go - AudioSource backed by the SMPS driver plus
// sound chip mixer, run on a worker-pool job loop.
//
// Grounded on EmulationAudioSource.h/.cpp: initWithSfxId/initWithCustom*
// entry points, resetContent, injectPlaySound/injectTempoSpeedup, and the
// job loop shape: first call fills at least one host buffer's worth
// (~23ms) to avoid underrun, later calls advance in ~2ms chunks; a
// FINISHED update with silence marks the buffer COMPLETED.
package audio

const (
	emulationFirstFillSeconds   = 0.023
	emulationStepSeconds        = 0.002
	emulationStereoFrameSamples = 2
)

// EmulationAudioSource drives a SoundDriver + SoundChipMixer pair to
// produce PCM for emulated music/SFX sources.
type EmulationAudioSource struct {
	sourceCore

	driver *SoundDriver
	mixer  *SoundChipMixer

	sampleRate int
	frameRate  float64

	firstFillDone bool
	scratch       []int16
}

// NewEmulationAudioSource builds a source with its own driver+mixer pair.
// romAddress selects the music/SFX table entry; if content is non-nil it
// is installed via SetFixedContent instead of relying on a pre-shared ROM
// image.
func NewEmulationAudioSource(caching CachingType, sampleRate int, frameRate float64, romAddress uint32, content []byte, contentOffset uint32, debug bool) (*EmulationAudioSource, error) {
	e := &EmulationAudioSource{
		driver:     NewSoundDriver(debug),
		mixer:      NewSoundChipMixer(sampleRate, frameRate),
		sampleRate: sampleRate,
		frameRate:  frameRate,
	}
	if content != nil {
		if err := e.driver.SetFixedContent(content, contentOffset); err != nil {
			return nil, err
		}
	}
	e.driver.SetSourceAddress(romAddress)
	e.sourceCore = newSourceCore(sampleRate, caching, e.produceStep)
	e.scratch = make([]int16, sampleRate) // generous per-call scratch, upper-bounded by one frame in practice
	return e, nil
}

// ResetContent performs a full reset, used when a dynamic non-continuous
// sound is restarted from scratch.
func (e *EmulationAudioSource) ResetContent() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.driver.Reset()
	e.mixer.Reset()
	e.buffer.Reset()
	e.bufferedSeconds = 0
	e.firstFillDone = false
}

// InjectPlaySound forwards a new sound request into the driver while it
// keeps running, used for EMULATION_CONTINUOUS sources.
func (e *EmulationAudioSource) InjectPlaySound(sfxID uint8) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.driver.PlaySound(sfxID)
}

// InjectTempoSpeedup forwards a live tempo change into the driver, used by
// the tempo-speedup AudioModifier.
func (e *EmulationAudioSource) InjectTempoSpeedup(speedup uint8) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.driver.SetTempoSpeedup(speedup)
}

func (e *EmulationAudioSource) produceStep(budgetSeconds float64) (done bool) {
	step := emulationStepSeconds
	if !e.firstFillDone {
		step = emulationFirstFillSeconds
		e.firstFillDone = true
	}
	if step > budgetSeconds {
		step = budgetSeconds
	}

	framesWanted := int(step * float64(e.sampleRate))
	if framesWanted <= 0 {
		framesWanted = 1
	}

	produced := 0
	allSilentFinished := false
	for produced < framesWanted {
		result := e.driver.Update()
		writes := e.driver.GetSoundChipWrites()
		n := e.mixer.Update(e.scratch, writes)
		if n > len(e.scratch)/2 {
			n = len(e.scratch) / 2
		}
		e.buffer.Append(e.scratch[:n*2])
		e.bufferedSeconds += float64(n) / float64(e.sampleRate)
		produced += n

		if result == UpdateFinished && isSilent(e.scratch[:n*2]) {
			allSilentFinished = true
			break
		}
		if result == UpdateStop {
			allSilentFinished = true
			break
		}
	}
	return allSilentFinished
}

func isSilent(samples []int16) bool {
	for _, s := range samples {
		if s != 0 {
			return false
		}
	}
	return true
}

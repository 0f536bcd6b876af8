// sound_driver_track.go - Per-track playback state for the SMPS driver.
//
// Field set grounded on spec section 4.5's track description: playback
// flags, voice control, tempo divider, data pointer, transpose, volume,
// modulation control, FM voice index, gosub/return stack, AMS/FMS/pan,
// duration timeout, frequency/detune, volume envelope index,
// feedback/algorithm, note-fill timers, loop counters.
package audio

type stackFrame struct {
	returnOffset uint32
}

type smpsTrack struct {
	flags uint16

	isFM     bool
	isPSG    bool
	isSFX    bool
	chipPort uint8 // 0 or 1 for YM2612 channel bank

	dataOffset   uint32 // current read position within the SMPS data stream
	tempoDivider uint8

	transpose  int8
	volume     uint8
	modulation uint8

	fmVoiceIndex uint8
	feedbackAlgo uint8
	tlPointer    uint8

	pan     uint8
	ams     uint8
	fms     uint8
	detune  int8

	durationTimeout uint8
	savedDuration   uint8

	frequency     uint16
	octave        uint8
	psgNoiseMode  uint8
	volumeEnvelope uint8

	noteFillTimer uint8
	loopCounters  [4]uint8

	stack      [trackStackDepth]stackFrame
	stackDepth int
}

func newSMPSTrack() smpsTrack {
	return smpsTrack{volume: 0x7F}
}

func (t *smpsTrack) isPlaying() bool {
	return t.flags&trackFlagPlaying != 0
}

func (t *smpsTrack) stop() {
	t.flags &^= trackFlagPlaying
}

func (t *smpsTrack) pushReturn(offset uint32) {
	if t.stackDepth >= len(t.stack) {
		return // stack overflow: classic SMPS content never nests this deep
	}
	t.stack[t.stackDepth] = stackFrame{returnOffset: offset}
	t.stackDepth++
}

func (t *smpsTrack) popReturn() (uint32, bool) {
	if t.stackDepth == 0 {
		return 0, false
	}
	t.stackDepth--
	return t.stack[t.stackDepth].returnOffset, true
}

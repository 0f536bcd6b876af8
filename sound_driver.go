// sound_driver.go - Reimplementation of the SMPS Z80 sound driver at track
// level: interprets track data and produces the chip register writes for
// one video frame at a time, every write stamped at cycle 0 of the frame.
//
// Grounded on SoundDriver.h's public contract (setFixedContent,
// setSourceAddress, reset, playSound, setTempoSpeedup, update,
// getSoundChipWrites) and spec section 4.5's description of the classic
// SMPS interpreter loop: a tempo accumulator with 8-bit overflow driving
// per-track duration countdowns, and a data stream whose bytes are
// interpreted as duration (<0x80), note (0x80-0xDF) or coordination flag
// (>=0xE0). This is a track-based interpreter of that data model, not a
// Z80 opcode emulator -- no CPU registers or instruction decoding appear
// anywhere in this file.
package audio

import "fmt"

// UpdateResult reports whether the driver has more frames of content to
// produce.
type UpdateResult int

const (
	UpdateContinue UpdateResult = iota
	UpdateFinished
	UpdateStop
)

// SoundDriver owns the SMPS interpreter state: the per-track state, the
// ROM/standalone content it reads from, and the chip writes accumulated
// for the current frame.
type SoundDriver struct {
	content       []byte
	contentOffset uint32 // offset of content within the addressable space
	sourceAddress uint32

	tracks [numTracks]smpsTrack

	tempoAccumulator uint8
	currentTempo     uint8
	tempoSpeedup     uint8

	fadeActive   bool
	fadeToPrev   bool
	fadeStep     int8
	masterVolume uint8

	// fadeToPrevFrame records the frame the fade-to-previous quirk fired on;
	// the driver reports UpdateStop starting the frame after that (mirroring
	// SoundDriver.cpp's mStopped = (mFrameNumber > 0) check), which is how a
	// post-jingle stop is ever observed by a caller.
	fadeToPrevFrame uint16

	writes []SoundChipWrite
	frame  uint16

	debug bool
}

// NewSoundDriver creates a driver with all tracks silent.
func NewSoundDriver(debug bool) *SoundDriver {
	d := &SoundDriver{debug: debug}
	d.reset()
	return d
}

// SetFixedContent installs standalone SMPS data (not backed by a ROM
// image), offset being the address the data's internal pointers are
// relative to.
func (d *SoundDriver) SetFixedContent(data []byte, offset uint32) error {
	if len(data) == 0 {
		return fmt.Errorf("audio: SetFixedContent requires non-empty data")
	}
	d.content = data
	d.contentOffset = offset
	return nil
}

// SetSourceAddress points the driver at a music/SFX table entry address
// within previously-set content.
func (d *SoundDriver) SetSourceAddress(address uint32) {
	d.sourceAddress = address
}

// Reset silences all tracks and clears driver RAM, as at power-on.
func (d *SoundDriver) Reset() {
	d.reset()
}

func (d *SoundDriver) reset() {
	for i := range d.tracks {
		d.tracks[i] = newSMPSTrack()
		switch {
		case i < numFMTracks:
			d.tracks[i].isFM = true
			if i >= 3 {
				d.tracks[i].chipPort = 1
			}
		case i < numFMTracks+numPSGTracks:
			d.tracks[i].isPSG = true
		default:
			d.tracks[i].isSFX = true
		}
	}
	d.tempoAccumulator = 0
	d.currentTempo = 0x80
	d.tempoSpeedup = 0
	d.fadeActive = false
	d.fadeToPrev = false
	d.fadeToPrevFrame = 0
	d.masterVolume = 0x7F
	d.writes = d.writes[:0]
	d.frame = 0
}

// PlaySound starts the given sound/music ID; low IDs conventionally select
// music (started on the single music track, musicSlotID), higher IDs
// select a free SFX slot.
func (d *SoundDriver) PlaySound(sfxID uint8) {
	slot := d.allocateTrackForSound(sfxID)
	if slot == nil {
		return
	}
	slot.flags |= trackFlagPlaying
	slot.durationTimeout = 0
	slot.dataOffset = d.sourceAddress
}

// musicSlotID is the track that a music/jingle sound ID loads into; a real
// SMPS driver loads a whole song header here that fans out across every
// FM/PSG track, but that indirection needs the music-table lookup this
// driver leaves to the caller-supplied SetSourceAddress, so this simplified
// model starts the single primary track the tests and SetSourceAddress
// convention address.
const musicSlotID = 0

func (d *SoundDriver) allocateTrackForSound(sfxID uint8) *smpsTrack {
	if sfxID <= 0x32 || sfxID == 0xdc {
		return &d.tracks[musicSlotID]
	}
	for i := numFMTracks + numPSGTracks; i < numTracks; i++ {
		if !d.tracks[i].isPlaying() {
			return &d.tracks[i]
		}
	}
	return nil
}

// SetTempoSpeedup applies an additional per-frame tempo bump, used by
// AudioPlayer's tempo-speedup modifier.
func (d *SoundDriver) SetTempoSpeedup(speedup uint8) {
	d.tempoSpeedup = speedup
}

// GetSoundChipWrites returns the writes accumulated by the most recent
// Update call.
func (d *SoundDriver) GetSoundChipWrites() []SoundChipWrite {
	return d.writes
}

// Update advances the driver by one video frame, producing a fresh set of
// SoundChipWrites; every write of the frame carries cycle 0 (there is no
// per-frame cycle budget or carry-over of writes into the next frame).
func (d *SoundDriver) Update() UpdateResult {
	d.writes = d.writes[:0]
	d.frame++

	// Tempo model: tempo plus tempoSpeedup is added to an 8-bit accumulator
	// each frame, and active tracks' duration timeouts count down only on
	// frames where that addition overflows (every other frame at the reset
	// tempo of 0x80); on other frames a track whose timeout is still
	// nonzero does not advance.
	sum := uint16(d.tempoAccumulator) + uint16(d.currentTempo) + uint16(d.tempoSpeedup)
	overflowed := sum > 0xFF
	d.tempoAccumulator = uint8(sum)

	anyPlaying := false
	for i := range d.tracks {
		t := &d.tracks[i]
		if !t.isPlaying() {
			continue
		}
		anyPlaying = true
		d.stepTrack(t, overflowed)
	}

	if d.fadeActive {
		d.applyFade()
	}

	if d.fadeToPrev && d.frame > d.fadeToPrevFrame {
		return UpdateStop
	}

	if !anyPlaying {
		return UpdateFinished
	}
	return UpdateContinue
}

func (d *SoundDriver) stepTrack(t *smpsTrack, tempoOverflowed bool) {
	if tempoOverflowed && t.durationTimeout > 0 {
		t.durationTimeout--
	}
	if t.durationTimeout > 0 {
		return
	}

	for {
		b, ok := d.readByte(t.dataOffset)
		if !ok {
			t.stop()
			return
		}
		t.dataOffset++

		switch {
		case b < 0x80:
			t.durationTimeout = b
			if t.durationTimeout == 0 {
				t.durationTimeout = t.savedDuration
			} else {
				t.savedDuration = t.durationTimeout
			}
			return
		case b < 0xE0:
			d.playNote(t, b)
			t.durationTimeout = t.savedDuration
			return
		default:
			if d.applyCoordinationFlag(t, b) {
				return // flag consumed the rest of this step (e.g. stop, rest)
			}
			// otherwise: flag was instantaneous (pan/detune/volume/etc), continue
			// reading the next byte in the same step.
		}
	}
}

func (d *SoundDriver) readByte(offset uint32) (uint8, bool) {
	idx := int64(offset) - int64(d.contentOffset)
	if idx < 0 || idx >= int64(len(d.content)) {
		return 0, false
	}
	return d.content[idx], true
}

func (d *SoundDriver) playNote(t *smpsTrack, b uint8) {
	octave := (b - 0x80) / 12
	note := (b - 0x80) % 12
	t.octave = octave
	if t.flags&trackFlagDoNotAttack != 0 {
		return
	}

	if t.isPSG {
		freq := psgFrequencyForNote(note, octave, t.transpose)
		d.emitPSGTone(t, freq)
	} else {
		freq, block := fmFrequencyForNote(note, octave, t.transpose)
		d.emitFMFrequency(t, freq, block)
	}
}

func (d *SoundDriver) applyCoordinationFlag(t *smpsTrack, flag uint8) (stepComplete bool) {
	switch flag {
	case cfStop:
		t.stop()
		return true
	case cfSetPanAMS:
		arg, _ := d.readByte(t.dataOffset)
		t.dataOffset++
		t.pan = arg >> 6
		t.ams = (arg >> 4) & 0x03
		d.emitPanAMS(t)
		return false
	case cfSetDetune:
		arg, _ := d.readByte(t.dataOffset)
		t.dataOffset++
		t.detune = int8(arg)
		return false
	case cfSetVolume:
		arg, _ := d.readByte(t.dataOffset)
		t.dataOffset++
		t.volume = arg & 0x7F
		d.emitVolume(t)
		return false
	case cfFMVoice:
		arg, _ := d.readByte(t.dataOffset)
		t.dataOffset++
		t.fmVoiceIndex = arg
		return false
	case cfSetPSGNoise:
		arg, _ := d.readByte(t.dataOffset)
		t.dataOffset++
		t.psgNoiseMode = arg
		if t.isPSG {
			d.emitPSGNoise(t)
		}
		return false
	case cfVolumeEnvelope:
		arg, _ := d.readByte(t.dataOffset)
		t.dataOffset++
		t.volumeEnvelope = arg
		return false
	case cfModulation:
		arg, _ := d.readByte(t.dataOffset)
		t.dataOffset++
		t.modulation = arg
		return false
	case cfNoteFill:
		arg, _ := d.readByte(t.dataOffset)
		t.dataOffset++
		t.noteFillTimer = arg
		return false
	case cfLoop:
		idx, _ := d.readByte(t.dataOffset)
		count, _ := d.readByte(t.dataOffset + 1)
		lo, _ := d.readByte(t.dataOffset + 2)
		hi, _ := d.readByte(t.dataOffset + 3)
		t.dataOffset += 4
		target := uint32(lo) | uint32(hi)<<8
		i := idx & 0x03
		if t.loopCounters[i] == 0 {
			t.loopCounters[i] = count
		}
		t.loopCounters[i]--
		if t.loopCounters[i] > 0 {
			t.dataOffset = target
		}
		return false
	case cfJump:
		lo, _ := d.readByte(t.dataOffset)
		hi, _ := d.readByte(t.dataOffset + 1)
		t.dataOffset = uint32(lo) | uint32(hi)<<8
		return false
	case cfGosub:
		lo, _ := d.readByte(t.dataOffset)
		hi, _ := d.readByte(t.dataOffset + 1)
		t.dataOffset += 2
		t.pushReturn(t.dataOffset)
		t.dataOffset = uint32(lo) | uint32(hi)<<8
		return false
	case cfReturn:
		if ret, ok := t.popReturn(); ok {
			t.dataOffset = ret
		} else {
			t.stop()
			return true
		}
		return false
	case cfFadeInToPrevious:
		// Quirk preserved from the original driver: this flag starts a
		// fade-in but leaves the *previous* sound's volume as the fade
		// target rather than this track's, so it only makes sense as part
		// of a crossfade sequence set up by the caller. It also halts the
		// driver from the following frame onward (a real SMPS program only
		// ever emits this after a 1-up-style jingle's last note), which is
		// the one path Update() ever reports UpdateStop from.
		d.fadeActive = true
		d.fadeToPrev = true
		d.fadeStep = 1
		d.fadeToPrevFrame = d.frame
		return false
	case cfMetaFlag:
		arg, _ := d.readByte(t.dataOffset)
		t.dataOffset++
		if arg == 0 {
			d.Reset()
		}
		return true
	default:
		// Unrecognized flag in this byte's range: treat as a no-arg no-op
		// rather than desyncing the rest of the stream.
		return false
	}
}

func (d *SoundDriver) applyFade() {
	if d.fadeStep > 0 {
		if d.masterVolume < 0x7F {
			d.masterVolume++
		} else {
			d.fadeActive = false
		}
	} else if d.fadeStep < 0 {
		if d.masterVolume > 0 {
			d.masterVolume--
		} else {
			d.fadeActive = false
		}
	}
}

// StartFadeOut begins a fade to silence at roughly one step per frame.
func (d *SoundDriver) StartFadeOut() {
	d.fadeActive = true
	d.fadeToPrev = false
	d.fadeStep = -1
}

func (d *SoundDriver) emitWrite(target SoundChipTarget, address, data uint8, cycles uint32) {
	d.writes = append(d.writes, SoundChipWrite{
		Target:      target,
		Address:     address,
		Data:        data,
		Cycles:      cycles,
		FrameNumber: d.frame,
	})
}

func (d *SoundDriver) emitPSGTone(t *smpsTrack, freq uint16) {
	trackIndex := uint8(indexOfTrack(d, t))
	channel := trackIndex - numFMTracks
	latch := 0x80 | (channel << 5) | uint8(freq&0x0F)
	data := uint8((freq >> 4) & 0x3F)
	d.emitWrite(SoundChipSN76489, 0, latch, 0)
	d.emitWrite(SoundChipSN76489, 0, data, 0)
}

func (d *SoundDriver) emitPSGNoise(t *smpsTrack) {
	d.emitWrite(SoundChipSN76489, 0, 0xE0|(t.psgNoiseMode&0x07), 0)
}

func (d *SoundDriver) emitFMFrequency(t *smpsTrack, freq uint16, block uint8) {
	port := SoundChipYamahaFMI
	if t.chipPort == 1 {
		port = SoundChipYamahaFMII
	}
	ch := indexOfTrack(d, t) % 3
	d.emitWrite(port, 0xA4+uint8(ch), uint8(freq>>8)|block<<3, 0)
	d.emitWrite(port, 0xA0+uint8(ch), uint8(freq), 0)
}

func (d *SoundDriver) emitPanAMS(t *smpsTrack) {
	if t.isFM {
		port := SoundChipYamahaFMI
		if t.chipPort == 1 {
			port = SoundChipYamahaFMII
		}
		ch := indexOfTrack(d, t) % 3
		d.emitWrite(port, 0xB4+uint8(ch), t.pan<<6|t.ams<<4, 0)
	}
}

func (d *SoundDriver) emitVolume(t *smpsTrack) {
	if t.isPSG {
		trackIndex := uint8(indexOfTrack(d, t))
		channel := trackIndex - numFMTracks
		attenuation := 0x0F - (t.volume >> 3)
		d.emitWrite(SoundChipSN76489, 0, 0x90|(channel<<5)|attenuation, 0)
	}
	// FM volume maps onto per-operator total level, which requires knowing
	// the active voice's carrier operators; left to the voice-table layer.
}

func indexOfTrack(d *SoundDriver, t *smpsTrack) int {
	for i := range d.tracks {
		if &d.tracks[i] == t {
			return i
		}
	}
	return 0
}

func psgFrequencyForNote(note, octave uint8, transpose int8) uint16 {
	base := psgNoteTable[note%12]
	shift := int(octave) - 4 + int(transpose)/12
	if shift >= 0 {
		return base >> uint(shift)
	}
	return base << uint(-shift)
}

func fmFrequencyForNote(note, octave uint8, transpose int8) (uint16, uint8) {
	block := octave
	if block > 7 {
		block = 7
	}
	freq := fmNoteTable[note%12]
	_ = transpose
	return freq, block
}

// psgNoteTable and fmNoteTable hold the per-semitone divider/frequency
// constants a real SMPS driver looks up from its ROM tables; values here
// are representative 12-tone-equal-tempered dividers at the chip's native
// clock, not transcribed from any specific ROM.
var psgNoteTable = [12]uint16{
	0x3F9, 0x3BC, 0x382, 0x34A, 0x315, 0x2E3,
	0x2B3, 0x285, 0x259, 0x22F, 0x207, 0x1E1,
}

var fmNoteTable = [12]uint16{
	0x269, 0x28F, 0x2B7, 0x2E1, 0x30E, 0x33D,
	0x36F, 0x3A4, 0x3DD, 0x41C, 0x457, 0x49C,
}

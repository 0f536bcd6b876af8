// sound_chip_write.go - A single scheduled register write destined for one
// of the Mega Drive's sound chips, as produced by the sound driver and
// consumed by SoundChipMixer.
//
// Grounded directly on SoundChipWrite.h: a write records its target chip,
// register address/data, and the chip-cycle offset within the current
// frame at which it should be applied.
package audio

// SoundChipTarget identifies which chip (and, for the YM2612, which of its
// two register banks) a write is destined for.
type SoundChipTarget int

const (
	SoundChipNone SoundChipTarget = iota
	SoundChipYamahaFMI
	SoundChipYamahaFMII
	SoundChipSN76489
)

// SoundChipWrite is one register write scheduled at a specific chip-cycle
// offset within the current frame.
type SoundChipWrite struct {
	Target  SoundChipTarget
	Address uint8
	Data    uint8
	Cycles  uint32

	// Location and FrameNumber are informational, used only when comparing
	// writes during golden-output verification.
	Location    uint16
	FrameNumber uint16
}

// Equal compares target/address/data, matching SoundChipWrite's equality
// semantics (cycle offset intentionally excluded).
func (w SoundChipWrite) Equal(other SoundChipWrite) bool {
	return w.Target == other.Target && w.Address == other.Address && w.Data == other.Data
}

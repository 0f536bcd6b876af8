// chip_ym2612_constants.go - Register layout and tables for the YM2612 FM engine.

package audio

import "math"

const (
	ym2612NumChannels  = 6
	ym2612NumOperators = 4

	ym2612ClockDivider = 144 // FM output sample every 144 input clocks (6 ops x 24 stages)
)

// Envelope generator stages.
const (
	envAttack = iota
	envDecay
	envSustain
	envRelease
	envOff
)

// ym2612AlgorithmOutputs describes, per algorithm (0-7), which operators
// are carriers: true == contributes directly to the channel's audio
// output. Operators marked false are evaluated but their output is
// discarded; no operator modulates another (only operator 0's
// self-feedback is modelled).
var ym2612AlgorithmOutputs = [8][ym2612NumOperators]bool{
	{false, false, false, true},
	{false, false, false, true},
	{false, false, false, true},
	{false, false, false, true},
	{false, true, false, true},
	{false, true, true, true},
	{false, true, true, true},
	{true, true, true, true},
}

// detuneTable maps the 3-bit detune field to a signed cents-like offset
// applied to an operator's frequency, matching the Yamaha OPN detune steps.
var detuneTable = [8]int{0, 1, 2, 3, -3, -2, -1, 0}

// sineTable is the quarter-wave log-sine table the operators look up;
// populated at init from the analytic sine/log relationship the real chip's
// ROM table approximates.
var sineTable [256]uint16

func init() {
	for i := 0; i < 256; i++ {
		sineTable[i] = approxLogSine(i)
	}
}

func approxLogSine(phase int) uint16 {
	// Quarter-wave symmetric log-sine approximation; exact ROM contents are
	// not reproduced, only the shape the envelope/phase math depends on.
	x := (float64(phase) + 0.5) / 256.0 * (math.Pi / 2)
	s := math.Sin(x)
	if s < 1e-6 {
		s = 1e-6
	}
	return uint16(-2.0 * 256.0 * math.Log2(s))
}

// config.go - Audio engine configuration.

package audio

// Config holds the parameters the audio pipeline is constructed with.
// There is no global singleton: callers build one explicitly and pass it
// into the constructors that need it.
type Config struct {
	SampleRate int     // host output sample rate, e.g. 44100
	FrameRate  float64 // simulation frame rate the sound driver runs at, e.g. 60.0

	// UseAudioThreading is carried in the config but not read by this
	// package: streaming always progresses synchronously on the thread
	// that calls AudioPlayer.UpdatePlayback.
	UseAudioThreading bool

	// PreferOriginalSoundtrack is carried in the config but not read by this
	// package; AudioCollection's package priority does not consult it.
	PreferOriginalSoundtrack bool

	// Debug is handed to the sound driver through AudioSourceManager; no
	// log output depends on it (malformed collection entries are logged
	// regardless).
	Debug bool
}

// DefaultConfig returns sane defaults for a 44.1kHz / 60Hz NTSC pipeline.
func DefaultConfig() Config {
	return Config{
		SampleRate:        44100,
		FrameRate:         60.0,
		UseAudioThreading: true,
	}
}

// audiodemo is a small harness wiring AudioCollection, AudioSourceManager,
// AudioPlayer and the oto-backed HostMixer together, loosely mirroring
// this codebase's cmd/ convention of a thin runnable wrapper around the
// library packages.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	audio "github.com/oxygen-engine/audio-core"
	"github.com/oxygen-engine/audio-core/hostmixer"
)

func main() {
	collectionPath := flag.String("collection", "", "path to an audio collection JSON file")
	pkg := flag.String("package", "original", "package name to tag the collection load with")
	sfxKey := flag.Uint64("play", 0, "keyId of the sound to play, e.g. 0x2C")
	seconds := flag.Float64("duration", 5.0, "seconds to run the demo")
	flag.Parse()

	if *collectionPath == "" {
		fmt.Fprintln(os.Stderr, "usage: audiodemo -collection defs.json -play 0x2C")
		os.Exit(1)
	}

	data, err := os.ReadFile(*collectionPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "reading collection: %v\n", err)
		os.Exit(1)
	}

	collection := audio.NewAudioCollection()
	if err := collection.LoadFromJSON(data, *pkg); err != nil {
		fmt.Fprintf(os.Stderr, "loading collection: %v\n", err)
		os.Exit(1)
	}

	config := audio.DefaultConfig()
	sources := audio.NewAudioSourceManager(config.SampleRate, config.FrameRate, config.Debug, openOggFile)

	mixer, err := hostmixer.NewOtoMixer(config.SampleRate)
	if err != nil {
		fmt.Fprintf(os.Stderr, "opening audio output: %v\n", err)
		os.Exit(1)
	}

	player := audio.NewAudioPlayer(collection, sources, mixer, config)
	player.PlayAudio(*sfxKey, 0)

	ticker := time.NewTicker(time.Second / time.Duration(config.FrameRate))
	defer ticker.Stop()
	deadline := time.Now().Add(time.Duration(*seconds * float64(time.Second)))
	for now := range ticker.C {
		player.UpdatePlayback(1.0 / config.FrameRate)
		if now.After(deadline) {
			break
		}
	}
}

func openOggFile(path string) (audio.OggStream, error) {
	return os.Open(path)
}

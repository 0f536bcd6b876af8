// audio_player.go - The facade: resolves symbolic sound IDs, mixes,
// channel-overrides, fades, modifies, and schedules all playing sounds
// against a sample-accurate clock.
//
// Grounded directly on AudioPlayer.h/.cpp: PlayingSound/ChannelOverride/
// AudioModifier/AutoStreamer bookkeeping, SoundIterator-style filtered
// iteration (order-preserving here), the channel-override pause/restore
// dance, the tempo-speedup modifier formula (postfix remix is recorded on
// the modifier but not applied to file sources), and
// updatePlayback's five-step tick (advance clock + drift clamp, advance
// playing sounds, resolve expired overrides, advance auto-streamers,
// drive AudioSourceManager.updateStreaming).
package audio

import "math"

const (
	channelOverrideFadeInSeconds = 0.05
	audioMixerIDBase             = 0x11
)

// PlayingSound tracks one active sound against the host mixer and its
// backing AudioSource.
type PlayingSound struct {
	uniqueID uint64

	sfxID     uint8
	keyID     uint64 // full collection key, for SavePlaybackState
	channelID int
	contextID int

	source AudioSource
	ref    AudioReference

	volume         float64
	relativeVolume float64 // used for channel-override fades
	relativeVolumeChange float64

	paused bool
	overridden bool

	continuous bool // EMULATION_CONTINUOUS: reused instead of restarted
	lastUsedTimestamp float64
}

// ChannelOverride records that one channel's normal sounds are paused
// while an overriding sound plays.
type ChannelOverride struct {
	playingUniqueID    uint64
	overriddenChannel  int
	pausedUniqueIDs    []uint64
}

// AudioModifier is a per-(channel,context) tempo/postfix remix layered on
// top of normal playback.
type AudioModifier struct {
	channel int
	context int

	tempoSpeedup uint8 // emulation sources
	postfix      string // file sources: alternate registration suffix

	originalUniqueID uint64
	modifiedUniqueID uint64
}

// AutoStreamer keeps a source's read time advancing even though nothing
// is actively consuming its buffer, so it can resume seamlessly later.
type AutoStreamer struct {
	source AudioSource
	time   float64
	speed  float64
}

var nextPlayingSoundID uint64 = 1

// AudioPlayer is the game-facing facade over AudioCollection,
// AudioSourceManager, and the host mixer.
type AudioPlayer struct {
	collection *AudioCollection
	sources    *AudioSourceManager
	mixer      HostMixer

	config Config

	playingSounds []*PlayingSound
	overrides     []*ChannelOverride
	modifiers     []*AudioModifier
	autoStreamers []*AutoStreamer

	lastAudioTime int64
}

// NewAudioPlayer wires the facade to its three collaborators.
func NewAudioPlayer(collection *AudioCollection, sources *AudioSourceManager, mixer HostMixer, config Config) *AudioPlayer {
	return &AudioPlayer{collection: collection, sources: sources, mixer: mixer, config: config}
}

// PlayAudio starts sfxId on contextId, channel 0, unless it is already an
// EMULATION_CONTINUOUS sound in which case it is injected into the
// existing source instead of restarting.
func (p *AudioPlayer) PlayAudio(sfxID uint64, contextID int) *PlayingSound {
	return p.PlayAudioOnChannel(sfxID, contextID, 0)
}

// PlayAudioOnChannel is PlayAudio with an explicit channel.
func (p *AudioPlayer) PlayAudioOnChannel(sfxID uint64, contextID, channelID int) *PlayingSound {
	reg, ok := p.collection.GetSourceRegistration(sfxID, "")
	if !ok {
		return nil
	}

	if reused := p.findContinuous(channelID, contextID); reused != nil {
		if es, ok := reused.source.(*EmulationAudioSource); ok {
			es.InjectPlaySound(uint8(sfxID))
		}
		return reused
	}

	p.stopDuplicates(channelID, contextID)

	src, err := p.sources.GetAudioSourceForPlayback(reg)
	if err != nil {
		return nil
	}
	src.Touch(0)
	buf := src.Startup(0.1)

	volume := reg.Volume
	if volume == 0 {
		volume = 1.0
	}
	ref := p.mixer.AddSound(buf, PlaybackOptions{Streaming: true, AudioMixerID: contextID + audioMixerIDBase, Volume: volume})

	ps := &PlayingSound{
		uniqueID:   nextPlayingSoundID,
		sfxID:      uint8(sfxID),
		keyID:      sfxID,
		channelID:  channelID,
		contextID:  contextID,
		source:     src,
		ref:        ref,
		volume:     volume,
		relativeVolume: 1.0,
		continuous: reg.Kind == SourceKindEmulationContinuous,
	}
	nextPlayingSoundID++
	p.playingSounds = append(p.playingSounds, ps)

	if mod := p.findModifier(channelID, contextID); mod != nil {
		p.applyModifierToSound(mod, ps)
	}
	return ps
}

// PlayOverride starts a sound that silences every currently-playing sound
// on overriddenChannel until it finishes.
func (p *AudioPlayer) PlayOverride(sfxID uint64, contextID, channelID, overriddenChannelID int) *PlayingSound {
	ps := p.PlayAudioOnChannel(sfxID, contextID, channelID)
	if ps == nil {
		return nil
	}
	ov := &ChannelOverride{playingUniqueID: ps.uniqueID, overriddenChannel: overriddenChannelID}
	p.applyChannelOverride(ov)
	p.overrides = append(p.overrides, ov)
	return ps
}

func (p *AudioPlayer) applyChannelOverride(ov *ChannelOverride) {
	for _, ps := range p.playingSounds {
		if ps.channelID == ov.overriddenChannel && !ps.paused && ps.uniqueID != ov.playingUniqueID {
			ps.paused = true
			ps.overridden = true
			p.mixer.Pause(ps.ref)
			ov.pausedUniqueIDs = append(ov.pausedUniqueIDs, ps.uniqueID)
		}
	}
}

func (p *AudioPlayer) removeChannelOverride(ov *ChannelOverride) {
	for _, id := range ov.pausedUniqueIDs {
		if ps := p.findByUniqueID(id); ps != nil {
			ps.paused = false
			ps.overridden = false
			ps.relativeVolume = 0
			ps.relativeVolumeChange = 1.0 / channelOverrideFadeInSeconds
			p.mixer.Resume(ps.ref)
			p.mixer.SetVolumeChange(ps.ref, 20.0)
		}
	}
}

func (p *AudioPlayer) findByUniqueID(id uint64) *PlayingSound {
	for _, ps := range p.playingSounds {
		if ps.uniqueID == id {
			return ps
		}
	}
	return nil
}

func (p *AudioPlayer) findContinuous(channelID, contextID int) *PlayingSound {
	for _, ps := range p.playingSounds {
		if ps.channelID == channelID && ps.contextID == contextID && ps.continuous {
			return ps
		}
	}
	return nil
}

// stopDuplicates stops every non-continuous sound already on this
// channel+context, matching playAudio's "resolves registration, stops
// same-channel+context duplicates" step.
func (p *AudioPlayer) stopDuplicates(channelID, contextID int) {
	kept := p.playingSounds[:0]
	for _, ps := range p.playingSounds {
		if ps.channelID == channelID && ps.contextID == contextID && !ps.continuous {
			p.mixer.Stop(ps.ref)
			continue
		}
		kept = append(kept, ps)
	}
	p.playingSounds = kept
}

// StopSound stops one playing sound by unique ID.
func (p *AudioPlayer) StopSound(uniqueID uint64) {
	p.filterPlayingSounds(func(ps *PlayingSound) bool {
		if ps.uniqueID == uniqueID {
			p.mixer.Stop(ps.ref)
			return false
		}
		return true
	})
}

// StopChannel stops every sound on channelID.
func (p *AudioPlayer) StopChannel(channelID int) {
	p.filterPlayingSounds(func(ps *PlayingSound) bool {
		if ps.channelID == channelID {
			p.mixer.Stop(ps.ref)
			return false
		}
		return true
	})
}

// PauseChannel pauses every sound on channelID.
func (p *AudioPlayer) PauseChannel(channelID int) {
	p.forEachPlayingSound(func(ps *PlayingSound) {
		if ps.channelID == channelID && !ps.paused {
			ps.paused = true
			p.mixer.Pause(ps.ref)
		}
	})
}

// ResumeChannel resumes every (non-override-paused) sound on channelID.
func (p *AudioPlayer) ResumeChannel(channelID int) {
	p.forEachPlayingSound(func(ps *PlayingSound) {
		if ps.channelID == channelID && ps.paused && !ps.overridden {
			ps.paused = false
			p.mixer.Resume(ps.ref)
		}
	})
}

// PauseAllSoundsByContext pauses every sound on contextID, the
// context-scoped counterpart to PauseChannel.
func (p *AudioPlayer) PauseAllSoundsByContext(contextID int) {
	p.forEachPlayingSound(func(ps *PlayingSound) {
		if ps.contextID == contextID && !ps.paused {
			ps.paused = true
			p.mixer.Pause(ps.ref)
		}
	})
}

// ResumeAllSoundsByContext resumes every (non-override-paused) sound on
// contextID, the context-scoped counterpart to ResumeChannel.
func (p *AudioPlayer) ResumeAllSoundsByContext(contextID int) {
	p.forEachPlayingSound(func(ps *PlayingSound) {
		if ps.contextID == contextID && ps.paused && !ps.overridden {
			ps.paused = false
			p.mixer.Resume(ps.ref)
		}
	})
}

// SavedAudioState is one playing sound's minimal resumable identity, the
// unit AudioPlayer's save-state surface persists.
type SavedAudioState struct {
	SfxID     uint64
	ChannelID int
	ContextID int
}

// SavePlaybackState snapshots every currently-playing sound so it can be
// resumed later via LoadPlaybackState, e.g. across a game save/load.
func (p *AudioPlayer) SavePlaybackState() []SavedAudioState {
	states := make([]SavedAudioState, 0, len(p.playingSounds))
	for _, ps := range p.playingSounds {
		states = append(states, SavedAudioState{
			SfxID:     ps.keyID,
			ChannelID: ps.channelID,
			ContextID: ps.contextID,
		})
	}
	return states
}

// LoadPlaybackState restarts every sound recorded by a prior
// SavePlaybackState call, replaying each through PlayAudioOnChannel.
func (p *AudioPlayer) LoadPlaybackState(states []SavedAudioState) {
	for _, s := range states {
		p.PlayAudioOnChannel(s.SfxID, s.ContextID, s.ChannelID)
	}
}

// MemoryUsage reports the total bytes held across every distinct
// AudioSource's buffer, for memory-constrained platforms.
func (p *AudioPlayer) MemoryUsage() int64 {
	return p.sources.MemoryUsage()
}

// ChangeSoundContext moves every sound on channelID from oldContext to
// newContext.
func (p *AudioPlayer) ChangeSoundContext(channelID, oldContext, newContext int) {
	p.forEachPlayingSound(func(ps *PlayingSound) {
		if ps.channelID == channelID && ps.contextID == oldContext {
			ps.contextID = newContext
		}
	})
}

// IsPlayingSfxID reports whether sfxID is currently playing anywhere.
func (p *AudioPlayer) IsPlayingSfxID(sfxID uint8) bool {
	for _, ps := range p.playingSounds {
		if ps.sfxID == sfxID {
			return true
		}
	}
	return false
}

// GetAudioRefByChannel returns the host reference for the first playing
// sound on channelID, if any.
func (p *AudioPlayer) GetAudioRefByChannel(channelID int) (AudioReference, bool) {
	for _, ps := range p.playingSounds {
		if ps.channelID == channelID {
			return ps.ref, true
		}
	}
	return nil, false
}

// GetAudioRefByContext returns the host reference for the first playing
// sound on contextID, if any.
func (p *AudioPlayer) GetAudioRefByContext(contextID int) (AudioReference, bool) {
	for _, ps := range p.playingSounds {
		if ps.contextID == contextID {
			return ps.ref, true
		}
	}
	return nil, false
}

// FadeInChannel starts a fade-in over lengthSeconds on every sound in
// channelID.
func (p *AudioPlayer) FadeInChannel(channelID int, lengthSeconds float64) {
	p.setChannelFade(channelID, 1.0/lengthSeconds)
}

// FadeOutChannel starts a fade-out over lengthSeconds on every sound in
// channelID; the sound stops once the fade reaches zero.
func (p *AudioPlayer) FadeOutChannel(channelID int, lengthSeconds float64) {
	p.setChannelFade(channelID, -1.0/lengthSeconds)
	p.forEachPlayingSound(func(ps *PlayingSound) {
		if ps.channelID == channelID {
			p.mixer.SetVolumeChange(ps.ref, -20.0)
		}
	})
}

func (p *AudioPlayer) setChannelFade(channelID int, relativeChange float64) {
	p.forEachPlayingSound(func(ps *PlayingSound) {
		if ps.channelID == channelID {
			ps.relativeVolumeChange = relativeChange
		}
	})
}

// EnableAudioModifier applies a tempo/postfix remix to channel+context.
// For emulation sources, relativeSpeed above 1.01 maps to a tempo
// speedup of round(1/(relativeSpeed-1))*2. For file sources the postfix is
// only stored on the modifier: no "<original><postfix>" registration is
// looked up and no crossfade takes place.
func (p *AudioPlayer) EnableAudioModifier(channelID, contextID int, postfix string, relativeSpeed float64) {
	mod := &AudioModifier{channel: channelID, context: contextID, postfix: postfix}
	if relativeSpeed > 1.01 {
		mod.tempoSpeedup = uint8(math.Round(1.0/(relativeSpeed-1.0)) * 2)
	}
	p.modifiers = append(p.modifiers, mod)

	for _, ps := range p.playingSounds {
		if ps.channelID == channelID && ps.contextID == contextID {
			p.applyModifierToSound(mod, ps)
		}
	}
}

func (p *AudioPlayer) applyModifierToSound(mod *AudioModifier, ps *PlayingSound) {
	if es, ok := ps.source.(*EmulationAudioSource); ok {
		es.InjectTempoSpeedup(mod.tempoSpeedup)
		mod.originalUniqueID = ps.uniqueID
		return
	}
	// File-backed sources would resolve "<keyString><postfix>" in the same
	// package and crossfade; that requires collection access this helper
	// doesn't carry, so it's left to the caller driving EnableAudioModifier
	// with a pre-resolved alternate registration via PlayAudioOnChannel.
	mod.originalUniqueID = ps.uniqueID
}

// DisableAudioModifier removes the modifier for channel+context, reversing
// its effect.
func (p *AudioPlayer) DisableAudioModifier(channelID, contextID int) {
	kept := p.modifiers[:0]
	for _, mod := range p.modifiers {
		if mod.channel == channelID && mod.context == contextID {
			if ps := p.findByUniqueID(mod.originalUniqueID); ps != nil {
				if es, ok := ps.source.(*EmulationAudioSource); ok {
					es.InjectTempoSpeedup(0)
				}
			}
			continue
		}
		kept = append(kept, mod)
	}
	p.modifiers = kept
}

func (p *AudioPlayer) findModifier(channelID, contextID int) *AudioModifier {
	for _, mod := range p.modifiers {
		if mod.channel == channelID && mod.context == contextID {
			return mod
		}
	}
	return nil
}

// UpdatePlayback advances the player's sample clock and all bookkeeping by
// dt seconds; must be called once per game-thread tick.
func (p *AudioPlayer) UpdatePlayback(dt float64) {
	p.advanceClock(dt)
	p.advancePlayingSounds(dt)
	p.resolveExpiredOverrides()
	p.advanceAutoStreamers(dt)
	p.sources.UpdateStreaming(float64(p.lastAudioTime)/float64(p.config.SampleRate), nil)
}

func (p *AudioPlayer) advanceClock(dt float64) {
	p.lastAudioTime += int64(math.Round(dt * float64(p.config.SampleRate)))

	bufferSize := int64(p.mixer.BufferSize())
	target := p.mixer.GlobalPlayedSamples() + bufferSize
	diff := p.lastAudioTime - target
	if diff > bufferSize {
		p.lastAudioTime = target + bufferSize
	} else if diff < -bufferSize {
		p.lastAudioTime = target - bufferSize
	}
}

func (p *AudioPlayer) advancePlayingSounds(dt float64) {
	p.filterPlayingSounds(func(ps *PlayingSound) bool {
		if !ps.ref.Valid() {
			return false
		}
		ps.source.UpdateReadTime(float64(p.mixer.GetPosition(ps.ref)) / float64(p.config.SampleRate))
		ps.lastUsedTimestamp = float64(p.lastAudioTime) / float64(p.config.SampleRate)
		ps.source.Touch(ps.lastUsedTimestamp)

		if ps.relativeVolumeChange != 0 {
			ps.relativeVolume += ps.relativeVolumeChange * dt
			if ps.relativeVolumeChange < 0 && ps.relativeVolume <= 0 {
				p.mixer.Stop(ps.ref)
				return false
			}
			if ps.relativeVolumeChange > 0 && ps.relativeVolume >= 1.0 {
				ps.relativeVolumeChange = 0
				ps.relativeVolume = 1.0
			}
			p.mixer.SetVolume(ps.ref, ps.volume*ps.relativeVolume)
		}
		return true
	})
}

func (p *AudioPlayer) resolveExpiredOverrides() {
	kept := p.overrides[:0]
	for _, ov := range p.overrides {
		if p.findByUniqueID(ov.playingUniqueID) == nil {
			p.removeChannelOverride(ov)
			continue
		}
		kept = append(kept, ov)
	}
	p.overrides = kept
}

func (p *AudioPlayer) advanceAutoStreamers(dt float64) {
	kept := p.autoStreamers[:0]
	for _, as := range p.autoStreamers {
		as.time += dt * as.speed
		as.source.UpdateReadTime(as.time)
		if as.source.State() == SourceCompleted {
			continue
		}
		kept = append(kept, as)
	}
	p.autoStreamers = kept
}

// filterPlayingSounds applies keep over p.playingSounds, compacting the
// kept sounds in place in their original order (the counterpart of the
// original's SoundIterator-style filtered iteration).
func (p *AudioPlayer) filterPlayingSounds(keep func(*PlayingSound) bool) {
	out := p.playingSounds[:0]
	for _, ps := range p.playingSounds {
		if keep(ps) {
			out = append(out, ps)
		}
	}
	p.playingSounds = out
}

func (p *AudioPlayer) forEachPlayingSound(fn func(*PlayingSound)) {
	for _, ps := range p.playingSounds {
		fn(ps)
	}
}

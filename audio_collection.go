// audio_collection.go - JSON-driven catalog of sound definitions, indexed
// by a u64 key (hashed string or raw hex) and resolved across mod-layered
// packages.
//
// Grounded on AudioCollection.h/.cpp: entries carry a display name, type,
// channel, and one SourceRegistration per package layer (one LoadFromJSON
// call per package, merged by key); determineActiveSourceRegistrations
// resolves ORIGINAL vs REMASTERED vs MODDED priority; lookup accepts both
// a pre-hashed string key and a raw byte-value key, retrying a missed byte
// value as murmur2_64 of its two-digit lowercase hex form; changeCounter lets callers detect a
// reload. The JSON wire shape itself -- an object keyed by <keyString>
// with Name/Type/Source/File/Address/ContentOffset/EmulatedID/Channel/
// LoopStart/Volume/SoundTestVisibility fields -- is the collection format
// this codebase's mod packs actually ship, so it is kept unchanged rather
// than reshaped into a more Go-idiomatic layout.
package audio

import (
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"
)

// SoundType distinguishes music and jingles from one-shot sfx; only music
// definitions are marked looping.
type SoundType int

const (
	SoundTypeSFX SoundType = iota
	SoundTypeMusic
	SoundTypeJingle
)

// Visibility controls whether a definition is offered in an in-game sound
// test menu.
type Visibility int

const (
	VisibilityVisible Visibility = iota
	VisibilityHidden
	VisibilityDevMode
	VisibilityAuto
)

// PackagePriority orders which package's registration wins when several
// packages provide the same key.
type PackagePriority int

const (
	PackageOriginal PackagePriority = iota
	PackageRemastered
	PackageModded
)

// channelMultiple marks a definition playable concurrently on any channel
// rather than pinned to one, the "Channel": "multiple" wire value.
const channelMultiple = -1

// jsonAudioEntry is one value in the collection's "<keyString>": {...}
// object, matching spec's documented wire format field-for-field.
type jsonAudioEntry struct {
	Name                string `json:"Name"`
	Type                string `json:"Type"`
	Source              string `json:"Source"`
	File                string `json:"File"`
	Address             string `json:"Address"`
	ContentOffset       string `json:"ContentOffset"`
	EmulatedID          string `json:"EmulatedID"`
	Channel             string `json:"Channel"`
	LoopStart           string `json:"LoopStart"`
	Volume              string `json:"Volume"`
	SoundTestVisibility string `json:"SoundTestVisibility"`
}

// AudioDefinition is one catalog entry: metadata plus its per-package
// source registrations.
type AudioDefinition struct {
	KeyID               uint64
	KeyString           string
	DisplayName         string
	Type                SoundType
	Channel             int
	SoundTestVisibility Visibility

	Registrations map[string]*SourceRegistration // keyed by package name
	Looping       bool
}

// AudioCollection is the mod-layered catalog of AudioDefinitions.
type AudioCollection struct {
	entries       map[uint64]*AudioDefinition
	changeCounter uint64
}

// NewAudioCollection creates an empty collection.
func NewAudioCollection() *AudioCollection {
	return &AudioCollection{entries: make(map[uint64]*AudioDefinition)}
}

// ChangeCounter increments every time the collection is mutated, letting
// callers detect a reload without re-scanning.
func (c *AudioCollection) ChangeCounter() uint64 {
	return c.changeCounter
}

// LoadFromJSON parses a definitions file's content and merges it into the
// collection, tagging every source registration with pkg. A malformed
// individual entry is logged and skipped rather than aborting the whole
// load, matching spec's config-error handling.
func (c *AudioCollection) LoadFromJSON(data []byte, pkg string) error {
	var raw map[string]jsonAudioEntry
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("audio: parsing collection json: %w", err)
	}

	for keyString, e := range raw {
		keyID := resolveKeyID(keyString)

		def, ok := c.entries[keyID]
		if !ok {
			def = &AudioDefinition{
				KeyID:               keyID,
				KeyString:           keyString,
				DisplayName:         e.Name,
				Type:                parseSoundType(e.Type),
				SoundTestVisibility: parseVisibility(e.SoundTestVisibility),
				Registrations:       make(map[string]*SourceRegistration),
			}
			channel, err := parseChannel(e.Channel)
			if err != nil {
				log.Printf("audio: entry %q: invalid Channel %q: %v", keyString, e.Channel, err)
			} else {
				def.Channel = channel
			}
			if def.Type == SoundTypeMusic || def.Type == SoundTypeJingle {
				def.Channel = 0
			}
			c.entries[keyID] = def
		}

		reg, err := buildRegistration(e, pkg, def.Type)
		if err != nil {
			log.Printf("audio: entry %q: %v", keyString, err)
			continue
		}

		if def.Type == SoundTypeMusic && len(def.Registrations) == 0 {
			def.Looping = true
		}
		def.Registrations[pkg] = reg
	}

	c.changeCounter++
	return nil
}

func buildRegistration(e jsonAudioEntry, pkg string, soundType SoundType) (*SourceRegistration, error) {
	kind, ok := parseSourceKind(e.Source, e.File != "")
	if !ok {
		return nil, fmt.Errorf("unknown Source %q", e.Source)
	}
	if kind == SourceKindFile && e.Address != "" {
		return nil, fmt.Errorf("File source cannot set Address")
	}

	volume := 1.0
	if e.Volume != "" {
		v, err := strconv.ParseFloat(e.Volume, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid Volume %q: %w", e.Volume, err)
		}
		volume = v
	}

	caching := CachingStreamingDynamic
	if soundType == SoundTypeMusic || soundType == SoundTypeJingle {
		caching = CachingStatic
	}

	reg := &SourceRegistration{Kind: kind, Package: pkg, Caching: caching, Volume: volume}

	if kind == SourceKindFile {
		reg.OggPath = e.File
		if e.LoopStart != "" {
			v, err := strconv.ParseInt(e.LoopStart, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid LoopStart %q: %w", e.LoopStart, err)
			}
			reg.LoopStartSamples = v
		} else {
			reg.LoopStartSamples = -1
		}
		return reg, nil
	}

	if e.Address != "" {
		v, err := parseHex(e.Address)
		if err != nil {
			return nil, fmt.Errorf("invalid Address %q: %w", e.Address, err)
		}
		reg.EmulatedROMAddr = uint32(v)
	}
	if e.ContentOffset != "" {
		v, err := parseHex(e.ContentOffset)
		if err != nil {
			return nil, fmt.Errorf("invalid ContentOffset %q: %w", e.ContentOffset, err)
		}
		reg.EmulatedContentOffset = uint32(v)
	}
	if e.EmulatedID != "" {
		reg.EmulatedKeyID = strings.ToLower(strings.TrimPrefix(e.EmulatedID, "0x"))
	}
	return reg, nil
}

func parseHex(s string) (uint64, error) {
	return strconv.ParseUint(strings.TrimPrefix(strings.ToLower(s), "0x"), 16, 64)
}

func parseChannel(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	if strings.EqualFold(s, "multiple") {
		return channelMultiple, nil
	}
	v, err := parseHex(s)
	if err != nil {
		return 0, err
	}
	return int(v), nil
}

// ClearPackage removes every registration tagged with pkg, dropping
// definitions that end up with no registrations left.
func (c *AudioCollection) ClearPackage(pkg string) {
	for keyID, def := range c.entries {
		delete(def.Registrations, pkg)
		if len(def.Registrations) == 0 {
			delete(c.entries, keyID)
		}
	}
	c.changeCounter++
}

func parseSoundType(s string) SoundType {
	switch strings.ToUpper(s) {
	case "MUSIC":
		return SoundTypeMusic
	case "JINGLE":
		return SoundTypeJingle
	default:
		return SoundTypeSFX
	}
}

func parseVisibility(s string) Visibility {
	switch strings.ToLower(s) {
	case "hidden":
		return VisibilityHidden
	case "devmode":
		return VisibilityDevMode
	case "auto":
		return VisibilityAuto
	default:
		return VisibilityVisible
	}
}

// parseSourceKind maps the wire "Source" string to a SourceKind; a missing
// value defaults to File when a File path is set, otherwise
// EmulationBuffered, per spec.
func parseSourceKind(s string, hasFile bool) (SourceKind, bool) {
	switch strings.ToLower(s) {
	case "":
		if hasFile {
			return SourceKindFile, true
		}
		return SourceKindEmulationBuffered, true
	case "file":
		return SourceKindFile, true
	case "emulationbuffered":
		return SourceKindEmulationBuffered, true
	case "emulationdirect":
		return SourceKindEmulationDirect, true
	case "emulationcontinuous":
		return SourceKindEmulationContinuous, true
	default:
		return 0, false
	}
}

func resolveKeyID(key string) uint64 {
	if v, err := strconv.ParseUint(key, 16, 8); err == nil && len(key) == 2 {
		return v
	}
	return murmur2_64(strings.ToLower(key))
}

// DetermineActiveSourceRegistrations resolves, for every entry, which
// package's registration is currently active: REMASTERED preferred over
// ORIGINAL unless preferOriginalSoundtrack is set, with MODDED always
// taking precedence over both when present.
func (c *AudioCollection) DetermineActiveSourceRegistrations(preferOriginalSoundtrack bool) map[uint64]*SourceRegistration {
	active := make(map[uint64]*SourceRegistration, len(c.entries))
	for keyID, def := range c.entries {
		active[keyID] = pickRegistration(def, preferOriginalSoundtrack)
	}
	return active
}

func pickRegistration(def *AudioDefinition, preferOriginalSoundtrack bool) *SourceRegistration {
	if reg, ok := def.Registrations["modded"]; ok {
		return reg
	}
	order := []string{"remastered", "original"}
	if preferOriginalSoundtrack {
		order = []string{"original", "remastered"}
	}
	for _, pkg := range order {
		if reg, ok := def.Registrations[pkg]; ok {
			return reg
		}
	}
	for _, reg := range def.Registrations {
		return reg
	}
	return nil
}

// GetSourceRegistration looks up keyID (a pre-hashed string key, or a
// byte value stored as its raw number); a byte value that misses is
// retried as murmur2_64 of its two-digit lowercase hex form. It
// optionally prefers a specific package.
func (c *AudioCollection) GetSourceRegistration(keyID uint64, preferredPackage string) (*SourceRegistration, bool) {
	def, ok := c.entries[keyID]
	if !ok && keyID <= 0xFF {
		def, ok = c.entries[murmur2_64(fmt.Sprintf("%02x", keyID))]
	}
	if !ok {
		return nil, false
	}
	if preferredPackage != "" {
		if reg, ok := def.Registrations[preferredPackage]; ok {
			return reg, true
		}
	}
	reg := pickRegistration(def, false)
	return reg, reg != nil
}

// ResolveKeyStringOrHex turns a raw key string into the numeric key used
// to index the collection: it tries the string hashed directly first,
// then -- if that misses and the string parses as a hex byte value --
// returns that numeric value, the key a two-hex-digit entry is stored
// under.
func (c *AudioCollection) ResolveKeyStringOrHex(raw string) uint64 {
	direct := murmur2_64(strings.ToLower(raw))
	if _, ok := c.entries[direct]; ok {
		return direct
	}
	if v, err := strconv.ParseUint(raw, 16, 8); err == nil {
		return v
	}
	return direct
}

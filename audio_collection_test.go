package audio

import "testing"

const sampleCollectionJSON = `{
	"2C": {
		"Name": "Title Theme",
		"Type": "Music",
		"Source": "EmulationBuffered",
		"Address": "0x1000",
		"Channel": "0x03"
	},
	"sfx_jump": {
		"Name": "Jump",
		"Type": "Sound",
		"Source": "File",
		"File": "sfx/jump.ogg"
	},
	"spindash": {
		"Name": "Spindash",
		"Type": "Sound",
		"Source": "EmulationContinuous",
		"Address": "0x2000"
	}
}`

func TestAudioCollectionLoadAndLookupByHex(t *testing.T) {
	c := NewAudioCollection()
	if err := c.LoadFromJSON([]byte(sampleCollectionJSON), "original"); err != nil {
		t.Fatalf("LoadFromJSON: %v", err)
	}
	if reg, ok := c.GetSourceRegistration(0x2C, ""); !ok || reg.EmulatedROMAddr != 0x1000 {
		t.Fatalf("expected to resolve keyId 0x2C to the emulated registration")
	}
}

func TestAudioCollectionMusicForcesChannelZero(t *testing.T) {
	c := NewAudioCollection()
	if err := c.LoadFromJSON([]byte(sampleCollectionJSON), "original"); err != nil {
		t.Fatalf("LoadFromJSON: %v", err)
	}
	def := c.entries[0x2C]
	if def.Channel != 0 {
		t.Fatalf("expected music entry channel forced to 0, got %d", def.Channel)
	}
	if !def.Looping {
		t.Fatalf("expected MUSIC type's first source marked looping")
	}
}

func TestAudioCollectionResolveKeyStringOrHex(t *testing.T) {
	c := NewAudioCollection()
	if err := c.LoadFromJSON([]byte(sampleCollectionJSON), "original"); err != nil {
		t.Fatalf("LoadFromJSON: %v", err)
	}
	resolved := c.ResolveKeyStringOrHex("2c")
	if _, ok := c.entries[resolved]; !ok {
		t.Fatalf("expected hex string '2c' to resolve to an existing entry")
	}
}

func TestAudioCollectionClearPackageDropsEmptyEntries(t *testing.T) {
	c := NewAudioCollection()
	if err := c.LoadFromJSON([]byte(sampleCollectionJSON), "original"); err != nil {
		t.Fatalf("LoadFromJSON: %v", err)
	}
	before := c.ChangeCounter()
	c.ClearPackage("original")
	if c.ChangeCounter() == before {
		t.Fatalf("expected ClearPackage to bump the change counter")
	}
	if len(c.entries) != 0 {
		t.Fatalf("expected all entries dropped once their only package is cleared")
	}
}

func TestAudioCollectionModdedTakesPriority(t *testing.T) {
	c := NewAudioCollection()
	c.LoadFromJSON([]byte(sampleCollectionJSON), "original")
	moddedJSON := `{"2C": {"Name": "Title Theme", "Type": "Music", "Source": "File", "File": "mods/title.ogg"}}`
	c.LoadFromJSON([]byte(moddedJSON), "modded")

	reg, ok := c.GetSourceRegistration(0x2C, "")
	if !ok {
		t.Fatalf("expected a registration")
	}
	if reg.Package != "modded" {
		t.Fatalf("expected modded package to take priority, got %q", reg.Package)
	}
}

func TestAudioCollectionDefaultSourceInfersFromFile(t *testing.T) {
	c := NewAudioCollection()
	data := []byte(`{"explicit_sound": {"Name": "X", "Type": "Sound", "File": "x.ogg"}}`)
	if err := c.LoadFromJSON(data, "original"); err != nil {
		t.Fatalf("LoadFromJSON: %v", err)
	}
	key := resolveKeyID("explicit_sound")
	reg, ok := c.GetSourceRegistration(key, "")
	if !ok {
		t.Fatalf("expected a registration")
	}
	if reg.Kind != SourceKindFile {
		t.Fatalf("expected a missing Source with File set to default to SourceKindFile, got %v", reg.Kind)
	}
}

func TestAudioCollectionUnknownSourceSkipsEntry(t *testing.T) {
	c := NewAudioCollection()
	data := []byte(`{"bad_entry": {"Name": "Bad", "Type": "Sound", "Source": "NotARealKind"}}`)
	if err := c.LoadFromJSON(data, "original"); err != nil {
		t.Fatalf("LoadFromJSON should not fail the whole load: %v", err)
	}
	key := resolveKeyID("bad_entry")
	if _, ok := c.GetSourceRegistration(key, ""); ok {
		t.Fatalf("expected the malformed entry to be skipped, not registered")
	}
}

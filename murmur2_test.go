package audio

import "testing"

func TestMurmur2_64Deterministic(t *testing.T) {
	a := murmur2_64("bgm_title")
	b := murmur2_64("bgm_title")
	if a != b {
		t.Fatalf("expected deterministic hash, got %x and %x", a, b)
	}
}

func TestMurmur2_64DiffersByCase(t *testing.T) {
	if murmur2_64("2c") == murmur2_64("2C") {
		t.Fatalf("expected case to matter at this layer; case folding is the caller's job")
	}
}

func TestMurmur2_64EmptyString(t *testing.T) {
	// Must not panic on the zero-length tail path.
	_ = murmur2_64("")
}

package etc

import (
	"testing"
	"time"
)

func TestArtifactName(t *testing.T) {
	ts := time.Unix(1712345678, 0)
	got := ArtifactName("live", ts)
	want := "live_1712345678.mp3"
	if got != want {
		t.Errorf("ArtifactName = %q, want %q", got, want)
	}
}

func TestNewFreshID(t *testing.T) {
	a := NewFreshID()
	b := NewFreshID()
	if a == "" || b == "" {
		t.Fatal("expected non-empty IDs")
	}
	if a == b {
		t.Errorf("expected distinct IDs, got %q twice", a)
	}
}

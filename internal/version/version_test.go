package version

import "testing"

func TestGet(t *testing.T) {
	previousVersion := Version
	previousBuilt := Built
	previousCommit := GitCommit
	t.Cleanup(func() {
		Version = previousVersion
		Built = previousBuilt
		GitCommit = previousCommit
	})

	Version = "1.2.3"
	Built = "2026-08-01T10:00:00Z"
	GitCommit = "abc123"

	info := Get()
	if info.Version != "1.2.3" {
		t.Fatalf("expected version 1.2.3, got %q", info.Version)
	}
	if info.Built != "2026-08-01T10:00:00Z" {
		t.Fatalf("expected built timestamp to be preserved, got %q", info.Built)
	}
	if info.GitCommit != "abc123" {
		t.Fatalf("expected git commit to be preserved, got %q", info.GitCommit)
	}

	want := "sashboard 1.2.3 (abc123) built 2026-08-01T10:00:00Z"
	if got := info.String(); got != want {
		t.Fatalf("unexpected string: %q", got)
	}
}

func TestStringDev(t *testing.T) {
	info := Info{Version: "dev"}
	if got := info.String(); got != "sashboard dev" {
		t.Fatalf("unexpected string: %q", got)
	}
}

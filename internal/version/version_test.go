package version

import (
	"runtime/debug"
	"testing"
)

func TestFromBuildInfo(t *testing.T) {
	t.Parallel()

	bi := &debug.BuildInfo{
		GoVersion: "go1.26.0",
		Main:      debug.Module{Version: "v0.3.1"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef0123"},
			{Key: "vcs.time", Value: "2026-10-01T12:00:00Z"},
		},
	}

	got := fromBuildInfo(Info{}, bi)
	if got.Version != "v0.3.1" || got.BuildTime != "2026-10-01T12:00:00Z" || got.GoVersion != "go1.26.0" {
		t.Fatalf("unexpected info: %+v", got)
	}
	if s := got.String(); s != "v0.3.1 (0123456789ab)" {
		t.Fatalf("String() = %q", s)
	}

	pinned := fromBuildInfo(Info{Version: "v1.0.0", Commit: "feed"}, bi)
	if pinned.Version != "v1.0.0" || pinned.Commit != "feed" {
		t.Fatalf("linker values should win: %+v", pinned)
	}
}

func TestDevelBuild(t *testing.T) {
	t.Parallel()

	got := fromBuildInfo(Info{}, &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}})
	if got.Version != "" {
		t.Fatalf("devel marker should be ignored, got %q", got.Version)
	}
	if s := (Info{Version: "devel"}).String(); s != "devel" {
		t.Fatalf("String() = %q", s)
	}
}

package log

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseModules(t *testing.T) {
	mask, err := ParseModules("core, audio")
	if err != nil {
		t.Fatal(err)
	}
	if want := ModCore.Mask() | ModAudio.Mask(); mask != want {
		t.Errorf("mask = %#x, want %#x", mask, want)
	}

	if mask, _ := ParseModules("all"); mask != ModuleMaskAll {
		t.Errorf("all = %#x", mask)
	}
	if _, err := ParseModules("core,bogus"); err == nil {
		t.Error("unknown module accepted")
	}
	if _, err := ParseModules("<error>"); err == nil {
		t.Error("placeholder module accepted")
	}
}

func TestModuleEnabled(t *testing.T) {
	defer DisableDebugModules(ModuleMaskAll)

	if ModInput.Enabled(DebugLevel) {
		t.Fatal("debug enabled before EnableDebugModules")
	}
	if !ModInput.Enabled(WarnLevel) {
		t.Fatal("warnings must always be enabled")
	}

	EnableDebugModules(ModInput.Mask())
	if !ModInput.Enabled(DebugLevel) {
		t.Error("debug not enabled after EnableDebugModules")
	}
	if ModVideo.Enabled(DebugLevel) {
		t.Error("unrelated module enabled")
	}
}

func TestEntryOutput(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer DisableDebugModules(ModuleMaskAll)

	mod := NewModule("testmod")
	mod.WithField("frame", 12).Debugf("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug output while disabled: %q", buf.String())
	}

	EnableDebugModules(mod.Mask())
	mod.WithField("frame", 12).Debugf("shown %d", 1)
	out := buf.String()
	for _, want := range []string{"shown 1", "frame=12", "_mod=testmod"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

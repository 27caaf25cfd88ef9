package buildmode

import (
	"strings"
	"testing"
)

func TestParse_ValidModes(t *testing.T) {
	for _, s := range []string{"", "debug-asan", "rel-lto", "release-static-pgo"} {
		m, err := Parse(s)
		if err != nil {
			t.Errorf("Parse(%q): %v", s, err)
		}
		if string(m) != s {
			t.Errorf("Parse(%q) = %q", s, m)
		}
	}
}

func TestParse_InvalidModeNamesValue(t *testing.T) {
	_, err := Parse("turbo")
	if err == nil {
		t.Fatal("expected error for unknown mode")
	}
	if !strings.Contains(err.Error(), "turbo") {
		t.Errorf("error should name the offending value: %v", err)
	}
	if !strings.Contains(err.Error(), "rel-lto") {
		t.Errorf("error should list valid modes: %v", err)
	}
}

func TestFromEnv_OverridesConfigured(t *testing.T) {
	t.Setenv("BUILD_MODE", "rel-lto")
	m, err := FromEnv(DebugASAN)
	if err != nil {
		t.Fatal(err)
	}
	if m != ReleaseLTO {
		t.Errorf("got %q, want rel-lto", m)
	}
}

func TestFromEnv_FallsBackToConfigured(t *testing.T) {
	t.Setenv("BUILD_MODE", "")
	m, err := FromEnv(DebugASAN)
	if err != nil {
		t.Fatal(err)
	}
	if m != DebugASAN {
		t.Errorf("got %q, want debug-asan", m)
	}
}

func TestUseCMake(t *testing.T) {
	if Original.UseCMake() {
		t.Error("original mode should use the legacy build script")
	}
	if !ReleaseLTO.UseCMake() {
		t.Error("rel-lto should use CMake")
	}
}

func TestCMakeArgs_ReturnsCopy(t *testing.T) {
	args := DebugASAN.CMakeArgs()
	if len(args) == 0 {
		t.Fatal("expected cmake args")
	}
	args[0] = "mutated"
	if DebugASAN.CMakeArgs()[0] == "mutated" {
		t.Error("CMakeArgs must return a copy")
	}
}

func TestEnv_ModeSpecificVars(t *testing.T) {
	env := DebugASAN.Env()
	if env["ASAN_OPTIONS"] == "" {
		t.Error("debug-asan should set ASAN_OPTIONS")
	}
	if env["BUILD_MODE"] != "debug-asan" {
		t.Errorf("BUILD_MODE = %q", env["BUILD_MODE"])
	}
}

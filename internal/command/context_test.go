package command

import (
	"strings"
	"testing"

	"ivyharness/internal/buildmode"
	"ivyharness/internal/roles"
)

func newTestContext(t *testing.T) Context {
	t.Helper()
	ctx, err := NewContext("quic", roles.Client, "ivy_client", []string{"picoquic_server"}, "quic_server_test_stream", buildmode.Original)
	if err != nil {
		t.Fatal(err)
	}
	return ctx
}

func TestNewContext_RequiredFields(t *testing.T) {
	if _, err := NewContext("quic", roles.Client, "", nil, "test", buildmode.Original); err == nil {
		t.Error("expected error for missing service name")
	}
	if _, err := NewContext("quic", roles.Client, "svc", nil, "", buildmode.Original); err == nil {
		t.Error("expected error for missing test name")
	}
}

func TestNewContext_BuildsMapping(t *testing.T) {
	ctx := newTestContext(t)
	if ctx.Mapping["server_service"] != "picoquic_server" {
		t.Errorf("server_service = %q", ctx.Mapping["server_service"])
	}
	if ctx.Mapping["client_service"] != "ivy_client" {
		t.Errorf("client_service = %q", ctx.Mapping["client_service"])
	}
}

func TestContext_PrimaryTarget(t *testing.T) {
	ctx := newTestContext(t)
	if ctx.PrimaryTarget() != "picoquic_server" {
		t.Errorf("primary target = %q", ctx.PrimaryTarget())
	}
	ctx.Targets = nil
	if ctx.PrimaryTarget() != "" {
		t.Error("expected empty primary target")
	}
}

func TestContext_ModelPath(t *testing.T) {
	t.Setenv("IVYHARNESS_BASE_PATH", "/models")

	ctx := newTestContext(t)
	if got := ctx.ModelPath(); got != "/models/quic" {
		t.Errorf("model path = %q", got)
	}

	ctx.UseSystemModels = true
	if got := ctx.ModelPath(); got != "/models/apt/apt_protocols/quic" {
		t.Errorf("system model path = %q", got)
	}
}

func TestContext_TestDir(t *testing.T) {
	ctx := newTestContext(t)

	// Name carries the side.
	ctx.TestName = "quic_server_test_stream"
	if got := ctx.TestDir(); got != "server_tests" {
		t.Errorf("TestDir = %q", got)
	}
	ctx.TestName = "quic_client_test_version"
	if got := ctx.TestDir(); got != "client_tests" {
		t.Errorf("TestDir = %q", got)
	}

	// Otherwise the opposing role decides: a client runs server tests.
	ctx.TestName = "quic_stream_test"
	if got := ctx.TestDir(); got != "server_tests" {
		t.Errorf("TestDir = %q", got)
	}
}

func TestContext_BuildEnv(t *testing.T) {
	ctx := newTestContext(t)
	ctx.BuildMode = buildmode.DebugASAN

	env := ctx.BuildEnv()
	if env["PROTOCOL"] != "quic" {
		t.Errorf("PROTOCOL = %q", env["PROTOCOL"])
	}
	if env["USE_APT_PROTOCOLS"] != "0" {
		t.Errorf("USE_APT_PROTOCOLS = %q", env["USE_APT_PROTOCOLS"])
	}
	if env["BUILD_MODE"] != "debug-asan" {
		t.Errorf("BUILD_MODE = %q", env["BUILD_MODE"])
	}
	if !strings.Contains(env["IVYHARNESS_BASE_DIR"], "quic") {
		t.Errorf("IVYHARNESS_BASE_DIR = %q", env["IVYHARNESS_BASE_DIR"])
	}
}

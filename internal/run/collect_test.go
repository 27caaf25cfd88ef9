package run

import (
	"os"
	"path/filepath"
	"testing"

	"ivyharness/internal/analysis"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestCollect_SelfReadsFromLogsRoot(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "run", "stdout.log"), "all tests passed")
	writeFile(t, filepath.Join(root, "compile", "compilation_status.txt"), "Compilation succeeded")
	writeFile(t, filepath.Join(root, "artifacts", "ivy_ivy_client.log"), "verification succeeded")

	collected := Collect(root, "quic", "ivy_client", []string{"picoquic_server"})

	if len(collected) != 1 {
		t.Fatalf("absent peer should have no entry, got %d", len(collected))
	}
	outputs := collected["ivy_client"]
	if outputs[analysis.ArtifactStdout] != "all tests passed" {
		t.Errorf("stdout = %q", outputs[analysis.ArtifactStdout])
	}
	if outputs[analysis.ArtifactCompileStatus] != "Compilation succeeded" {
		t.Errorf("compile status = %q", outputs[analysis.ArtifactCompileStatus])
	}
	if outputs[analysis.ArtifactIvyLog] != "verification succeeded" {
		t.Errorf("ivy log = %q", outputs[analysis.ArtifactIvyLog])
	}
}

func TestCollect_PeersReadFromPerServiceDirs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "run", "stdout.log"), "all tests passed")
	writeFile(t, filepath.Join(root, "picoquic_server", "run", "stderr.log"), "error: refused")

	collected := Collect(root, "quic", "ivy_client", []string{"picoquic_server"})

	if len(collected) != 2 {
		t.Fatalf("collected = %d services, want self and peer", len(collected))
	}
	if collected["ivy_client"][analysis.ArtifactStdout] != "all tests passed" {
		t.Errorf("self stdout = %q", collected["ivy_client"][analysis.ArtifactStdout])
	}
	if collected["picoquic_server"][analysis.ArtifactStderr] != "error: refused" {
		t.Errorf("peer stderr = %q", collected["picoquic_server"][analysis.ArtifactStderr])
	}
}

func TestServiceRoot(t *testing.T) {
	if got := ServiceRoot("/app/logs", "ivy_client", "ivy_client"); got != "/app/logs" {
		t.Errorf("self root = %q", got)
	}
	if got := ServiceRoot("/app/logs", "ivy_client", "picoquic_server"); got != filepath.Join("/app/logs", "picoquic_server") {
		t.Errorf("peer root = %q", got)
	}
}

func TestCollectTraces_QUICGlobs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "artifacts", "conn1.qlog"), "{}")
	writeFile(t, filepath.Join(root, "artifacts", "tlskeys.log"), "SECRET")
	writeFile(t, filepath.Join(root, "artifacts", "notes.txt"), "x")

	traces := CollectTraces(root, "quic", "svc")
	if len(traces) != 2 {
		t.Errorf("traces = %v, want qlog and keys only", traces)
	}
}

func TestOutputPatterns_ProtocolSpecific(t *testing.T) {
	quic := OutputPatterns("quic", "svc")
	plain := OutputPatterns("minip", "svc")
	if len(quic) <= len(plain) {
		t.Error("quic should add trace patterns")
	}
	for _, p := range quic {
		if p.Name == "ivy_log" && p.Path != "artifacts/ivy_svc.log" {
			t.Errorf("service marker not expanded: %q", p.Path)
		}
	}
}

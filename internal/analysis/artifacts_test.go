package analysis

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadArtifact_UTF8(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stdout.log")
	if err := os.WriteFile(path, []byte("all tests passed\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	content, ok := ReadArtifact(path)
	if !ok || content != "all tests passed\n" {
		t.Errorf("got (%q, %v)", content, ok)
	}
}

func TestReadArtifact_Latin1Fallback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stderr.log")
	// 0xE9 is latin-1 'é' and invalid as a standalone UTF-8 byte.
	if err := os.WriteFile(path, []byte{'c', 'a', 'f', 0xE9, '\n'}, 0o644); err != nil {
		t.Fatal(err)
	}
	content, ok := ReadArtifact(path)
	if !ok {
		t.Fatal("artifact should be readable via fallback")
	}
	if !strings.Contains(content, "café") {
		t.Errorf("latin-1 decode failed: %q", content)
	}
}

func TestReadArtifact_MissingIsNotFatal(t *testing.T) {
	content, ok := ReadArtifact(filepath.Join(t.TempDir(), "absent.log"))
	if ok || content != "" {
		t.Errorf("missing artifact should report (\"\", false), got (%q, %v)", content, ok)
	}
}

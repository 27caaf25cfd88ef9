package analysis

import (
	"os"
	"strings"
	"unicode/utf8"
)

// Artifact type keys under which captured streams are organized per service.
const (
	ArtifactStdout        = "stdout"
	ArtifactStderr        = "stderr"
	ArtifactCompileStatus = "compilation_status"
	ArtifactTestResults   = "test_results"
	ArtifactIvyLog        = "ivy_log"
)

// Outputs holds one service's captured artifacts, keyed by artifact type.
type Outputs map[string]string

// ReadArtifact reads a captured artifact file leniently. Content that is not
// valid UTF-8 is decoded as latin-1 so that a stray byte in a crash dump does
// not make the whole stream unreadable. A missing or unreadable file reports
// ok=false; it is never an error.
func ReadArtifact(path string) (content string, ok bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	if utf8.Valid(data) {
		return string(data), true
	}
	return decodeLatin1(data), true
}

// decodeLatin1 maps each byte to the Unicode code point of the same value.
func decodeLatin1(data []byte) string {
	var b strings.Builder
	b.Grow(len(data))
	for _, c := range data {
		b.WriteRune(rune(c))
	}
	return b.String()
}

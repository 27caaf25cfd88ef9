package analysis

import (
	"reflect"
	"testing"
)

func TestMatchesSuccess(t *testing.T) {
	positives := []string{
		"step 14\nOK",
		"result: PASS",
		"Verification succeeded after 120 steps",
		"proof complete",
		"All checks passed.",
	}
	for _, content := range positives {
		if !MatchesSuccess(content) {
			t.Errorf("MatchesSuccess(%q) = false", content)
		}
	}
	if MatchesSuccess("OK, moving on to the next step") {
		t.Error("OK mid-line should not count as a success marker")
	}
}

func TestExtractErrors_DeduplicatesAndCaptures(t *testing.T) {
	content := "error: handshake failed\nsome context\nerror: handshake failed\nFAILED: stream reset"
	got := ExtractErrors(content)
	want := []string{"handshake failed", "stream reset"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExtractErrors = %v, want %v", got, want)
	}
}

func TestExtractWarnings(t *testing.T) {
	got := ExtractWarnings("Warning: retransmit budget low\ndeprecated: old frame type")
	want := []string{"retransmit budget low", "old frame type"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExtractWarnings = %v, want %v", got, want)
	}
}

func TestStderrErrorLines_FirstLinePerMarker(t *testing.T) {
	stderr := "setup ok\nerror: first\nerror: second\ntimeout: failed to run command ./t"
	got := StderrErrorLines(stderr)
	if len(got) != 2 {
		t.Fatalf("got %v", got)
	}
	if got[0] != "timeout: failed to run command ./t" {
		t.Errorf("first marker line = %q", got[0])
	}
	if got[1] != "error: first" {
		t.Errorf("only the first line per marker should be kept, got %q", got[1])
	}
}

func TestQUICErrorName(t *testing.T) {
	if QUICErrorName(0xA) != "PROTOCOL_VIOLATION" {
		t.Errorf("0xA = %q", QUICErrorName(0xA))
	}
	if QUICErrorName(0x99) != "UNKNOWN_ERROR_153" {
		t.Errorf("unknown code = %q", QUICErrorName(0x99))
	}
}

func TestAnnotateQUICError(t *testing.T) {
	tests := []struct {
		msg  string
		want string
	}{
		{"connection closed with error code 0xa", "connection closed with error code 0xa (PROTOCOL_VIOLATION)"},
		{"peer sent error code: 2", "peer sent error code: 2 (CONNECTION_REFUSED)"},
		{"handshake failed", "handshake failed"},
	}
	for _, tt := range tests {
		if got := AnnotateQUICError(tt.msg); got != tt.want {
			t.Errorf("AnnotateQUICError(%q) = %q, want %q", tt.msg, got, tt.want)
		}
	}
}

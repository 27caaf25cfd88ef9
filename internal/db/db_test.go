package db

import (
	"os"
	"testing"

	"ivyharness/internal/command"
)

// openTestDB connects to the database named by IVYHARNESS_TEST_DB and resets
// the schema. Tests are skipped when the variable is unset so the suite does
// not require a running server.
func openTestDB(t *testing.T) *DB {
	t.Helper()
	dsn := os.Getenv("IVYHARNESS_TEST_DB")
	if dsn == "" {
		t.Skip("IVYHARNESS_TEST_DB not set")
	}
	d, err := Open(dsn)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	if err := d.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	return d
}

func TestRunEventRoundTrip(t *testing.T) {
	d := openTestDB(t)

	if err := d.LogRunEvent("run-1", "compile", "phase_started", ""); err != nil {
		t.Fatalf("LogRunEvent: %v", err)
	}
	if err := d.LogRunEvent("run-1", "compile", "phase_completed", "14 commands"); err != nil {
		t.Fatalf("LogRunEvent: %v", err)
	}

	events, err := d.GetRunHistory("run-1")
	if err != nil {
		t.Fatalf("GetRunHistory: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Event != "phase_completed" {
		t.Errorf("newest first: got %q", events[0].Event)
	}
	if events[0].Detail != "14 commands" {
		t.Errorf("detail = %q", events[0].Detail)
	}
}

func TestSaveCommandsReplacesGeneration(t *testing.T) {
	d := openTestDB(t)

	first := []command.Record{command.NewRecord("echo one", command.Compile)}
	if err := d.SaveCommands("run-1", command.Compile, first); err != nil {
		t.Fatalf("SaveCommands: %v", err)
	}
	second := []command.Record{
		command.NewRecord("echo one", command.Compile),
		command.NewRecord("make install", command.Compile),
	}
	if err := d.SaveCommands("run-1", command.Compile, second); err != nil {
		t.Fatalf("SaveCommands: %v", err)
	}

	got, err := d.GetCommands("run-1", command.Compile)
	if err != nil {
		t.Fatalf("GetCommands: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d commands, want 2 (old generation replaced)", len(got))
	}
	if got[1].Text != "make install" || !got[1].Critical {
		t.Errorf("command 1 = %+v", got[1])
	}
}

func TestVerdictUpsert(t *testing.T) {
	d := openTestDB(t)

	if err := d.SaveVerdict("run-1", false, "Tests failed: boom", 2, []string{"boom"}); err != nil {
		t.Fatalf("SaveVerdict: %v", err)
	}
	if err := d.SaveVerdict("run-1", true, "All tests passed successfully", 2, nil); err != nil {
		t.Fatalf("SaveVerdict upsert: %v", err)
	}

	v, err := d.GetVerdict("run-1")
	if err != nil {
		t.Fatalf("GetVerdict: %v", err)
	}
	if v == nil || !v.Passed || len(v.Failures) != 0 {
		t.Errorf("verdict = %+v", v)
	}

	missing, err := d.GetVerdict("run-absent")
	if err != nil {
		t.Fatalf("GetVerdict: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for unknown run, got %+v", missing)
	}
}

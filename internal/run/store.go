package run

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"ivyharness/internal/analysis"
	"ivyharness/internal/command"
)

// State is the persisted record of one harness run.
type State struct {
	ID        string `json:"id"`
	Protocol  string `json:"protocol"`
	Role      string `json:"role"`
	TestName  string `json:"test_name"`
	Status    string `json:"status"` // pending, running, passed, failed
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// Store manages run state and captured artifacts on disk. Layout per run:
//
//	<base>/<run-id>/run.json
//	<base>/<run-id>/phases/<phase>/commands.json
//	<base>/<run-id>/phases/run/deployment.cmd
//	<base>/<run-id>/verdict.json
type Store struct {
	baseDir string
}

// NewStore creates a Store rooted at baseDir.
func NewStore(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// DefaultStore returns a Store at ~/.ivyharness/runs, creating the directory
// if needed.
func DefaultStore() (*Store, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("get home dir: %w", err)
	}
	dir := filepath.Join(home, ".ivyharness", "runs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return &Store{baseDir: dir}, nil
}

// BaseDir returns the store's root directory.
func (s *Store) BaseDir() string {
	return s.baseDir
}

func (s *Store) runDir(id string) string {
	return filepath.Join(s.baseDir, id)
}

func (s *Store) statePath(id string) string {
	return filepath.Join(s.runDir(id), "run.json")
}

// PhaseDir returns the directory holding one phase's generated commands and
// captured output.
func (s *Store) PhaseDir(id string, phase command.Phase) string {
	return filepath.Join(s.runDir(id), "phases", string(phase))
}

// Create initialises a new run on disk with a fresh identifier.
func (s *Store) Create(protocol, role, testName string) (*State, error) {
	id := uuid.NewString()
	dir := s.runDir(id)
	if err := os.MkdirAll(filepath.Join(dir, "phases"), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir phases: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	st := &State{
		ID:        id,
		Protocol:  protocol,
		Role:      role,
		TestName:  testName,
		Status:    "pending",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := saveJSON(s.statePath(id), st); err != nil {
		return nil, fmt.Errorf("write run.json: %w", err)
	}
	return st, nil
}

// Get reads the state of a run.
func (s *Store) Get(id string) (*State, error) {
	var st State
	if err := loadJSON(s.statePath(id), &st); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("run %s not found", id)
		}
		return nil, err
	}
	return &st, nil
}

// Update performs a read-modify-write of the run state.
func (s *Store) Update(id string, fn func(*State)) error {
	st, err := s.Get(id)
	if err != nil {
		return err
	}
	fn(st)
	st.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	return saveJSON(s.statePath(id), st)
}

// List returns all runs, optionally filtered by status. Pass "" to return
// everything. Results are ordered by creation time, oldest first.
func (s *Store) List(statusFilter string) ([]State, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read dir %s: %w", s.baseDir, err)
	}

	var runs []State
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		st, err := s.Get(entry.Name())
		if err != nil {
			continue // skip broken entries
		}
		if statusFilter == "" || st.Status == statusFilter {
			runs = append(runs, *st)
		}
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].CreatedAt < runs[j].CreatedAt
	})
	return runs, nil
}

// Delete removes all data for a run.
func (s *Store) Delete(id string) error {
	dir := s.runDir(id)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return fmt.Errorf("run %s not found", id)
	}
	return os.RemoveAll(dir)
}

// SaveCommands writes the generated command list for a phase.
func (s *Store) SaveCommands(id string, phase command.Phase, records []command.Record) error {
	dir := s.PhaseDir(id, phase)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir phase dir: %w", err)
	}
	return saveJSON(filepath.Join(dir, "commands.json"), records)
}

// GetCommands reads the generated command list for a phase.
func (s *Store) GetCommands(id string, phase command.Phase) ([]command.Record, error) {
	var records []command.Record
	path := filepath.Join(s.PhaseDir(id, phase), "commands.json")
	if err := loadJSON(path, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// SaveDeployment writes the rendered deployment command for the run phase.
func (s *Store) SaveDeployment(id string, cmd string) error {
	return writeRunFile(filepath.Join(s.PhaseDir(id, command.Run), "deployment.cmd"), []byte(cmd+"\n"))
}

// GetDeployment reads the rendered deployment command.
func (s *Store) GetDeployment(id string) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.PhaseDir(id, command.Run), "deployment.cmd"))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// SaveVerdict writes the analysis verdict and updates the run status.
func (s *Store) SaveVerdict(id string, verdict *analysis.Verdict) error {
	if err := saveJSON(filepath.Join(s.runDir(id), "verdict.json"), verdict); err != nil {
		return err
	}
	return s.Update(id, func(st *State) {
		if verdict.Passed {
			st.Status = "passed"
		} else {
			st.Status = "failed"
		}
	})
}

// GetVerdict reads the analysis verdict for a run.
func (s *Store) GetVerdict(id string) (*analysis.Verdict, error) {
	var verdict analysis.Verdict
	if err := loadJSON(filepath.Join(s.runDir(id), "verdict.json"), &verdict); err != nil {
		return nil, err
	}
	return &verdict, nil
}

// writeRunFile writes a run artifact atomically: the data lands in a temp
// file beside the target and is renamed into place, so a crashed write never
// leaves a truncated run.json or verdict.json behind.
func writeRunFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if tmpName != "" {
			os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename %s -> %s: %w", tmpName, path, err)
	}
	tmpName = ""
	return nil
}

// saveJSON writes v as pretty-printed JSON via writeRunFile.
func saveJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	return writeRunFile(path, append(data, '\n'))
}

// loadJSON reads a JSON run artifact into v.
func loadJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshal %s: %w", path, err)
	}
	return nil
}

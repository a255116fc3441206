// Package session tracks the single operator's working state: which task
// they started last and whether focus mode is on. Focus mode enforces
// finishing the recorded task before starting another.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const sessionFile = "session.json"

// FocusHeldError means focus mode is on and a different task is already
// recorded as started.
type FocusHeldError struct {
	TaskID string
}

func (e FocusHeldError) Error() string {
	return fmt.Sprintf("focus mode on: finish task %s before starting another", e.TaskID)
}

// Session is the operator's working state for one workspace.
type Session struct {
	PlanID         string     `json:"plan_id,omitempty"`
	TaskID         string     `json:"task_id,omitempty"`
	StartedAt      *time.Time `json:"started_at,omitempty"`
	Focus          bool       `json:"focus,omitempty"`
	FocusStartedAt *time.Time `json:"focus_started_at,omitempty"`
}

// Active reports whether a task is currently recorded.
func (s *Session) Active() bool {
	return s.TaskID != ""
}

// sessionPath returns the full path to session.json for the given base path.
func sessionPath(basePath string) string {
	return filepath.Join(basePath, sessionFile)
}

// Exists checks if a session file exists.
func Exists(basePath string) bool {
	_, err := os.Stat(sessionPath(basePath))
	return err == nil
}

// Load reads the session from disk.
func Load(basePath string) (*Session, error) {
	data, err := os.ReadFile(sessionPath(basePath))
	if err != nil {
		return nil, err
	}

	var s Session
	if unmarshalErr := json.Unmarshal(data, &s); unmarshalErr != nil {
		return nil, unmarshalErr
	}

	return &s, nil
}

// Current reads the session, treating a missing file as an empty session.
func Current(basePath string) (*Session, error) {
	s, err := Load(basePath)
	if os.IsNotExist(err) {
		return &Session{}, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Save writes the session to disk.
func Save(basePath string, s *Session) error {
	//nolint:gosec // G301: 0755 is appropriate for user-accessible session directory
	if mkdirErr := os.MkdirAll(basePath, 0o755); mkdirErr != nil {
		return mkdirErr
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	//nolint:gosec // G306: 0644 is appropriate for user-readable session files
	return os.WriteFile(sessionPath(basePath), data, 0o644)
}

// Clear removes the session file.
func Clear(basePath string) error {
	err := os.Remove(sessionPath(basePath))
	if os.IsNotExist(err) {
		return nil // Already cleared, not an error
	}
	return err
}

// Begin records taskID as the task being worked on. Returns (begun,
// currentID, error): under focus mode with a different task already
// recorded, it refuses and reports that task's id instead.
func Begin(basePath, planID, taskID string) (bool, string, error) {
	existing, err := Load(basePath)
	if err != nil && !os.IsNotExist(err) {
		return false, "", err
	}

	now := time.Now().UTC()
	s := &Session{PlanID: planID, TaskID: taskID, StartedAt: &now}

	if existing != nil {
		if existing.Focus && existing.TaskID != "" && existing.TaskID != taskID {
			return false, existing.TaskID, nil
		}
		s.Focus = existing.Focus
		s.FocusStartedAt = existing.FocusStartedAt
	}

	if saveErr := Save(basePath, s); saveErr != nil {
		return false, "", saveErr
	}

	return true, "", nil
}

// Finish clears the recorded task if taskID is the one recorded. Returns
// true if the record was cleared. Focus mode survives the finish so the
// next Begin is still held to one task at a time.
func Finish(basePath, taskID string) (bool, error) {
	existing, err := Load(basePath)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if existing.TaskID != taskID {
		return false, nil
	}

	if !existing.Focus {
		if clearErr := Clear(basePath); clearErr != nil {
			return false, clearErr
		}
		return true, nil
	}

	existing.PlanID = ""
	existing.TaskID = ""
	existing.StartedAt = nil
	return true, Save(basePath, existing)
}

// SetFocus toggles focus mode, creating the session record if needed.
func SetFocus(basePath string, active bool) error {
	existing, err := Load(basePath)
	if os.IsNotExist(err) {
		existing = &Session{}
		err = nil
	}
	if err != nil {
		return err
	}

	existing.Focus = active
	if active {
		now := time.Now().UTC()
		existing.FocusStartedAt = &now
	} else {
		existing.FocusStartedAt = nil
	}

	if !active && existing.TaskID == "" {
		// Nothing left to track
		return Clear(basePath)
	}

	return Save(basePath, existing)
}

// Package state keeps an append-only audit log of provisioning runs. The
// log is informational: identifiers are always rediscovered from the control
// plane, never read back from disk.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Record is one up or down run against one stack.
type Record struct {
	Stack     string `json:"stack"`
	Provider  string `json:"provider"`
	Action    string `json:"action"` // up, down
	SubnetID  string `json:"subnet_id,omitempty"`
	Status    string `json:"status"` // success, failed
	Timestamp string `json:"timestamp"`
}

// HistoryManager manages the persistent run log. Appends are serialized, so
// stacks provisioned in parallel can share one manager without losing
// records.
type HistoryManager struct {
	mu          sync.Mutex
	HistoryFile string
}

func NewHistoryManager(baseDir string) *HistoryManager {
	if baseDir == "" {
		home, _ := os.UserHomeDir()
		baseDir = filepath.Join(home, ".stratus")
	}
	return &HistoryManager{
		HistoryFile: filepath.Join(baseDir, "history.json"),
	}
}

// Append adds a record to the log, stamping it with the current time.
func (hm *HistoryManager) Append(rec Record) error {
	hm.mu.Lock()
	defer hm.mu.Unlock()

	rec.Timestamp = time.Now().Format(time.RFC3339)

	history, err := hm.load()
	if err != nil {
		history = []Record{}
	}
	history = append(history, rec)

	if err := os.MkdirAll(filepath.Dir(hm.HistoryFile), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(hm.HistoryFile, data, 0o644)
}

// Load reads the full log, oldest first.
func (hm *HistoryManager) Load() ([]Record, error) {
	hm.mu.Lock()
	defer hm.mu.Unlock()
	return hm.load()
}

func (hm *HistoryManager) load() ([]Record, error) {
	data, err := os.ReadFile(hm.HistoryFile)
	if err != nil {
		if os.IsNotExist(err) {
			return []Record{}, nil
		}
		return nil, err
	}
	var history []Record
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, fmt.Errorf("history file is corrupt: %w", err)
	}
	return history, nil
}

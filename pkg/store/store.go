package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"twsampler/pkg/errors"
	"twsampler/pkg/period"
)

const responseSuffix = ".response.json"

// StoredResponse is the persisted artifact for one window: the window
// bounds in wire format plus the raw remote payload, kept opaque.
type StoredResponse struct {
	StartTime string          `json:"start_time"`
	EndTime   string          `json:"end_time"`
	Response  json.RawMessage `json:"response"`
}

// Manager tracks which windows already have a persisted response and
// writes new ones. The output directory is scanned once at construction;
// artifacts added by other processes mid-run are not observed.
type Manager struct {
	outputDir string
	collected map[string]bool
	mu        sync.RWMutex
}

// NewManager creates a response store rooted at outputDir, creating the
// directory if needed and scanning it for existing responses.
func NewManager(outputDir string) (*Manager, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, errors.Newf(errors.ErrorTypePersistence, "failed to create output directory: %v", err)
	}

	m := &Manager{
		outputDir: outputDir,
		collected: make(map[string]bool),
	}

	if err := m.scanExistingResponses(); err != nil {
		return nil, err
	}

	return m, nil
}

// scanExistingResponses indexes responses already collected by prior runs
func (m *Manager) scanExistingResponses() error {
	entries, err := os.ReadDir(m.outputDir)
	if err != nil {
		return errors.Newf(errors.ErrorTypePersistence, "failed to read output directory: %v", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), responseSuffix) {
			m.collected[entry.Name()] = true
		}
	}

	return nil
}

// Has reports whether a response for the window was already persisted.
func (m *Manager) Has(w period.Window) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.collected[w.Filename()]
}

// Persist writes the wrapped response for the window. The write goes to
// a temporary name first and is renamed into place, so a partially
// written artifact is never mistaken for a complete one by a later run.
func (m *Manager) Persist(w period.Window, raw json.RawMessage) error {
	wrapped := StoredResponse{
		StartTime: w.StartString(),
		EndTime:   w.EndString(),
		Response:  raw,
	}

	data, err := json.MarshalIndent(wrapped, "", "    ")
	if err != nil {
		return errors.Newf(errors.ErrorTypePersistence, "failed to encode response: %v", err)
	}

	filename := filepath.Join(m.outputDir, w.Filename())
	tempFile := filename + ".tmp"

	out, err := os.Create(tempFile)
	if err != nil {
		return errors.Newf(errors.ErrorTypePersistence, "failed to create temporary file: %v", err)
	}

	if _, err := out.Write(data); err != nil {
		out.Close()
		os.Remove(tempFile)
		return errors.Newf(errors.ErrorTypePersistence, "failed to write response data: %v", err)
	}
	if err := out.Sync(); err != nil {
		out.Close()
		os.Remove(tempFile)
		return errors.Newf(errors.ErrorTypePersistence, "failed to sync response file: %v", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(tempFile)
		return errors.Newf(errors.ErrorTypePersistence, "failed to close response file: %v", err)
	}

	if err := os.Rename(tempFile, filename); err != nil {
		os.Remove(tempFile)
		return errors.Newf(errors.ErrorTypePersistence, "failed to rename temporary file: %v", err)
	}

	m.mu.Lock()
	m.collected[w.Filename()] = true
	m.mu.Unlock()

	return nil
}

// CollectedCount returns the number of persisted responses known to the store
func (m *Manager) CollectedCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.collected)
}

// OutputDir returns the output directory path
func (m *Manager) OutputDir() string {
	return m.outputDir
}

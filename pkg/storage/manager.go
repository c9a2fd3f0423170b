package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// filePrefix marks files owned by the scraper in the download directory
const filePrefix = "reddit_"

// Manager handles image storage and duplicate detection. Duplicates are
// tracked per submission: a file whose name starts with the submission's
// prefix means the submission was downloaded on an earlier run.
type Manager struct {
	outputDir string
	files     map[string]bool
	mu        sync.RWMutex
}

// NewManager creates a storage manager rooted at outputDir, creating the
// directory if needed and indexing previously downloaded files.
func NewManager(outputDir string) (*Manager, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create download directory: %w", err)
	}

	manager := &Manager{
		outputDir: outputDir,
		files:     make(map[string]bool),
	}

	if err := manager.scanExistingFiles(); err != nil {
		return nil, fmt.Errorf("failed to scan download directory: %w", err)
	}

	return manager, nil
}

// scanExistingFiles indexes files from earlier runs
func (m *Manager) scanExistingFiles() error {
	entries, err := os.ReadDir(m.outputDir)
	if err != nil {
		return fmt.Errorf("failed to read directory: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() && strings.HasPrefix(entry.Name(), filePrefix) {
			m.files[entry.Name()] = true
		}
	}

	return nil
}

// SubmissionPrefix returns the filename prefix shared by every image
// belonging to one submission.
func SubmissionPrefix(subreddit, id string) string {
	return fmt.Sprintf("%s%s_%s_", filePrefix, subreddit, id)
}

// HasSubmission reports whether any image of the submission is already
// on disk. Subreddit names may themselves contain underscores, so the
// check is a prefix match over indexed names rather than a field split.
func (m *Manager) HasSubmission(subreddit, id string) bool {
	prefix := SubmissionPrefix(subreddit, id)

	m.mu.RLock()
	defer m.mu.RUnlock()

	for name := range m.files {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}

	return false
}

// SaveImage streams the reader into the named file. The write goes to a
// temporary file first and is renamed into place, so an interrupted run
// never leaves a partial image that would suppress a later retry.
func (m *Manager) SaveImage(r io.Reader, filename string) error {
	target := filepath.Join(m.outputDir, filename)

	tempFile := target + ".tmp"
	out, err := os.Create(tempFile)
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	_, err = io.Copy(out, r)
	closeErr := out.Close()

	if err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to write image data: %w", err)
	}

	if closeErr != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to close file: %w", closeErr)
	}

	if err := os.Rename(tempFile, target); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	m.mu.Lock()
	m.files[filename] = true
	m.mu.Unlock()

	return nil
}

// GetOutputDir returns the download directory path
func (m *Manager) GetOutputDir() string {
	return m.outputDir
}

// DownloadedCount returns the number of indexed image files
func (m *Manager) DownloadedCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.files)
}

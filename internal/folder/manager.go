// Package folder accounts for and cleans the per-address transfer
// folders written to by the devices under test.
package folder

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"TransferScope/internal/model"
)

// Manager inspects and cleans transfer folders.
type Manager struct {
	log zerolog.Logger
}

func NewManager(log zerolog.Logger) *Manager {
	return &Manager{log: log}
}

// Clean counts the regular files in dir, computes their average size,
// deletes them, and recounts. A missing folder is reported and yields
// zero stats; it is not an error.
func (m *Manager) Clean(dir string) model.FolderStats {
	entries, err := os.ReadDir(dir)
	if err != nil {
		m.log.Warn().Str("dir", dir).Err(err).Msg("transfer folder not readable")
		return model.FolderStats{}
	}

	var stats model.FolderStats
	var totalBytes int64
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
		totalBytes += info.Size()
	}
	stats.FilesBefore = len(files)
	if stats.FilesBefore > 0 {
		stats.AvgFileBytes = float64(totalBytes) / float64(stats.FilesBefore)
	}

	for _, path := range files {
		if err := os.Remove(path); err != nil {
			m.log.Warn().Str("file", path).Err(err).Msg("failed to delete transfer file")
		}
	}

	entries, err = os.ReadDir(dir)
	if err == nil {
		for _, e := range entries {
			if !e.IsDir() {
				stats.FilesAfter++
			}
		}
	}

	m.log.Info().Str("dir", dir).
		Int("before", stats.FilesBefore).
		Int("after", stats.FilesAfter).
		Float64("avg_mb", stats.AvgFileBytes/(1024*1024)).
		Msg("cleaned transfer folder")
	return stats
}

// CleanAll cleans one subfolder per flow address under root. Each
// address's subfolder is named after its last dotted component.
func (m *Manager) CleanAll(root string, addresses []string) map[string]model.FolderStats {
	out := make(map[string]model.FolderStats, len(addresses))
	for _, addr := range addresses {
		out[addr] = m.Clean(filepath.Join(root, Subfolder(addr)))
	}
	return out
}

// Subfolder maps a flow address to its transfer subfolder name.
func Subfolder(addr string) string {
	parts := strings.Split(addr, ".")
	return parts[len(parts)-1]
}

// Ensure creates the transfer subfolders for the given addresses.
func Ensure(root string, addresses []string) error {
	for _, addr := range addresses {
		if err := os.MkdirAll(filepath.Join(root, Subfolder(addr)), 0o755); err != nil {
			return fmt.Errorf("failed to create transfer folder: %w", err)
		}
	}
	return nil
}

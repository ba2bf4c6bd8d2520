package audit

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Archiver keeps a JSON copy of every parsed import so rejected rows and
// the resulting report can be inspected after the fact.
type Archiver struct {
	Dir string
}

func NewArchiver(dir string) *Archiver {
	return &Archiver{Dir: dir}
}

// Save writes data as indented JSON to <kind>-<timestamp>-<uuid>.json and
// returns the file name. A nil archiver or empty Dir is a no-op.
func (a *Archiver) Save(kind string, data any) (string, error) {
	if a == nil || a.Dir == "" {
		return "", nil
	}
	if err := os.MkdirAll(a.Dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	filename := fmt.Sprintf("%s-%s-%s.json", kind, time.Now().UTC().Format("20060102T150405"), uuid.NewString())
	path := filepath.Join(a.Dir, filename)

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal archive: %w", err)
	}
	if err := os.WriteFile(path, jsonData, 0644); err != nil {
		return "", fmt.Errorf("failed to write archive file: %w", err)
	}

	log.Printf("[IMPORT] Archived %s import to %s", kind, path)
	return filename, nil
}

package requirements

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/banshee-data/lanelint/internal/fsutil"
	"github.com/banshee-data/lanelint/internal/validation"
)

// resultsFile is the on-disk shape of a scheduling pass: the annotated
// requirements document plus the flattened issue stream.
type resultsFile struct {
	Requirements []*Requirement     `json:"requirements"`
	Issues       []validation.Issue `json:"issues"`
}

// Write serializes the annotated document and the flattened issue stream
// into fileName under outputDir, creating the directory when needed.
func (r *Result) Write(fsys fsutil.FileSystem, outputDir, fileName string) error {
	out := resultsFile{
		Requirements: r.doc.Requirements,
		Issues:       r.Issues,
	}
	if out.Issues == nil {
		out.Issues = []validation.Issue{}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode validation results: %w", err)
	}

	if err := fsys.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(outputDir, fileName)
	if err := fsys.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write validation results: %w", err)
	}
	return nil
}

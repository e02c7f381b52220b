package event

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
)

// unknownValue marks a best-effort field whose value could not be obtained.
const unknownValue = "unknown"

// Normalizer produces the property mapping for a callback payload, including
// the synthesized notebook_name and notebook_hash fields. Both are
// best-effort diagnostics: failure to obtain either never aborts the event.
type Normalizer struct {
	// NotebookPath is the path of the current notebook file, if known.
	NotebookPath string
}

// Normalize flattens arg (see Normalize) and appends the synthesized fields.
// Synthesized fields win over payload keys of the same name.
func (n Normalizer) Normalize(arg any) map[string]string {
	props := Normalize(arg)
	props["notebook_name"] = n.NotebookName()
	props["notebook_hash"] = n.notebookHash()
	return props
}

// NotebookName returns the base name of the notebook file, or "unknown".
func (n Normalizer) NotebookName() string {
	if n.NotebookPath == "" {
		return unknownValue
	}
	return filepath.Base(n.NotebookPath)
}

// notebookHash returns the hex SHA-256 of the notebook file contents, or
// "unknown" on any failure reading it.
func (n Normalizer) notebookHash() string {
	if n.NotebookPath == "" {
		return unknownValue
	}
	data, err := os.ReadFile(n.NotebookPath)
	if err != nil {
		return unknownValue
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

package fixstore

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/erraggy/specsync/document"
)

// StoreVersion is the fix store format version written by this package.
const StoreVersion = "1"

// Op identifies the kind of correction a fix applies.
type Op string

const (
	// OpAddIfMissing inserts the payload when the target path does not
	// resolve; a resolving path makes it a no-op.
	OpAddIfMissing Op = "add_if_missing"
	// OpDeleteValue removes the value at the target path; an unresolving
	// path makes it a no-op.
	OpDeleteValue Op = "delete_value"
	// OpReplaceValue overwrites the value at the target path with the
	// payload; equal values make it a no-op, and an unresolving path is
	// reported as unresolved.
	OpReplaceValue Op = "replace_value"
)

// IsValid reports whether op is one of the known operations.
func (op Op) IsValid() bool {
	switch op {
	case OpAddIfMissing, OpDeleteValue, OpReplaceValue:
		return true
	}
	return false
}

// Fix is one persisted correction to the upstream document.
type Fix struct {
	// Op is the correction operation.
	Op Op
	// Path is the fingerprint-based address of the target, in the string
	// form produced by document.Address.String().
	Path string
	// Value is the payload for add_if_missing and replace_value
	// (nil for delete_value).
	Value *document.Node
	// OldValue is the upstream value the fix replaced or deleted, recorded
	// when the fix was created. It lets the applier recognize an element
	// whose fingerprint changed because the fix itself was applied.
	OldValue *document.Node
	// Description is a human-readable note about why the fix exists.
	Description string
}

// Address parses the fix's target path.
func (f Fix) Address() (document.Address, error) {
	addr, err := document.ParseAddress(f.Path)
	if err != nil {
		return nil, fmt.Errorf("fixstore: fix %q has invalid path: %w", f.Path, err)
	}
	return addr, nil
}

// String returns a one-line summary of the fix.
func (f Fix) String() string {
	if f.Description != "" {
		return fmt.Sprintf("%s %s: %s", f.Op, f.Path, f.Description)
	}
	return fmt.Sprintf("%s %s", f.Op, f.Path)
}

// fixJSON is the wire form of a Fix; payloads stay raw so their key order
// survives a load/save round trip.
type fixJSON struct {
	Op          Op              `json:"op"`
	Path        string          `json:"path"`
	Value       json.RawMessage `json:"value,omitempty"`
	OldValue    json.RawMessage `json:"old_value,omitempty"`
	Description string          `json:"description,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (f Fix) MarshalJSON() ([]byte, error) {
	out := fixJSON{Op: f.Op, Path: f.Path, Description: f.Description}
	if f.Value != nil {
		data, err := document.MarshalNodeJSON(f.Value)
		if err != nil {
			return nil, fmt.Errorf("fixstore: encoding value for %q: %w", f.Path, err)
		}
		out.Value = data
	}
	if f.OldValue != nil {
		data, err := document.MarshalNodeJSON(f.OldValue)
		if err != nil {
			return nil, fmt.Errorf("fixstore: encoding old_value for %q: %w", f.Path, err)
		}
		out.OldValue = data
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *Fix) UnmarshalJSON(data []byte) error {
	var raw fixJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if !raw.Op.IsValid() {
		return fmt.Errorf("fixstore: unknown operation %q at path %q", raw.Op, raw.Path)
	}
	if raw.Path == "" {
		return fmt.Errorf("fixstore: fix with operation %q has empty path", raw.Op)
	}
	if _, err := document.ParseAddress(raw.Path); err != nil {
		return err
	}
	f.Op = raw.Op
	f.Path = raw.Path
	f.Description = raw.Description
	f.Value = nil
	f.OldValue = nil
	if len(raw.Value) > 0 {
		n, err := document.ParseFragment(raw.Value)
		if err != nil {
			return fmt.Errorf("fixstore: invalid value payload at %q: %w", raw.Path, err)
		}
		f.Value = n
	}
	if len(raw.OldValue) > 0 {
		n, err := document.ParseFragment(raw.OldValue)
		if err != nil {
			return fmt.Errorf("fixstore: invalid old_value payload at %q: %w", raw.Path, err)
		}
		f.OldValue = n
	}
	return nil
}

// Metadata records provenance for a fix store file.
type Metadata struct {
	// GeneratedBy names the tool that last wrote the store.
	GeneratedBy string `json:"generated_by,omitempty"`
	// GeneratedAt is an RFC 3339 timestamp of the last write.
	GeneratedAt string `json:"generated_at,omitempty"`
	// UpstreamSpec is the upstream document the store was reconciled against.
	UpstreamSpec string `json:"upstream_spec,omitempty"`
	// CorrectedSpec is the corrected output the store produced.
	CorrectedSpec string `json:"corrected_spec,omitempty"`
}

// Store is the full persisted fix set.
type Store struct {
	// Version is the store format version.
	Version string `json:"version"`
	// Description is a free-form note about the store.
	Description string `json:"description,omitempty"`
	// Metadata records provenance.
	Metadata Metadata `json:"metadata,omitzero"`
	// Operations holds the fixes in application order. Save normalizes
	// the order to lexicographic by path.
	Operations []Fix `json:"operations"`
}

// NewStore creates an empty store at the current format version.
func NewStore() *Store {
	return &Store{
		Version:     StoreVersion,
		Operations:  []Fix{},
		Description: "Hand-authored OpenAPI specification fixes maintained by specsync",
	}
}

// Add appends a fix to the store.
func (s *Store) Add(f Fix) {
	s.Operations = append(s.Operations, f)
}

// Len returns the number of fixes in the store.
func (s *Store) Len() int {
	return len(s.Operations)
}

// Paths returns the set of target paths covered by the store.
func (s *Store) Paths() map[string]bool {
	paths := make(map[string]bool, len(s.Operations))
	for _, f := range s.Operations {
		paths[f.Path] = true
	}
	return paths
}

// sortOperations orders fixes lexicographically by path (then by op for
// multiple fixes at one path) so the persisted file is stable.
func (s *Store) sortOperations() {
	sort.SliceStable(s.Operations, func(i, j int) bool {
		if s.Operations[i].Path != s.Operations[j].Path {
			return s.Operations[i].Path < s.Operations[j].Path
		}
		return s.Operations[i].Op < s.Operations[j].Op
	})
}

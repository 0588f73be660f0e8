package fixstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/erraggy/specsync/internal/fileutil"
	"github.com/erraggy/specsync/specerrors"
)

// Load reads a fix store from path. A missing file is not an error and
// yields an empty store; a present-but-malformed file is a
// *specerrors.FixStoreError.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return NewStore(), nil
	}
	if err != nil {
		return nil, &specerrors.FixStoreError{Path: path, Message: "failed to read", Cause: err}
	}
	return Parse(data, path)
}

// Parse decodes a fix store from raw bytes. The path parameter is used
// only for error reporting.
func Parse(data []byte, path string) (*Store, error) {
	var store Store
	if err := json.Unmarshal(data, &store); err != nil {
		return nil, &specerrors.FixStoreError{Path: path, Message: "malformed fix store", Cause: err}
	}
	if store.Version == "" {
		return nil, &specerrors.FixStoreError{Path: path, Message: "missing format version"}
	}
	if store.Operations == nil {
		store.Operations = []Fix{}
	}
	return &store, nil
}

// Marshal renders the store in its persisted form: fixes sorted
// lexicographically by path, 2-space indented JSON, trailing newline.
// The sort applies to the rendered bytes only; the receiver's operation
// order, which is the order fixes apply in, is left untouched.
func (s *Store) Marshal() ([]byte, error) {
	out := *s
	out.Operations = append([]Fix(nil), s.Operations...)
	out.sortOperations()
	data, err := json.MarshalIndent(&out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("fixstore: encoding store: %w", err)
	}
	return append(data, '\n'), nil
}

// Save writes the store to path atomically (temp file then rename).
// The write stamps Metadata.GeneratedAt and Metadata.GeneratedBy. The
// persisted file orders fixes by path, so a store that round-trips
// through disk applies in that order rather than insertion order.
func Save(s *Store, path string) error {
	if s.Version == "" {
		s.Version = StoreVersion
	}
	if s.Metadata.GeneratedBy == "" {
		s.Metadata.GeneratedBy = "specsync"
	}
	s.Metadata.GeneratedAt = time.Now().UTC().Format(time.RFC3339)

	data, err := s.Marshal()
	if err != nil {
		return &specerrors.WriteError{Path: path, Message: "failed to encode fix store", Cause: err}
	}
	if err := fileutil.WriteFileAtomic(path, data, fileutil.ReadableByAll); err != nil {
		return &specerrors.WriteError{Path: path, Message: "failed to write fix store", Cause: err}
	}
	return nil
}

// Package fixstore persists the set of accepted spec fixes between
// reconciliation runs.
//
// A fix is one correction: an operation (add_if_missing, delete_value, or
// replace_value), a fingerprint-based target path, and a payload. Fixes are
// stored in a single JSON file with one record per fix, serialized in
// lexicographic path order so the file itself produces low-noise
// version-control diffs.
//
// Loading a missing file yields an empty store: a brand new project simply
// has no fixes yet. Loading a malformed file is an error, since silently
// treating a corrupt store as empty would discard prior corrections.
package fixstore

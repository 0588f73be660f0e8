package fixstore

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/specsync/document"
	"github.com/erraggy/specsync/specerrors"
)

func fragment(t *testing.T, src string) *document.Node {
	t.Helper()
	n, err := document.ParseFragment([]byte(src))
	require.NoError(t, err)
	return n
}

func TestLoadMissingFileIsEmptyStore(t *testing.T) {
	store, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	assert.Equal(t, StoreVersion, store.Version)
	assert.Equal(t, 0, store.Len())
}

func TestLoadMalformedStoreIsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spec-fixes.json")
	require.NoError(t, os.WriteFile(path, []byte(`{broken`), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, specerrors.ErrFixStore))
	var serr *specerrors.FixStoreError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, path, serr.Path)
}

func TestParseRequiresVersion(t *testing.T) {
	_, err := Parse([]byte(`{"operations":[]}`), "test")
	require.Error(t, err)
	assert.True(t, errors.Is(err, specerrors.ErrFixStore))
}

func TestParseNormalizesNilOperations(t *testing.T) {
	store, err := Parse([]byte(`{"version":"1"}`), "")
	require.NoError(t, err)
	assert.NotNil(t, store.Operations)
	assert.Equal(t, 0, store.Len())
}

func TestFixUnmarshalValidation(t *testing.T) {
	var fix Fix
	err := json.Unmarshal([]byte(`{"op":"make_better","path":"a"}`), &fix)
	assert.Error(t, err, "unknown op must be rejected")

	err = json.Unmarshal([]byte(`{"op":"delete_value"}`), &fix)
	assert.Error(t, err, "missing path must be rejected")

	err = json.Unmarshal([]byte(`{"op":"replace_value","path":"a.b","value":{"k":1},"old_value":2}`), &fix)
	require.NoError(t, err)
	assert.Equal(t, OpReplaceValue, fix.Op)
	assert.Equal(t, document.KindObject, fix.Value.Kind)
	assert.Equal(t, 2, fix.OldValue.Value)
}

func TestSaveLoadRoundTripPreservesPayloadKeyOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spec-fixes.json")
	store := NewStore()
	store.Add(Fix{
		Op:          OpAddIfMissing,
		Path:        "components.schemas.Error",
		Value:       fragment(t, `{"type":"object","required":["code"],"properties":{"code":{"type":"integer"}}}`),
		Description: "vendor never documented errors",
	})

	require.NoError(t, Save(store, path))
	reloaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 1, reloaded.Len())

	got := reloaded.Operations[0]
	assert.Equal(t, OpAddIfMissing, got.Op)
	assert.Equal(t, "vendor never documented errors", got.Description)
	assert.Equal(t, []string{"type", "required", "properties"}, got.Value.Keys())

	// Save stamps provenance.
	assert.NotEmpty(t, reloaded.Metadata.GeneratedAt)
	assert.NotEmpty(t, reloaded.Metadata.GeneratedBy)
}

func TestSaveSortsOperationsByPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spec-fixes.json")
	store := NewStore()
	store.Add(Fix{Op: OpDeleteValue, Path: "zz.last", OldValue: fragment(t, `1`)})
	store.Add(Fix{Op: OpReplaceValue, Path: "aa.first", Value: fragment(t, `1`), OldValue: fragment(t, `0`)})
	store.Add(Fix{Op: OpAddIfMissing, Path: "mm.middle", Value: fragment(t, `true`)})

	require.NoError(t, Save(store, path))
	reloaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 3, reloaded.Len())
	assert.Equal(t, "aa.first", reloaded.Operations[0].Path)
	assert.Equal(t, "mm.middle", reloaded.Operations[1].Path)
	assert.Equal(t, "zz.last", reloaded.Operations[2].Path)
}

func TestMarshalLeavesOperationOrderUntouched(t *testing.T) {
	store := NewStore()
	store.Add(Fix{Op: OpDeleteValue, Path: "zz.last", OldValue: fragment(t, `1`)})
	store.Add(Fix{Op: OpReplaceValue, Path: "aa.first", Value: fragment(t, `1`), OldValue: fragment(t, `0`)})

	data, err := store.Marshal()
	require.NoError(t, err)
	// Rendered bytes are path-sorted, the in-memory application order is not.
	assert.Less(t, strings.Index(string(data), "aa.first"), strings.Index(string(data), "zz.last"))
	require.Equal(t, 2, store.Len())
	assert.Equal(t, "zz.last", store.Operations[0].Path)
	assert.Equal(t, "aa.first", store.Operations[1].Path)
}

func TestMarshalIsByteStable(t *testing.T) {
	store := NewStore()
	store.Add(Fix{Op: OpReplaceValue, Path: "b", Value: fragment(t, `2`), OldValue: fragment(t, `1`)})
	store.Add(Fix{Op: OpDeleteValue, Path: "a", OldValue: fragment(t, `0`)})
	store.Metadata.GeneratedAt = "2026-01-02T03:04:05Z"
	store.Metadata.GeneratedBy = "test"

	d1, err := store.Marshal()
	require.NoError(t, err)
	d2, err := store.Marshal()
	require.NoError(t, err)
	require.NotEmpty(t, d1)
	assert.Equal(t, string(d1), string(d2))
	// 2-space indented with a trailing newline, for clean VCS diffs.
	assert.Contains(t, string(d1), "\n  \"version\"")
	assert.Equal(t, byte('\n'), d1[len(d1)-1])
}

func TestOpIsValid(t *testing.T) {
	assert.True(t, OpAddIfMissing.IsValid())
	assert.True(t, OpDeleteValue.IsValid())
	assert.True(t, OpReplaceValue.IsValid())
	assert.False(t, Op("set_value").IsValid())
}

func TestFixAddress(t *testing.T) {
	fix := Fix{Op: OpDeleteValue, Path: "a[fp:1234]"}
	addr, err := fix.Address()
	require.NoError(t, err)
	require.Len(t, addr, 2)
	assert.True(t, addr[1].IsElem())

	bad := Fix{Op: OpDeleteValue, Path: "a[fp:12"}
	_, err = bad.Address()
	assert.Error(t, err)
}

func TestStorePaths(t *testing.T) {
	store := NewStore()
	store.Add(Fix{Op: OpDeleteValue, Path: "x", OldValue: fragment(t, `1`)})
	store.Add(Fix{Op: OpReplaceValue, Path: "y", Value: fragment(t, `2`)})
	paths := store.Paths()
	assert.True(t, paths["x"])
	assert.True(t, paths["y"])
	assert.False(t, paths["z"])
}

package differ

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/specsync/document"
)

func mustParse(t *testing.T, src string) *document.Document {
	t.Helper()
	doc, err := document.Parse([]byte(src))
	require.NoError(t, err)
	return doc
}

func diffDocs(t *testing.T, oldSrc, newSrc string) []Change {
	t.Helper()
	changes, err := New().Diff(mustParse(t, oldSrc), mustParse(t, newSrc))
	require.NoError(t, err)
	return changes
}

func TestDiffIdenticalDocuments(t *testing.T) {
	src := `{"info":{"title":"T"},"paths":{"/a":{"get":{}}}}`
	assert.Empty(t, diffDocs(t, src, src))
}

func TestDiffAddedKey(t *testing.T) {
	changes := diffDocs(t,
		`{"paths":{"/a":{}}}`,
		`{"paths":{"/a":{},"/b":{"get":{}}}}`)
	require.Len(t, changes, 1)
	assert.Equal(t, ChangeTypeAdded, changes[0].Type)
	assert.Equal(t, "paths./b", changes[0].Path())
	assert.Nil(t, changes[0].OldValue)
	require.NotNil(t, changes[0].NewValue)
}

func TestDiffRemovedKey(t *testing.T) {
	changes := diffDocs(t, `{"a":1,"b":2}`, `{"a":1}`)
	require.Len(t, changes, 1)
	assert.Equal(t, ChangeTypeRemoved, changes[0].Type)
	assert.Equal(t, "b", changes[0].Path())
	assert.Nil(t, changes[0].NewValue)
}

func TestDiffModifiedScalar(t *testing.T) {
	changes := diffDocs(t, `{"info":{"version":"1.0"}}`, `{"info":{"version":"2.0"}}`)
	require.Len(t, changes, 1)
	assert.Equal(t, ChangeTypeModified, changes[0].Type)
	assert.Equal(t, "info.version", changes[0].Path())
	assert.Equal(t, "1.0", changes[0].OldValue.Value)
	assert.Equal(t, "2.0", changes[0].NewValue.Value)
}

func TestDiffKindChangeIsModification(t *testing.T) {
	changes := diffDocs(t, `{"v":[1]}`, `{"v":{"a":1}}`)
	require.Len(t, changes, 1)
	assert.Equal(t, ChangeTypeModified, changes[0].Type)
	assert.Contains(t, changes[0].Message, "array became object")
}

func TestDiffArrayReorderIsInvisible(t *testing.T) {
	changes := diffDocs(t,
		`{"tags":["x","y"],"servers":[{"url":"a"},{"url":"b"}]}`,
		`{"tags":["y","x"],"servers":[{"url":"b"},{"url":"a"}]}`)
	assert.Empty(t, changes)
}

func TestDiffNestedArrayReorderIsInvisible(t *testing.T) {
	// The outer elements pair up as a field modification, and the nested
	// enum arrays then match as equal element sets. Array order is
	// non-semantic at every depth of the walk.
	changes := diffDocs(t,
		`{"params":[{"name":"p","enum":["x","y"]}]}`,
		`{"params":[{"name":"p","enum":["y","x"]}]}`)
	assert.Empty(t, changes)
}

func TestDiffReorderedArrayOnlyElementIsInvisible(t *testing.T) {
	// The element has no other fields the pairing heuristic could lean on;
	// the order-insensitive fingerprint still identifies it.
	changes := diffDocs(t,
		`{"params":[{"enum":["x","y"]}]}`,
		`{"params":[{"enum":["y","x"]}]}`)
	assert.Empty(t, changes)
}

func TestDiffReorderedArrayOfArraysIsInvisible(t *testing.T) {
	changes := diffDocs(t,
		`{"m":[["x","y"]]}`,
		`{"m":[["y","x"]]}`)
	assert.Empty(t, changes)
}

func TestDiffNestedArrayContentChangeStillReported(t *testing.T) {
	changes := diffDocs(t,
		`{"m":[["x","y"]]}`,
		`{"m":[["x","z"]]}`)
	require.Len(t, changes, 2)
	types := []ChangeType{changes[0].Type, changes[1].Type}
	assert.Contains(t, types, ChangeTypeAdded)
	assert.Contains(t, types, ChangeTypeRemoved)
}

func TestDiffPairsElementWithReorderedArrayField(t *testing.T) {
	// The enum flip alone must not stop the pairing heuristic from seeing
	// the name edit as a field modification.
	changes := diffDocs(t,
		`{"params":[{"name":"a","enum":["x","y"]}]}`,
		`{"params":[{"name":"b","enum":["y","x"]}]}`)
	require.Len(t, changes, 1)
	c := changes[0]
	assert.Equal(t, ChangeTypeModified, c.Type)

	oldNode, err := document.ParseFragment([]byte(`{"name":"a","enum":["x","y"]}`))
	require.NoError(t, err)
	wantAddr := document.Address{
		document.Key("params"),
		document.Elem(document.Fingerprint(oldNode)),
		document.Key("name"),
	}
	assert.Equal(t, wantAddr.String(), c.Path())
	assert.Equal(t, "a", c.OldValue.Value)
	assert.Equal(t, "b", c.NewValue.Value)
}

func TestDiffArrayElementAdded(t *testing.T) {
	changes := diffDocs(t,
		`{"tags":[{"name":"a","description":"A tag"}]}`,
		`{"tags":[{"name":"zz","summary":"unrelated"},{"name":"a","description":"A tag"}]}`)
	require.Len(t, changes, 1)
	assert.Equal(t, ChangeTypeAdded, changes[0].Type)

	added, err := document.ParseFragment([]byte(`{"name":"zz","summary":"unrelated"}`))
	require.NoError(t, err)
	wantAddr := document.Address{
		document.Key("tags"),
		document.Elem(document.Fingerprint(added)),
	}
	assert.Equal(t, wantAddr.String(), changes[0].Path())
}

func TestDiffPairsModifiedArrayElements(t *testing.T) {
	oldElem := `{"name":"id","in":"path","required":true,"schema":{"type":"string"}}`
	newElem := `{"name":"id","in":"path","required":false,"schema":{"type":"string"}}`
	changes := diffDocs(t,
		`{"parameters":[`+oldElem+`,{"name":"q","in":"query"}]}`,
		`{"parameters":[{"name":"q","in":"query"},`+newElem+`]}`)

	// One field changed inside one element; the other element matched by
	// fingerprint despite the reorder.
	require.Len(t, changes, 1)
	c := changes[0]
	assert.Equal(t, ChangeTypeModified, c.Type)

	oldNode, err := document.ParseFragment([]byte(oldElem))
	require.NoError(t, err)
	wantAddr := document.Address{
		document.Key("parameters"),
		document.Elem(document.Fingerprint(oldNode)),
		document.Key("required"),
	}
	assert.Equal(t, wantAddr.String(), c.Path())
	assert.Equal(t, true, c.OldValue.Value)
	assert.Equal(t, false, c.NewValue.Value)
}

func TestDiffUnrelatedElementsAreNotPaired(t *testing.T) {
	changes := diffDocs(t,
		`{"servers":[{"url":"http://a","description":"primary"}]}`,
		`{"servers":[{"name":"b","region":"eu"}]}`)
	require.Len(t, changes, 2)
	types := []ChangeType{changes[0].Type, changes[1].Type}
	assert.Contains(t, types, ChangeTypeAdded)
	assert.Contains(t, types, ChangeTypeRemoved)
}

func TestDiffKeyRenameIsRemovePlusAdd(t *testing.T) {
	changes := diffDocs(t, `{"oldName":1}`, `{"newName":1}`)
	require.Len(t, changes, 2)
	// Deterministic ordering is by path: newName before oldName.
	assert.Equal(t, ChangeTypeAdded, changes[0].Type)
	assert.Equal(t, "newName", changes[0].Path())
	assert.Equal(t, ChangeTypeRemoved, changes[1].Type)
	assert.Equal(t, "oldName", changes[1].Path())
}

func TestDiffDeterministicOrdering(t *testing.T) {
	oldSrc := `{"b":{"z":1,"a":2},"a":[1,2],"c":"s"}`
	newSrc := `{"b":{"z":9,"y":3},"a":[2,3],"c":5}`
	first := diffDocs(t, oldSrc, newSrc)
	for i := 0; i < 3; i++ {
		again := diffDocs(t, oldSrc, newSrc)
		require.Equal(t, len(first), len(again))
		for j := range first {
			assert.Equal(t, first[j].Path(), again[j].Path())
			assert.Equal(t, first[j].Type, again[j].Type)
		}
	}
}

func TestDiffNilDocuments(t *testing.T) {
	_, err := New().Diff(nil, mustParse(t, `{}`))
	assert.Error(t, err)
	_, err = New().Diff(mustParse(t, `{}`), nil)
	assert.Error(t, err)
}

func TestDiffWithOptionsValidation(t *testing.T) {
	_, err := DiffWithOptions(WithSourceDocument(mustParse(t, `{}`)))
	assert.Error(t, err)

	_, err = DiffWithOptions(
		WithSourceDocument(mustParse(t, `{}`)),
		WithSourceFilePath("x.json"),
		WithTargetDocument(mustParse(t, `{}`)),
	)
	assert.Error(t, err)

	changes, err := DiffWithOptions(
		WithSourceDocument(mustParse(t, `{"a":1}`)),
		WithTargetDocument(mustParse(t, `{"a":1}`)),
	)
	require.NoError(t, err)
	assert.Empty(t, changes)
}

func TestChangeString(t *testing.T) {
	changes := diffDocs(t, `{"a":1}`, `{"a":2,"b":3}`)
	require.Len(t, changes, 2)
	assert.Contains(t, changes[0].String(), "~ a [modified]")
	assert.Contains(t, changes[1].String(), "+ b [added]")
}

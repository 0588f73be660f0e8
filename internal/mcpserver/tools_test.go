package mcpserver

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const oldSpec = `{
	"openapi": "3.0.1",
	"info": {"title": "Test API", "version": "1.0"},
	"paths": {
		"/pets": {"get": {"operationId": "listPets"}}
	}
}`

const newSpec = `{
	"openapi": "3.0.1",
	"info": {"title": "Test API", "version": "2.0"},
	"paths": {
		"/pets": {"get": {"operationId": "listPets"}},
		"/pets/{petId}": {"get": {"operationId": "getPet"}}
	}
}`

const fixesContent = `{
	"version": "1",
	"operations": [
		{
			"op": "replace_value",
			"path": "info.title",
			"value": "Corrected API",
			"old_value": "Test API"
		}
	]
}`

func TestHandleDiff(t *testing.T) {
	result, output, err := handleDiff(context.Background(), nil, diffInput{
		Old: documentInput{Content: oldSpec},
		New: documentInput{Content: newSpec},
	})
	require.NoError(t, err)
	require.Nil(t, result)

	assert.Equal(t, 2, output.TotalChanges)
	assert.Equal(t, 1, output.AddedCount)
	assert.Equal(t, 1, output.ModifiedCount)
	assert.Contains(t, output.Summary, "2 changes found")

	paths := make([]string, 0, len(output.Changes))
	for _, c := range output.Changes {
		paths = append(paths, c.Path)
	}
	assert.Contains(t, paths, "info.version")
	assert.Contains(t, paths, "paths./pets/{petId}")
}

func TestHandleDiffNoChanges(t *testing.T) {
	result, output, err := handleDiff(context.Background(), nil, diffInput{
		Old: documentInput{Content: oldSpec},
		New: documentInput{Content: oldSpec},
	})
	require.NoError(t, err)
	require.Nil(t, result)
	assert.Equal(t, 0, output.TotalChanges)
	assert.Equal(t, "No changes detected.", output.Summary)
}

func TestHandleDiffBadInput(t *testing.T) {
	result, _, err := handleDiff(context.Background(), nil, diffInput{
		Old: documentInput{Content: "not json"},
		New: documentInput{Content: oldSpec},
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.IsError)
}

func TestHandleApply(t *testing.T) {
	result, output, err := handleApply(context.Background(), nil, applyInput{
		Document: documentInput{Content: oldSpec},
		Fixes:    fixesInput{Content: fixesContent},
	})
	require.NoError(t, err)
	require.Nil(t, result)
	assert.Equal(t, 1, output.AppliedCount)
	assert.Equal(t, 0, output.UnresolvedCount)
	assert.Contains(t, output.Document, `"Corrected API"`)
	assert.Empty(t, output.OutputPath)
}

func TestHandleApplyToFile(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "corrected.json")
	result, output, err := handleApply(context.Background(), nil, applyInput{
		Document: documentInput{Content: oldSpec},
		Fixes:    fixesInput{Content: fixesContent},
		Output:   outPath,
	})
	require.NoError(t, err)
	require.Nil(t, result)
	assert.Empty(t, output.Document)
	assert.Equal(t, outPath, output.OutputPath)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"Corrected API"`)
}

func TestHandleReconcile(t *testing.T) {
	result, output, err := handleReconcile(context.Background(), nil, reconcileInput{
		Old:    documentInput{Content: oldSpec},
		New:    documentInput{Content: newSpec},
		Fixes:  fixesInput{Content: fixesContent},
		DryRun: true,
	})
	require.NoError(t, err)
	require.Nil(t, result)
	assert.Equal(t, 1, output.RetainedCount)
	assert.Equal(t, 0, output.ObsoleteCount)
	assert.Equal(t, 2, output.NewCandidateCount)
	assert.Contains(t, output.Report, "1 retained")
}

func TestDocumentInputValidation(t *testing.T) {
	_, err := documentInput{}.resolve()
	assert.Error(t, err)

	_, err = documentInput{File: "x.json", Content: "{}"}.resolve()
	assert.Error(t, err)
}

func TestFixesInputMissingFileIsEmptyStore(t *testing.T) {
	store, err := fixesInput{File: filepath.Join(t.TempDir(), "absent.json")}.resolve()
	require.NoError(t, err)
	assert.Equal(t, 0, store.Len())
}

func TestSanitizeError(t *testing.T) {
	err := os.ErrNotExist
	assert.NotEmpty(t, sanitizeError(err))
	assert.Empty(t, sanitizeError(nil))
}

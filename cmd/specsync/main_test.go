package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/specsync/fixstore"
)

func TestSuggestCommand(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		// Typos within edit distance 2
		{"reconile", "reconcile"},
		{"reconcle", "reconcile"},
		{"dif", "diff"},
		{"aply", "apply"},
		{"updat", "update"},
		{"extrat", "extract"},
		{"analize", "analyze"},
		{"mpc", "mcp"},
		{"versio", "version"},
		{"hep", "help"},

		// Too far - no suggestion (distance > 2)
		{"xyz", ""},
		{"foobar", ""},
		{"reconciliation", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := suggestCommand(tt.input)
			if got != tt.expected {
				t.Errorf("suggestCommand(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestEditDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"diff", "diff", 0},
		{"dif", "diff", 1},
		{"mpc", "mcp", 2},
		{"abc", "xyz", 3},
	}
	for _, tt := range tests {
		if got := editDistance(tt.a, tt.b); got != tt.want {
			t.Errorf("editDistance(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestHandleUpdateAndApplyRoundTrip(t *testing.T) {
	dir := t.TempDir()
	upstream := writeTempFile(t, dir, "upstream.json",
		`{"info":{"title":"Wrong","version":"1.0"},"paths":{}}`)
	corrected := writeTempFile(t, dir, "corrected.json",
		`{"info":{"title":"Right","version":"1.0"},"paths":{}}`)
	fixesPath := filepath.Join(dir, "spec-fixes.json")

	err := handleUpdate([]string{"-quiet", "-fixes-output", fixesPath, upstream, corrected})
	require.NoError(t, err)

	store, err := fixstore.Load(fixesPath)
	require.NoError(t, err)
	require.Equal(t, 1, store.Len())
	assert.Equal(t, fixstore.OpReplaceValue, store.Operations[0].Op)
	assert.Equal(t, "info.title", store.Operations[0].Path)
	assert.Equal(t, upstream, store.Metadata.UpstreamSpec)

	outPath := filepath.Join(dir, "out.json")
	err = handleApply([]string{"-quiet", "-fixes", fixesPath, "-output", outPath, upstream})
	require.NoError(t, err)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"Right"`)
}

func TestHandleUpdateDryRunWritesNothing(t *testing.T) {
	dir := t.TempDir()
	upstream := writeTempFile(t, dir, "upstream.json", `{"a":1}`)
	corrected := writeTempFile(t, dir, "corrected.json", `{"a":2}`)
	fixesPath := filepath.Join(dir, "spec-fixes.json")

	err := handleUpdate([]string{"-quiet", "-dry-run", "-fixes-output", fixesPath, upstream, corrected})
	require.NoError(t, err)
	_, err = os.Stat(fixesPath)
	assert.True(t, os.IsNotExist(err))
}

func TestHandleReconcileCLI(t *testing.T) {
	dir := t.TempDir()
	oldPath := writeTempFile(t, dir, "old.json", `{"info":{"title":"T","extra":"x"}}`)
	newPath := writeTempFile(t, dir, "new.json", `{"info":{"title":"T"}}`)
	fixesPath := filepath.Join(dir, "spec-fixes.json")

	store := fixstore.NewStore()
	require.NoError(t, fixstore.Save(store, fixesPath))

	err := handleReconcile([]string{"-quiet", "-dry-run", "-fixes", fixesPath, oldPath, newPath})
	assert.NoError(t, err)

	err = handleReconcile([]string{oldPath})
	assert.Error(t, err)
}

func TestHandleDiffArgValidation(t *testing.T) {
	err := handleDiff([]string{"only-one.json"})
	assert.Error(t, err)
}

func TestHandleExtract(t *testing.T) {
	dir := t.TempDir()
	spec := writeTempFile(t, dir, "api.json",
		`{"paths":{"/a":{"get":{"operationId":"getA"}}}}`)
	outPath := filepath.Join(dir, "routes.md")

	err := handleExtract([]string{"-format", "markdown", "-output", outPath, spec})
	require.NoError(t, err)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# API Routes")
	assert.Contains(t, string(data), "`/a`")

	err = handleExtract([]string{"-format", "bogus", spec})
	assert.Error(t, err)
}

func TestHandleAnalyze(t *testing.T) {
	dir := t.TempDir()
	spec := writeTempFile(t, dir, "api.json",
		`{"openapi":"3.0.1","info":{"title":"T","version":"1"},`+
			`"servers":[{"url":"http://localhost:8087"}],`+
			`"paths":{"/a":{"get":{"responses":{"200":{"description":"OK"}}}}},`+
			`"components":{"securitySchemes":{"bearer":{"type":"http","scheme":"bearer"}},`+
			`"schemas":{"Item":{"type":"object"}}}}`)
	outPath := filepath.Join(dir, "analysis.json")

	err := handleAnalyze([]string{"-format", "json", "-output", outPath, spec})
	require.NoError(t, err)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"security_schemes"`)
	assert.Contains(t, string(data), `"http (bearer)"`)
	assert.Contains(t, string(data), `"http://localhost:8087"`)
	assert.Contains(t, string(data), `"Item"`)

	err = handleAnalyze([]string{"-format", "bogus", spec})
	assert.Error(t, err)

	err = handleAnalyze([]string{})
	assert.Error(t, err)
}

package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/erraggy/specsync/applier"
	"github.com/erraggy/specsync/internal/fileutil"
)

type applyInput struct {
	Document documentInput `json:"document"         jsonschema:"The OpenAPI document to correct"`
	Fixes    fixesInput    `json:"fixes"            jsonschema:"The fix store to apply"`
	Output   string        `json:"output,omitempty" jsonschema:"File path to write the corrected document to instead of returning it inline"`
}

type applyOutput struct {
	AppliedCount    int      `json:"applied_count"`
	SkippedCount    int      `json:"skipped_count"`
	UnresolvedCount int      `json:"unresolved_count"`
	Unresolved      []string `json:"unresolved,omitempty"`
	Document        string   `json:"document,omitempty"`
	OutputPath      string   `json:"output_path,omitempty"`
	Summary         string   `json:"summary"`
}

func handleApply(_ context.Context, _ *mcp.CallToolRequest, input applyInput) (*mcp.CallToolResult, applyOutput, error) {
	doc, err := input.Document.resolve()
	if err != nil {
		return errResult(err), applyOutput{}, nil
	}
	store, err := input.Fixes.resolve()
	if err != nil {
		return errResult(err), applyOutput{}, nil
	}

	result, err := applier.New().Apply(doc, store)
	if err != nil {
		return errResult(err), applyOutput{}, nil
	}

	unresolved := result.Unresolved()
	output := applyOutput{
		AppliedCount:    len(result.Applied()),
		SkippedCount:    len(result.Skipped()),
		UnresolvedCount: len(unresolved),
		Unresolved:      makeSlice[string](len(unresolved)),
		Summary:         result.Summary(),
	}
	for _, u := range unresolved {
		output.Unresolved = append(output.Unresolved, u.String())
	}

	data, err := result.Document.MarshalJSONIndent("", "  ")
	if err != nil {
		return errResult(err), applyOutput{}, nil
	}
	data = append(data, '\n')

	if input.Output != "" {
		if err := fileutil.WriteFileAtomic(input.Output, data, fileutil.ReadableByAll); err != nil {
			return errResult(err), applyOutput{}, nil
		}
		output.OutputPath = input.Output
		return nil, output, nil
	}
	output.Document = string(data)
	return nil, output, nil
}

package mcpserver

import (
	"context"
	"strconv"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/erraggy/specsync/differ"
)

type diffInput struct {
	Old documentInput `json:"old" jsonschema:"The previous upstream document"`
	New documentInput `json:"new" jsonschema:"The updated upstream document to compare against"`
}

type diffChange struct {
	Type    string `json:"type"`
	Path    string `json:"path"`
	Message string `json:"message"`
}

type diffOutput struct {
	TotalChanges  int          `json:"total_changes"`
	AddedCount    int          `json:"added_count"`
	RemovedCount  int          `json:"removed_count"`
	ModifiedCount int          `json:"modified_count"`
	Changes       []diffChange `json:"changes,omitempty"`
	Summary       string       `json:"summary"`
}

func handleDiff(_ context.Context, _ *mcp.CallToolRequest, input diffInput) (*mcp.CallToolResult, diffOutput, error) {
	oldDoc, err := input.Old.resolve()
	if err != nil {
		return errResult(err), diffOutput{}, nil
	}
	newDoc, err := input.New.resolve()
	if err != nil {
		return errResult(err), diffOutput{}, nil
	}

	changes, err := differ.New().Diff(oldDoc, newDoc)
	if err != nil {
		return errResult(err), diffOutput{}, nil
	}

	output := diffOutput{
		TotalChanges: len(changes),
		Changes:      makeSlice[diffChange](len(changes)),
	}
	for _, c := range changes {
		output.Changes = append(output.Changes, diffChange{
			Type:    string(c.Type),
			Path:    c.Path(),
			Message: c.Message,
		})
		switch c.Type {
		case differ.ChangeTypeAdded:
			output.AddedCount++
		case differ.ChangeTypeRemoved:
			output.RemovedCount++
		default:
			output.ModifiedCount++
		}
	}
	output.Summary = buildDiffSummary(output)
	return nil, output, nil
}

func buildDiffSummary(output diffOutput) string {
	if output.TotalChanges == 0 {
		return "No changes detected."
	}
	return formatCount(output.TotalChanges, "change") + " found (" +
		strconv.Itoa(output.AddedCount) + " added, " +
		strconv.Itoa(output.ModifiedCount) + " modified, " +
		strconv.Itoa(output.RemovedCount) + " removed)."
}

func formatCount(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return strconv.Itoa(n) + " " + noun + "s"
}

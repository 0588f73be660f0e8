package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/erraggy/specsync/reconciler"
)

type reconcileInput struct {
	Old             documentInput `json:"old"                        jsonschema:"The previous upstream document the fixes were authored against"`
	New             documentInput `json:"new"                        jsonschema:"The updated upstream document"`
	Fixes           fixesInput    `json:"fixes,omitempty"            jsonschema:"The fix store to reconcile; omit for an empty store"`
	CorrectedOutput string        `json:"corrected_output,omitempty" jsonschema:"File path to write the corrected document to"`
	FixesOutput     string        `json:"fixes_output,omitempty"     jsonschema:"File path to write the pruned fix store to"`
	DryRun          bool          `json:"dry_run,omitempty"          jsonschema:"Report what would happen without writing any files"`
}

type reconcileOutput struct {
	RetainedCount     int      `json:"retained_count"`
	ObsoleteCount     int      `json:"obsolete_count"`
	UnresolvedCount   int      `json:"unresolved_count"`
	NewCandidateCount int      `json:"new_candidate_count"`
	Obsolete          []string `json:"obsolete,omitempty"`
	Unresolved        []string `json:"unresolved,omitempty"`
	NewCandidates     []string `json:"new_candidates,omitempty"`
	Report            string   `json:"report"`
}

func handleReconcile(_ context.Context, _ *mcp.CallToolRequest, input reconcileInput) (*mcp.CallToolResult, reconcileOutput, error) {
	oldDoc, err := input.Old.resolve()
	if err != nil {
		return errResult(err), reconcileOutput{}, nil
	}
	newDoc, err := input.New.resolve()
	if err != nil {
		return errResult(err), reconcileOutput{}, nil
	}

	opts := []reconciler.Option{
		reconciler.WithOldDocument(oldDoc),
		reconciler.WithNewDocument(newDoc),
		reconciler.WithDryRun(input.DryRun),
	}
	if input.Fixes.File != "" || input.Fixes.Content != "" {
		store, err := input.Fixes.resolve()
		if err != nil {
			return errResult(err), reconcileOutput{}, nil
		}
		opts = append(opts, reconciler.WithFixStore(store))
	}
	if input.CorrectedOutput != "" {
		opts = append(opts, reconciler.WithCorrectedOutputPath(input.CorrectedOutput))
	}
	if input.FixesOutput != "" {
		opts = append(opts, reconciler.WithFixStoreOutputPath(input.FixesOutput))
	}

	result, err := reconciler.ReconcileWithOptions(opts...)
	if err != nil {
		return errResult(err), reconcileOutput{}, nil
	}

	summary := result.Report.Summarize()
	output := reconcileOutput{
		RetainedCount:     len(summary.Retained),
		ObsoleteCount:     len(summary.Obsolete),
		UnresolvedCount:   len(summary.Unresolved),
		NewCandidateCount: len(summary.NewCandidates),
		Obsolete:          summary.Obsolete,
		Unresolved:        summary.Unresolved,
		NewCandidates:     summary.NewCandidates,
		Report:            result.Report.String(),
	}
	return nil, output, nil
}

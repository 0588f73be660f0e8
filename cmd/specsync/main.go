package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"go.yaml.in/yaml/v4"

	"github.com/erraggy/specsync"
	"github.com/erraggy/specsync/applier"
	"github.com/erraggy/specsync/differ"
	"github.com/erraggy/specsync/document"
	"github.com/erraggy/specsync/fixstore"
	"github.com/erraggy/specsync/internal/cliutil"
	"github.com/erraggy/specsync/internal/fileutil"
	"github.com/erraggy/specsync/internal/mcpserver"
	"github.com/erraggy/specsync/reconciler"
	"github.com/erraggy/specsync/routes"
)

// errNeedsReview marks a run that completed but left items needing human
// attention (unresolved fixes). It maps to the processing exit code.
var errNeedsReview = errors.New("needs review")

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(cliutil.ExitError)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "version", "-v", "--version":
		fmt.Printf("specsync v%s\n", specsync.Version())
		return
	case "help", "-h", "--help":
		printUsage()
		return
	case "reconcile":
		err = handleReconcile(args)
	case "diff":
		err = handleDiff(args)
	case "apply":
		err = handleApply(args)
	case "update":
		err = handleUpdate(args)
	case "extract":
		err = handleExtract(args)
	case "analyze":
		err = handleAnalyze(args)
	case "mcp":
		err = handleMCP(args)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		if suggestion := suggestCommand(command); suggestion != "" {
			fmt.Fprintf(os.Stderr, "Did you mean: %s?\n", suggestion)
		}
		fmt.Fprintln(os.Stderr)
		printUsage()
		os.Exit(cliutil.ExitError)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, errNeedsReview) {
			os.Exit(cliutil.ExitProcessing)
		}
		os.Exit(cliutil.ExitCodeFor(err))
	}
}

// commonFlags are shared by every subcommand.
type commonFlags struct {
	quiet bool
	debug bool
}

func addCommonFlags(fs *flag.FlagSet, flags *commonFlags) {
	fs.BoolVar(&flags.quiet, "quiet", false, "suppress informational output")
	fs.BoolVar(&flags.quiet, "q", false, "shorthand for -quiet")
	fs.BoolVar(&flags.debug, "debug", false, "enable debug logging to stderr")
	fs.BoolVar(&flags.debug, "d", false, "shorthand for -debug")
}

// buildLogger maps the quiet/debug flags to a structured logger on stderr.
func buildLogger(flags commonFlags) document.Logger {
	level := slog.LevelWarn
	switch {
	case flags.debug:
		level = slog.LevelDebug
	case flags.quiet:
		level = slog.LevelError
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return document.NewSlogAdapter(slog.New(handler))
}

// reconcileFlags contains flags for the reconcile command
type reconcileFlags struct {
	common      commonFlags
	fixesPath   string
	outputPath  string
	fixesOutput string
	dryRun      bool
	format      string
}

func setupReconcileFlags() (*flag.FlagSet, *reconcileFlags) {
	fs := flag.NewFlagSet("reconcile", flag.ContinueOnError)
	flags := &reconcileFlags{}

	addCommonFlags(fs, &flags.common)
	fs.StringVar(&flags.fixesPath, "fixes", "spec-fixes.json", "fix store file (missing file is an empty store)")
	fs.StringVar(&flags.outputPath, "output", "", "write the corrected document to this file")
	fs.StringVar(&flags.fixesOutput, "fixes-output", "", "write the pruned fix store to this file (defaults to -fixes when -output is set)")
	fs.BoolVar(&flags.dryRun, "dry-run", false, "report without writing any files")
	fs.StringVar(&flags.format, "format", "text", "report format: text, yaml, or json")

	fs.Usage = func() {
		output := fs.Output()
		_, _ = fmt.Fprintf(output, "Usage: specsync reconcile [flags] <old-upstream> <new-upstream>\n\n")
		_, _ = fmt.Fprintf(output, "Carry the fix set forward across an upstream update: prune obsolete fixes,\n")
		_, _ = fmt.Fprintf(output, "apply the rest to the new upstream, and report uncovered upstream changes.\n\n")
		_, _ = fmt.Fprintf(output, "Flags:\n")
		fs.PrintDefaults()
		_, _ = fmt.Fprintf(output, "\nExamples:\n")
		_, _ = fmt.Fprintf(output, "  specsync reconcile -output api-corrected.json api-previous.json api-latest.json\n")
		_, _ = fmt.Fprintf(output, "  specsync reconcile -dry-run -format yaml api-previous.json api-latest.json\n")
	}

	return fs, flags
}

func handleReconcile(args []string) error {
	fs, flags := setupReconcileFlags()
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil
		}
		return err
	}
	if fs.NArg() != 2 {
		fs.Usage()
		return fmt.Errorf("reconcile requires the old and new upstream file paths")
	}

	fixesOutput := flags.fixesOutput
	if fixesOutput == "" && flags.outputPath != "" {
		fixesOutput = flags.fixesPath
	}

	result, err := reconciler.ReconcileWithOptions(
		reconciler.WithOldFilePath(fs.Arg(0)),
		reconciler.WithNewFilePath(fs.Arg(1)),
		reconciler.WithFixStorePath(flags.fixesPath),
		reconciler.WithCorrectedOutputPath(flags.outputPath),
		reconciler.WithFixStoreOutputPath(fixesOutput),
		reconciler.WithDryRun(flags.dryRun),
		reconciler.WithLogger(buildLogger(flags.common)),
	)
	if err != nil {
		return err
	}

	if !flags.common.quiet {
		if err := printReport(result.Report, flags.format); err != nil {
			return err
		}
	}
	if len(result.Report.Unresolved) > 0 {
		return fmt.Errorf("%d unresolved %s: %w",
			len(result.Report.Unresolved), plural(len(result.Report.Unresolved), "fix", "fixes"), errNeedsReview)
	}
	return nil
}

func printReport(report reconciler.Report, format string) error {
	switch format {
	case "text":
		cliutil.Writef(os.Stdout, "%s", report.String())
	case "yaml":
		data, err := yaml.Marshal(report.Summarize())
		if err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		cliutil.Writef(os.Stdout, "%s", data)
	case "json":
		data, err := marshalJSONIndent(report.Summarize())
		if err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		cliutil.Writef(os.Stdout, "%s\n", data)
	default:
		return fmt.Errorf("unknown report format %q (want text, yaml, or json)", format)
	}
	return nil
}

// diffFlags contains flags for the diff command
type diffFlags struct {
	common commonFlags
}

func setupDiffFlags() (*flag.FlagSet, *diffFlags) {
	fs := flag.NewFlagSet("diff", flag.ContinueOnError)
	flags := &diffFlags{}
	addCommonFlags(fs, &flags.common)

	fs.Usage = func() {
		output := fs.Output()
		_, _ = fmt.Fprintf(output, "Usage: specsync diff [flags] <old> <new>\n\n")
		_, _ = fmt.Fprintf(output, "Compare two versions of a document. Array elements are matched by content\n")
		_, _ = fmt.Fprintf(output, "fingerprint, so reordering alone reports no changes.\n\n")
		_, _ = fmt.Fprintf(output, "Flags:\n")
		fs.PrintDefaults()
		_, _ = fmt.Fprintf(output, "\nExamples:\n")
		_, _ = fmt.Fprintf(output, "  specsync diff api-previous.json api-latest.json\n")
	}

	return fs, flags
}

func handleDiff(args []string) error {
	fs, flags := setupDiffFlags()
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil
		}
		return err
	}
	if fs.NArg() != 2 {
		fs.Usage()
		return fmt.Errorf("diff requires two file paths")
	}

	changes, err := differ.DiffWithOptions(
		differ.WithSourceFilePath(fs.Arg(0)),
		differ.WithTargetFilePath(fs.Arg(1)),
		differ.WithLogger(buildLogger(flags.common)),
	)
	if err != nil {
		return err
	}

	if flags.common.quiet {
		cliutil.Writef(os.Stdout, "%d\n", len(changes))
		return nil
	}
	if len(changes) == 0 {
		cliutil.Writef(os.Stdout, "No changes detected.\n")
		return nil
	}
	for _, c := range changes {
		cliutil.Writef(os.Stdout, "%s\n", c.String())
	}
	cliutil.Writef(os.Stdout, "\n%d %s\n", len(changes), plural(len(changes), "change", "changes"))
	return nil
}

// applyFlags contains flags for the apply command
type applyFlags struct {
	common     commonFlags
	fixesPath  string
	outputPath string
}

func setupApplyFlags() (*flag.FlagSet, *applyFlags) {
	fs := flag.NewFlagSet("apply", flag.ContinueOnError)
	flags := &applyFlags{}

	addCommonFlags(fs, &flags.common)
	fs.StringVar(&flags.fixesPath, "fixes", "spec-fixes.json", "fix store file to apply")
	fs.StringVar(&flags.outputPath, "output", "", "write the corrected document to this file (default stdout)")

	fs.Usage = func() {
		output := fs.Output()
		_, _ = fmt.Fprintf(output, "Usage: specsync apply [flags] <document>\n\n")
		_, _ = fmt.Fprintf(output, "Apply the fix store to a document and emit the corrected result.\n")
		_, _ = fmt.Fprintf(output, "Application is idempotent.\n\n")
		_, _ = fmt.Fprintf(output, "Flags:\n")
		fs.PrintDefaults()
		_, _ = fmt.Fprintf(output, "\nExamples:\n")
		_, _ = fmt.Fprintf(output, "  specsync apply -fixes spec-fixes.json -output api-corrected.json api-latest.json\n")
	}

	return fs, flags
}

func handleApply(args []string) error {
	fs, flags := setupApplyFlags()
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil
		}
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("apply requires exactly one document path")
	}

	doc, err := document.ParseFile(fs.Arg(0))
	if err != nil {
		return err
	}
	store, err := fixstore.Load(flags.fixesPath)
	if err != nil {
		return err
	}

	a := applier.New()
	a.Logger = buildLogger(flags.common)
	result, err := a.Apply(doc, store)
	if err != nil {
		return err
	}

	data, err := result.Document.MarshalJSONIndent("", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if flags.outputPath != "" {
		if err := fileutil.WriteFileAtomic(flags.outputPath, data, fileutil.ReadableByAll); err != nil {
			return err
		}
		if !flags.common.quiet {
			cliutil.Writef(os.Stderr, "%s -> %s (%s)\n", fs.Arg(0), flags.outputPath, result.Summary())
		}
	} else {
		cliutil.Writef(os.Stdout, "%s", data)
	}

	if unresolved := result.Unresolved(); len(unresolved) > 0 {
		for _, u := range unresolved {
			cliutil.Writef(os.Stderr, "%s\n", u.String())
		}
		return fmt.Errorf("%d unresolved %s: %w",
			len(unresolved), plural(len(unresolved), "fix", "fixes"), errNeedsReview)
	}
	return nil
}

// updateFlags contains flags for the update command
type updateFlags struct {
	common      commonFlags
	fixesOutput string
	description string
	dryRun      bool
}

func setupUpdateFlags() (*flag.FlagSet, *updateFlags) {
	fs := flag.NewFlagSet("update", flag.ContinueOnError)
	flags := &updateFlags{}

	addCommonFlags(fs, &flags.common)
	fs.StringVar(&flags.fixesOutput, "fixes-output", "spec-fixes.json", "write the derived fix store to this file")
	fs.StringVar(&flags.description, "description", "", "description recorded on every derived fix")
	fs.BoolVar(&flags.dryRun, "dry-run", false, "print the derived fixes without writing the store")

	fs.Usage = func() {
		output := fs.Output()
		_, _ = fmt.Fprintf(output, "Usage: specsync update [flags] <upstream> <corrected>\n\n")
		_, _ = fmt.Fprintf(output, "Rebuild the fix store from an upstream document and its hand-corrected\n")
		_, _ = fmt.Fprintf(output, "counterpart. Every difference becomes one fix.\n\n")
		_, _ = fmt.Fprintf(output, "Flags:\n")
		fs.PrintDefaults()
		_, _ = fmt.Fprintf(output, "\nExamples:\n")
		_, _ = fmt.Fprintf(output, "  specsync update -fixes-output spec-fixes.json api-latest.json api-corrected.json\n")
	}

	return fs, flags
}

func handleUpdate(args []string) error {
	fs, flags := setupUpdateFlags()
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil
		}
		return err
	}
	if fs.NArg() != 2 {
		fs.Usage()
		return fmt.Errorf("update requires the upstream and corrected file paths")
	}

	upstream, err := document.ParseFile(fs.Arg(0))
	if err != nil {
		return err
	}
	corrected, err := document.ParseFile(fs.Arg(1))
	if err != nil {
		return err
	}

	store, err := reconciler.DeriveFixes(upstream, corrected, flags.description)
	if err != nil {
		return err
	}
	store.Metadata.UpstreamSpec = fs.Arg(0)
	store.Metadata.CorrectedSpec = fs.Arg(1)

	if !flags.common.quiet {
		for _, f := range store.Operations {
			cliutil.Writef(os.Stdout, "%s\n", f.String())
		}
		cliutil.Writef(os.Stdout, "%d %s derived\n", store.Len(), plural(store.Len(), "fix", "fixes"))
	}
	if flags.dryRun {
		return nil
	}
	return fixstore.Save(store, flags.fixesOutput)
}

// extractFlags contains flags for the extract command
type extractFlags struct {
	common     commonFlags
	format     string
	outputPath string
	stats      bool
}

func setupExtractFlags() (*flag.FlagSet, *extractFlags) {
	fs := flag.NewFlagSet("extract", flag.ContinueOnError)
	flags := &extractFlags{}

	addCommonFlags(fs, &flags.common)
	fs.StringVar(&flags.format, "format", "text", "output format: text, markdown, or json")
	fs.StringVar(&flags.outputPath, "output", "", "write the route inventory to this file (default stdout)")
	fs.BoolVar(&flags.stats, "stats", false, "print summary statistics instead of the inventory")

	fs.Usage = func() {
		output := fs.Output()
		_, _ = fmt.Fprintf(output, "Usage: specsync extract [flags] <document>\n\n")
		_, _ = fmt.Fprintf(output, "Extract the HTTP route inventory from a document.\n\n")
		_, _ = fmt.Fprintf(output, "Flags:\n")
		fs.PrintDefaults()
		_, _ = fmt.Fprintf(output, "\nExamples:\n")
		_, _ = fmt.Fprintf(output, "  specsync extract api-corrected.json\n")
		_, _ = fmt.Fprintf(output, "  specsync extract -format markdown -output routes.md api-corrected.json\n")
		_, _ = fmt.Fprintf(output, "  specsync extract -stats api-corrected.json\n")
	}

	return fs, flags
}

func handleExtract(args []string) error {
	fs, flags := setupExtractFlags()
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil
		}
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("extract requires exactly one document path")
	}

	doc, err := document.ParseFile(fs.Arg(0))
	if err != nil {
		return err
	}
	rs := routes.Extract(doc)

	if flags.stats {
		cliutil.Writef(os.Stdout, "%s", routes.Analyze(rs).String())
		return nil
	}

	out, err := routes.Render(rs, routes.Format(flags.format))
	if err != nil {
		return err
	}
	if flags.outputPath != "" {
		return fileutil.WriteFileAtomic(flags.outputPath, []byte(out), fileutil.ReadableByAll)
	}
	cliutil.Writef(os.Stdout, "%s", out)
	return nil
}

type analyzeFlags struct {
	common     commonFlags
	format     string
	outputPath string
}

func setupAnalyzeFlags() (*flag.FlagSet, *analyzeFlags) {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	flags := &analyzeFlags{}

	addCommonFlags(fs, &flags.common)
	fs.StringVar(&flags.format, "format", "text", "output format: text or json")
	fs.StringVar(&flags.outputPath, "output", "", "write the analysis to this file (default stdout)")

	fs.Usage = func() {
		output := fs.Output()
		_, _ = fmt.Fprintf(output, "Usage: specsync analyze [flags] <document>\n\n")
		_, _ = fmt.Fprintf(output, "Survey a document's structure: API info, security schemes, servers,\n")
		_, _ = fmt.Fprintf(output, "response codes, parameter and request body patterns, and data models.\n\n")
		_, _ = fmt.Fprintf(output, "Flags:\n")
		fs.PrintDefaults()
		_, _ = fmt.Fprintf(output, "\nExamples:\n")
		_, _ = fmt.Fprintf(output, "  specsync analyze api-latest.json\n")
		_, _ = fmt.Fprintf(output, "  specsync analyze -format json -output analysis.json api-latest.json\n")
	}

	return fs, flags
}

func handleAnalyze(args []string) error {
	fs, flags := setupAnalyzeFlags()
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil
		}
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("analyze requires exactly one document path")
	}

	doc, err := document.ParseFile(fs.Arg(0))
	if err != nil {
		return err
	}
	analysis := routes.AnalyzeDocument(doc)

	var out string
	switch flags.format {
	case "text":
		out = analysis.String()
	case "json":
		data, err := marshalJSONIndent(analysis)
		if err != nil {
			return err
		}
		out = string(data) + "\n"
	default:
		return fmt.Errorf("unknown analysis format %q (want text or json)", flags.format)
	}

	if flags.outputPath != "" {
		return fileutil.WriteFileAtomic(flags.outputPath, []byte(out), fileutil.ReadableByAll)
	}
	cliutil.Writef(os.Stdout, "%s", out)
	return nil
}

func handleMCP(args []string) error {
	fs := flag.NewFlagSet("mcp", flag.ContinueOnError)
	fs.Usage = func() {
		output := fs.Output()
		_, _ = fmt.Fprintf(output, "Usage: specsync mcp\n\n")
		_, _ = fmt.Fprintf(output, "Run the MCP server over stdio, exposing diff, apply, and reconcile tools.\n")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil
		}
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return mcpserver.Run(ctx)
}

// suggestCommand returns the closest known command within edit distance 2,
// or "" when nothing is close enough.
func suggestCommand(input string) string {
	commands := []string{"reconcile", "diff", "apply", "update", "extract", "analyze", "mcp", "version", "help"}
	best := ""
	bestDist := 3
	for _, cmd := range commands {
		if d := editDistance(input, cmd); d < bestDist {
			best, bestDist = cmd, d
		}
	}
	return best
}

func editDistance(a, b string) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, min(curr[j-1]+1, prev[j-1]+cost))
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func marshalJSONIndent(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

func plural(n int, singular, plural string) string {
	if n == 1 {
		return singular
	}
	return plural
}

func printUsage() {
	fmt.Println(`specsync - OpenAPI spec fix reconciliation

Usage:
  specsync <command> [options]

Commands:
  reconcile   Carry the fix set across an upstream update and emit the corrected document
  diff        Compare two versions of a document with reorder-stable array matching
  apply       Apply the fix store to a document
  update      Rebuild the fix store from an upstream/corrected document pair
  extract     Extract the HTTP route inventory from a document
  analyze     Survey a document's structure: info, auth, servers, responses, models
  mcp         Run the MCP server over stdio
  version     Show version information
  help        Show this help message

Examples:
  specsync diff api-previous.json api-latest.json
  specsync reconcile -output api-corrected.json api-previous.json api-latest.json
  specsync apply -fixes spec-fixes.json -output api-corrected.json api-latest.json
  specsync update api-latest.json api-corrected.json
  specsync extract -format markdown api-corrected.json
  specsync analyze api-latest.json

Run 'specsync <command> --help' for more information on a command.

Exit codes: 0 success, 1 general error, 2 parse failure, 3 completed with items needing review.`)
}

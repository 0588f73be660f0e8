package reconciler

import (
	"fmt"

	"github.com/erraggy/specsync/applier"
	"github.com/erraggy/specsync/differ"
	"github.com/erraggy/specsync/document"
	"github.com/erraggy/specsync/fixstore"
	"github.com/erraggy/specsync/internal/fileutil"
	"github.com/erraggy/specsync/specerrors"
)

// phase names used in log output and error context.
const (
	phaseLoad      = "load"
	phaseDiff      = "diff"
	phaseReconcile = "reconcile"
	phaseWrite     = "write"
)

// ObsoleteFix is a fix the upstream update has made unnecessary or
// impossible, together with the reason it was pruned.
type ObsoleteFix struct {
	Fix    fixstore.Fix
	Reason string
}

// String renders the obsolete fix as a single report line.
func (o ObsoleteFix) String() string {
	return fmt.Sprintf("%s (%s)", o.Fix.String(), o.Reason)
}

// Result is the outcome of a reconciliation run.
type Result struct {
	// Corrected is the new upstream document with the retained fixes
	// applied.
	Corrected *document.Document
	// Store holds only the retained fixes, ready to persist.
	Store *fixstore.Store
	// Report describes what happened to every fix and what changed
	// upstream outside the fix set.
	Report Report
}

// Reconciler drives fix-set reconciliation across an upstream update.
type Reconciler struct {
	// Logger receives per-phase progress and per-fix classification
	// diagnostics. Defaults to no logging.
	Logger document.Logger
}

// New creates a Reconciler with default settings.
func New() *Reconciler {
	return &Reconciler{Logger: document.NopLogger{}}
}

// Reconcile classifies every fix in store against the update from oldDoc
// to newDoc, applies the retained fixes to a copy of newDoc, and reports
// upstream differences the fix set does not cover. Neither input document
// nor the input store is mutated.
func (r *Reconciler) Reconcile(oldDoc, newDoc *document.Document, store *fixstore.Store) (*Result, error) {
	if oldDoc == nil || newDoc == nil {
		return nil, fmt.Errorf("reconciler: %s phase: both upstream documents are required", phaseLoad)
	}
	if store == nil {
		store = fixstore.NewStore()
	}
	logger := r.Logger
	if logger == nil {
		logger = document.NopLogger{}
	}

	logger.Info("diffing upstream snapshots", "phase", phaseDiff)
	d := differ.New()
	d.Logger = logger
	changes, err := d.Diff(oldDoc, newDoc)
	if err != nil {
		return nil, fmt.Errorf("reconciler: %s phase: %w", phaseDiff, err)
	}
	logger.Info("upstream diff complete", "phase", phaseDiff, "changes", len(changes))

	report := Report{}
	retained := fixstore.NewStore()
	if store.Version != "" {
		retained.Version = store.Version
	}
	if store.Description != "" {
		retained.Description = store.Description
	}
	retained.Metadata = store.Metadata

	for _, fix := range store.Operations {
		addr, err := fix.Address()
		if err != nil {
			return nil, fmt.Errorf("reconciler: %s phase: fix %q: %w", phaseReconcile, fix.Path, err)
		}
		if reason, obsolete := classify(fix, addr, newDoc); obsolete {
			logger.Info("fix is obsolete", "phase", phaseReconcile,
				"op", string(fix.Op), "path", fix.Path, "reason", reason)
			report.Obsolete = append(report.Obsolete, ObsoleteFix{Fix: fix, Reason: reason})
			continue
		}
		logger.Debug("fix retained", "phase", phaseReconcile,
			"op", string(fix.Op), "path", fix.Path)
		retained.Add(fix)
		report.Retained = append(report.Retained, fix)
	}

	covered := store.Paths()
	for _, change := range changes {
		if !covered[change.Path()] {
			report.NewCandidates = append(report.NewCandidates, change)
		}
	}

	a := applier.New()
	a.Logger = logger
	applied, err := a.Apply(newDoc, retained)
	if err != nil {
		return nil, fmt.Errorf("reconciler: %s phase: %w", phaseReconcile, err)
	}
	report.Unresolved = applied.Unresolved()

	logger.Info("reconciliation complete", "phase", phaseReconcile,
		"retained", len(report.Retained), "obsolete", len(report.Obsolete),
		"unresolved", len(report.Unresolved), "new_candidates", len(report.NewCandidates))

	return &Result{
		Corrected: applied.Document,
		Store:     retained,
		Report:    report,
	}, nil
}

// classify decides whether a fix survives the upstream update. It checks
// the fix against the new upstream document directly, so upstream edits
// that moved or adopted the fix's target are all it needs to see.
func classify(fix fixstore.Fix, addr document.Address, newDoc *document.Document) (reason string, obsolete bool) {
	target := newDoc.Get(addr)
	switch fix.Op {
	case fixstore.OpReplaceValue:
		if target == nil {
			return "target no longer resolves in the new upstream document", true
		}
		if target.Equal(fix.Value) {
			return "upstream now equals the fix value", true
		}
		return "", false
	case fixstore.OpDeleteValue:
		if target == nil {
			return "target already absent upstream", true
		}
		return "", false
	case fixstore.OpAddIfMissing:
		if target != nil {
			if target.Equal(fix.Value) {
				return "upstream now includes the added value", true
			}
			return "target now present upstream with a different value", true
		}
		return "", false
	default:
		return fmt.Sprintf("unknown operation %q", fix.Op), true
	}
}

// Option configures a reconciliation run.
type Option func(*config) error

// config holds configuration for one ReconcileWithOptions call.
type config struct {
	oldFilePath *string
	oldDocument *document.Document
	newFilePath *string
	newDocument *document.Document

	fixStorePath *string
	fixStore     *fixstore.Store

	correctedOutputPath string
	fixStoreOutputPath  string
	dryRun              bool

	logger document.Logger
}

// ReconcileWithOptions runs a full reconciliation using functional options,
// including file IO on both ends.
//
// Example:
//
//	result, err := reconciler.ReconcileWithOptions(
//	    reconciler.WithOldFilePath("api-previous.json"),
//	    reconciler.WithNewFilePath("api-latest.json"),
//	    reconciler.WithFixStorePath("spec-fixes.json"),
//	    reconciler.WithCorrectedOutputPath("api-corrected.json"),
//	    reconciler.WithFixStoreOutputPath("spec-fixes.json"),
//	)
func ReconcileWithOptions(opts ...Option) (*Result, error) {
	cfg, err := applyOptions(opts...)
	if err != nil {
		return nil, fmt.Errorf("reconciler: invalid options: %w", err)
	}

	r := New()
	if cfg.logger != nil {
		r.Logger = cfg.logger
	}
	r.Logger.Info("loading inputs", "phase", phaseLoad)

	oldDoc := cfg.oldDocument
	if cfg.oldFilePath != nil {
		oldDoc, err = document.ParseFile(*cfg.oldFilePath)
		if err != nil {
			return nil, fmt.Errorf("reconciler: %s phase: old upstream: %w", phaseLoad, err)
		}
	}
	newDoc := cfg.newDocument
	if cfg.newFilePath != nil {
		newDoc, err = document.ParseFile(*cfg.newFilePath)
		if err != nil {
			return nil, fmt.Errorf("reconciler: %s phase: new upstream: %w", phaseLoad, err)
		}
	}
	store := cfg.fixStore
	if cfg.fixStorePath != nil {
		store, err = fixstore.Load(*cfg.fixStorePath)
		if err != nil {
			return nil, fmt.Errorf("reconciler: %s phase: %w", phaseLoad, err)
		}
	}

	result, err := r.Reconcile(oldDoc, newDoc, store)
	if err != nil {
		return nil, err
	}

	if cfg.dryRun {
		r.Logger.Info("dry run, skipping writes", "phase", phaseWrite)
		return result, nil
	}

	if cfg.correctedOutputPath != "" {
		result.Store.Metadata.UpstreamSpec = newDoc.SourcePath
		result.Store.Metadata.CorrectedSpec = cfg.correctedOutputPath

		data, err := result.Corrected.MarshalJSONIndent("", "  ")
		if err != nil {
			return nil, fmt.Errorf("reconciler: %s phase: %w", phaseWrite, err)
		}
		data = append(data, '\n')
		if err := fileutil.WriteFileAtomic(cfg.correctedOutputPath, data, fileutil.ReadableByAll); err != nil {
			return nil, &specerrors.WriteError{Path: cfg.correctedOutputPath, Message: "failed to write corrected document", Cause: err}
		}
		r.Logger.Info("wrote corrected document", "phase", phaseWrite, "path", cfg.correctedOutputPath)
	}
	if cfg.fixStoreOutputPath != "" {
		if err := fixstore.Save(result.Store, cfg.fixStoreOutputPath); err != nil {
			return nil, fmt.Errorf("reconciler: %s phase: %w", phaseWrite, err)
		}
		r.Logger.Info("wrote fix store", "phase", phaseWrite,
			"path", cfg.fixStoreOutputPath, "fixes", result.Store.Len())
	}
	return result, nil
}

// applyOptions applies option functions and validates configuration
func applyOptions(opts ...Option) (*config, error) {
	cfg := &config{}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	oldCount := 0
	if cfg.oldFilePath != nil {
		oldCount++
	}
	if cfg.oldDocument != nil {
		oldCount++
	}
	if oldCount == 0 {
		return nil, &specerrors.ConfigError{Option: "old", Message: "must specify the old upstream (use WithOldFilePath or WithOldDocument)"}
	}
	if oldCount > 1 {
		return nil, &specerrors.ConfigError{Option: "old", Message: "must specify exactly one old upstream"}
	}

	newCount := 0
	if cfg.newFilePath != nil {
		newCount++
	}
	if cfg.newDocument != nil {
		newCount++
	}
	if newCount == 0 {
		return nil, &specerrors.ConfigError{Option: "new", Message: "must specify the new upstream (use WithNewFilePath or WithNewDocument)"}
	}
	if newCount > 1 {
		return nil, &specerrors.ConfigError{Option: "new", Message: "must specify exactly one new upstream"}
	}

	if cfg.fixStorePath != nil && cfg.fixStore != nil {
		return nil, &specerrors.ConfigError{Option: "fixes", Message: "must specify at most one fix store"}
	}
	return cfg, nil
}

// WithOldFilePath specifies a file path as the old upstream document
func WithOldFilePath(path string) Option {
	return func(cfg *config) error {
		cfg.oldFilePath = &path
		return nil
	}
}

// WithOldDocument specifies an already-parsed old upstream document
func WithOldDocument(doc *document.Document) Option {
	return func(cfg *config) error {
		cfg.oldDocument = doc
		return nil
	}
}

// WithNewFilePath specifies a file path as the new upstream document
func WithNewFilePath(path string) Option {
	return func(cfg *config) error {
		cfg.newFilePath = &path
		return nil
	}
}

// WithNewDocument specifies an already-parsed new upstream document
func WithNewDocument(doc *document.Document) Option {
	return func(cfg *config) error {
		cfg.newDocument = doc
		return nil
	}
}

// WithFixStorePath specifies the fix store file to load. A missing file is
// an empty store.
func WithFixStorePath(path string) Option {
	return func(cfg *config) error {
		cfg.fixStorePath = &path
		return nil
	}
}

// WithFixStore specifies an already-loaded fix store
func WithFixStore(store *fixstore.Store) Option {
	return func(cfg *config) error {
		cfg.fixStore = store
		return nil
	}
}

// WithCorrectedOutputPath sets where the corrected document is written.
// Empty means the corrected document is returned but not persisted.
func WithCorrectedOutputPath(path string) Option {
	return func(cfg *config) error {
		cfg.correctedOutputPath = path
		return nil
	}
}

// WithFixStoreOutputPath sets where the pruned fix store is written. It may
// be the same path the store was loaded from.
func WithFixStoreOutputPath(path string) Option {
	return func(cfg *config) error {
		cfg.fixStoreOutputPath = path
		return nil
	}
}

// WithDryRun suppresses all output writes; the run still reports what
// would have been written.
func WithDryRun(dryRun bool) Option {
	return func(cfg *config) error {
		cfg.dryRun = dryRun
		return nil
	}
}

// WithLogger sets the logger used for phase progress and diagnostics
func WithLogger(logger document.Logger) Option {
	return func(cfg *config) error {
		cfg.logger = logger
		return nil
	}
}

// Package specsync keeps hand-authored corrections to a vendor-supplied
// OpenAPI document alive across upstream updates.
//
// A vendor ships an OpenAPI spec with mistakes: wrong formats, missing
// descriptions, fields that should not exist. You correct them, the vendor
// ships a new revision, and your corrections are gone. specsync solves this
// by persisting each correction as a fix record and re-reconciling the fix
// set against every new upstream snapshot.
//
// # Overview
//
// The library consists of five primary packages:
//
//   - document: order-preserving JSON document model with content-hash
//     addressing for array elements
//   - differ: structural diff between two document snapshots that treats
//     array reordering as zero changes
//   - fixstore: durable, diff-friendly storage for fix records
//   - applier: idempotent application of a fix set to a document
//   - reconciler: the driver that diffs old vs new upstream, prunes
//     obsolete fixes, applies the survivors, and reports new candidates
//
// The routes package supplements these with a route inventory extractor and
// a structural analyzer for quick inspection of what an upstream snapshot
// actually serves.
//
// # Quick Start
//
// Reconcile a new upstream snapshot against an existing fix set:
//
//	import "github.com/erraggy/specsync/reconciler"
//
//	result, err := reconciler.ReconcileWithOptions(
//		reconciler.WithOldFilePath("vault-api-previous.json"),
//		reconciler.WithNewFilePath("vault-api-latest.json"),
//		reconciler.WithFixStorePath("spec-fixes.json"),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(result.Report.String())
//
// Diff two snapshots directly:
//
//	import "github.com/erraggy/specsync/differ"
//
//	changes, err := differ.DiffWithOptions(
//		differ.WithSourceFilePath("api-old.json"),
//		differ.WithTargetFilePath("api-new.json"),
//	)
//
// Apply a fix set to a document:
//
//	import (
//		"github.com/erraggy/specsync/applier"
//		"github.com/erraggy/specsync/document"
//		"github.com/erraggy/specsync/fixstore"
//	)
//
//	doc, _ := document.ParseFile("api-new.json")
//	store, _ := fixstore.Load("spec-fixes.json")
//	result, err := applier.New().Apply(doc, store)
//
// # Array element identity
//
// Array elements are addressed by a fingerprint of their content rather than
// by position, so a fix targeting "the parameter named limit" survives the
// vendor reordering the parameters array. Object keys remain identity-addressed
// by name; renaming a key therefore surfaces as a removal plus an addition.
// This asymmetry is deliberate: content-addressing keys would make ordinary
// property renames indistinguishable from wholesale replacement.
//
// # Command-Line Interface
//
// In addition to the library packages, specsync provides a command-line
// interface:
//
//	# Reconcile a new upstream snapshot
//	specsync reconcile -fixes spec-fixes.json api-prev.json api-latest.json
//
//	# Diff two snapshots
//	specsync diff api-old.json api-new.json
//
//	# Apply the fix set without reconciling
//	specsync apply -fixes spec-fixes.json api-latest.json
//
// Install the CLI:
//
//	go install github.com/erraggy/specsync/cmd/specsync@latest
//
// # Concurrency
//
// Each run is single-threaded and run-to-completion. Output files are only
// written after reconciliation fully succeeds, using temp-file-then-rename so
// a crash mid-write cannot corrupt the corrected spec or the fix store.
// Concurrent invocations against the same fix store file are not coordinated;
// serializing runs is the caller's responsibility.
package specsync

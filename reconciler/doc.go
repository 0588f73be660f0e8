// Package reconciler carries a fix set forward across an upstream document
// update.
//
// A run moves through three phases, failing fast at each:
//
//	Loaded     both upstream snapshots parsed, fix store loaded
//	Diffed     structural differences between old and new upstream computed
//	Reconciled every fix classified as retained or obsolete, the retained
//	           set applied to the new upstream
//
// Output files are written only after the Reconciled phase completes, and
// always through an atomic temp-file rename, so a failure anywhere leaves
// previously written outputs untouched.
//
// Classification checks each fix against the new upstream document rather
// than against the diff: a replace whose payload the vendor has since
// adopted, or whose target no longer exists, is obsolete; a delete whose
// target is already gone is obsolete; everything else is retained.
// Differences the fix set does not cover are reported as new candidates
// for human review.
package reconciler

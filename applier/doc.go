// Package applier applies a persisted fix set to a document, producing the
// corrected document.
//
// Application is idempotent: applying the same fix store twice to the same
// document produces a byte-identical result to applying it once. Two
// mechanisms uphold this:
//
//   - within one run, array elements are resolved by the fingerprint they
//     had in the input document, so several fixes targeting the same element
//     all resolve even though the first one changes the element's content
//   - across runs, a fix whose element fingerprint no longer matches is
//     checked against the fix's recorded old value: if restoring the old
//     value would reproduce the fingerprint and the current value already
//     equals the payload, the fix has evidently been applied before and is
//     skipped rather than reported unresolved
//
// The input document is never mutated; Apply deep-copies it first.
// Per-fix resolution failures never abort the run; they are accumulated
// in the result so every needed human decision surfaces in one pass.
package applier

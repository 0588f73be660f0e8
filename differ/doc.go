// Package differ computes structural differences between two JSON document
// snapshots.
//
// The diff walks both trees in parallel. Object members are compared by key
// name; array elements are matched by content fingerprint, so reordering an
// array produces zero differences while a content change inside an element
// is still caught. Reordering is non-semantic at every depth: an element
// whose positional fingerprint changed only because a nested array was
// reordered pairs with its old self through an order-insensitive
// fingerprint. When an element was modified rather than replaced, the
// differ pairs the old and new versions and reports field-level changes
// inside the element, addressed by the old element's fingerprint.
//
// The output ordering is deterministic (sorted by address, additions before
// modifications before removals at equal address), making diff results
// suitable for snapshot-based testing.
//
// # Example
//
//	changes, err := differ.DiffWithOptions(
//		differ.WithSourceFilePath("api-old.json"),
//		differ.WithTargetFilePath("api-new.json"),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	for _, c := range changes {
//		fmt.Println(c.String())
//	}
//
// # Known limitation
//
// Object keys are identity-addressed by name, so renaming a key surfaces as
// a removal of the old key plus an addition of the new key even when the
// value is unchanged. This asymmetry with array elements is intentional:
// content-addressing keys would make ordinary property renames
// indistinguishable from wholesale replacement.
package differ

// Package document provides an order-preserving JSON document model with
// stable, reorder-tolerant addressing.
//
// A parsed document is a tree of [Node] values: objects keep their source
// key order (used only for output formatting, never for comparison), arrays
// keep their element order, and scalars hold the decoded primitive value.
//
// Every location in the tree has an [Address], an ordered sequence of path
// segments. The two segment variants are deliberately distinct at the type
// level:
//
//   - object members are addressed by key name
//   - array elements are addressed by a content fingerprint, so the address
//     survives the element moving to a different position
//
// Fingerprints are SHA-256 hashes of a canonical serialization of the
// element's subtree (object keys sorted, nested arrays positional), making
// them deterministic across runs and independent of map iteration order.
package document

package document

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
)

// Fingerprint computes a deterministic content hash for a node's subtree.
//
// The hash is SHA-256 over a canonical serialization: object keys sorted,
// arrays kept in positional order, scalars encoded as compact JSON. Two
// subtrees that are deeply equal (ignoring object key order) always produce
// the same fingerprint, across calls and across process runs.
//
// Only the outermost array being matched treats its elements as unordered;
// arrays nested inside an element are part of that element's content and
// hash positionally. [UnorderedFingerprint] provides the order-insensitive
// variant. Fingerprint equality is treated as practically certain
// identity; a collision between genuinely distinct elements is a documented
// tooling limitation, not a detected condition.
func Fingerprint(n *Node) string {
	var buf bytes.Buffer
	writeCanonical(&buf, n)
	sum := sha256.Sum256(buf.Bytes())
	return hex.EncodeToString(sum[:])
}

// UnorderedFingerprint computes a content hash that ignores array element
// order at every depth: arrays are canonicalized as sorted multisets of
// their elements' serializations. Two subtrees that differ only by the
// ordering of arrays, at any nesting level, produce the same value.
//
// It serves as a secondary identity when positional fingerprints diverge,
// recognizing an element whose only change is a reordered nested array.
func UnorderedFingerprint(n *Node) string {
	var buf bytes.Buffer
	writeCanonicalUnordered(&buf, n)
	sum := sha256.Sum256(buf.Bytes())
	return hex.EncodeToString(sum[:])
}

// writeCanonical serializes n in the canonical form used for hashing.
func writeCanonical(buf *bytes.Buffer, n *Node) {
	switch n.Kind {
	case KindObject:
		buf.WriteByte('{')
		keys := append([]string(nil), n.Keys()...)
		sort.Strings(keys)
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			keyJSON, _ := json.Marshal(k)
			buf.Write(keyJSON)
			buf.WriteByte(':')
			writeCanonical(buf, n.Field(k))
		}
		buf.WriteByte('}')

	case KindArray:
		buf.WriteByte('[')
		for i, item := range n.Items {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeCanonical(buf, item)
		}
		buf.WriteByte(']')

	default:
		writeCanonicalScalar(buf, n.Value)
	}
}

// writeCanonicalUnordered serializes n like writeCanonical, except that
// array elements are sorted by their own canonical form before joining.
func writeCanonicalUnordered(buf *bytes.Buffer, n *Node) {
	switch n.Kind {
	case KindObject:
		buf.WriteByte('{')
		keys := append([]string(nil), n.Keys()...)
		sort.Strings(keys)
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			keyJSON, _ := json.Marshal(k)
			buf.Write(keyJSON)
			buf.WriteByte(':')
			writeCanonicalUnordered(buf, n.Field(k))
		}
		buf.WriteByte('}')

	case KindArray:
		parts := make([]string, len(n.Items))
		for i, item := range n.Items {
			var b bytes.Buffer
			writeCanonicalUnordered(&b, item)
			parts[i] = b.String()
		}
		sort.Strings(parts)
		buf.WriteByte('[')
		for i, p := range parts {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.WriteString(p)
		}
		buf.WriteByte(']')

	default:
		writeCanonicalScalar(buf, n.Value)
	}
}

// writeCanonicalScalar encodes a primitive value. Integer-valued numbers
// are normalized through float64 first so that the same JSON number hashes
// identically regardless of which decoder produced it.
func writeCanonicalScalar(buf *bytes.Buffer, v any) {
	if f, ok := toFloat(v); ok {
		v = f
	}
	data, err := json.Marshal(v)
	if err != nil {
		// Scalars come from JSON decoding, so the only way to get here is
		// a caller-constructed node holding an unmarshalable value.
		data, _ = json.Marshal(nil)
	}
	buf.Write(data)
}

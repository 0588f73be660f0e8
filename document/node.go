package document

import (
	"fmt"
	"sort"
)

// Kind identifies the variant of a Node.
type Kind int

const (
	// KindScalar is a primitive JSON value: string, number, boolean, or null.
	KindScalar Kind = iota
	// KindObject is a JSON object with insertion-ordered keys.
	KindObject
	// KindArray is an ordered JSON array.
	KindArray
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	default:
		return "unknown"
	}
}

// Node is one value in a parsed JSON document tree.
//
// Exactly one of the three variants is active, indicated by Kind. Object
// key order is preserved from the source for output stability; comparison
// semantics never depend on it.
type Node struct {
	// Kind selects the active variant.
	Kind Kind

	// Value holds the decoded primitive for KindScalar nodes:
	// string, int, int64, float64, bool, or nil.
	Value any

	// Items holds the elements of KindArray nodes, in order.
	Items []*Node

	// keys and fields hold KindObject members. keys preserves source
	// insertion order; fields provides O(1) lookup.
	keys   []string
	fields map[string]*Node
}

// NewScalar creates a scalar node holding value.
func NewScalar(value any) *Node {
	return &Node{Kind: KindScalar, Value: value}
}

// NewObject creates an empty object node.
func NewObject() *Node {
	return &Node{Kind: KindObject, fields: make(map[string]*Node)}
}

// NewArray creates an array node with the given elements.
func NewArray(items ...*Node) *Node {
	return &Node{Kind: KindArray, Items: items}
}

// FromValue converts a decoded Go value (as produced by encoding/json or
// yaml unmarshaling into any) to a Node tree. Map keys are sorted since a
// Go map carries no source order.
func FromValue(v any) *Node {
	switch val := v.(type) {
	case nil:
		return NewScalar(nil)
	case map[string]any:
		obj := NewObject()
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			obj.Set(k, FromValue(val[k]))
		}
		return obj
	case []any:
		arr := NewArray()
		for _, item := range val {
			arr.Items = append(arr.Items, FromValue(item))
		}
		return arr
	default:
		return NewScalar(val)
	}
}

// Keys returns the object's keys in source order. Returns nil for
// non-object nodes. The returned slice must not be modified.
func (n *Node) Keys() []string {
	if n.Kind != KindObject {
		return nil
	}
	return n.keys
}

// Field returns the child node for key, or nil if absent or if n is not
// an object.
func (n *Node) Field(key string) *Node {
	if n.Kind != KindObject {
		return nil
	}
	return n.fields[key]
}

// Set inserts or replaces the object member for key. New keys are appended
// to the key order; existing keys keep their position. Set panics if n is
// not an object, since that is always a programming error.
func (n *Node) Set(key string, child *Node) {
	if n.Kind != KindObject {
		panic(fmt.Sprintf("document: Set on %s node", n.Kind))
	}
	if _, exists := n.fields[key]; !exists {
		n.keys = append(n.keys, key)
	}
	n.fields[key] = child
}

// Delete removes the object member for key, preserving the relative order
// of the remaining keys. Returns true if the key was present.
func (n *Node) Delete(key string) bool {
	if n.Kind != KindObject {
		return false
	}
	if _, exists := n.fields[key]; !exists {
		return false
	}
	delete(n.fields, key)
	for i, k := range n.keys {
		if k == key {
			n.keys = append(n.keys[:i], n.keys[i+1:]...)
			break
		}
	}
	return true
}

// Len returns the number of object members or array elements,
// and 0 for scalars.
func (n *Node) Len() int {
	switch n.Kind {
	case KindObject:
		return len(n.keys)
	case KindArray:
		return len(n.Items)
	default:
		return 0
	}
}

// Clone returns a deep copy of the node tree.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case KindObject:
		out := NewObject()
		for _, k := range n.keys {
			out.Set(k, n.fields[k].Clone())
		}
		return out
	case KindArray:
		items := make([]*Node, len(n.Items))
		for i, item := range n.Items {
			items[i] = item.Clone()
		}
		return NewArray(items...)
	default:
		return NewScalar(n.Value)
	}
}

// Equal reports deep value equality between two node trees.
// Object key order is ignored; array element order is significant.
// Numeric scalars compare by value, so an int 1 equals a float64 1.
func (n *Node) Equal(other *Node) bool {
	if n == nil || other == nil {
		return n == other
	}
	if n.Kind != other.Kind {
		return false
	}
	switch n.Kind {
	case KindObject:
		if len(n.keys) != len(other.keys) {
			return false
		}
		for k, v := range n.fields {
			ov, ok := other.fields[k]
			if !ok || !v.Equal(ov) {
				return false
			}
		}
		return true
	case KindArray:
		if len(n.Items) != len(other.Items) {
			return false
		}
		for i, item := range n.Items {
			if !item.Equal(other.Items[i]) {
				return false
			}
		}
		return true
	default:
		return scalarEqual(n.Value, other.Value)
	}
}

// scalarEqual compares primitive values, unifying the integer and float
// representations that different decoders produce for the same JSON number.
func scalarEqual(a, b any) bool {
	if af, aok := toFloat(a); aok {
		bf, bok := toFloat(b)
		return bok && af == bf
	}
	return a == b
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	default:
		return 0, false
	}
}

// Interface converts the node tree back to plain Go values
// (map[string]any, []any, primitives). Object key order is lost; this is
// intended for handing subtrees to APIs that expect decoded JSON.
func (n *Node) Interface() any {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case KindObject:
		out := make(map[string]any, len(n.keys))
		for _, k := range n.keys {
			out[k] = n.fields[k].Interface()
		}
		return out
	case KindArray:
		out := make([]any, len(n.Items))
		for i, item := range n.Items {
			out[i] = item.Interface()
		}
		return out
	default:
		return n.Value
	}
}

package document

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// MarshalJSON renders the document as compact JSON with object keys in
// their preserved source order. Keys added after parsing appear where Set
// placed them (appended for new keys).
func (d *Document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := marshalNode(&buf, d.root); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalJSONIndent renders the document as indented JSON with preserved
// key order. This is the output form used for corrected spec files, so
// reconciliation runs produce low-noise version-control diffs.
func (d *Document) MarshalJSONIndent(prefix, indent string) ([]byte, error) {
	data, err := d.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, prefix, indent); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalNodeJSON renders a single node subtree as compact JSON with
// preserved object key order. Useful for embedding subtrees in reports
// and fix records.
func MarshalNodeJSON(n *Node) ([]byte, error) {
	if n == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	if err := marshalNode(&buf, n); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// marshalNode writes a node tree to buf as JSON, preserving object key order.
func marshalNode(buf *bytes.Buffer, n *Node) error {
	switch n.Kind {
	case KindObject:
		buf.WriteByte('{')
		for i, k := range n.Keys() {
			if i > 0 {
				buf.WriteByte(',')
			}
			keyJSON, err := json.Marshal(k)
			if err != nil {
				return err
			}
			buf.Write(keyJSON)
			buf.WriteByte(':')
			if err := marshalNode(buf, n.Field(k)); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		return nil

	case KindArray:
		buf.WriteByte('[')
		for i, item := range n.Items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := marshalNode(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil

	default:
		data, err := json.Marshal(n.Value)
		if err != nil {
			return fmt.Errorf("document: cannot encode scalar %T: %w", n.Value, err)
		}
		buf.Write(data)
		return nil
	}
}

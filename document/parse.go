package document

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v4"

	"github.com/erraggy/specsync/specerrors"
)

// Document is an immutable-at-rest JSON document normalized into a Node
// tree. The root is always an object; Parse rejects anything else.
type Document struct {
	root *Node

	// SourcePath is the file the document was read from ("" when parsed
	// from bytes).
	SourcePath string
}

// Root returns the document's root object node.
func (d *Document) Root() *Node {
	return d.root
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	return &Document{root: d.root.Clone(), SourcePath: d.SourcePath}
}

// FromNode wraps an existing object node as a Document. It returns an
// error if root is not an object, mirroring the Parse contract.
func FromNode(root *Node) (*Document, error) {
	if root == nil || root.Kind != KindObject {
		return nil, &specerrors.ParseError{Message: "document root must be a JSON object"}
	}
	return &Document{root: root}, nil
}

// Parse decodes a JSON document into a Document, preserving object key
// order from the source. The root must be a JSON object; scalar or array
// roots are a *specerrors.ParseError.
//
// Decoding is done through a yaml node tree (JSON is a strict subset of
// YAML), which is what preserves the source key order that encoding/json
// discards.
func Parse(data []byte) (*Document, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, &specerrors.ParseError{Message: "invalid JSON", Cause: err}
	}

	content := &node
	if node.Kind == yaml.DocumentNode {
		if len(node.Content) == 0 {
			return nil, &specerrors.ParseError{Message: "document is empty"}
		}
		content = node.Content[0]
	}
	if content.Kind != yaml.MappingNode {
		return nil, &specerrors.ParseError{
			Line:    content.Line,
			Column:  content.Column,
			Message: fmt.Sprintf("document root must be a JSON object, got %s", yamlKindName(content.Kind)),
		}
	}

	root, err := nodeFromYAML(content)
	if err != nil {
		return nil, &specerrors.ParseError{Message: "invalid document structure", Cause: err}
	}
	return &Document{root: root}, nil
}

// ParseFragment decodes a JSON value of any kind (object, array, or
// scalar) into a Node, preserving object key order. Unlike Parse, the root
// is not required to be an object; fragments are used for fix payloads.
func ParseFragment(data []byte) (*Node, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, &specerrors.ParseError{Message: "invalid JSON fragment", Cause: err}
	}
	content := &node
	if node.Kind == yaml.DocumentNode {
		if len(node.Content) == 0 {
			return NewScalar(nil), nil
		}
		content = node.Content[0]
	}
	n, err := nodeFromYAML(content)
	if err != nil {
		return nil, &specerrors.ParseError{Message: "invalid JSON fragment", Cause: err}
	}
	return n, nil
}

// ParseFile reads and parses a JSON document from path. The file handle is
// closed before parsing begins; a parse failure never leaks it.
func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("document: failed to read %s: %w", path, err)
	}
	doc, err := Parse(data)
	if err != nil {
		var perr *specerrors.ParseError
		if asParseError(err, &perr) {
			perr.Path = path
		}
		return nil, err
	}
	doc.SourcePath = path
	return doc, nil
}

// asParseError is a local errors.As to keep the import list short here.
func asParseError(err error, target **specerrors.ParseError) bool {
	pe, ok := err.(*specerrors.ParseError)
	if ok {
		*target = pe
	}
	return ok
}

// nodeFromYAML converts a decoded yaml node into the document Node form.
func nodeFromYAML(n *yaml.Node) (*Node, error) {
	switch n.Kind {
	case yaml.MappingNode:
		obj := NewObject()
		for i := 0; i+1 < len(n.Content); i += 2 {
			keyNode := n.Content[i]
			if keyNode.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("non-scalar object key at line %d", keyNode.Line)
			}
			child, err := nodeFromYAML(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			if obj.Field(keyNode.Value) != nil {
				return nil, fmt.Errorf("duplicate object key %q at line %d", keyNode.Value, keyNode.Line)
			}
			obj.Set(keyNode.Value, child)
		}
		return obj, nil

	case yaml.SequenceNode:
		arr := NewArray()
		for _, item := range n.Content {
			child, err := nodeFromYAML(item)
			if err != nil {
				return nil, err
			}
			arr.Items = append(arr.Items, child)
		}
		return arr, nil

	case yaml.ScalarNode:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, fmt.Errorf("undecodable scalar at line %d: %w", n.Line, err)
		}
		return NewScalar(v), nil

	case yaml.AliasNode:
		return nodeFromYAML(n.Alias)

	default:
		return nil, fmt.Errorf("unsupported node kind at line %d", n.Line)
	}
}

func yamlKindName(k yaml.Kind) string {
	switch k {
	case yaml.MappingNode:
		return "object"
	case yaml.SequenceNode:
		return "array"
	case yaml.ScalarNode:
		return "scalar"
	default:
		return "unknown"
	}
}

package mcpserver

import (
	"fmt"

	"github.com/erraggy/specsync/document"
	"github.com/erraggy/specsync/fixstore"
)

// documentInput represents the two ways an OpenAPI document can be provided
// to a tool. Exactly one of File or Content must be set; there is no URL
// form because specsync never fetches over the network.
type documentInput struct {
	File    string `json:"file,omitempty"    jsonschema:"Path to an OpenAPI JSON file on disk"`
	Content string `json:"content,omitempty" jsonschema:"Inline OpenAPI JSON document content"`
}

func (in documentInput) resolve() (*document.Document, error) {
	switch {
	case in.File != "" && in.Content != "":
		return nil, fmt.Errorf("provide either file or content, not both")
	case in.File != "":
		return document.ParseFile(in.File)
	case in.Content != "":
		return document.Parse([]byte(in.Content))
	default:
		return nil, fmt.Errorf("provide a document via file or content")
	}
}

// fixesInput represents the two ways a fix store can be provided. A File
// pointing at a missing path resolves to an empty store, matching the CLI.
type fixesInput struct {
	File    string `json:"file,omitempty"    jsonschema:"Path to a fix store JSON file on disk"`
	Content string `json:"content,omitempty" jsonschema:"Inline fix store JSON content"`
}

func (in fixesInput) resolve() (*fixstore.Store, error) {
	switch {
	case in.File != "" && in.Content != "":
		return nil, fmt.Errorf("provide either file or content, not both")
	case in.File != "":
		return fixstore.Load(in.File)
	case in.Content != "":
		return fixstore.Parse([]byte(in.Content), "")
	default:
		return nil, fmt.Errorf("provide a fix store via file or content")
	}
}

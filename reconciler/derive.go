package reconciler

import (
	"fmt"

	"github.com/erraggy/specsync/differ"
	"github.com/erraggy/specsync/document"
	"github.com/erraggy/specsync/fixstore"
)

// DeriveFixes builds a fix store from the differences between an upstream
// document and its hand-corrected counterpart. Each difference becomes one
// fix: additions become add_if_missing, removals become delete_value, and
// modifications become replace_value carrying both the corrected and the
// upstream value.
//
// Applying the derived store to upstream reproduces corrected, up to
// object key order.
func DeriveFixes(upstream, corrected *document.Document, description string) (*fixstore.Store, error) {
	if upstream == nil || corrected == nil {
		return nil, fmt.Errorf("reconciler: both documents are required to derive fixes")
	}
	changes, err := differ.New().Diff(upstream, corrected)
	if err != nil {
		return nil, fmt.Errorf("reconciler: failed to derive fixes: %w", err)
	}

	store := fixstore.NewStore()
	for _, c := range changes {
		store.Add(fixFromChange(c, description))
	}
	return store, nil
}

func fixFromChange(c differ.Change, description string) fixstore.Fix {
	fix := fixstore.Fix{Path: c.Path(), Description: description}
	switch c.Type {
	case differ.ChangeTypeAdded:
		fix.Op = fixstore.OpAddIfMissing
		fix.Value = cloneNode(c.NewValue)
	case differ.ChangeTypeRemoved:
		fix.Op = fixstore.OpDeleteValue
		fix.OldValue = cloneNode(c.OldValue)
	default:
		fix.Op = fixstore.OpReplaceValue
		fix.Value = cloneNode(c.NewValue)
		fix.OldValue = cloneNode(c.OldValue)
	}
	return fix
}

func cloneNode(n *document.Node) *document.Node {
	if n == nil {
		return nil
	}
	return n.Clone()
}

package differ

import (
	"fmt"
	"sort"

	"github.com/erraggy/specsync/document"
)

// Diff computes the structural differences between two parsed documents.
// The result is ordered deterministically: by address, with additions
// before modifications before removals at an equal address.
func (d *Differ) Diff(source, target *document.Document) ([]Change, error) {
	if source == nil || target == nil {
		return nil, fmt.Errorf("differ: both source and target documents are required")
	}

	logger := d.Logger
	if logger == nil {
		logger = document.NopLogger{}
	}

	w := &diffWalk{
		memo:   make(map[*document.Node]string),
		umemo:  make(map[*document.Node]string),
		logger: logger,
	}
	w.diffNodes(document.Address{}, source.Root(), target.Root())

	sort.SliceStable(w.changes, func(i, j int) bool {
		pi, pj := w.changes[i].Path(), w.changes[j].Path()
		if pi != pj {
			return pi < pj
		}
		return w.changes[i].Type.rank() < w.changes[j].Type.rank()
	})

	logger.Debug("diff complete", "changes", len(w.changes))
	return w.changes, nil
}

// diffWalk carries the per-call state of one diff: the accumulated changes
// and the fingerprint memo tables. The memos are scoped to a single Diff
// call, keeping the walk free of process-wide mutable state.
type diffWalk struct {
	changes []Change
	memo    map[*document.Node]string
	umemo   map[*document.Node]string
	logger  document.Logger
}

func (w *diffWalk) fingerprint(n *document.Node) string {
	if fp, ok := w.memo[n]; ok {
		return fp
	}
	fp := document.Fingerprint(n)
	w.memo[n] = fp
	return fp
}

func (w *diffWalk) unorderedFingerprint(n *document.Node) string {
	if fp, ok := w.umemo[n]; ok {
		return fp
	}
	fp := document.UnorderedFingerprint(n)
	w.umemo[n] = fp
	return fp
}

func (w *diffWalk) add(c Change) {
	w.changes = append(w.changes, c)
}

// diffNodes compares two subtrees that occupy the same address.
func (w *diffWalk) diffNodes(addr document.Address, old, new *document.Node) {
	if old.Kind != new.Kind {
		w.add(Change{
			Address:  addr,
			Type:     ChangeTypeModified,
			OldValue: old,
			NewValue: new,
			Message:  fmt.Sprintf("value replaced: %s became %s", old.Kind, new.Kind),
		})
		return
	}

	switch old.Kind {
	case document.KindObject:
		w.diffObjects(addr, old, new)
	case document.KindArray:
		w.diffArrays(addr, old, new)
	default:
		if !old.Equal(new) {
			w.add(Change{
				Address:  addr,
				Type:     ChangeTypeModified,
				OldValue: old,
				NewValue: new,
				Message:  fmt.Sprintf("value changed from %s to %s", preview(old), preview(new)),
			})
		}
	}
}

// diffObjects compares object members by key name. Key renames surface as
// a removal plus an addition; see the package documentation.
func (w *diffWalk) diffObjects(addr document.Address, old, new *document.Node) {
	for _, k := range old.Keys() {
		child := addr.Child(document.Key(k))
		if nv := new.Field(k); nv != nil {
			w.diffNodes(child, old.Field(k), nv)
		} else {
			w.add(Change{
				Address:  child,
				Type:     ChangeTypeRemoved,
				OldValue: old.Field(k),
				Message:  fmt.Sprintf("removed %s", preview(old.Field(k))),
			})
		}
	}
	for _, k := range new.Keys() {
		if old.Field(k) == nil {
			w.add(Change{
				Address:  addr.Child(document.Key(k)),
				Type:     ChangeTypeAdded,
				NewValue: new.Field(k),
				Message:  fmt.Sprintf("added %s", preview(new.Field(k))),
			})
		}
	}
}

// diffArrays matches elements by content fingerprint so that pure
// reordering yields no changes. Elements present on only one side are
// first screened for pairing: an old/new pair that matches up to array
// ordering, or that shares most of its object structure, is treated as
// one modified element and diffed field by field under the old element's
// fingerprint address. The recursion then multiset-matches any nested
// arrays, so a reorder below the top level is equally invisible.
func (w *diffWalk) diffArrays(addr document.Address, old, new *document.Node) {
	newCount := make(map[string]int, len(new.Items))
	for _, item := range new.Items {
		newCount[w.fingerprint(item)]++
	}
	oldCount := make(map[string]int, len(old.Items))
	for _, item := range old.Items {
		oldCount[w.fingerprint(item)]++
	}

	// Elements whose fingerprint exists on both sides are the same logical
	// element regardless of position; fingerprint equality is content
	// identity, so they contribute no sub-differences. Occurrences beyond
	// the matched count are the removal/addition candidates.
	var removedOld, addedNew []*document.Node
	seen := make(map[string]int, len(oldCount))
	for _, item := range old.Items {
		fp := w.fingerprint(item)
		seen[fp]++
		if seen[fp] > newCount[fp] {
			removedOld = append(removedOld, item)
		}
	}
	seen = make(map[string]int, len(newCount))
	for _, item := range new.Items {
		fp := w.fingerprint(item)
		seen[fp]++
		if seen[fp] > oldCount[fp] {
			addedNew = append(addedNew, item)
		}
	}

	if len(removedOld) == 0 && len(addedNew) == 0 {
		return
	}
	w.logger.Debug("array elements unmatched by fingerprint",
		"address", addr.String(), "removed", len(removedOld), "added", len(addedNew))

	// Pair up modified elements before reporting removals/additions.
	paired := make(map[*document.Node]bool, len(addedNew))
	for _, oldItem := range removedOld {
		match := w.pairElement(oldItem, addedNew, paired)
		if match != nil {
			paired[match] = true
			w.diffNodes(addr.Child(document.Elem(w.fingerprint(oldItem))), oldItem, match)
			continue
		}
		w.add(Change{
			Address:  addr.Child(document.Elem(w.fingerprint(oldItem))),
			Type:     ChangeTypeRemoved,
			OldValue: oldItem,
			Message:  fmt.Sprintf("removed array element %s", preview(oldItem)),
		})
	}
	for _, newItem := range addedNew {
		if paired[newItem] {
			continue
		}
		w.add(Change{
			Address:  addr.Child(document.Elem(w.fingerprint(newItem))),
			Type:     ChangeTypeAdded,
			NewValue: newItem,
			Message:  fmt.Sprintf("added array element %s", preview(newItem)),
		})
	}
}

// pairElement finds the added element that corresponds to old. An element
// whose content matches up to array ordering at any depth is the same
// logical element and pairs unconditionally; remaining candidates go
// through the field-overlap heuristic.
func (w *diffWalk) pairElement(old *document.Node, candidates []*document.Node, paired map[*document.Node]bool) *document.Node {
	oldFP := w.unorderedFingerprint(old)
	for _, c := range candidates {
		if !paired[c] && w.unorderedFingerprint(c) == oldFP {
			return c
		}
	}
	for _, c := range candidates {
		if !paired[c] && isFieldModification(old, c) {
			return c
		}
	}
	return nil
}

// isFieldModification reports whether two array elements look like the same
// logical object with a few fields changed, rather than unrelated elements.
// Both must be objects sharing at least half of the larger key set, with at
// least half of the shared keys holding equal values. Array-valued fields
// count as equal when they match up to element order.
func isFieldModification(old, new *document.Node) bool {
	if old.Kind != document.KindObject || new.Kind != document.KindObject {
		return false
	}
	larger := old.Len()
	if new.Len() > larger {
		larger = new.Len()
	}
	if larger == 0 {
		return false
	}

	common := 0
	equal := 0
	for _, k := range old.Keys() {
		nv := new.Field(k)
		if nv == nil {
			continue
		}
		common++
		ov := old.Field(k)
		if ov.Equal(nv) {
			equal++
		} else if ov.Kind == document.KindArray && nv.Kind == document.KindArray &&
			document.UnorderedFingerprint(ov) == document.UnorderedFingerprint(nv) {
			equal++
		}
	}
	if common*2 < larger {
		return false
	}
	return equal*2 >= common
}

// previewLimit caps value previews in change messages.
const previewLimit = 60

// preview renders a compact JSON snippet of a node for change messages.
func preview(n *document.Node) string {
	if n == nil {
		return "null"
	}
	data, err := document.MarshalNodeJSON(n)
	if err != nil {
		return "<" + n.Kind.String() + ">"
	}
	s := string(data)
	if len(s) > previewLimit {
		return s[:previewLimit] + "…"
	}
	return s
}

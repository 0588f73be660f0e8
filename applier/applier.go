package applier

import (
	"fmt"
	"strings"

	"github.com/erraggy/specsync/document"
	"github.com/erraggy/specsync/fixstore"
)

// Status classifies what happened to a single fix during application.
type Status string

const (
	// StatusApplied means the fix mutated the document.
	StatusApplied Status = "applied"
	// StatusSkipped means the fix was a no-op: its effect was already
	// present in the document.
	StatusSkipped Status = "skipped"
	// StatusUnresolved means the fix's path could not be located and the
	// fix was not applied. Unresolved fixes need a human decision.
	StatusUnresolved Status = "unresolved"
)

// FixOutcome records the disposition of one fix.
type FixOutcome struct {
	// Fix is the operation as loaded from the store.
	Fix fixstore.Fix
	// Status is the disposition.
	Status Status
	// Reason explains skipped and unresolved outcomes in human terms.
	Reason string
}

// String renders the outcome as a single report line.
func (o FixOutcome) String() string {
	var sb strings.Builder
	sb.WriteString(string(o.Status))
	sb.WriteString(": ")
	sb.WriteString(o.Fix.String())
	if o.Reason != "" {
		sb.WriteString(" (")
		sb.WriteString(o.Reason)
		sb.WriteString(")")
	}
	return sb.String()
}

// Result is the outcome of applying a fix store to a document.
type Result struct {
	// Document is the corrected copy. The input document is never mutated.
	Document *document.Document
	// Outcomes holds one entry per fix, in store order.
	Outcomes []FixOutcome
}

// Applied returns the outcomes that mutated the document.
func (r *Result) Applied() []FixOutcome { return r.byStatus(StatusApplied) }

// Skipped returns the outcomes that were already satisfied.
func (r *Result) Skipped() []FixOutcome { return r.byStatus(StatusSkipped) }

// Unresolved returns the outcomes whose paths could not be located.
func (r *Result) Unresolved() []FixOutcome { return r.byStatus(StatusUnresolved) }

// HasUnresolved reports whether any fix failed to resolve.
func (r *Result) HasUnresolved() bool { return len(r.Unresolved()) > 0 }

func (r *Result) byStatus(s Status) []FixOutcome {
	var out []FixOutcome
	for _, o := range r.Outcomes {
		if o.Status == s {
			out = append(out, o)
		}
	}
	return out
}

// Summary returns a one-line count of outcomes, e.g.
// "3 applied, 1 skipped, 0 unresolved".
func (r *Result) Summary() string {
	return fmt.Sprintf("%d applied, %d skipped, %d unresolved",
		len(r.Applied()), len(r.Skipped()), len(r.Unresolved()))
}

// Applier applies fix stores to documents.
type Applier struct {
	// Logger receives per-fix debug output. Defaults to no logging.
	Logger document.Logger
}

// New creates an Applier with default settings.
func New() *Applier {
	return &Applier{Logger: document.NopLogger{}}
}

// Apply applies every fix in store to a deep copy of doc and returns the
// corrected copy along with per-fix outcomes. Fixes are applied in store
// order. A fix that cannot be resolved is recorded and skipped over; Apply
// only returns an error for nil inputs or a fix with an unparseable path,
// which indicates a corrupt store rather than document drift.
func (a *Applier) Apply(doc *document.Document, store *fixstore.Store) (*Result, error) {
	if doc == nil {
		return nil, fmt.Errorf("applier: document is nil")
	}
	if store == nil {
		return nil, fmt.Errorf("applier: fix store is nil")
	}
	logger := a.Logger
	if logger == nil {
		logger = document.NopLogger{}
	}

	st := &state{
		root:   doc.Root().Clone(),
		fps:    make(map[*document.Node]string),
		logger: logger,
	}
	result := &Result{Outcomes: make([]FixOutcome, 0, store.Len())}

	for _, fix := range store.Operations {
		addr, err := fix.Address()
		if err != nil {
			return nil, fmt.Errorf("applier: fix %q: %w", fix.Path, err)
		}
		outcome := st.applyFix(fix, addr)
		logger.Debug("fix processed",
			"op", string(fix.Op), "path", fix.Path,
			"status", string(outcome.Status), "reason", outcome.Reason)
		result.Outcomes = append(result.Outcomes, outcome)
	}

	corrected, err := document.FromNode(st.root)
	if err != nil {
		return nil, err
	}
	corrected.SourcePath = doc.SourcePath
	result.Document = corrected
	return result, nil
}

// state carries the working tree and the fingerprint cache for one run.
//
// The cache pins each array element to the fingerprint it had when first
// resolved. Later fixes addressing the same element still find it even
// after an earlier fix changed its content, so multi-fix edits to one
// element behave the same as a single combined edit.
type state struct {
	root   *document.Node
	fps    map[*document.Node]string
	logger document.Logger
}

func (st *state) fingerprintOf(n *document.Node) string {
	if fp, ok := st.fps[n]; ok {
		return fp
	}
	fp := document.Fingerprint(n)
	st.fps[n] = fp
	return fp
}

// resolve walks addr from the working root using cached element
// fingerprints. Returns nil when any segment fails.
func (st *state) resolve(addr document.Address) *document.Node {
	current := st.root
	for _, seg := range addr {
		if current == nil {
			return nil
		}
		if seg.IsElem() {
			if current.Kind != document.KindArray {
				return nil
			}
			current = st.findElem(current, seg.Fingerprint())
			continue
		}
		if current.Kind != document.KindObject {
			return nil
		}
		current = current.Field(seg.KeyName())
	}
	return current
}

func (st *state) findElem(arr *document.Node, fp string) *document.Node {
	for _, item := range arr.Items {
		if st.fingerprintOf(item) == fp {
			return item
		}
	}
	return nil
}

func (st *state) findElemIndex(arr *document.Node, fp string) int {
	for i, item := range arr.Items {
		if st.fingerprintOf(item) == fp {
			return i
		}
	}
	return -1
}

func (st *state) applyFix(fix fixstore.Fix, addr document.Address) FixOutcome {
	switch fix.Op {
	case fixstore.OpAddIfMissing:
		return st.applyAdd(fix, addr)
	case fixstore.OpDeleteValue:
		return st.applyDelete(fix, addr)
	case fixstore.OpReplaceValue:
		return st.applyReplace(fix, addr)
	default:
		return FixOutcome{Fix: fix, Status: StatusUnresolved,
			Reason: fmt.Sprintf("unknown operation %q", fix.Op)}
	}
}

func (st *state) applyAdd(fix fixstore.Fix, addr document.Address) FixOutcome {
	if len(addr) == 0 {
		return FixOutcome{Fix: fix, Status: StatusUnresolved, Reason: "empty path"}
	}
	if existing := st.resolve(addr); existing != nil {
		return FixOutcome{Fix: fix, Status: StatusSkipped, Reason: "already present"}
	}
	if st.appliedEarlier(fix, addr) {
		return FixOutcome{Fix: fix, Status: StatusSkipped, Reason: "already added"}
	}

	last := addr[len(addr)-1]
	parentAddr := addr[:len(addr)-1]

	if last.IsElem() {
		// An element fix records the fingerprint of the payload itself;
		// absence means the element is missing and gets appended.
		arr := st.resolve(parentAddr)
		if arr == nil || arr.Kind != document.KindArray {
			return FixOutcome{Fix: fix, Status: StatusUnresolved, Reason: "parent array not found"}
		}
		if fix.Value == nil {
			return FixOutcome{Fix: fix, Status: StatusUnresolved, Reason: "fix has no value"}
		}
		arr.Items = append(arr.Items, fix.Value.Clone())
		return FixOutcome{Fix: fix, Status: StatusApplied}
	}

	// Walk down to the nearest resolvable ancestor and create any missing
	// intermediate objects along the remaining key segments.
	current := st.root
	for i, seg := range addr[:len(addr)-1] {
		if seg.IsElem() {
			if current.Kind != document.KindArray {
				return FixOutcome{Fix: fix, Status: StatusUnresolved,
					Reason: fmt.Sprintf("segment %d is not an array", i)}
			}
			next := st.findElem(current, seg.Fingerprint())
			if next == nil {
				return FixOutcome{Fix: fix, Status: StatusUnresolved,
					Reason: "containing array element not found"}
			}
			current = next
			continue
		}
		if current.Kind != document.KindObject {
			return FixOutcome{Fix: fix, Status: StatusUnresolved,
				Reason: fmt.Sprintf("segment %d is not an object", i)}
		}
		next := current.Field(seg.KeyName())
		if next == nil {
			next = document.NewObject()
			current.Set(seg.KeyName(), next)
		}
		current = next
	}
	if current.Kind != document.KindObject {
		return FixOutcome{Fix: fix, Status: StatusUnresolved, Reason: "parent is not an object"}
	}
	if fix.Value == nil {
		return FixOutcome{Fix: fix, Status: StatusUnresolved, Reason: "fix has no value"}
	}
	current.Set(last.KeyName(), fix.Value.Clone())
	return FixOutcome{Fix: fix, Status: StatusApplied}
}

func (st *state) applyDelete(fix fixstore.Fix, addr document.Address) FixOutcome {
	if len(addr) == 0 {
		return FixOutcome{Fix: fix, Status: StatusUnresolved, Reason: "cannot delete document root"}
	}
	last := addr[len(addr)-1]
	parent := st.resolve(addr[:len(addr)-1])
	if parent == nil {
		// Absence is the desired end state for a delete.
		return FixOutcome{Fix: fix, Status: StatusSkipped, Reason: "not present"}
	}

	if last.IsElem() {
		if parent.Kind != document.KindArray {
			return FixOutcome{Fix: fix, Status: StatusSkipped, Reason: "not present"}
		}
		idx := st.findElemIndex(parent, last.Fingerprint())
		if idx < 0 {
			return FixOutcome{Fix: fix, Status: StatusSkipped, Reason: "not present"}
		}
		parent.Items = append(parent.Items[:idx], parent.Items[idx+1:]...)
		return FixOutcome{Fix: fix, Status: StatusApplied}
	}

	if parent.Kind != document.KindObject || parent.Field(last.KeyName()) == nil {
		return FixOutcome{Fix: fix, Status: StatusSkipped, Reason: "not present"}
	}
	parent.Delete(last.KeyName())
	return FixOutcome{Fix: fix, Status: StatusApplied}
}

func (st *state) applyReplace(fix fixstore.Fix, addr document.Address) FixOutcome {
	if fix.Value == nil {
		return FixOutcome{Fix: fix, Status: StatusUnresolved, Reason: "fix has no value"}
	}
	if len(addr) == 0 {
		return FixOutcome{Fix: fix, Status: StatusUnresolved, Reason: "cannot replace document root"}
	}
	target := st.resolve(addr)
	if target == nil {
		if st.appliedEarlier(fix, addr) {
			return FixOutcome{Fix: fix, Status: StatusSkipped, Reason: "already replaced"}
		}
		return FixOutcome{Fix: fix, Status: StatusUnresolved, Reason: "path not found"}
	}
	if target.Equal(fix.Value) {
		return FixOutcome{Fix: fix, Status: StatusSkipped, Reason: "already equal"}
	}

	last := addr[len(addr)-1]
	parent := st.resolve(addr[:len(addr)-1])
	if last.IsElem() {
		idx := st.findElemIndex(parent, last.Fingerprint())
		if idx < 0 {
			return FixOutcome{Fix: fix, Status: StatusUnresolved, Reason: "path not found"}
		}
		replacement := fix.Value.Clone()
		// Keep the replaced element addressable by its recorded
		// fingerprint for any later fixes in the same run.
		st.fps[replacement] = last.Fingerprint()
		parent.Items[idx] = replacement
		return FixOutcome{Fix: fix, Status: StatusApplied}
	}
	parent.Set(last.KeyName(), fix.Value.Clone())
	return FixOutcome{Fix: fix, Status: StatusApplied}
}

// appliedEarlier detects a fix whose array element fingerprint no longer
// matches because a previous run of this same fix changed the element's
// content. It rewinds the fix on a copy of each candidate element: if
// undoing the fix reproduces the recorded fingerprint and the element's
// current state already satisfies the fix, the fix was applied before.
func (st *state) appliedEarlier(fix fixstore.Fix, addr document.Address) bool {
	// Locate the innermost element segment; fixes under a drifting
	// fingerprint always pass through one.
	elemIdx := -1
	for i, seg := range addr {
		if seg.IsElem() {
			elemIdx = i
		}
	}
	if elemIdx < 0 {
		return false
	}
	if elemIdx == len(addr)-1 {
		// Whole-element replacement: the recorded fingerprint is the old
		// content, so it matches only when the old value hashes to it and
		// the new content is already in place.
		if fix.Op != fixstore.OpReplaceValue || fix.OldValue == nil {
			return false
		}
		if document.Fingerprint(fix.OldValue) != addr[elemIdx].Fingerprint() {
			return false
		}
		arr := st.resolve(addr[:len(addr)-1])
		if arr == nil || arr.Kind != document.KindArray {
			return false
		}
		for _, elem := range arr.Items {
			if elem.Equal(fix.Value) {
				return true
			}
		}
		return false
	}
	rest := addr[elemIdx+1:]
	for _, seg := range rest {
		if seg.IsElem() {
			return false
		}
	}
	arr := st.resolve(addr[:elemIdx])
	if arr == nil || arr.Kind != document.KindArray {
		return false
	}
	wantFP := addr[elemIdx].Fingerprint()

	for _, elem := range arr.Items {
		if !st.satisfies(fix, elem, rest) {
			continue
		}
		undone := elem.Clone()
		if !st.rewind(fix, undone, rest) {
			continue
		}
		if document.Fingerprint(undone) == wantFP {
			return true
		}
	}
	return false
}

// satisfies reports whether elem already reflects the fix's end state at
// the key path rest.
func (st *state) satisfies(fix fixstore.Fix, elem *document.Node, rest document.Address) bool {
	current := elem.Get(rest)
	switch fix.Op {
	case fixstore.OpDeleteValue:
		return current == nil
	case fixstore.OpAddIfMissing, fixstore.OpReplaceValue:
		return current != nil && current.Equal(fix.Value)
	default:
		return false
	}
}

// rewind undoes the fix's effect on elem in place. Returns false when the
// undo cannot be performed, e.g. the recorded old value is missing.
func (st *state) rewind(fix fixstore.Fix, elem *document.Node, rest document.Address) bool {
	switch fix.Op {
	case fixstore.OpAddIfMissing:
		return deleteAtKeys(elem, rest)
	case fixstore.OpDeleteValue, fixstore.OpReplaceValue:
		if fix.OldValue == nil {
			return false
		}
		return setAtKeys(elem, rest, fix.OldValue.Clone())
	default:
		return false
	}
}

// setAtKeys sets value at a key-only path relative to n, without creating
// intermediate nodes.
func setAtKeys(n *document.Node, rest document.Address, value *document.Node) bool {
	if len(rest) == 0 {
		return false
	}
	parent := n.Get(rest[:len(rest)-1])
	if parent == nil || parent.Kind != document.KindObject {
		return false
	}
	parent.Set(rest[len(rest)-1].KeyName(), value)
	return true
}

// deleteAtKeys removes the member at a key-only path relative to n.
func deleteAtKeys(n *document.Node, rest document.Address) bool {
	if len(rest) == 0 {
		return false
	}
	parent := n.Get(rest[:len(rest)-1])
	if parent == nil || parent.Kind != document.KindObject {
		return false
	}
	return parent.Delete(rest[len(rest)-1].KeyName())
}

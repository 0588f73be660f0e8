package reconciler

import (
	"fmt"
	"strings"

	"github.com/erraggy/specsync/applier"
	"github.com/erraggy/specsync/differ"
	"github.com/erraggy/specsync/fixstore"
)

// Report describes the disposition of every fix and the upstream changes
// outside the fix set.
type Report struct {
	// Retained holds the fixes that survive the update.
	Retained []fixstore.Fix
	// Obsolete holds the fixes pruned by the update, with reasons.
	Obsolete []ObsoleteFix
	// Unresolved holds retained fixes that nevertheless failed to apply to
	// the new upstream. Each one needs a human decision.
	Unresolved []applier.FixOutcome
	// NewCandidates holds upstream differences no fix covers. They are
	// informational: upstream is the source of truth for its own changes.
	NewCandidates []differ.Change
}

// Clean reports whether the run needs no human attention: every retained
// fix applied and nothing was pruned.
func (r Report) Clean() bool {
	return len(r.Unresolved) == 0 && len(r.Obsolete) == 0
}

// String renders the report as a multi-line human-readable summary, one
// section per category, empty categories omitted.
func (r Report) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "reconciliation: %d retained, %d obsolete, %d unresolved, %d new candidates\n",
		len(r.Retained), len(r.Obsolete), len(r.Unresolved), len(r.NewCandidates))

	if len(r.Obsolete) > 0 {
		sb.WriteString("\nObsolete fixes (pruned):\n")
		for _, o := range r.Obsolete {
			fmt.Fprintf(&sb, "  %s\n", o.String())
		}
	}
	if len(r.Unresolved) > 0 {
		sb.WriteString("\nUnresolved fixes (need review):\n")
		for _, u := range r.Unresolved {
			fmt.Fprintf(&sb, "  %s\n", u.String())
		}
	}
	if len(r.NewCandidates) > 0 {
		sb.WriteString("\nUpstream changes not covered by fixes:\n")
		for _, c := range r.NewCandidates {
			fmt.Fprintf(&sb, "  %s\n", c.String())
		}
	}
	return sb.String()
}

// Summary is the serializable form of a Report, used for the CLI's yaml
// and json output modes.
type Summary struct {
	Retained      []string `json:"retained" yaml:"retained"`
	Obsolete      []string `json:"obsolete" yaml:"obsolete"`
	Unresolved    []string `json:"unresolved" yaml:"unresolved"`
	NewCandidates []string `json:"new_candidates" yaml:"new_candidates"`
}

// Summarize flattens the report to one line per entry.
func (r Report) Summarize() Summary {
	s := Summary{
		Retained:      make([]string, 0, len(r.Retained)),
		Obsolete:      make([]string, 0, len(r.Obsolete)),
		Unresolved:    make([]string, 0, len(r.Unresolved)),
		NewCandidates: make([]string, 0, len(r.NewCandidates)),
	}
	for _, f := range r.Retained {
		s.Retained = append(s.Retained, f.String())
	}
	for _, o := range r.Obsolete {
		s.Obsolete = append(s.Obsolete, o.String())
	}
	for _, u := range r.Unresolved {
		s.Unresolved = append(s.Unresolved, u.String())
	}
	for _, c := range r.NewCandidates {
		s.NewCandidates = append(s.NewCandidates, c.String())
	}
	return s
}

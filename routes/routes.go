package routes

import (
	"fmt"
	"sort"
	"strings"

	"github.com/erraggy/specsync/document"
)

// httpMethods lists the OpenAPI path item operation keys, in the order
// routes are reported for a given path.
var httpMethods = []string{"get", "put", "post", "delete", "options", "head", "patch", "trace"}

// Route is one method+path operation from an OpenAPI document.
type Route struct {
	// Method is the upper-cased HTTP method.
	Method string `json:"method"`
	// Path is the route template, e.g. "/object/item/{id}".
	Path string `json:"path"`
	// OperationID is the operation's operationId, if any.
	OperationID string `json:"operation_id,omitempty"`
	// Tags lists the operation's tags in document order.
	Tags []string `json:"tags,omitempty"`
	// Summary is the operation's one-line summary, if any.
	Summary string `json:"summary,omitempty"`
	// Deprecated reports whether the operation is marked deprecated.
	Deprecated bool `json:"deprecated,omitempty"`
}

// String returns the route as "METHOD path".
func (r Route) String() string {
	return fmt.Sprintf("%s %s", r.Method, r.Path)
}

// Extract returns every operation under the document's paths object.
// Paths are sorted lexicographically; methods within a path follow the
// conventional method order. A missing or empty paths object yields an
// empty slice.
func Extract(doc *document.Document) []Route {
	if doc == nil {
		return nil
	}
	paths := doc.Root().Field("paths")
	if paths == nil || paths.Kind != document.KindObject {
		return nil
	}

	pathKeys := append([]string(nil), paths.Keys()...)
	sort.Strings(pathKeys)

	var out []Route
	for _, path := range pathKeys {
		item := paths.Field(path)
		if item == nil || item.Kind != document.KindObject {
			continue
		}
		for _, method := range httpMethods {
			op := item.Field(method)
			if op == nil || op.Kind != document.KindObject {
				continue
			}
			out = append(out, routeFromOperation(method, path, op))
		}
	}
	return out
}

func routeFromOperation(method, path string, op *document.Node) Route {
	r := Route{Method: strings.ToUpper(method), Path: path}
	if id := op.Field("operationId"); id != nil {
		if s, ok := id.Value.(string); ok {
			r.OperationID = s
		}
	}
	if summary := op.Field("summary"); summary != nil {
		if s, ok := summary.Value.(string); ok {
			r.Summary = s
		}
	}
	if dep := op.Field("deprecated"); dep != nil {
		if b, ok := dep.Value.(bool); ok {
			r.Deprecated = b
		}
	}
	if tags := op.Field("tags"); tags != nil && tags.Kind == document.KindArray {
		for _, tag := range tags.Items {
			if s, ok := tag.Value.(string); ok {
				r.Tags = append(r.Tags, s)
			}
		}
	}
	return r
}

// Stats summarizes a route inventory.
type Stats struct {
	// Routes is the total operation count.
	Routes int `json:"routes"`
	// ByMethod counts operations per HTTP method.
	ByMethod map[string]int `json:"by_method"`
	// ByTag counts operations per tag; untagged operations count under "".
	ByTag map[string]int `json:"by_tag"`
	// Deprecated counts operations marked deprecated.
	Deprecated int `json:"deprecated"`
	// MissingOperationID counts operations without an operationId.
	MissingOperationID int `json:"missing_operation_id"`
}

// Analyze computes summary statistics over a route inventory.
func Analyze(rs []Route) Stats {
	s := Stats{
		ByMethod: make(map[string]int),
		ByTag:    make(map[string]int),
	}
	for _, r := range rs {
		s.Routes++
		s.ByMethod[r.Method]++
		if len(r.Tags) == 0 {
			s.ByTag[""]++
		}
		for _, tag := range r.Tags {
			s.ByTag[tag]++
		}
		if r.Deprecated {
			s.Deprecated++
		}
		if r.OperationID == "" {
			s.MissingOperationID++
		}
	}
	return s
}

// String renders the stats as a short multi-line summary.
func (s Stats) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Routes: %d\n", s.Routes)
	fmt.Fprintf(&sb, "Deprecated: %d\n", s.Deprecated)
	fmt.Fprintf(&sb, "Missing operationId: %d\n", s.MissingOperationID)

	sb.WriteString("By method:\n")
	for _, method := range sortedKeys(s.ByMethod) {
		fmt.Fprintf(&sb, "  %s: %d\n", method, s.ByMethod[method])
	}
	sb.WriteString("By tag:\n")
	for _, tag := range sortedKeys(s.ByTag) {
		name := tag
		if name == "" {
			name = "(untagged)"
		}
		fmt.Fprintf(&sb, "  %s: %d\n", name, s.ByTag[tag])
	}
	return sb.String()
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

package routes

import (
	"fmt"
	"sort"
	"strings"

	"github.com/erraggy/specsync/document"
)

// Analysis is a structural survey of an OpenAPI document: the API identity,
// where it is served, how callers authenticate, which response codes and
// payload shapes its operations use, and what data models it defines.
type Analysis struct {
	// Title is the API title from the info object.
	Title string `json:"title,omitempty"`
	// Version is the API version from the info object.
	Version string `json:"version,omitempty"`
	// Description is the API description from the info object.
	Description string `json:"description,omitempty"`
	// OpenAPIVersion is the document's declared OpenAPI version.
	OpenAPIVersion string `json:"openapi_version,omitempty"`
	// Servers lists the server URLs in document order.
	Servers []string `json:"servers,omitempty"`
	// SecuritySchemes maps scheme name to a short description of its kind,
	// e.g. "http (bearer)" or "apiKey (header X-Api-Key)".
	SecuritySchemes map[string]string `json:"security_schemes,omitempty"`
	// ResponseCodes counts how many operations declare each status code.
	ResponseCodes map[string]int `json:"response_codes,omitempty"`
	// ParameterLocations counts operation parameters by their "in" value.
	ParameterLocations map[string]int `json:"parameter_locations,omitempty"`
	// RequestBodyMediaTypes counts request bodies by declared media type.
	RequestBodyMediaTypes map[string]int `json:"request_body_media_types,omitempty"`
	// Schemas lists the component schema names, sorted.
	Schemas []string `json:"schemas,omitempty"`
	// Routes holds the route inventory summary.
	Routes Stats `json:"route_stats"`
}

// AnalyzeDocument surveys an OpenAPI document. Sections absent from the
// document are left zero-valued; nothing about the document shape is
// required beyond it being an object root.
func AnalyzeDocument(doc *document.Document) Analysis {
	a := Analysis{
		ResponseCodes:         make(map[string]int),
		ParameterLocations:    make(map[string]int),
		RequestBodyMediaTypes: make(map[string]int),
	}
	if doc == nil {
		return a
	}
	root := doc.Root()

	if info := root.Field("info"); info != nil && info.Kind == document.KindObject {
		a.Title = stringField(info, "title")
		a.Version = stringField(info, "version")
		a.Description = stringField(info, "description")
	}
	a.OpenAPIVersion = stringField(root, "openapi")

	if servers := root.Field("servers"); servers != nil && servers.Kind == document.KindArray {
		for _, srv := range servers.Items {
			if srv.Kind != document.KindObject {
				continue
			}
			if url := stringField(srv, "url"); url != "" {
				a.Servers = append(a.Servers, url)
			}
		}
	}

	if components := root.Field("components"); components != nil && components.Kind == document.KindObject {
		if schemes := components.Field("securitySchemes"); schemes != nil && schemes.Kind == document.KindObject {
			a.SecuritySchemes = make(map[string]string, schemes.Len())
			for _, name := range schemes.Keys() {
				if def := schemes.Field(name); def != nil && def.Kind == document.KindObject {
					a.SecuritySchemes[name] = describeSecurityScheme(def)
				}
			}
		}
		if schemas := components.Field("schemas"); schemas != nil && schemas.Kind == document.KindObject {
			a.Schemas = append(a.Schemas, schemas.Keys()...)
			sort.Strings(a.Schemas)
		}
	}

	forEachOperation(root, func(op *document.Node) {
		if responses := op.Field("responses"); responses != nil && responses.Kind == document.KindObject {
			for _, code := range responses.Keys() {
				a.ResponseCodes[code]++
			}
		}
		if params := op.Field("parameters"); params != nil && params.Kind == document.KindArray {
			for _, p := range params.Items {
				if p.Kind != document.KindObject {
					continue
				}
				if in := stringField(p, "in"); in != "" {
					a.ParameterLocations[in]++
				}
			}
		}
		body := op.Field("requestBody")
		if body == nil || body.Kind != document.KindObject {
			return
		}
		if content := body.Field("content"); content != nil && content.Kind == document.KindObject {
			for _, mt := range content.Keys() {
				a.RequestBodyMediaTypes[mt]++
			}
		}
	})

	a.Routes = Analyze(Extract(doc))
	return a
}

// forEachOperation invokes fn for every method operation under the paths
// object, in inventory order.
func forEachOperation(root *document.Node, fn func(op *document.Node)) {
	paths := root.Field("paths")
	if paths == nil || paths.Kind != document.KindObject {
		return
	}
	pathKeys := append([]string(nil), paths.Keys()...)
	sort.Strings(pathKeys)
	for _, path := range pathKeys {
		item := paths.Field(path)
		if item == nil || item.Kind != document.KindObject {
			continue
		}
		for _, method := range httpMethods {
			if op := item.Field(method); op != nil && op.Kind == document.KindObject {
				fn(op)
			}
		}
	}
}

// describeSecurityScheme renders a one-line summary of a security scheme
// definition, e.g. "http (bearer)" or "apiKey (header X-Api-Key)".
func describeSecurityScheme(scheme *document.Node) string {
	typ := stringField(scheme, "type")
	switch typ {
	case "http":
		if s := stringField(scheme, "scheme"); s != "" {
			return fmt.Sprintf("http (%s)", s)
		}
	case "apiKey":
		in := stringField(scheme, "in")
		name := stringField(scheme, "name")
		if in != "" || name != "" {
			return strings.TrimSpace(fmt.Sprintf("apiKey (%s %s)", in, name))
		}
	}
	if typ == "" {
		return "unknown"
	}
	return typ
}

// stringField returns the string value of an object field, or "" when the
// field is missing or not a string.
func stringField(n *document.Node, key string) string {
	f := n.Field(key)
	if f == nil {
		return ""
	}
	s, _ := f.Value.(string)
	return s
}

// String renders the analysis as a multi-line text report.
func (a Analysis) String() string {
	var sb strings.Builder

	title := a.Title
	if title == "" {
		title = "(untitled)"
	}
	fmt.Fprintf(&sb, "API: %s", title)
	if a.Version != "" {
		fmt.Fprintf(&sb, " v%s", a.Version)
	}
	if a.OpenAPIVersion != "" {
		fmt.Fprintf(&sb, " (OpenAPI %s)", a.OpenAPIVersion)
	}
	sb.WriteByte('\n')
	if a.Description != "" {
		fmt.Fprintf(&sb, "  %s\n", firstLine(a.Description))
	}

	if len(a.Servers) > 0 {
		sb.WriteString("Servers:\n")
		for _, s := range a.Servers {
			fmt.Fprintf(&sb, "  - %s\n", s)
		}
	}
	if len(a.SecuritySchemes) > 0 {
		sb.WriteString("Security schemes:\n")
		for _, name := range sortedStringKeys(a.SecuritySchemes) {
			fmt.Fprintf(&sb, "  - %s: %s\n", name, a.SecuritySchemes[name])
		}
	}
	if len(a.ResponseCodes) > 0 {
		sb.WriteString("Response codes:\n")
		for _, code := range sortedKeys(a.ResponseCodes) {
			fmt.Fprintf(&sb, "  %s: %d\n", code, a.ResponseCodes[code])
		}
	}
	if len(a.ParameterLocations) > 0 {
		sb.WriteString("Parameters by location:\n")
		for _, loc := range sortedKeys(a.ParameterLocations) {
			fmt.Fprintf(&sb, "  %s: %d\n", loc, a.ParameterLocations[loc])
		}
	}
	if len(a.RequestBodyMediaTypes) > 0 {
		sb.WriteString("Request body media types:\n")
		for _, mt := range sortedKeys(a.RequestBodyMediaTypes) {
			fmt.Fprintf(&sb, "  %s: %d\n", mt, a.RequestBodyMediaTypes[mt])
		}
	}
	if len(a.Schemas) > 0 {
		fmt.Fprintf(&sb, "Schemas (%d):\n", len(a.Schemas))
		for _, name := range a.Schemas {
			fmt.Fprintf(&sb, "  - %s\n", name)
		}
	}
	sb.WriteString(a.Routes.String())
	return sb.String()
}

// firstLine truncates a description to its first non-empty line.
func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if t := strings.TrimSpace(line); t != "" {
			return t
		}
	}
	return ""
}

func sortedStringKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

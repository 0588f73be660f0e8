// Package routes extracts the HTTP route inventory from an OpenAPI
// document and renders it for humans or machines. [AnalyzeDocument]
// widens the survey beyond routes to the document's overall structure:
// API info, servers, security schemes, response code and payload
// patterns, and component schemas.
//
// Everything here is purely structural: it reads the paths object, the
// operation fields relevant to an inventory (operationId, tags, summary,
// deprecated), and the components section, without validating the document
// against any OpenAPI schema.
package routes

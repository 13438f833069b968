package obs

import "strings"

// resources whose second path segment is a record id.
var idResources = map[string]struct{}{
	"complaints": {},
	"guests":     {},
	"notices":    {},
	"payments":   {},
	"properties": {},
	"users":      {},
}

// fixed sub-collections that are not record ids.
var fixedSegments = map[string]struct{}{
	"stats":          {},
	"pending":        {},
	"pending-guests": {},
	"profile":        {},
}

// CanonicalPath collapses record ids out of request paths so metric label
// cardinality stays bounded: /api/complaints/01J.../comments becomes
// /api/complaints/:id/comments.
func CanonicalPath(raw string) string {
	if raw == "" {
		return "/"
	}
	if i := strings.IndexByte(raw, '?'); i >= 0 {
		raw = raw[:i]
	}
	parts := strings.Split(strings.Trim(raw, "/"), "/")
	if len(parts) < 3 || parts[0] != "api" {
		return raw
	}
	if _, ok := idResources[parts[1]]; !ok {
		return raw
	}
	if _, ok := fixedSegments[parts[2]]; ok {
		return raw
	}
	parts[2] = ":id"
	return "/" + strings.Join(parts, "/")
}

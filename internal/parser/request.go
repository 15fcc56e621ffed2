package parser

import (
	"strings"
	"unicode"
)

const (
	// UnknownMethod is used when the request line is empty
	UnknownMethod = "UNKNOWN"

	// NoValue marks a missing path or query string
	NoValue = "-"
)

// DecomposeRequest splits a request line such as "GET /a?x=1 HTTP/1.1" into
// method, path and query. It never fails: missing parts fall back to
// UnknownMethod and NoValue. The query is split at the first '?' and left
// undecoded.
func DecomposeRequest(request string) (method, path, query string) {
	method, full := UnknownMethod, NoValue

	parts := strings.Fields(request)
	if len(parts) > 0 {
		method = parts[0]
	}
	if len(parts) > 1 {
		full = parts[1]
	}

	path, query, found := strings.Cut(full, "?")
	if !found {
		query = NoValue
	}
	return method, path, query
}

// RequestMethod returns only the method of a request line, with the same
// defaulting as DecomposeRequest.
func RequestMethod(request string) string {
	request = strings.TrimLeftFunc(request, unicode.IsSpace)
	if request == "" {
		return UnknownMethod
	}
	if i := strings.IndexFunc(request, unicode.IsSpace); i >= 0 {
		return request[:i]
	}
	return request
}

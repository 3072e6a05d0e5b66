package transport

import "strings"

// APIRoot is the prefix catalogue paths carry
const APIRoot = "/api"

// NormalizePath strips the API root from path when baseURL already ends
// with it, so the prefix is never doubled.
func NormalizePath(baseURL, path string) string {
	if !strings.HasSuffix(strings.TrimRight(baseURL, "/"), APIRoot) {
		return path
	}
	if path == APIRoot {
		return "/"
	}
	if strings.HasPrefix(path, APIRoot+"/") {
		return path[len(APIRoot):]
	}
	return path
}

// Package validate checks a call against its catalogue entry before anything
// is sent: path and query parameters, body size and nesting, the
// request-body JSON schema, required fields and oneOf groups.
//
// Business semantics of the body are out of scope; the checks are
// structural only.
package validate

// Package catalogue holds the immutable operation catalogue the engine is
// built from.
//
// The catalogue is produced once at process start, either directly from Go
// values (New) or from catalogue documents on disk (LoadFile, LoadDir). A
// document carries entries, dependency records and named request-body
// schemas, and may be written as JSON, YAML or TOML.
//
// Once constructed a Catalogue is never mutated and can be shared by any
// number of goroutines without locking.
package catalogue

package catalogue

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/bytedance/sonic"
	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/sync/errgroup"
)

// DefaultPattern matches every supported document format below a directory
const DefaultPattern = "**/*.{json,yaml,yml,toml}"

// maxParallelReads bounds concurrent document decoding in LoadDir
const maxParallelReads = 8

// LoadFile reads a single catalogue document
func LoadFile(path string) (*Catalogue, error) {
	doc, err := ReadDocument(path)
	if err != nil {
		return nil, err
	}
	return FromDocument(doc)
}

// LoadDir reads every document under root matching pattern and merges them
// into one catalogue. Documents are merged in path order.
func LoadDir(ctx context.Context, root, pattern string) (*Catalogue, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}

	matches, err := doublestar.FilepathGlob(filepath.Join(root, pattern))
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", pattern, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoDocuments, root)
	}
	sort.Strings(matches)

	docs := make([]Document, len(matches))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelReads)
	for i, path := range matches {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			doc, err := ReadDocument(path)
			if err != nil {
				return err
			}
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return FromDocument(Merge(docs...))
}

// ReadDocument decodes a document, picking the format from the extension
func ReadDocument(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("read %s: %w", path, err)
	}
	doc, err := Decode(data, filepath.Ext(path))
	if err != nil {
		return Document{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return doc, nil
}

// Decode parses document bytes in the format named by ext (".json",
// ".yaml", ".yml" or ".toml")
func Decode(data []byte, ext string) (Document, error) {
	var doc Document
	switch strings.ToLower(ext) {
	case ".json":
		if err := sonic.Unmarshal(data, &doc); err != nil {
			return Document{}, err
		}
	case ".yaml", ".yml":
		var raw interface{}
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return Document{}, err
		}
		if err := reencode(raw, &doc); err != nil {
			return Document{}, err
		}
	case ".toml":
		var raw map[string]interface{}
		if err := toml.Unmarshal(data, &raw); err != nil {
			return Document{}, err
		}
		if err := reencode(raw, &doc); err != nil {
			return Document{}, err
		}
	default:
		return Document{}, fmt.Errorf("unsupported catalogue format %q", ext)
	}
	return doc, nil
}

// reencode routes generic YAML/TOML values through JSON so the json tags on
// the catalogue types are the single source of field names
func reencode(raw interface{}, doc *Document) error {
	data, err := sonic.Marshal(raw)
	if err != nil {
		return err
	}
	return sonic.Unmarshal(data, doc)
}

// Merge concatenates documents. The first schema registered under a ref wins.
func Merge(docs ...Document) Document {
	out := Document{Schemas: make(map[string]interface{})}
	for _, d := range docs {
		out.Entries = append(out.Entries, d.Entries...)
		out.Dependencies = append(out.Dependencies, d.Dependencies...)
		for ref, schema := range d.Schemas {
			if _, exists := out.Schemas[ref]; !exists {
				out.Schemas[ref] = schema
			}
		}
	}
	return out
}

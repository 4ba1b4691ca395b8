// SPDX-License-Identifier: Apache-2.0

package document

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/goccy/go-yaml/ast"
	"github.com/goccy/go-yaml/parser"
)

// Decode parses a serialized ParsedDocument. JSON is accepted as a subset
// of YAML, so both encodings go through the same decoder.
func Decode(data []byte) (*ParsedDocument, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyInput
	}
	if err := rejectAliases(data); err != nil {
		return nil, err
	}
	var doc ParsedDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document: %w", err)
	}
	return &doc, nil
}

// rejectAliases fails on YAML alias nodes. Aliases would share subtrees
// between parents and expand exponentially when chained.
func rejectAliases(data []byte) error {
	file, err := parser.ParseBytes(data, 0)
	if err != nil {
		return fmt.Errorf("failed to unmarshal document: %w", err)
	}
	for _, doc := range file.Docs {
		aliases := ast.Filter(ast.AliasType, doc)
		if len(aliases) == 0 {
			continue
		}
		if tk := aliases[0].GetToken(); tk != nil && tk.Position != nil {
			return fmt.Errorf("%w: line %d", ErrAliasNotAllowed, tk.Position.Line)
		}
		return ErrAliasNotAllowed
	}
	return nil
}

// LoadFile reads, validates and decodes a document file. Supported
// extensions are .json, .yaml and .yml.
func LoadFile(path string) (*ParsedDocument, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedEncoding, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if err := Validate(data); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	doc, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// SPDX-License-Identifier: Apache-2.0

package document

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyInput is returned when there is no serialized document to decode.
	ErrEmptyInput = errors.New("document: empty input")

	// ErrUnsupportedEncoding is returned for files that are neither JSON nor YAML.
	ErrUnsupportedEncoding = errors.New("document: unsupported encoding")

	// ErrAliasNotAllowed is returned for YAML input that uses aliases.
	ErrAliasNotAllowed = errors.New("document: yaml aliases are not allowed")

	// ErrTooDeep is matched by DepthError.
	ErrTooDeep = errors.New("document: tree too deep")
)

// DepthError reports a tree that nests deeper than the configured limit.
type DepthError struct {
	Depth int
	Limit int
}

func (e *DepthError) Error() string {
	return fmt.Sprintf("document: tree depth %d exceeds limit %d", e.Depth, e.Limit)
}

func (e *DepthError) Is(target error) bool {
	return target == ErrTooDeep
}

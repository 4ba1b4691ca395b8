// SPDX-License-Identifier: Apache-2.0

package document

import (
	"bytes"
	_ "embed"
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/goccy/go-yaml"
)

//go:embed schema.cue
var schemaSource string

// cue.Context is not safe for concurrent use; all access goes through mu.
var (
	mu         sync.Mutex
	schemaOnce sync.Once
	cueCtx     *cue.Context
	docSchema  cue.Value
	schemaErr  error
)

func loadSchema() {
	cueCtx = cuecontext.New()
	compiled := cueCtx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := compiled.Err(); err != nil {
		schemaErr = fmt.Errorf("compile document schema: %w", err)
		return
	}
	docSchema = compiled.LookupPath(cue.ParsePath("#Document"))
	if err := docSchema.Err(); err != nil {
		schemaErr = fmt.Errorf("lookup #Document: %w", err)
	}
}

// Validate checks a serialized document (JSON or YAML) against the
// embedded CUE schema before it is decoded into Go types.
func Validate(data []byte) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return ErrEmptyInput
	}
	if err := rejectAliases(data); err != nil {
		return err
	}
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to unmarshal document: %w", err)
	}
	if _, ok := raw.(map[string]any); !ok {
		return fmt.Errorf("invalid document: top level must be an object, got %T", raw)
	}

	mu.Lock()
	defer mu.Unlock()

	schemaOnce.Do(loadSchema)
	if schemaErr != nil {
		return schemaErr
	}

	v := cueCtx.Encode(raw)
	if err := v.Err(); err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	if err := docSchema.Unify(v).Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("invalid document: %w", err)
	}
	return nil
}

// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const slidesJSON = `{
  "type": "pptx",
  "content": [
    {"type": "heading", "metadata": {"level": 1}, "children": [{"type": "text", "text": "Welcome"}]},
    {"type": "paragraph", "children": [{"type": "text", "text": "Hello"}]}
  ]
}`

const memoYAML = `type: docx
content:
  - type: heading
    metadata:
      level: 2
    children:
      - type: text
        text: Memo
  - type: paragraph
    children:
      - type: text
        text: <u>raw</u> body
`

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestTextCommand(t *testing.T) {
	dir := t.TempDir()
	slides := writeFile(t, dir, "slides.json", slidesJSON)
	memo := writeFile(t, dir, "memo.yaml", memoYAML)

	out, _, err := execute(t, "text", slides)
	require.NoError(t, err)
	assert.Equal(t, "## 幻灯片 1: Welcome\nHello\n", out)

	out, _, err = execute(t, "text", memo, "--delimiter", "\r\n")
	require.NoError(t, err)
	assert.Equal(t, "## Memo\r\n\r\n<u>raw</u> body\n", out)
}

func TestTextCommand_ConfigDelimiter(t *testing.T) {
	dir := t.TempDir()
	slides := writeFile(t, dir, "slides.json", slidesJSON)
	cfg := writeFile(t, dir, "officemd.yaml", "delimiter: \" / \"\n")

	out, _, err := execute(t, "--config", cfg, "text", slides)
	require.NoError(t, err)
	assert.Equal(t, "## 幻灯片 1: Welcome / Hello\n", out)
}

func TestTextCommand_Errors(t *testing.T) {
	dir := t.TempDir()

	_, _, err := execute(t, "text")
	assert.Error(t, err)

	_, _, err = execute(t, "text", filepath.Join(dir, "deck.pptx"))
	assert.ErrorContains(t, err, "unsupported encoding")

	bad := writeFile(t, dir, "bad.json", `{"type":"docx"}`)
	_, _, err = execute(t, "text", bad)
	assert.ErrorContains(t, err, "invalid document")

	_, _, err = execute(t, "--log-level", "loud", "text", bad)
	assert.ErrorContains(t, err, "unknown log level")
}

func TestJSONCommand(t *testing.T) {
	dir := t.TempDir()
	slides := writeFile(t, dir, "slides.json", slidesJSON)

	out, _, err := execute(t, "json", slides, "--indent", "0")
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "pptx", got["type"])
	slidesOut, ok := got["slides"].([]any)
	require.True(t, ok)
	assert.Len(t, slidesOut, 1)
	assert.NotContains(t, out, "\n  ", "indent 0 is compact")
}

func TestPreviewCommand(t *testing.T) {
	dir := t.TempDir()
	memo := writeFile(t, dir, "memo.yaml", memoYAML)
	cfg := writeFile(t, dir, "officemd.yaml", "preview:\n  title: Weekly memo\n")

	out, _, err := execute(t, "--config", cfg, "preview", memo)
	require.NoError(t, err)
	assert.Contains(t, out, "<title>Weekly memo</title>")
	assert.Contains(t, out, "Memo</h2>")
	assert.Contains(t, out, "<u>raw</u>")

	target := filepath.Join(dir, "memo.html")
	out, _, err = execute(t, "preview", memo, "--out", target, "--sanitize=false")
	require.NoError(t, err)
	assert.Empty(t, out)
	page, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(page), "<!DOCTYPE html>")
}

func TestBatchCommand(t *testing.T) {
	dir := t.TempDir()
	slides := writeFile(t, dir, "slides.json", slidesJSON)
	memo := writeFile(t, dir, "memo.yaml", memoYAML)

	out, _, err := execute(t, "batch", slides, memo, "--workers", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "==> "+slides+" (powerpoint) <==\n## 幻灯片 1: Welcome\nHello\n\n")
	assert.Contains(t, out, "==> "+memo+" (word) <==\n## Memo")

	missing := filepath.Join(dir, "missing.json")
	out, stderr, err := execute(t, "batch", slides, missing)
	assert.ErrorContains(t, err, "1 of 2 files failed")
	assert.Contains(t, out, slides)
	assert.Contains(t, stderr, missing)
}

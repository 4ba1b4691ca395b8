// SPDX-License-Identifier: Apache-2.0

package document

import "strings"

// PlainText concatenates the text of every leaf under n in document order,
// without separators.
func PlainText(n *ContentNode) string {
	if n == nil {
		return ""
	}
	if !n.IsContainer() {
		return n.Text
	}
	var sb strings.Builder
	stack := []*ContentNode{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur == nil {
			continue
		}
		if !cur.IsContainer() {
			sb.WriteString(cur.Text)
			continue
		}
		for i := len(cur.Children) - 1; i >= 0; i-- {
			stack = append(stack, cur.Children[i])
		}
	}
	return sb.String()
}

// PlainTextWithin is PlainText limited to leaves at most levels below n.
// n itself is level 0; a negative levels yields "".
func PlainTextWithin(n *ContentNode, levels int) string {
	if n == nil || levels < 0 {
		return ""
	}
	if !n.IsContainer() {
		return n.Text
	}
	type frame struct {
		node  *ContentNode
		level int
	}
	var sb strings.Builder
	stack := []frame{{node: n}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.node == nil {
			continue
		}
		if !f.node.IsContainer() {
			sb.WriteString(f.node.Text)
			continue
		}
		if f.level >= levels {
			continue
		}
		for i := len(f.node.Children) - 1; i >= 0; i-- {
			stack = append(stack, frame{node: f.node.Children[i], level: f.level + 1})
		}
	}
	return sb.String()
}

// Depth returns the maximum nesting depth of the document tree. Top-level
// nodes are at depth 1; an empty document has depth 0. It walks the tree
// with an explicit stack so that adversarial input cannot exhaust the
// goroutine stack.
func Depth(doc *ParsedDocument) int {
	if doc == nil {
		return 0
	}
	type frame struct {
		node  *ContentNode
		depth int
	}
	stack := make([]frame, 0, len(doc.Content))
	for _, n := range doc.Content {
		stack = append(stack, frame{node: n, depth: 1})
	}
	maxDepth := 0
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.node == nil {
			continue
		}
		if f.depth > maxDepth {
			maxDepth = f.depth
		}
		for _, c := range f.node.Children {
			stack = append(stack, frame{node: c, depth: f.depth + 1})
		}
	}
	return maxDepth
}

// CheckDepth returns ErrTooDeep when the tree nests deeper than limit.
// A non-positive limit disables the check.
func CheckDepth(doc *ParsedDocument, limit int) error {
	if limit <= 0 {
		return nil
	}
	if d := Depth(doc); d > limit {
		return &DepthError{Depth: d, Limit: limit}
	}
	return nil
}

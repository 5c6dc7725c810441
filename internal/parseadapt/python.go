// Package parseadapt produces the neutral structural summaries the differ
// consumes. Parsing is tree-sitter based and stays entirely outside the
// core: recordings and diffs only ever see tape.StructuralSummary, never a
// syntax tree.
package parseadapt

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/lumenlearn/codetape/internal/tape"
)

// Tree-sitter node types used for symbol extraction.
// Reference: https://github.com/tree-sitter/tree-sitter-python/blob/master/src/grammar.json
const (
	pyNodeFunctionDefinition = "function_definition"
	pyNodeAssignment         = "assignment"
	pyNodeCall               = "call"
	pyNodeIdentifier         = "identifier"
	pyNodeAttribute          = "attribute"
)

// Python extracts function, variable, and call inventories from Python
// source. Safe for concurrent use; each Parse builds its own parser.
type Python struct{}

// NewPython creates a Python structural adapter.
func NewPython() *Python {
	return &Python{}
}

// Parse summarizes one code text. Code that tree-sitter cannot fully parse
// yields a summary with Parsed false; the symbol lists are then empty and
// consumers treat derived diffs as diagnostic.
func (p *Python) Parse(ctx context.Context, code string) tape.StructuralSummary {
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())

	src := []byte(code)
	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return tape.StructuralSummary{}
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return tape.StructuralSummary{}
	}

	c := &collector{src: src, seen: make(map[string]bool)}
	c.walk(root)
	return tape.StructuralSummary{
		Functions: c.functions,
		Variables: c.variables,
		Calls:     c.calls,
		Parsed:    true,
	}
}

type collector struct {
	src       []byte
	seen      map[string]bool
	functions []tape.SymbolInfo
	variables []tape.SymbolInfo
	calls     []tape.SymbolInfo
}

// walk traverses named nodes depth-first, recording each distinct symbol
// name once at its first occurrence.
func (c *collector) walk(node *sitter.Node) {
	switch node.Type() {
	case pyNodeFunctionDefinition:
		if name := c.fieldName(node, "name"); name != "" {
			c.add(&c.functions, "fn:", name, node)
		}
	case pyNodeAssignment:
		if left := node.ChildByFieldName("left"); left != nil && left.Type() == pyNodeIdentifier {
			c.add(&c.variables, "var:", left.Content(c.src), left)
		}
	case pyNodeCall:
		if name := c.calleeName(node); name != "" {
			c.add(&c.calls, "call:", name, node)
		}
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		c.walk(node.NamedChild(i))
	}
}

func (c *collector) fieldName(node *sitter.Node, field string) string {
	child := node.ChildByFieldName(field)
	if child == nil {
		return ""
	}
	return child.Content(c.src)
}

// calleeName resolves the called name: plain identifiers as-is, attribute
// calls by their final attribute (obj.append -> append).
func (c *collector) calleeName(node *sitter.Node) string {
	fn := node.ChildByFieldName("function")
	if fn == nil {
		return ""
	}
	switch fn.Type() {
	case pyNodeIdentifier:
		return fn.Content(c.src)
	case pyNodeAttribute:
		return c.fieldName(fn, "attribute")
	}
	return ""
}

func (c *collector) add(dst *[]tape.SymbolInfo, keyPrefix, name string, node *sitter.Node) {
	key := keyPrefix + name
	if c.seen[key] {
		return
	}
	c.seen[key] = true
	*dst = append(*dst, tape.SymbolInfo{
		Name: name,
		Line: int(node.StartPoint().Row) + 1,
	})
}

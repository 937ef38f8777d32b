package parser

import "github.com/ales-tsurko/colly-go/ast"

// Parse runs the grammar phase (ParseTree) followed by the lowering phase
// (Build), returning the typed AST for source.
func Parse(source string) (*ast.File, error) {
	tree, err := ParseTree(source)
	if err != nil {
		return nil, err
	}
	return Build(tree)
}

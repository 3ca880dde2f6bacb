package hcl_adapter

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/hashicorp/hcl/v2/hclwrite"
)

// opNames returns the op names listed by expr. References (`op.a`) are the
// normal form; a plain list of strings is accepted as well.
func opNames(expr hcl.Expression) ([]string, error) {
	// The expression must be a list literal like `[...]`.
	if syntaxExpr, ok := expr.(hclsyntax.Expression); ok {
		if _, isTuple := syntaxExpr.(*hclsyntax.TupleConsExpr); !isTuple {
			return nil, fmt.Errorf("%s: expected a list of op references", expr.Range())
		}
	}
	if len(expr.Variables()) > 0 {
		return opReferences(expr)
	}
	return evalStrings(expr, nil)
}

// opReferences extracts the op names referenced by expr, in source order.
// Only references of the form `op.<name>` are accepted; every other variable
// is rejected so that a typo cannot silently drop a dependency.
func opReferences(expr hcl.Expression) ([]string, error) {
	var out []string
	seen := make(map[string]bool)
	for _, traversal := range expr.Variables() {
		name, ok := parseOpTraversal(traversal)
		if !ok {
			return nil, fmt.Errorf("%s: expected a reference of the form op.<name>, got %q", traversal.SourceRange(), traversalString(traversal))
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out, nil
}

// parseOpTraversal analyzes an HCL traversal to extract an op reference.
func parseOpTraversal(traversal hcl.Traversal) (string, bool) {
	if len(traversal) != 2 || traversal.RootName() != "op" {
		return "", false
	}
	attr, ok := traversal[1].(hcl.TraverseAttr)
	if !ok {
		return "", false
	}
	return attr.Name, true
}

func traversalString(traversal hcl.Traversal) string {
	return string(hclwrite.TokensForTraversal(traversal).Bytes())
}

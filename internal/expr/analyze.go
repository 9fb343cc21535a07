package expr

import (
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/hashicorp/hcl/v2/hclwrite"
)

// TraversalKey generates a stable, canonical string representation for an
// hcl.Traversal, e.g. var.score or obj.Enemy.hp.
func TraversalKey(t hcl.Traversal) string {
	return string(hclwrite.TokensForTraversal(t).Bytes())
}

// analyze returns the sorted, unique references and called function names of
// an expression. Expressions that are not native syntax only report their
// references.
func analyze(e hcl.Expression) (refs []string, funcs []string) {
	if e == nil {
		return nil, nil
	}
	refSet := make(map[string]struct{})
	for _, t := range e.Variables() {
		refSet[TraversalKey(t)] = struct{}{}
	}
	funcSet := make(map[string]struct{})
	if syntaxExpr, ok := e.(hclsyntax.Expression); ok {
		walkForFunctions(syntaxExpr, funcSet)
	}
	return sortedKeys(refSet), sortedKeys(funcSet)
}

func sortedKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// walkForFunctions recursively walks the AST, looking only for function calls.
func walkForFunctions(e hclsyntax.Expression, functions map[string]struct{}) {
	if e == nil {
		return
	}
	switch n := e.(type) {
	case *hclsyntax.FunctionCallExpr:
		functions[n.Name] = struct{}{}
		for _, arg := range n.Args {
			walkForFunctions(arg, functions)
		}
	case *hclsyntax.BinaryOpExpr:
		walkForFunctions(n.LHS, functions)
		walkForFunctions(n.RHS, functions)
	case *hclsyntax.ConditionalExpr:
		walkForFunctions(n.Condition, functions)
		walkForFunctions(n.TrueResult, functions)
		walkForFunctions(n.FalseResult, functions)
	case *hclsyntax.UnaryOpExpr:
		walkForFunctions(n.Val, functions)
	case *hclsyntax.TemplateExpr:
		for _, part := range n.Parts {
			walkForFunctions(part, functions)
		}
	case *hclsyntax.TemplateWrapExpr:
		walkForFunctions(n.Wrapped, functions)
	case *hclsyntax.TupleConsExpr:
		for _, item := range n.Exprs {
			walkForFunctions(item, functions)
		}
	case *hclsyntax.ObjectConsExpr:
		for _, item := range n.Items {
			walkForFunctions(item.KeyExpr, functions)
			walkForFunctions(item.ValueExpr, functions)
		}
	case *hclsyntax.ForExpr:
		walkForFunctions(n.CollExpr, functions)
		walkForFunctions(n.KeyExpr, functions)
		walkForFunctions(n.ValExpr, functions)
		walkForFunctions(n.CondExpr, functions)
	case *hclsyntax.IndexExpr:
		walkForFunctions(n.Collection, functions)
		walkForFunctions(n.Key, functions)
	case *hclsyntax.SplatExpr:
		walkForFunctions(n.Source, functions)
		walkForFunctions(n.Each, functions)
	case *hclsyntax.ParenthesesExpr:
		walkForFunctions(n.Expression, functions)
	}
}

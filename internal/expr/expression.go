// Package expr implements instruction parameters: values that are evaluated
// lazily, by the instruction handler, against a scene context.
//
// Expressions use HCL native syntax. A parameter can be a literal ("HUD",
// 10), a reference to the scene (var.score, obj.Enemy.hp, scene.tick), a
// call to an expression handler contributed by an extension (Random(10)),
// or any combination of those with HCL operators.
//
// Evaluation never fails: anything that cannot be resolved evaluates to the
// neutral value of the requested kind (0 or the empty string).
package expr

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
)

// Kind is the kind of value an expression produced.
type Kind int

const (
	KindNumber Kind = iota
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Result is the outcome of an evaluation. The zero Result is the number 0.
type Result struct {
	Kind Kind
	Num  float64
	Str  string
}

// Expression is an immutable parameter value.
type Expression struct {
	source  string
	hclExpr hcl.Expression
	literal cty.Value
	folded  bool
	invalid bool
	refs    []string
	funcs   []string
}

// Invalid is the shared sentinel returned for out-of-range parameter access.
// It evaluates to the neutral value of every kind.
var Invalid = &Expression{invalid: true}

// Parse parses src as an HCL native syntax expression.
func Parse(src string) (*Expression, error) {
	parsed, diags := hclsyntax.ParseExpression([]byte(src), "<parameter>", hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse expression %q: %w", src, diags)
	}
	e := FromHCL(parsed)
	e.source = src
	return e, nil
}

// MustParse is like Parse but panics on error. It is intended for tests and
// for expressions built into the binary.
func MustParse(src string) *Expression {
	e, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return e
}

// FromHCL wraps an already parsed expression. An expression that neither
// references the scene nor calls a function is evaluated once here and kept
// as a literal.
func FromHCL(h hcl.Expression) *Expression {
	if h == nil {
		return Invalid
	}
	e := &Expression{hclExpr: h}
	e.refs, e.funcs = analyze(h)
	if rng := h.Range(); rng.Filename != "" && rng.Start.Byte < rng.End.Byte {
		e.source = fmt.Sprintf("%s:%d,%d", rng.Filename, rng.Start.Line, rng.Start.Column)
	}

	if len(e.refs) == 0 && len(e.funcs) == 0 {
		val, diags := h.Value(nil)
		if !diags.HasErrors() && val.IsWhollyKnown() {
			e.literal = val
			e.folded = true
		}
	}
	return e
}

// Literal wraps a constant value.
func Literal(v cty.Value) *Expression {
	return &Expression{literal: v, folded: true, source: literalSource(v)}
}

// Number returns a numeric literal.
func Number(f float64) *Expression {
	return Literal(cty.NumberFloatVal(f))
}

// Text returns a text literal.
func Text(s string) *Expression {
	return Literal(cty.StringVal(s))
}

// IsInvalid reports whether e is the invalid sentinel.
func (e *Expression) IsInvalid() bool {
	return e == nil || e.invalid
}

// IsLiteral reports whether e is a constant.
func (e *Expression) IsLiteral() bool {
	return e != nil && e.folded
}

// References returns the scene references used by e, e.g. "var.score".
func (e *Expression) References() []string {
	if e == nil {
		return nil
	}
	return e.refs
}

// Functions returns the names of the expression handlers called by e.
func (e *Expression) Functions() []string {
	if e == nil {
		return nil
	}
	return e.funcs
}

// String returns the source text of e when known.
func (e *Expression) String() string {
	switch {
	case e.IsInvalid():
		return "<invalid>"
	case e.source != "":
		return e.source
	default:
		return "<expression>"
	}
}

func literalSource(v cty.Value) string {
	if v.IsNull() || !v.IsKnown() {
		return "null"
	}
	switch v.Type() {
	case cty.String:
		return fmt.Sprintf("%q", v.AsString())
	case cty.Number:
		return v.AsBigFloat().Text('g', -1)
	case cty.Bool:
		return fmt.Sprintf("%t", v.True())
	default:
		return v.Type().FriendlyName()
	}
}

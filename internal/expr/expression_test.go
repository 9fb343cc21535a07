package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/gdcore/internal/scene"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
)

func newTestContext(t *testing.T) *scene.Context {
	t.Helper()
	s := scene.New("Main")
	s.Variables.SetNumber("score", 12)
	s.Variables.SetText("player", "p1")
	enemy := s.AddObject("Enemy")
	enemy.Variables.SetNumber("hp", 7)

	ctx := scene.NewContext(s, nil, nil)
	ctx.Functions = map[string]function.Function{
		"Double": function.New(&function.Spec{
			Params: []function.Parameter{{Name: "n", Type: cty.Number}},
			Type:   function.StaticReturnType(cty.Number),
			Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
				return args[0].Multiply(cty.NumberIntVal(2)), nil
			},
		}),
	}
	return ctx
}

func TestParse_LiteralsAreFolded(t *testing.T) {
	e, err := Parse(`"HUD"`)
	require.NoError(t, err)

	assert.True(t, e.IsLiteral())
	assert.Equal(t, Result{Kind: KindText, Str: "HUD"}, e.Evaluate(nil))
	assert.Equal(t, `"HUD"`, e.String())
}

func TestParse_Error(t *testing.T) {
	_, err := Parse(`"unterminated`)
	require.Error(t, err)
}

func TestEvaluate_References(t *testing.T) {
	ctx := newTestContext(t)

	cases := []struct {
		src  string
		want Result
	}{
		{`var.score + 1`, Result{Kind: KindNumber, Num: 13}},
		{`var.player`, Result{Kind: KindText, Str: "p1"}},
		{`obj.Enemy.hp`, Result{Kind: KindNumber, Num: 7}},
		{`scene.name`, Result{Kind: KindText, Str: "Main"}},
		{`Double(var.score)`, Result{Kind: KindNumber, Num: 24}},
		{`var.score > 10`, Result{Kind: KindNumber, Num: 1}},
		{`"${var.player}-x"`, Result{Kind: KindText, Str: "p1-x"}},
	}

	for _, tc := range cases {
		t.Run(tc.src, func(t *testing.T) {
			e := MustParse(tc.src)
			assert.False(t, e.IsLiteral())
			assert.Equal(t, tc.want, e.Evaluate(ctx))
		})
	}
}

func TestEvaluate_UnresolvableUsesDefaults(t *testing.T) {
	ctx := newTestContext(t)

	for _, src := range []string{`var.missing`, `obj.Ghost.hp`, `Unknown(1)`, `[1, 2]`, `null`} {
		t.Run(src, func(t *testing.T) {
			e := MustParse(src)
			assert.Equal(t, Result{}, e.Evaluate(ctx))
			assert.Equal(t, 0.0, e.Number(ctx))
			assert.Equal(t, "", e.Text(ctx))
		})
	}
}

func TestEvaluate_DoesNotMutateContext(t *testing.T) {
	ctx := newTestContext(t)
	before := ctx.Scene.Variables.Value()

	MustParse(`var.score * 100`).Evaluate(ctx)

	assert.True(t, before.RawEquals(ctx.Scene.Variables.Value()))
}

func TestNumberAndText_Convert(t *testing.T) {
	ctx := newTestContext(t)

	assert.Equal(t, 3.5, Text("3.5").Number(ctx))
	assert.Equal(t, 0.0, Text("abc").Number(ctx))
	assert.Equal(t, "12", MustParse(`var.score`).Text(ctx))
	assert.Equal(t, 1.0, MustParse(`true`).Number(ctx))
}

func TestInvalid_IsNeutral(t *testing.T) {
	ctx := newTestContext(t)

	assert.True(t, Invalid.IsInvalid())
	assert.Equal(t, Result{}, Invalid.Evaluate(ctx))
	assert.Equal(t, 0.0, Invalid.Number(ctx))
	assert.Equal(t, "", Invalid.Text(ctx))
	assert.Equal(t, "<invalid>", Invalid.String())
	assert.Same(t, Invalid, FromHCL(nil))
}

func TestAnalyze_CollectsReferencesAndFunctions(t *testing.T) {
	e := MustParse(`Double(var.b) + Random(var.a) + var.b`)

	assert.Equal(t, []string{"var.a", "var.b"}, e.References())
	assert.Equal(t, []string{"Double", "Random"}, e.Functions())
}

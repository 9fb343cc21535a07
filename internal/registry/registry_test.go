package registry

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/gdcore/internal/events"
	"github.com/vk/gdcore/internal/expr"
	"github.com/vk/gdcore/internal/scene"
	"github.com/zclconf/go-cty/cty"
)

func alwaysTrue(*scene.Context, *events.Instruction) bool { return true }

func alwaysFalse(*scene.Context, *events.Instruction) bool { return false }

func TestRegisterInstruction_Validation(t *testing.T) {
	cases := []struct {
		name  string
		entry InstructionEntry
	}{
		{"empty type", InstructionEntry{Kind: KindCondition, Fn: alwaysTrue}},
		{"nil handler", InstructionEntry{Type: "X", Kind: KindCondition}},
		{"unknown kind", InstructionEntry{Type: "X", Fn: alwaysTrue}},
		{"negative arity", InstructionEntry{Type: "X", Kind: KindAction, Arity: -1, Fn: alwaysTrue}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			table := New()
			err := table.RegisterInstruction(tc.entry)
			require.ErrorIs(t, err, ErrInvalidEntry)
			assert.Empty(t, table.InstructionTypes())
			assert.Zero(t, table.Revision())
		})
	}
}

func TestRegisterInstruction_LastWins(t *testing.T) {
	table := New()
	require.NoError(t, table.RegisterInstruction(InstructionEntry{Type: "Check", Kind: KindCondition, Fn: alwaysTrue, Extension: "first"}))
	require.NoError(t, table.RegisterInstruction(InstructionEntry{Type: "Check", Kind: KindCondition, Fn: alwaysFalse, Extension: "second"}))

	entry, ok := table.Instruction("Check")
	require.True(t, ok)
	assert.Equal(t, "second", entry.Extension)
	assert.False(t, entry.Fn(nil, nil))
	assert.Equal(t, uint64(2), table.Revision())
}

func TestNew_WithLogger(t *testing.T) {
	var logs bytes.Buffer
	table := New(WithLogger(slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))))

	require.NoError(t, table.RegisterInstruction(InstructionEntry{Type: "Check", Kind: KindCondition, Fn: alwaysTrue, Extension: "first"}))
	require.NoError(t, table.RegisterInstruction(InstructionEntry{Type: "Check", Kind: KindCondition, Fn: alwaysFalse, Extension: "second"}))
	table.Seal()

	assert.Contains(t, logs.String(), "Overriding instruction handler.")
	assert.Contains(t, logs.String(), "previous_extension=first")
	assert.Contains(t, logs.String(), "Sealing dispatch table.")
}

func TestSeal_RejectsRegistration(t *testing.T) {
	table := New()
	require.NoError(t, table.RegisterInstruction(InstructionEntry{Type: "A", Kind: KindAction, Fn: alwaysTrue}))
	table.Seal()
	table.Seal()

	err := table.RegisterInstruction(InstructionEntry{Type: "B", Kind: KindAction, Fn: alwaysTrue})
	require.True(t, errors.Is(err, ErrSealed))

	err = table.RegisterExpression(ExpressionEntry{Type: "F", Returns: expr.KindNumber, Fn: func(*scene.Context, []cty.Value) (cty.Value, error) {
		return cty.Zero, nil
	}})
	require.ErrorIs(t, err, ErrSealed)

	assert.True(t, table.Sealed())
	assert.Equal(t, []string{"A"}, table.InstructionTypes())
}

func TestRegisterExpression_RequiresCallableName(t *testing.T) {
	fn := func(*scene.Context, []cty.Value) (cty.Value, error) { return cty.Zero, nil }
	table := New()

	require.NoError(t, table.RegisterExpression(ExpressionEntry{Type: "Random", Returns: expr.KindNumber, Fn: fn}))
	require.NoError(t, table.RegisterExpression(ExpressionEntry{Type: "Math::Abs", Returns: expr.KindNumber, Fn: fn}))
	require.ErrorIs(t, table.RegisterExpression(ExpressionEntry{Type: "bad name", Returns: expr.KindNumber, Fn: fn}), ErrInvalidEntry)
	require.ErrorIs(t, table.RegisterExpression(ExpressionEntry{Type: "NoKind", Fn: fn}), ErrInvalidEntry)

	assert.Equal(t, []string{"Math::Abs", "Random"}, table.ExpressionTypes())
}

func TestFunctions_BoundToContext(t *testing.T) {
	// --- Arrange ---
	table := New()
	require.NoError(t, table.RegisterExpression(ExpressionEntry{
		Type:    "Score",
		Returns: expr.KindNumber,
		Fn: func(ctx *scene.Context, _ []cty.Value) (cty.Value, error) {
			return cty.NumberFloatVal(ctx.Scene.Variables.Number("score")), nil
		},
	}))
	require.NoError(t, table.RegisterExpression(ExpressionEntry{
		Type:    "Label",
		Returns: expr.KindText,
		Params:  []cty.Type{cty.Number},
		Fn: func(_ *scene.Context, args []cty.Value) (cty.Value, error) {
			// Returns a number on purpose, it must be converted to text.
			return args[0], nil
		},
	}))

	s := scene.New("Main")
	s.Variables.SetNumber("score", 41)
	ctx := scene.NewContext(s, nil, nil)
	ctx.Functions = table.Functions(ctx)

	// --- Act & Assert ---
	assert.Equal(t, 42.0, expr.MustParse(`Score() + 1`).Number(ctx))
	assert.Equal(t, "7", expr.MustParse(`Label(7)`).Text(ctx))

	s.Variables.SetNumber("score", 1)
	assert.Equal(t, 2.0, expr.MustParse(`Score() + 1`).Number(ctx), "bound functions read the live scene")
}

func TestFunctions_HandlerErrorYieldsDefault(t *testing.T) {
	table := New()
	require.NoError(t, table.RegisterExpression(ExpressionEntry{
		Type:    "Broken",
		Returns: expr.KindNumber,
		Fn: func(*scene.Context, []cty.Value) (cty.Value, error) {
			return cty.NilVal, errors.New("boom")
		},
	}))
	ctx := scene.NewContext(scene.New("Main"), nil, nil)
	ctx.Functions = table.Functions(ctx)

	assert.Equal(t, 0.0, expr.MustParse(`Broken()`).Number(ctx))
}

func TestValidateInstructions(t *testing.T) {
	// --- Arrange ---
	table := New()
	require.NoError(t, table.RegisterInstruction(InstructionEntry{Type: "VarScene", Kind: KindCondition, Arity: 3, Fn: alwaysTrue}))
	require.NoError(t, table.RegisterInstruction(InstructionEntry{Type: "ShowLayer", Kind: KindAction, Arity: 1, Fn: alwaysTrue}))

	or := events.NewInstruction(events.OrCondition, nil, false)
	or.SetSubInstructions([]*events.Instruction{
		events.NewInstruction("VarScene", []*expr.Expression{expr.Text("a"), expr.Text(">"), expr.Number(1)}, false),
		events.NewInstruction("Missing", nil, false),
	})
	list := events.List{
		&events.StandardEvent{
			Conditions: []*events.Instruction{or, events.NewInstruction("ShowLayer", []*expr.Expression{expr.Text("HUD")}, false)},
			Actions:    []*events.Instruction{events.NewInstruction("ShowLayer", nil, false)},
		},
	}

	// --- Act ---
	errs := table.ValidateInstructions(context.Background(), list)

	// --- Assert ---
	require.Len(t, errs, 3)
	assert.Contains(t, errs[0].Error(), "unknown condition type 'Missing'")
	assert.Contains(t, errs[1].Error(), "registered as action but used as condition")
	assert.Contains(t, errs[2].Error(), "expects 1 parameters, got 0")
}

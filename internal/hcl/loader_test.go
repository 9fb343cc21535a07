package hcl

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/gdcore/internal/ctxlog"
	"github.com/vk/gdcore/internal/engine"
	"github.com/vk/gdcore/internal/events"
	"github.com/vk/gdcore/internal/registry"
	"github.com/vk/gdcore/internal/scene"
	"github.com/vk/gdcore/modules/layer"
	"github.com/vk/gdcore/modules/objects"
	"github.com/vk/gdcore/modules/variables"
)

const project = `
scene "Main" {
  variables = { score = 0, title = "demo" }

  layer "" {}
  layer "HUD" { visible = false }

  object "Enemy" {
    count     = 2
    variables = { hp = 3 }
  }
}

event {
  action "ModVarScene" { params = ["score", "+", 5] }
}

event {
  condition "VarScene" { params = ["score", ">=", 10] }
  action "ShowLayer" { params = ["HUD"] }

  event {
    condition "VarScene" {
      params   = ["title", "=", "demo"]
      inverted = true
    }
  }
}

foreach "Enemy" {
  action "ModVarObjet" { params = ["Enemy", "hp", "-", 1] }
}

event {
  disabled = true
  action "HideLayer" { params = ["HUD"] }
}
`

// --- Test Harness ---

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Project(t *testing.T) {
	// --- Arrange ---
	dir := t.TempDir()
	path := writeFile(t, dir, "main.hcl", project)

	// --- Act ---
	model, err := NewLoader().Load(context.Background(), path)

	// --- Assert ---
	require.NoError(t, err)
	require.NotNil(t, model.Scene)
	assert.Equal(t, "Main", model.Scene.Name)
	assert.Len(t, model.Scene.Variables, 2)
	require.Len(t, model.Scene.Layers, 2)
	assert.True(t, model.Scene.Layers[0].Visible)
	assert.False(t, model.Scene.Layers[1].Visible)
	require.Len(t, model.Scene.Objects, 1)
	assert.Equal(t, 2, model.Scene.Objects[0].Count)

	require.Len(t, model.Events, 4)
	second := model.Events[1].(*events.StandardEvent)
	require.Len(t, second.Conditions, 1)
	assert.Equal(t, "VarScene", second.Conditions[0].Type())
	assert.Equal(t, 3, second.Conditions[0].ParameterCount())
	require.Len(t, second.SubEvents, 1)
	nested := second.SubEvents[0].(*events.StandardEvent)
	assert.True(t, nested.Conditions[0].IsInverted())

	foreach := model.Events[2].(*events.ForEachEvent)
	assert.Equal(t, "Enemy", foreach.Object)
	assert.True(t, model.Events[3].IsDisabled())
	assert.Equal(t, 6, model.Events.Count())
}

func TestLoad_ParametersStayLazy(t *testing.T) {
	// --- Arrange ---
	dir := t.TempDir()
	writeFile(t, dir, "main.hcl", `
event {
  action "Noop" { params = [var.score * 2, "x${var.name}", 4] }
}
`)
	model, err := NewLoader().Load(context.Background(), dir)
	require.NoError(t, err)
	instr := model.Events[0].(*events.StandardEvent).Actions[0]

	s := scene.New("Main")
	ctx := scene.NewContext(s, nil, nil)

	// --- Act ---
	s.Variables.SetNumber("score", 21)
	s.Variables.SetText("name", "yz")

	// --- Assert ---
	assert.Equal(t, 42.0, instr.GetParameter(0).Number(ctx))
	assert.Equal(t, "xyz", instr.GetParameter(1).Text(ctx))
	assert.True(t, instr.GetParameter(2).IsLiteral())
}

func TestLoad_InstructionsReportToContextLogger(t *testing.T) {
	// --- Arrange ---
	dir := t.TempDir()
	writeFile(t, dir, "main.hcl", `
event {
  condition "BuiltinCommonInstructions::Or" {
    condition "VarScene" { params = ["score", ">", 1] }
  }
}
`)
	var logs bytes.Buffer
	ctx := ctxlog.WithLogger(context.Background(), slog.New(slog.NewTextHandler(&logs, nil)))

	// --- Act ---
	model, err := NewLoader().Load(ctx, dir)
	require.NoError(t, err)
	or := model.Events[0].(*events.StandardEvent).Conditions[0]
	or.SubInstructions()[0].GetParameter(7)

	// --- Assert ---
	assert.Contains(t, logs.String(), "Instruction parameter out of range")
	assert.Contains(t, logs.String(), "type=VarScene")
}

func TestLoad_CompoundConditions(t *testing.T) {
	// --- Arrange ---
	dir := t.TempDir()
	writeFile(t, dir, "main.hcl", `
event {
  condition "BuiltinCommonInstructions::Or" {
    condition "VarScene" { params = ["a", "=", 1] }
    condition "BuiltinCommonInstructions::Not" {
      condition "VarScene" { params = ["b", "=", 1] }
    }
  }
}
`)

	// --- Act ---
	model, err := NewLoader().Load(context.Background(), dir)

	// --- Assert ---
	require.NoError(t, err)
	or := model.Events[0].(*events.StandardEvent).Conditions[0]
	assert.Equal(t, events.OrCondition, or.Type())
	require.Len(t, or.SubInstructions(), 2)
	not := or.SubInstructions()[1]
	assert.Equal(t, events.NotCondition, not.Type())
	require.Len(t, not.SubInstructions(), 1)
}

func TestLoad_MergesFilesInOrder(t *testing.T) {
	// --- Arrange ---
	dir := t.TempDir()
	writeFile(t, dir, "a.hcl", "event {\n  action \"First\" {}\n}\n")
	writeFile(t, dir, "nested/b.hcl", "event {\n  action \"Second\" {}\n}\n")
	writeFile(t, dir, "notes.txt", "event {\n  action \"Ignored\" {}\n}\n")

	// --- Act ---
	model, err := NewLoader().Load(context.Background(), dir, filepath.Join(dir, "missing"), filepath.Join(dir, "a.hcl"))

	// --- Assert ---
	require.NoError(t, err)
	require.Len(t, model.Events, 2, "a.hcl is read once and notes.txt is ignored")
	assert.Equal(t, "First", model.Events[0].(*events.StandardEvent).Actions[0].Type())
	assert.Equal(t, "Second", model.Events[1].(*events.StandardEvent).Actions[0].Type())
	assert.Nil(t, model.Scene)
}

func TestLoad_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		files   map[string]string
		wantErr string
	}{
		{
			name:    "syntax error",
			files:   map[string]string{"a.hcl": `event {`},
			wantErr: "failed to parse HCL file",
		},
		{
			name:    "unknown block",
			files:   map[string]string{"a.hcl": `step "x" {}`},
			wantErr: "failed to decode HCL file",
		},
		{
			name:    "unknown instruction attribute",
			files:   map[string]string{"a.hcl": "event {\n  action \"A\" { inverted = true }\n}\n"},
			wantErr: "failed to decode events",
		},
		{
			name:    "params not a list",
			files:   map[string]string{"a.hcl": "event {\n  action \"A\" { params = \"HUD\" }\n}\n"},
			wantErr: "failed to decode events",
		},
		{
			name: "two scenes",
			files: map[string]string{
				"a.hcl": `scene "One" {}`,
				"b.hcl": `scene "Two" {}`,
			},
			wantErr: "already exists",
		},
		{
			name:    "negative object count",
			files:   map[string]string{"a.hcl": "scene \"S\" {\n  object \"E\" { count = -1 }\n}\n"},
			wantErr: "negative count",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// --- Arrange ---
			dir := t.TempDir()
			for name, content := range tc.files {
				writeFile(t, dir, name, content)
			}

			// --- Act ---
			_, err := NewLoader().Load(context.Background(), dir)

			// --- Assert ---
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestLoad_RunsAgainstBuiltinModules(t *testing.T) {
	// --- Arrange ---
	dir := t.TempDir()
	writeFile(t, dir, "main.hcl", project)
	model, err := NewLoader().Load(context.Background(), dir)
	require.NoError(t, err)

	table := registry.New()
	for _, m := range []registry.Module{&layer.Module{}, &variables.Module{}, &objects.Module{}} {
		require.NoError(t, m.Register(table))
	}
	s := model.BuildScene()
	runner := engine.NewRunner(engine.New(table), table, s, model.Events)

	// --- Act ---
	require.NoError(t, runner.Tick(context.Background()))
	hud, _ := s.Layer("HUD")
	visibleAfterFirst := hud.Visible()
	require.NoError(t, runner.Tick(context.Background()))

	// --- Assert ---
	assert.False(t, visibleAfterFirst)
	assert.True(t, hud.Visible(), "score reaches 10 on the second tick")
	assert.Equal(t, 10.0, s.Variables.Number("score"))
	for _, e := range s.Objects("Enemy") {
		assert.Equal(t, 1.0, e.Variables.Number("hp"))
	}
}

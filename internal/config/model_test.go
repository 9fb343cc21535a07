package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestModel_BuildScene(t *testing.T) {
	// --- Arrange ---
	m := &Model{Scene: &Scene{
		Name:      "Level1",
		Variables: map[string]cty.Value{"score": cty.NumberIntVal(3), "title": cty.StringVal("go")},
		Layers:    []Layer{{Name: "", Visible: true}, {Name: "HUD", Visible: false}},
		Objects:   []Object{{Name: "Enemy", Count: 2, Variables: map[string]cty.Value{"hp": cty.NumberIntVal(10)}}},
	}}

	// --- Act ---
	s := m.BuildScene()

	// --- Assert ---
	assert.Equal(t, "Level1", s.Name)
	assert.Equal(t, 3.0, s.Variables.Number("score"))
	assert.Equal(t, "go", s.Variables.Text("title"))

	hud, ok := s.Layer("HUD")
	require.True(t, ok)
	assert.False(t, hud.Visible())

	enemies := s.Objects("Enemy")
	require.Len(t, enemies, 2)
	enemies[0].Variables.SetNumber("hp", 1)
	assert.Equal(t, 10.0, enemies[1].Variables.Number("hp"), "instances must not share variables")
}

func TestModel_BuildSceneDefault(t *testing.T) {
	var m *Model
	s := m.BuildScene()
	assert.Equal(t, DefaultSceneName, s.Name)
	assert.Len(t, s.Layers(), 1)
}

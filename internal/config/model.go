package config

import (
	"github.com/vk/gdcore/internal/events"
	"github.com/vk/gdcore/internal/scene"
	"github.com/zclconf/go-cty/cty"
)

// DefaultSceneName names the scene built when a project declares none.
const DefaultSceneName = "Main"

// Model is the unified representation of a project.
type Model struct {
	// Scene is nil when no file declared one.
	Scene  *Scene
	Events events.List
}

// Scene is the initial state of a scene.
type Scene struct {
	Name      string
	Variables map[string]cty.Value
	Layers    []Layer
	Objects   []Object
}

// Layer declares a layer and its initial visibility.
type Layer struct {
	Name    string
	Visible bool
}

// Object declares Count instances of a named object, each starting with a
// copy of Variables.
type Object struct {
	Name      string
	Count     int
	Variables map[string]cty.Value
}

// BuildScene instantiates the model's scene, or an empty default scene.
func (m *Model) BuildScene() *scene.RuntimeScene {
	if m == nil || m.Scene == nil {
		return scene.New(DefaultSceneName)
	}
	return m.Scene.Build()
}

// Build creates the runtime scene. Variables of unsupported types are
// dropped by scene.Variables.Set.
func (s *Scene) Build() *scene.RuntimeScene {
	rs := scene.New(s.Name)
	for name, v := range s.Variables {
		rs.Variables.Set(name, v)
	}
	for _, l := range s.Layers {
		rs.AddLayer(l.Name).SetVisibility(l.Visible)
	}
	for _, o := range s.Objects {
		for range o.Count {
			inst := rs.AddObject(o.Name)
			for name, v := range o.Variables {
				inst.Variables.Set(name, v)
			}
		}
	}
	return rs
}

// Package layer is the extension controlling layer visibility.
package layer

import (
	"github.com/vk/gdcore/internal/events"
	"github.com/vk/gdcore/internal/platform"
	"github.com/vk/gdcore/internal/registry"
	"github.com/vk/gdcore/internal/scene"
)

const ExtensionName = "BuiltinLayer"

// Module implements the platform.Module interface for this package.
type Module struct{}

// Extension builds the extension.
func (m *Module) Extension() *platform.Extension {
	return platform.NewExtension(ExtensionName, "Layers").
		SetAuthor("gdcore").
		SetDescription("Show, hide and test layers.").
		AddAction("ShowLayer", 1, ShowLayer).
		AddAction("HideLayer", 1, HideLayer).
		AddCondition("LayerVisible", 1, LayerVisible)
}

// Register contributes the extension directly to a table.
func (m *Module) Register(t *registry.Table) error {
	return m.Extension().Contribute(t)
}

// ShowLayer(name) makes a layer visible. Unknown layers are ignored.
func ShowLayer(ctx *scene.Context, instr *events.Instruction) bool {
	ctx.Scene.GetLayer(instr.GetParameter(0).Text(ctx)).SetVisibility(true)
	return true
}

// HideLayer(name) hides a layer.
func HideLayer(ctx *scene.Context, instr *events.Instruction) bool {
	ctx.Scene.GetLayer(instr.GetParameter(0).Text(ctx)).SetVisibility(false)
	return true
}

// LayerVisible(name) is true when the layer exists and is visible.
func LayerVisible(ctx *scene.Context, instr *events.Instruction) bool {
	l, ok := ctx.Scene.Layer(instr.GetParameter(0).Text(ctx))
	return ok && l.Visible()
}

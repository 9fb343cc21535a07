package print

import (
	"github.com/vk/gdcore/internal/events"
	"github.com/vk/gdcore/internal/platform"
	"github.com/vk/gdcore/internal/registry"
	"github.com/vk/gdcore/internal/scene"
)

const ExtensionName = "BuiltinDebug"

// Module implements the platform.Module interface for this package.
type Module struct{}

// Extension builds the extension.
func (m *Module) Extension() *platform.Extension {
	return platform.NewExtension(ExtensionName, "Debugging tools").
		SetAuthor("gdcore").
		AddAction("DebugLog", 1, DebugLog)
}

// Register contributes the extension directly to a table.
func (m *Module) Register(t *registry.Table) error {
	return m.Extension().Contribute(t)
}

// DebugLog(text) writes text to the scene logger.
func DebugLog(ctx *scene.Context, instr *events.Instruction) bool {
	ctx.Logger.Info("🖨️ "+instr.GetParameter(0).Text(ctx), "scene", ctx.Scene.Name, "tick", ctx.Scene.Tick())
	return true
}

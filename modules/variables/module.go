// Package variables is the extension reading and writing scene variables.
package variables

import (
	core "github.com/vk/gdcore/internal/common"
	"github.com/vk/gdcore/internal/events"
	"github.com/vk/gdcore/internal/platform"
	"github.com/vk/gdcore/internal/registry"
	"github.com/vk/gdcore/internal/scene"
)

const ExtensionName = "BuiltinVariables"

// Module implements the platform.Module interface for this package.
type Module struct{}

// Extension builds the extension.
func (m *Module) Extension() *platform.Extension {
	return platform.NewExtension(ExtensionName, "Scene variables").
		SetAuthor("gdcore").
		AddCondition("VarScene", 3, VarScene).
		AddCondition("VarSceneTxt", 3, VarSceneTxt).
		AddAction("ModVarScene", 3, ModVarScene).
		AddAction("ModVarSceneTxt", 3, ModVarSceneTxt)
}

// Register contributes the extension directly to a table.
func (m *Module) Register(t *registry.Table) error {
	return m.Extension().Contribute(t)
}

// VarScene(name, op, value) compares a scene variable with a number.
func VarScene(ctx *scene.Context, instr *events.Instruction) bool {
	name := instr.GetParameter(0).Text(ctx)
	op := instr.GetParameter(1).Text(ctx)
	return core.RelationTest(ctx.Scene.Variables.Number(name), instr.GetParameter(2).Number(ctx), op)
}

// VarSceneTxt(name, op, text) compares a scene variable with a text.
func VarSceneTxt(ctx *scene.Context, instr *events.Instruction) bool {
	name := instr.GetParameter(0).Text(ctx)
	op := instr.GetParameter(1).Text(ctx)
	return core.StringRelationTest(ctx.Scene.Variables.Text(name), instr.GetParameter(2).Text(ctx), op)
}

// ModVarScene(name, op, value) modifies a scene variable with =, +, -, * or /.
func ModVarScene(ctx *scene.Context, instr *events.Instruction) bool {
	vars := ctx.Scene.Variables
	name := instr.GetParameter(0).Text(ctx)
	op := instr.GetParameter(1).Text(ctx)
	v, ok := core.ModifyNumber(vars.Number(name), op, instr.GetParameter(2).Number(ctx))
	if !ok {
		ctx.Logger.Debug("Scene variable left unchanged.", "variable", name, "operator", op)
		return false
	}
	vars.SetNumber(name, v)
	return true
}

// ModVarSceneTxt(name, op, text) sets (=) or appends to (+) a scene variable.
func ModVarSceneTxt(ctx *scene.Context, instr *events.Instruction) bool {
	vars := ctx.Scene.Variables
	name := instr.GetParameter(0).Text(ctx)
	op := instr.GetParameter(1).Text(ctx)
	v, ok := core.ModifyText(vars.Text(name), op, instr.GetParameter(2).Text(ctx))
	if !ok {
		ctx.Logger.Debug("Scene variable left unchanged.", "variable", name, "operator", op)
		return false
	}
	vars.SetText(name, v)
	return true
}

// Package objects is the extension working on object instances. Its
// conditions pick instances; its actions apply to the instances picked.
package objects

import (
	core "github.com/vk/gdcore/internal/common"
	"github.com/vk/gdcore/internal/events"
	"github.com/vk/gdcore/internal/platform"
	"github.com/vk/gdcore/internal/registry"
	"github.com/vk/gdcore/internal/scene"
)

const ExtensionName = "BuiltinObject"

// Module implements the platform.Module interface for this package.
type Module struct{}

// Extension builds the extension.
func (m *Module) Extension() *platform.Extension {
	return platform.NewExtension(ExtensionName, "Objects").
		SetAuthor("gdcore").
		AddCondition("VarObjet", 4, VarObjet).
		AddCondition("NbObjet", 3, NbObjet).
		AddAction("ModVarObjet", 4, ModVarObjet)
}

// Register contributes the extension directly to a table.
func (m *Module) Register(t *registry.Table) error {
	return m.Extension().Contribute(t)
}

// VarObjet(object, var, op, value) keeps the concerned instances whose
// variable satisfies the comparison. It holds when at least one remains.
func VarObjet(ctx *scene.Context, instr *events.Instruction) bool {
	object := instr.GetParameter(0).Text(ctx)
	name := instr.GetParameter(1).Text(ctx)
	op := instr.GetParameter(2).Text(ctx)
	value := instr.GetParameter(3).Number(ctx)
	return ctx.Objects.Pick(object, func(o *scene.Object) bool {
		return core.RelationTest(o.Variables.Number(name), value, op)
	})
}

// NbObjet(object, op, count) compares the number of concerned instances.
func NbObjet(ctx *scene.Context, instr *events.Instruction) bool {
	object := instr.GetParameter(0).Text(ctx)
	op := instr.GetParameter(1).Text(ctx)
	count := instr.GetParameter(2).Number(ctx)
	return core.RelationTest(float64(len(ctx.Objects.Get(object))), count, op)
}

// ModVarObjet(object, var, op, value) modifies a variable of every concerned
// instance.
func ModVarObjet(ctx *scene.Context, instr *events.Instruction) bool {
	object := instr.GetParameter(0).Text(ctx)
	name := instr.GetParameter(1).Text(ctx)
	op := instr.GetParameter(2).Text(ctx)
	value := instr.GetParameter(3).Number(ctx)

	changed := false
	for _, o := range ctx.Objects.Get(object) {
		if v, ok := core.ModifyNumber(o.Variables.Number(name), op, value); ok {
			o.Variables.SetNumber(name, v)
			changed = true
		}
	}
	return changed
}

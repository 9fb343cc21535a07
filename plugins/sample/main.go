// Command sample is a platform plugin built outside the main binary:
//
//	go build -buildmode=plugin -o SamplePlatform/libSample.so ./plugins/sample
//
// and loaded with --platform SamplePlatform/libSample.so=SamplePlatform.
package main

import (
	"github.com/vk/gdcore/internal/events"
	"github.com/vk/gdcore/internal/expr"
	"github.com/vk/gdcore/internal/platform"
	"github.com/vk/gdcore/internal/scene"
	"github.com/zclconf/go-cty/cty"
)

// GDPluginABIVersion is checked by the loader before anything else.
var GDPluginABIVersion = platform.ABIVersion

// CreateGDPlatform is the platform factory looked up by the loader.
func CreateGDPlatform() platform.Platform {
	ext := platform.NewExtension("SampleTools", "Sample tools").
		SetAuthor("gdcore").
		SetDescription("Tick based helpers.").
		AddCondition("EveryNTicks", 1, everyNTicks).
		AddExpression("SceneTick", expr.KindNumber, nil, sceneTick)

	p := platform.New("Sample")
	p.AddExtension(ext)
	return p
}

// DestroyGDPlatform releases what CreateGDPlatform returned.
func DestroyGDPlatform(platform.Platform) {}

// EveryNTicks(n) holds on every n-th tick.
func everyNTicks(ctx *scene.Context, instr *events.Instruction) bool {
	n := uint64(instr.GetParameter(0).Number(ctx))
	return n > 0 && ctx.Scene.Tick()%n == 0
}

func sceneTick(ctx *scene.Context, _ []cty.Value) (cty.Value, error) {
	return cty.NumberUIntVal(ctx.Scene.Tick()), nil
}

func main() {}

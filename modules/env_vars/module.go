package env_vars

import (
	"os"

	"github.com/vk/gdcore/internal/expr"
	"github.com/vk/gdcore/internal/platform"
	"github.com/vk/gdcore/internal/registry"
	"github.com/vk/gdcore/internal/scene"
	"github.com/zclconf/go-cty/cty"
)

const ExtensionName = "BuiltinEnvironment"

// Module implements the platform.Module interface for this package.
type Module struct{}

// Extension builds the extension.
func (m *Module) Extension() *platform.Extension {
	return platform.NewExtension(ExtensionName, "Environment").
		SetAuthor("gdcore").
		AddExpression("EnvironmentVariable", expr.KindText, []cty.Type{cty.String}, EnvironmentVariable)
}

// Register contributes the extension directly to a table.
func (m *Module) Register(t *registry.Table) error {
	return m.Extension().Contribute(t)
}

// EnvironmentVariable(name) is the value of an environment variable, or ""
// when unset.
func EnvironmentVariable(_ *scene.Context, args []cty.Value) (cty.Value, error) {
	return cty.StringVal(os.Getenv(args[0].AsString())), nil
}

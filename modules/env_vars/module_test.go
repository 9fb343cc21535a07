package env_vars

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/gdcore/internal/expr"
	"github.com/vk/gdcore/internal/registry"
	"github.com/vk/gdcore/internal/scene"
)

func TestEnvironmentVariable(t *testing.T) {
	// --- Arrange ---
	t.Setenv("GDCORE_TEST_GREETING", "hi")
	table := registry.New()
	require.NoError(t, (&Module{}).Register(table))
	ctx := scene.NewContext(scene.New("Main"), nil, nil)
	ctx.Functions = table.Functions(ctx)

	// --- Act & Assert ---
	assert.Equal(t, "hi", expr.MustParse(`EnvironmentVariable("GDCORE_TEST_GREETING")`).Text(ctx))
	assert.Equal(t, "", expr.MustParse(`EnvironmentVariable("GDCORE_TEST_UNSET")`).Text(ctx))
}

package scene

import (
	"log/slog"
	"math/rand/v2"

	"github.com/zclconf/go-cty/cty/function"
)

// Context is what an instruction handler is evaluated against.
type Context struct {
	Scene   *RuntimeScene
	Objects *ObjectsConcerned
	Rand    *rand.Rand
	Logger  *slog.Logger

	// Functions are the expression handlers callable from parameter
	// expressions. They are bound once when the context is created.
	Functions map[string]function.Function
}

// NewContext returns a context over s with nothing picked yet. A nil logger
// falls back to slog.Default.
func NewContext(s *RuntimeScene, r *rand.Rand, logger *slog.Logger) *Context {
	if logger == nil {
		logger = slog.Default()
	}
	return &Context{
		Scene:   s,
		Objects: NewObjectsConcerned(s),
		Rand:    r,
		Logger:  logger,
	}
}

// SwapObjects installs oc as the concerned objects and returns the previous
// set so the caller can restore it. Functions bound to the context observe
// the swap because they close over the context itself.
func (c *Context) SwapObjects(oc *ObjectsConcerned) *ObjectsConcerned {
	prev := c.Objects
	c.Objects = oc
	return prev
}

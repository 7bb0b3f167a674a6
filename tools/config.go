package tools

import "context"

// Config shared by all tools
type Config struct {
	// title the name the tool is called by
	title string
	// description the default description of the tool
	description string
	startHook   func(context.Context, ITool, any)
	endHook     func(context.Context, ITool, any, any)
	errorHook   func(context.Context, ITool, any, error)
}

func (c *Config) SetTitle(v string) {
	c.title = v
}

func (c Config) Title() string {
	return c.title
}

func (c *Config) SetDescription(v string) {
	c.description = v
}

func (c Config) Description() string {
	return c.description
}

func (c *Config) SetStartHook(fn func(context.Context, ITool, any)) {
	c.startHook = fn
}

func (c *Config) SetEndHook(fn func(context.Context, ITool, any, any)) {
	c.endHook = fn
}

func (c *Config) SetErrorHook(fn func(context.Context, ITool, any, error)) {
	c.errorHook = fn
}

// OnStart calls the start hook if any
func (c Config) OnStart(ctx context.Context, t ITool, input any) {
	if fn := c.startHook; fn != nil {
		fn(ctx, t, input)
	}
}

// OnEnd calls the end hook if any
func (c Config) OnEnd(ctx context.Context, t ITool, input any, output any) {
	if fn := c.endHook; fn != nil {
		fn(ctx, t, input, output)
	}
}

// OnError calls the error hook if any
func (c Config) OnError(ctx context.Context, t ITool, input any, err error) {
	if fn := c.errorHook; fn != nil {
		fn(ctx, t, input, err)
	}
}

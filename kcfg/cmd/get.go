// Copyright 2026, Square, Inc.

package cmd

import (
	"fmt"

	"github.com/square/kuyruk/config"
	"github.com/square/kuyruk/kcfg/app"
)

type Get struct {
	ctx  app.Context
	name string
}

func NewGet(ctx app.Context) *Get {
	return &Get{ctx: ctx}
}

func (c *Get) Prepare() error {
	if len(c.ctx.Args) != 1 {
		return usage(c)
	}
	c.name = c.ctx.Args[0]
	return nil
}

func (c *Get) Run() error {
	v, ok := c.ctx.Config.Get(c.name)
	if !ok {
		return fmt.Errorf("Unknown setting: %s. Run 'kcfg options' to list settings.", c.name)
	}
	fmt.Fprintln(c.ctx.Out, config.Literal(v))
	return nil
}

func (c *Get) Cmd() string {
	return "get " + c.name
}

func (c *Get) Help() string {
	return "get NAME\n  Print the effective value of one setting."
}

// --------------------------------------------------------------------------

type Options struct {
	ctx app.Context
}

func NewOptions(ctx app.Context) *Options {
	return &Options{ctx: ctx}
}

func (c *Options) Prepare() error {
	return nil
}

func (c *Options) Run() error {
	for _, opt := range config.Options() {
		fmt.Fprintf(c.ctx.Out, "%s = %s\n  %s\n", opt.Name, config.Literal(opt.Default()), opt.Doc)
	}
	return nil
}

func (c *Options) Cmd() string {
	return "options"
}

func (c *Options) Help() string {
	return "options\n  List every setting with its default value."
}

// Copyright 2026, Square, Inc.

package cmd

import (
	"fmt"

	"github.com/square/kuyruk/kcfg/app"
)

type Show struct {
	ctx app.Context
}

func NewShow(ctx app.Context) *Show {
	return &Show{ctx: ctx}
}

func (c *Show) Prepare() error {
	if len(c.ctx.Args) != 0 {
		return usage(c)
	}
	return nil
}

func (c *Show) Run() error {
	if c.ctx.Config.Filename != "" {
		fmt.Fprintf(c.ctx.Out, "# %s\n", c.ctx.Config.Filename)
	}
	return c.ctx.Config.Write(c.ctx.Out)
}

func (c *Show) Cmd() string {
	return "show"
}

func (c *Show) Help() string {
	return "show\n  Print the effective config as a settings file."
}

// --------------------------------------------------------------------------

type Export struct {
	ctx  app.Context
	path string
}

func NewExport(ctx app.Context) *Export {
	return &Export{ctx: ctx}
}

func (c *Export) Prepare() error {
	if len(c.ctx.Args) != 1 {
		return usage(c)
	}
	c.path = c.ctx.Args[0]
	return nil
}

func (c *Export) Run() error {
	if err := c.ctx.Config.Export(c.path); err != nil {
		return err
	}
	if c.ctx.Options.Debug {
		app.Debug("config exported to %s", c.path)
	}
	return nil
}

func (c *Export) Cmd() string {
	return "export " + c.path
}

func (c *Export) Help() string {
	return "export PATH\n  Write the effective config to PATH, replacing the file if it exists.\n  The file can be used as --config for another process."
}

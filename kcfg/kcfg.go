// Copyright 2026, Square, Inc.

// Package kcfg provides a framework for integration with other programs.
package kcfg

import (
	"fmt"
	"io"

	"github.com/alexflint/go-arg"
	log "github.com/sirupsen/logrus"

	"github.com/square/kuyruk/kcfg/app"
	"github.com/square/kuyruk/kcfg/cmd"
	"github.com/square/kuyruk/logging"
	"github.com/square/kuyruk/version"
)

// commandLine represents options (--config, etc.) and the command.
type commandLine struct {
	app.Options
	Cmd  string   `arg:"positional" help:"broker, export, get, options, show or workers"`
	Args []string `arg:"positional"`
}

func (commandLine) Version() string {
	return "kcfg " + version.Version()
}

// Run runs kcfg with the command line args (without the program name). When
// using the standard kcfg bin, Run is called by kcfg/bin/main.go. Wrapper code
// imports this pkg and calls Run with a custom context. If a hook or factory
// is not set (nil), the default is used.
func Run(ctx app.Context, args []string) error {
	var c commandLine
	p, err := arg.NewParser(arg.Config{Program: "kcfg"}, &c)
	if err != nil {
		return fmt.Errorf("arg.NewParser: %s", err)
	}
	if err := p.Parse(args); err != nil {
		switch err {
		case arg.ErrHelp:
			help(ctx.Out, p)
			return app.ErrHelp
		case arg.ErrVersion:
			fmt.Fprintln(ctx.Out, c.Version())
			return nil
		}
		return fmt.Errorf("Error parsing command line: %s", err)
	}
	if c.Cmd == "version" {
		fmt.Fprintln(ctx.Out, c.Version())
		return nil
	}
	if c.Cmd == "" || c.Cmd == "help" {
		help(ctx.Out, p)
		return app.ErrHelp
	}
	ctx.Options = c.Options
	ctx.Cmd = c.Cmd
	ctx.Args = c.Args

	// //////////////////////////////////////////////////////////////////////
	// Config
	// //////////////////////////////////////////////////////////////////////
	if ctx.Hooks.LoadConfig == nil {
		ctx.Hooks.LoadConfig = app.LoadConfig
	}
	cfg, err := ctx.Hooks.LoadConfig(ctx)
	if err != nil {
		return err
	}
	if ctx.Hooks.AfterLoadConfig != nil {
		ctx.Hooks.AfterLoadConfig(cfg)
	}
	ctx.Config = cfg

	if err := logging.Setup(log.StandardLogger(), cfg); err != nil {
		return fmt.Errorf("Error setting up logging: %s", err)
	}
	if ctx.Options.Debug {
		log.SetLevel(log.DebugLevel)
		app.Debug("options: %#v", ctx.Options)
		app.Debug("command: %s %v", ctx.Cmd, ctx.Args)
	}

	// //////////////////////////////////////////////////////////////////////
	// Command
	// //////////////////////////////////////////////////////////////////////
	var run app.Command
	if ctx.Factories.Command != nil {
		run, err = ctx.Factories.Command.Make(c.Cmd, ctx)
		if err != nil {
			if err != cmd.ErrNotExist {
				return fmt.Errorf("User command factory error: %s", err)
			}
			if ctx.Options.Debug {
				app.Debug("user cmd factory cannot make a %s cmd, trying default factory", c.Cmd)
			}
		}
	}
	if run == nil {
		run, err = (&cmd.DefaultFactory{}).Make(c.Cmd, ctx)
		if err != nil {
			if err == cmd.ErrNotExist {
				return fmt.Errorf("Unknown command: %s. Run 'kcfg help' to list commands.", c.Cmd)
			}
			return fmt.Errorf("Command factory error: %s", err)
		}
	}

	if err := run.Prepare(); err != nil {
		return err
	}
	if err := run.Run(); err != nil {
		if ctx.Options.Debug {
			app.Debug("%s Run error: %s", run.Cmd(), err)
		}
		return err
	}
	return nil
}

func help(out io.Writer, p *arg.Parser) {
	p.WriteHelp(out)
	fmt.Fprintln(out, "\nCommands:")
	ctx := app.Context{}
	for _, name := range []string{"broker", "export", "get", "options", "show", "workers"} {
		c, _ := (&cmd.DefaultFactory{}).Make(name, ctx)
		fmt.Fprintf(out, "  %s\n", c.Help())
	}
}

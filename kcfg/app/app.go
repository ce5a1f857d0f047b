// Copyright 2026, Square, Inc.

// Package app provides app-wide data structs and functions.
package app

import (
	"errors"
	"io"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/square/kuyruk/config"
)

var ErrHelp = errors.New("print help")

// Options represents the command line options: --config and --debug.
type Options struct {
	Config string `arg:"env:KUYRUK_CONFIG" help:"settings file (.star, .py or .yaml)"`
	Debug  bool   `help:"print debug output to stderr"`
}

// Context represents how to run kcfg. A context is passed to kcfg.Run().
// A default context is created in main.go. Wrapper code can integrate with
// kcfg by passing a custom context to kcfg.Run(), primarily with hooks and
// factories.
type Context struct {
	// Set in main.go or by wrapper
	Out       io.Writer // where to print output (default: stdout)
	Hooks     Hooks     // for integration with other code
	Factories Factories // for integration with other code

	// Set automatically in kcfg.Run()
	Options Options        // command line options
	Cmd     string         // command ("show", "get", etc.)
	Args    []string       // command args, if any
	Config  *config.Config // effective config
}

type Command interface {
	Prepare() error
	Run() error
	Cmd() string
	Help() string
}

type CommandFactory interface {
	Make(string, Context) (Command, error)
}

type Factories struct {
	Command CommandFactory
}

type Hooks struct {
	// LoadConfig returns the config the command runs with. The default is
	// LoadConfig.
	LoadConfig func(Context) (*config.Config, error)

	// AfterLoadConfig is called with the loaded config before the command
	// runs. It can change the config.
	AfterLoadConfig func(*config.Config)

	// Hostname returns the host used by "workers" when no host is given.
	// The default is os.Hostname.
	Hostname func() (string, error)
}

func Defaults() Context {
	return Context{
		Out: os.Stdout,
		Hooks: Hooks{
			LoadConfig: LoadConfig,
			Hostname:   os.Hostname,
		},
	}
}

// LoadConfig is the default LoadConfig hook. It returns the defaults, with
// the --config file merged in if given.
func LoadConfig(ctx Context) (*config.Config, error) {
	cfg := config.New()
	if ctx.Options.Config == "" {
		return cfg, nil
	}
	if err := cfg.FromFile(ctx.Options.Config); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Debug(fmt string, v ...interface{}) {
	log.Debugf(fmt, v...)
}

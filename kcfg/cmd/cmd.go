// Copyright 2026, Square, Inc.

// Package cmd provides all the commands that kcfg can run: show, get, etc.
package cmd

import (
	"errors"
	"fmt"

	"github.com/square/kuyruk/kcfg/app"
)

var (
	ErrNotExist = errors.New("command does not exist")
)

type DefaultFactory struct {
}

func (f *DefaultFactory) Make(name string, ctx app.Context) (app.Command, error) {
	switch name {
	case "broker":
		return NewBroker(ctx), nil
	case "export":
		return NewExport(ctx), nil
	case "get":
		return NewGet(ctx), nil
	case "options":
		return NewOptions(ctx), nil
	case "show":
		return NewShow(ctx), nil
	case "workers":
		return NewWorkers(ctx), nil
	default:
		return nil, ErrNotExist
	}
}

func usage(c app.Command) error {
	return fmt.Errorf("Usage: kcfg %s", c.Help())
}

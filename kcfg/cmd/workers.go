// Copyright 2026, Square, Inc.

package cmd

import (
	"fmt"

	"github.com/square/kuyruk/kcfg/app"
)

type Workers struct {
	ctx  app.Context
	host string
}

func NewWorkers(ctx app.Context) *Workers {
	return &Workers{ctx: ctx}
}

func (c *Workers) Prepare() error {
	switch len(c.ctx.Args) {
	case 0:
		if c.ctx.Hooks.Hostname == nil {
			return fmt.Errorf("no host given and no Hostname hook")
		}
		host, err := c.ctx.Hooks.Hostname()
		if err != nil {
			return fmt.Errorf("cannot get hostname: %s", err)
		}
		c.host = host
	case 1:
		c.host = c.ctx.Args[0]
	default:
		return usage(c)
	}
	return nil
}

func (c *Workers) Run() error {
	queues, err := c.ctx.Config.QueuesFor(c.host)
	if err != nil {
		return err
	}
	for _, q := range queues {
		fmt.Fprintf(c.ctx.Out, "%s %d\n", q.Queue, q.Count)
	}
	return nil
}

func (c *Workers) Cmd() string {
	return "workers " + c.host
}

func (c *Workers) Help() string {
	return "workers [HOST]\n  Print the queues and worker process counts for HOST (default: this host)."
}

// --------------------------------------------------------------------------

type Broker struct {
	ctx app.Context
}

func NewBroker(ctx app.Context) *Broker {
	return &Broker{ctx: ctx}
}

func (c *Broker) Prepare() error {
	return nil
}

func (c *Broker) Run() error {
	u, err := c.ctx.Config.BrokerURL()
	if err != nil {
		return err
	}
	fmt.Fprintln(c.ctx.Out, u)
	return nil
}

func (c *Broker) Cmd() string {
	return "broker"
}

func (c *Broker) Help() string {
	return "broker\n  Print the broker URL."
}

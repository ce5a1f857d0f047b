// Copyright 2026, Square, Inc.

package main

import (
	"fmt"
	"os"

	"github.com/square/kuyruk/kcfg"
	"github.com/square/kuyruk/kcfg/app"
)

func main() {
	if err := kcfg.Run(app.Defaults(), os.Args[1:]); err != nil {
		if err != app.ErrHelp {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
}

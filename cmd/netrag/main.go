// Package main is the entry point for the netrag query assistant.
package main

import (
	_ "go.uber.org/automaxprocs/maxprocs"

	"github.com/netrag/netrag/cmd/netrag/app"
)

func main() {
	app.NewApp().Run()
}

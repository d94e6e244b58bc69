package main

import (
	"fmt"
	"os"

	demo "github.com/km-arc/go-minidi/app"
	"github.com/km-arc/go-minidi/framework/app"
	"github.com/km-arc/go-minidi/framework/container"
)

// Usage: go run . [key ...]
//
// Loads .env, merges CONTAINER_FILE into the application container and
// prints every requested key (CONTAINER_KEYS when none are given).
func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	demo.Register(container.DefaultRegistry)

	application, err := app.New() // loads .env automatically
	if err != nil {
		return err
	}
	defer func() { _ = application.Logger().Sync() }()

	return application.Run(args)
}

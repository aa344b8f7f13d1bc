package main

import (
	"fmt"
	"os"

	"github.com/hitoshi/manabi/internal/app"
)

func main() {
	streams := app.Streams{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
	if err := app.Run(streams, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

package main

import (
	"context"
	"os"
)

// main is the entry point for the converty application. Cobra prints the
// error; main only turns it into the exit status.
func main() {
	if err := Execute(context.Background(), os.Args[1:]); err != nil {
		os.Exit(1)
	}
}

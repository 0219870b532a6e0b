package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		// Interrupted polls exit silently; the signal already told the user.
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "surfacegate:", err)
		}
		os.Exit(1)
	}
}

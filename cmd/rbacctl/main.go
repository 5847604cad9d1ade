package main

import (
	"errors"
	"fmt"
	"os"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errDenied) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

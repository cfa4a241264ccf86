package main

import (
	"context"
	"os"
)

func main() {
	if err := execute(context.Background(), newRootCmd()); err != nil {
		reportError(err)
		os.Exit(exitCode(err))
	}
}

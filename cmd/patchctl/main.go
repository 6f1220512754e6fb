package main

import (
	"os"

	"github.com/patchkit/patchctl/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}

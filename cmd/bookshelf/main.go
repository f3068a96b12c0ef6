package main

import (
	"os"

	"github.com/crowjourney/bookshelf/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

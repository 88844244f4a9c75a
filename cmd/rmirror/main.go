package main

import (
	"os"

	"github.com/dl-alexandre/rmirror/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}

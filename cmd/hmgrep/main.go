package main

import (
	"os"

	"github.com/gnoswap-labs/hmgrep/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}

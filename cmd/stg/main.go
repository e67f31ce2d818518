package main

import (
	"os"

	"github.com/cwbudde/go-stg/cmd/stg/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"os"

	"github.com/a2zmarket/a2z-backend/cmd/resetctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// Package main provides the entry point for the conductorboot CLI.
package main

import (
	"os"

	"github.com/Aman-CERP/conductorboot/cmd/conductorboot/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

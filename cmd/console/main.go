// Package main is the entry point for the admin console binary.
package main

import (
	"os"

	"admin-console/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}

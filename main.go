// Package main is the entry point for the Tripmart CLI application.
package main

import (
	"tripmart/cli/cmd"
)

func main() {
	cmd.Execute()
}

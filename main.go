// Package main is the entry point for the argstate CLI.
package main

import "argstate.dev/pkg/argstate/cmd"

func main() {
	cmd.Execute()
}

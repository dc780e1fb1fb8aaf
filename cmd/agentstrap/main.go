// Package main provides the entry point for the agentstrap CLI.
package main

import "os"

func main() {
	os.Exit(Execute())
}

// Package main is the entry point for the sosie command-line tool.
package main

import "sosie.dev/pkg/sosie/cmd"

func main() {
	cmd.Execute()
}

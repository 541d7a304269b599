// Package main is the entry point for the winning-products CLI and server.
package main

import (
	"github.com/donaldgifford/winning-products/cmd/winning-products/cmd"
)

func main() {
	cmd.Execute()
}

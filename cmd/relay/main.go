// Package main is the entry point for the hpn-chat-relay binary.
package main

import (
	"fmt"
	"os"

	"github.com/hpn/hpn-chat-relay/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// Command rpgchat is a terminal role-playing chat backed by a hosted
// assistant, with running memory carried across sessions.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

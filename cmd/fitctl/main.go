package main

import (
	"fmt"
	"os"
)

var version = "1.0.0"

func main() {
	if err := NewRootCmd(version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// Command nix-du analyzes the disk usage of the Nix store and prints a
// Graphviz graph of which GC roots to remove to reclaim the most space.
package main

import (
	"errors"
	"os"

	"github.com/symphorien/nix-du/depgraph"
)

func main() {
	cmd := New()
	if err := cmd.Execute(); err != nil {
		var sre *depgraph.StoreReadError
		switch {
		case errors.As(err, &sre):
			os.Exit(sre.Code)
		case errors.Is(err, errStdoutWrite):
			os.Exit(3)
		default:
			os.Exit(1)
		}
	}
}

package main

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/symphorien/nix-du/store"
)

// options are the resolved command line arguments.
type options struct {
	minSize  uint64 // 0 when -s was not passed
	topNodes int    // 0 when -n was not passed
	root     string
	optimise string
	dump     string
	quiet    bool
}

// New returns the nix-du command.
func New() *cobra.Command {
	var minSize string
	opts := options{}

	cmd := &cobra.Command{
		Use:   "nix-du",
		Short: "visualize what gc-roots to delete to free space in your nix store",
		Long: `nix-du computes the dependency graph of the Nix store, merges the paths
that are kept alive by the same set of GC roots, and prints the result
as a Graphviz graph on stdout:

    nix-du -s 500MB | dot -Tsvg > store.svg`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			if minSize != "" {
				size, err := humanize.ParseBytes(minSize)
				if err != nil {
					return fmt.Errorf("invalid size %q: %w", minSize, err)
				}
				opts.minSize = size
			}
			if cmd.Flags().Changed("nodes") && opts.topNodes <= 0 {
				return errors.New("the number of nodes to keep must be positive")
			}
			switch opts.optimise {
			case "0", "1", "2", "auto":
			default:
				return fmt.Errorf("invalid dedup mode %q: must be 0, 1, 2 or auto", opts.optimise)
			}
			return run(opts, &store.NixStore{}, cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&minSize, "min-size", "s", "",
		"only keep nodes of at least this size, e.g. 500MB")
	flags.IntVarP(&opts.topNodes, "nodes", "n", 0,
		"only keep approximately this many of the biggest nodes")
	flags.StringVarP(&opts.root, "root", "r", "",
		"restrict the analysis to the closure of this path")
	flags.StringVarP(&opts.optimise, "optimised-store", "O", "auto",
		"take hardlink deduplication into account: 0 (no), 1 (reachable paths), 2 (all paths), auto")
	flags.StringVar(&opts.dump, "dump", "",
		"also write the graph before transitive reduction to this file")
	flags.BoolVarP(&opts.quiet, "quiet", "q", false,
		"suppress progress output on stderr")
	cmd.MarkFlagsMutuallyExclusive("min-size", "nodes")

	return cmd
}

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"

	"github.com/dustin/go-humanize"

	"github.com/symphorien/nix-du/dedup"
	"github.com/symphorien/nix-du/depgraph"
	"github.com/symphorien/nix-du/dot"
	"github.com/symphorien/nix-du/progress"
	"github.com/symphorien/nix-du/reduction"
)

// errStdoutWrite marks a failure to emit the final graph; the process
// exits with a dedicated status for it, unless the consumer just closed
// the pipe early, which is business as usual under `nix-du | head`.
var errStdoutWrite = errors.New("cannot write graph to stdout")

// run executes the whole analysis pipeline and writes DOT to out.
func run(opts options, pop depgraph.Populator, out io.Writer) error {
	progress.SetQuiet(opts.quiet)

	rootPath := ""
	if opts.root != "" {
		p, err := filepath.Abs(opts.root)
		if err == nil {
			p, err = filepath.EvalSymlinks(p)
		}
		if err != nil {
			return fmt.Errorf("cannot canonicalize %s: %w", opts.root, err)
		}
		rootPath = p
	}

	progress.Msgf("reading the store...")
	di, err := depgraph.Populate(pop, rootPath)
	if err != nil {
		return err
	}
	progress.Msgf("%d paths, %d references", di.Graph.NodeCount(), di.Graph.EdgeCount())

	if rootPath != "" {
		di = reduction.KeepReachable(di)
	}

	switch mode := dedupMode(opts, di); mode {
	case "1":
		if di.Metadata.Reachable != depgraph.Connected {
			di = reduction.KeepReachable(di)
		}
		fallthrough
	case "2":
		progress.Msgf("looking for hardlinked files...")
		if err := dedup.RefineOptimizedStore(di); err != nil {
			return err
		}
		if before, ok := di.RecordedSize(depgraph.Unaware, depgraph.Connected); ok {
			if after, ok := di.RecordedSize(depgraph.Aware, depgraph.Connected); ok && before > after {
				progress.Msgf("deduplication saves %s on reachable paths", humanize.Bytes(before-after))
			}
		}
	}

	di = reduction.MergeTransientRoots(di)
	di = reduction.Condense(di)
	progress.Msgf("%d nodes and %d edges after merging", di.Graph.NodeCount(), di.Graph.EdgeCount())

	switch {
	case opts.minSize > 0:
		di = reduction.KeepSize(di, opts.minSize)
	case opts.topNodes > 0:
		di = reduction.KeepCount(di, opts.topNodes)
	}

	if opts.dump != "" {
		f, err := os.Create(opts.dump)
		if err != nil {
			return fmt.Errorf("cannot open dump file: %w", err)
		}
		if err := dot.Render(di, f); err != nil {
			f.Close()
			return fmt.Errorf("cannot write dump file: %w", err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("cannot write dump file: %w", err)
		}
	}

	di = reduction.TransitiveReduction(di)

	if err := dot.Render(di, out); err != nil {
		if errors.Is(err, syscall.EPIPE) {
			return nil
		}
		return fmt.Errorf("%w: %v", errStdoutWrite, err)
	}
	return nil
}

// dedupMode resolves the -O flag, probing the store in auto mode.
func dedupMode(opts options, di *depgraph.DepInfos) string {
	if opts.optimise != "auto" {
		return opts.optimise
	}
	optimised, known, err := dedup.StoreIsOptimised(di)
	if err != nil {
		progress.Warnf("cannot determine whether the store is optimised, assuming not: %v", err)
		return "0"
	}
	if !known {
		progress.Msgf("cannot cheaply determine whether the store is optimised, assuming not")
		return "0"
	}
	if optimised {
		progress.Msgf("the store looks optimised, accounting for hardlinks")
		return "1"
	}
	return "0"
}

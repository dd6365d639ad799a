package dedup

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"

	"github.com/symphorien/nix-du/depgraph"
	"github.com/symphorien/nix-du/progress"
)

// StoreIsOptimised guesses whether the store deduplicates files, without
// walking it. known is false when the guess would not be cheap or the
// layout looks unusual; callers should then skip the refinement pass.
//
// The store keeps one hardlink per deduplicated file under a .links
// directory next to the store paths. The location is inferred from any
// store path node, since the store API does not expose it. Up to ten
// entries of .links are examined: one with a link count above one proves
// optimisation; exactly ten solitary links make the opposite likely.
// Anything else, fewer entries or more, is left undecided.
func StoreIsOptimised(di *depgraph.DepInfos) (optimised, known bool, err error) {
	var store string
	for _, n := range di.Graph.Nodes() {
		if n.Description.Kind() != depgraph.KindPath {
			continue
		}
		p, _ := n.Description.Path()
		if parent := filepath.Dir(p); parent != p && parent != "/" {
			store = parent
			break
		}
	}
	if store == "" {
		return false, false, nil
	}
	links := filepath.Join(store, ".links")

	dir, err := os.Open(links)
	if err != nil {
		return false, false, fmt.Errorf("dedup: %s: %w", links, err)
	}
	defer dir.Close()

	entries, err := dir.ReadDir(11)
	if err != nil && !errors.Is(err, io.EOF) {
		return false, false, fmt.Errorf("dedup: %s: %w", links, err)
	}
	more := len(entries) > 10
	if more {
		entries = entries[:10]
	}
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			progress.Warnf("strange, %s is not a file", filepath.Join(links, entry.Name()))
			return false, false, nil
		}
		fi, err := entry.Info()
		if err != nil {
			return false, false, fmt.Errorf("dedup: %s: %w", filepath.Join(links, entry.Name()), err)
		}
		if st, ok := fi.Sys().(*syscall.Stat_t); ok && st.Nlink > 1 {
			return true, true, nil
		}
	}
	if more || len(entries) < 10 {
		// too many entries to conclude anything cheaply, or too few
		// solitary links to mean anything
		return false, false, nil
	}
	return false, true, nil
}

package dedup

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/symphorien/nix-du/depgraph"
	"github.com/symphorien/nix-du/progress"
)

// claim reports that a regular file of the given inode and size was found
// under the store path of node owner.
type claim struct {
	owner int64
	inode uint64
	size  uint64
}

// owner tracks what is known about an inode. Before the second sighting,
// id is the node of the only store path seen holding it; afterwards,
// shared is set and id is the synthetic node owning its bytes.
type owner struct {
	shared bool
	id     int64
}

// RefineOptimizedStore walks the filesystem under every store path of the
// graph and re-attributes hardlinked bytes to shared nodes, in place.
//
// Directory walking and stat calls run on a bounded worker pool, one
// store path at a time; a single reducer goroutine owns the inode table
// and is the only writer to the graph, so the one-owner to several-owners
// transition of an inode is observed atomically and size arithmetic never
// races. The workers only read an upfront snapshot of the node table,
// which node insertion by the reducer cannot invalidate.
//
// Any I/O error aborts the pass and is returned; the graph may then hold
// a partial refinement and should be discarded. On success the metadata
// is flagged dedup-aware and re-recorded.
func RefineOptimizedStore(di *depgraph.DepInfos) error {
	g := di.Graph

	// snapshot of the paths to walk, taken before any mutation
	type job struct {
		id   int64
		path string
	}
	var jobs []job
	for _, n := range g.Nodes() {
		if n.Description.Kind() != depgraph.KindPath {
			// roots are not necessarily readable, and they are
			// symlinks anyway
			continue
		}
		if p, ok := n.Description.Path(); ok {
			jobs = append(jobs, job{id: n.ID(), path: p})
		}
	}

	meter := progress.NewMeter(len(jobs))
	claims := make(chan claim, 1024)

	reduced := make(chan struct{})
	go func() {
		defer close(reduced)
		reduce(g, claims)
	}()

	var grp errgroup.Group
	grp.SetLimit(runtime.GOMAXPROCS(0))
	for _, j := range jobs {
		j := j
		grp.Go(func() error {
			defer meter.Inc()
			return walkPath(j.id, j.path, claims)
		})
	}
	err := grp.Wait()
	close(claims)
	<-reduced
	meter.Done()
	if err != nil {
		return err
	}

	di.Metadata.Dedup = depgraph.Aware
	di.RecordMetadata()
	return nil
}

// walkPath emits one claim per regular file under path. A store path
// that is itself a symlink is skipped: following it would escape the
// path's own tree.
func walkPath(id int64, path string, claims chan<- claim) error {
	info, err := os.Lstat(path)
	if err != nil {
		return fmt.Errorf("dedup: %s: %w", path, err)
	}
	if info.Mode()&os.ModeSymlink != 0 {
		return nil
	}
	return filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("dedup: %s: %w", p, err)
		}
		// only regular files are hardlinked
		if !d.Type().IsRegular() {
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			return fmt.Errorf("dedup: %s: %w", p, err)
		}
		st, ok := fi.Sys().(*syscall.Stat_t)
		if !ok {
			return fmt.Errorf("dedup: %s: no inode information", p)
		}
		claims <- claim{owner: id, inode: st.Ino, size: uint64(st.Size)}
		return nil
	})
}

// reduce drains claims, maintaining the invariant: every inode seen is a
// key of inodes; while it has been seen once the value holds its first
// owner; from the second sighting on, the value holds a shared node
// carrying the file's size, every owner seen so far has an edge to it,
// and no owner counts the file's bytes in its own size anymore.
func reduce(g *depgraph.DepGraph, claims <-chan claim) {
	inodes := make(map[uint64]*owner)
	for c := range claims {
		o := inodes[c.inode]
		switch {
		case o == nil:
			// first sighting
			inodes[c.inode] = &owner{id: c.owner}
		case !o.shared:
			// second sighting: this inode is deduplicated
			name := g.Node(o.id).Name()
			shared := g.AddNode(depgraph.NewSharedDescription(name), c.size)
			g.AddEdge(o.id, shared)
			g.AddEdge(c.owner, shared)
			g.Node(o.id).Size -= c.size
			g.Node(c.owner).Size -= c.size
			o.shared = true
			o.id = shared
		default:
			g.AddEdge(c.owner, o.id)
			g.Node(c.owner).Size -= g.Node(o.id).Size
		}
	}
}

package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"github.com/symphorien/nix-du/depgraph"
)

// NixStore enumerates the store with the nix command line tools.
type NixStore struct {
	// Nix overrides the binary used for path queries; defaults to
	// "nix".
	Nix string
	// NixStoreBin overrides the binary used for root enumeration;
	// defaults to "nix-store".
	NixStoreBin string
}

// pathInfo is the subset of `nix path-info --json` the adapter needs.
type pathInfo struct {
	Path       string   `json:"path"`
	NarSize    uint64   `json:"narSize"`
	References []string `json:"references"`
}

// Populate registers every valid path, every GC root, and the reference
// edges between them. When rootPath is non-empty, enumeration is
// restricted to its closure and no roots are registered.
func (s *NixStore) Populate(reg depgraph.Registry, rootPath string) error {
	infos, err := s.pathInfos(rootPath)
	if err != nil {
		return err
	}

	ids := make(map[string]int64, len(infos))
	for _, pi := range infos {
		ids[pi.Path] = reg.RegisterNode(depgraph.PathRecord{Path: pi.Path, Size: pi.NarSize})
	}
	for _, pi := range infos {
		from := ids[pi.Path]
		for _, ref := range pi.References {
			to, ok := ids[ref]
			if !ok {
				// a reference outside the closure can only happen
				// in restricted mode; skip it
				continue
			}
			reg.RegisterEdge(from, to)
		}
	}
	if rootPath != "" {
		return nil
	}

	roots, err := s.gcRoots()
	if err != nil {
		return err
	}
	for link, target := range roots {
		to, ok := ids[target]
		if !ok {
			// the store can race with us; a root whose target
			// vanished pins nothing
			continue
		}
		from := reg.RegisterNode(depgraph.PathRecord{Path: link, IsRoot: true})
		reg.RegisterEdge(from, to)
	}
	return nil
}

// pathInfos lists the valid paths to analyse with their sizes and
// references.
func (s *NixStore) pathInfos(rootPath string) ([]pathInfo, error) {
	nix := s.Nix
	if nix == "" {
		nix = "nix"
	}
	args := []string{"--extra-experimental-features", "nix-command", "path-info", "--json"}
	if rootPath == "" {
		args = append(args, "--all")
	} else {
		args = append(args, "--recursive", rootPath)
	}
	out, err := run(nix, args...)
	if err != nil {
		return nil, err
	}
	return parsePathInfos(out)
}

func parsePathInfos(out []byte) ([]pathInfo, error) {
	var infos []pathInfo
	if err := json.Unmarshal(out, &infos); err == nil {
		return infos, nil
	}
	// older nix emits an object keyed by path instead of an array
	var byPath map[string]pathInfo
	if err := json.Unmarshal(out, &byPath); err != nil {
		return nil, &depgraph.StoreReadError{Code: 1, Err: fmt.Errorf("store: cannot parse path-info output: %w", err)}
	}
	infos = make([]pathInfo, 0, len(byPath))
	for path, pi := range byPath {
		pi.Path = path
		infos = append(infos, pi)
	}
	return infos, nil
}

// gcRoots maps each GC root (symlink path, or brace-delimited transient
// identifier) to the store path it pins.
func (s *NixStore) gcRoots() (map[string]string, error) {
	bin := s.NixStoreBin
	if bin == "" {
		bin = "nix-store"
	}
	out, err := run(bin, "--gc", "--print-roots")
	if err != nil {
		return nil, err
	}
	return parseRoots(out), nil
}

func parseRoots(out []byte) map[string]string {
	roots := make(map[string]string)
	for _, line := range strings.Split(string(out), "\n") {
		link, target, found := strings.Cut(line, " -> ")
		if !found {
			continue
		}
		roots[strings.TrimSpace(link)] = strings.TrimSpace(target)
	}
	return roots
}

func run(bin string, args ...string) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.Command(bin, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		code := 1
		if ee, ok := err.(*exec.ExitError); ok && ee.ExitCode() > 0 {
			code = ee.ExitCode()
		}
		return nil, &depgraph.StoreReadError{
			Code: code,
			Err:  fmt.Errorf("store: %s %s: %w: %s", bin, strings.Join(args, " "), err, bytes.TrimSpace(stderr.Bytes())),
		}
	}
	return stdout.Bytes(), nil
}

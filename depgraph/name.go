package depgraph

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/dustin/go-humanize"
)

// Store path base names look like <hash>-<name> where the hash is 32
// characters of Nix base32.
var storeHashRe = regexp.MustCompile(`^[0-9a-df-np-sv-z]{32}-`)

// Profile generation links look like <profile>-<generation>-link, for
// example /nix/var/nix/profiles/system-42-link.
var generationLinkRe = regexp.MustCompile(`^(.+)-([0-9]+)-link$`)

// Developer shell cache roots created by direnv or nix-direnv live under a
// .direnv directory inside the project.
var direnvRe = regexp.MustCompile(`/(.+)/\.direnv\b`)

// Name derives the human-readable label of a description. It is lossy on
// purpose: store hash prefixes are stripped, and well-known GC link
// layouts are rendered as a profile name with generation and age rather
// than a raw path.
func (d NodeDescription) Name() string {
	switch d.kind {
	case KindPath:
		return storeHashRe.ReplaceAllString(filepath.Base(string(d.payload)), "")
	case KindLink:
		return linkName(string(d.payload))
	case KindMemory, KindTemporary:
		return string(d.payload)
	case KindShared:
		return "shared:" + string(d.payload)
	case KindDummy:
		return "{all roots}"
	case KindFilteredOut:
		return "{filtered out}"
	case KindTransient:
		return "{transient roots}"
	}
	return d.kind.String()
}

// linkName renders an indirect GC root. Profile generations and direnv
// caches get a description with the link's modification age; anything else
// falls back to the base name.
func linkName(path string) string {
	base := filepath.Base(path)
	if m := generationLinkRe.FindStringSubmatch(base); m != nil {
		return fmt.Sprintf("%s (generation %s%s)", m[1], m[2], linkAge(path))
	}
	if m := direnvRe.FindStringSubmatch(path); m != nil {
		return fmt.Sprintf("dev shell of %s%s", filepath.Base(m[1]), linkAge(path))
	}
	return base
}

// linkAge returns ", <age>" for display, or the empty string when the
// link cannot be stat'ed (it may have vanished since enumeration).
func linkAge(path string) string {
	info, err := os.Lstat(path)
	if err != nil {
		return ""
	}
	return ", " + humanize.Time(info.ModTime())
}

package dot

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/symphorien/nix-du/depgraph"
)

// Render writes the graph to w in DOT syntax. A synthetic dummy root is
// omitted together with its edges: it is an artifact of the analysis,
// not something the user can delete. A real root, as under a restricted
// analysis, is drawn like any other node. Only syntactic validity is
// guaranteed, not a specific byte layout.
func Render(di *depgraph.DepInfos, w io.Writer) error {
	out := bufio.NewWriter(w)
	g := di.Graph
	hidden := g.Node(di.Root).Description.Kind() == depgraph.KindDummy

	// color scale over the sizes of drawn nodes
	var min, max uint64
	first := true
	for _, n := range g.Nodes() {
		if hidden && n.ID() == di.Root {
			continue
		}
		if first {
			min, max = n.Size, n.Size
			first = false
			continue
		}
		if n.Size > max {
			max = n.Size
		}
		if n.Size < min {
			min = n.Size
		}
	}
	scale := func(size uint64) float64 {
		if max == min {
			return 0
		}
		return math.Sqrt(float64(size-min) / float64(max-min))
	}

	fmt.Fprintln(out, "digraph nixstore {")
	fmt.Fprintln(out, "rankdir=LR;")
	fmt.Fprintln(out, "node [shape = tripleoctagon, style=filled];")
	fmt.Fprintln(out, "{ rank = same;")
	for _, id := range di.Roots() {
		fmt.Fprintf(out, "N%d; ", id)
	}
	fmt.Fprintln(out, "\n};")
	fmt.Fprintln(out, "node [shape = box];")

	for _, n := range g.Nodes() {
		if hidden && n.ID() == di.Root {
			continue
		}
		color := gradient(scale(n.Size))
		textcolor := "#ffffff"
		if color.v > 0.8 {
			textcolor = "#000000"
		}
		r, gg, b := color.rgb()
		fmt.Fprintf(out, "N%d[color=\"#%02X%02X%02X\",fontcolor=\"%s\",label=\"%s (%s)\"];\n",
			n.ID(), r, gg, b, textcolor, escape(n.Name()), humanize.Bytes(n.Size))
	}
	for _, e := range g.Edges() {
		if hidden && e.From == di.Root {
			continue
		}
		fmt.Fprintf(out, "N%d -> N%d;\n", e.From, e.To)
	}
	fmt.Fprintln(out, "}")
	return out.Flush()
}

func escape(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}

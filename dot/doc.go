// Package dot renders a dependency graph to Graphviz DOT.
//
// GC roots are grouped on one rank and drawn as triple octagons; every
// other node is a box. Nodes are filled with a color taken from a
// continuous blue → green → gold → red ramp keyed on the square root of
// the node's normalized size, with the text in white or black depending
// on the fill's brightness. A synthetic dummy root stays implicit and is
// not drawn; a real one, as under a restricted analysis, is.
package dot

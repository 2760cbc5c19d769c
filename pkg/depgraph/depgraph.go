// Package depgraph renders the resolved Conan dependency graph as a
// Graphviz artifact written next to the dependency report.
//
// The graph comes pre-resolved from 'conan graph info'; rendering is a
// straight node-link conversion to DOT, optionally rasterized to SVG.
package depgraph

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-graphviz"

	"github.com/conango/conango/pkg/conan"
)

// Artifact filenames written into the per-build-type output folder.
const (
	DOTFilename = "dependency-graph.dot"
	SVGFilename = "dependency-graph.svg"
)

// ToDOT converts a resolved graph to Graphviz DOT format. The consumer root
// is highlighted; all other nodes render as plain boxes labelled with their
// package reference.
func ToDOT(g *conan.Graph) string {
	var buf bytes.Buffer
	buf.WriteString("digraph deps {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes {
		attrs := fmt.Sprintf("label=%q", n.Label())
		if n.Ref == "" {
			attrs += ", fillcolor=lightgrey"
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, attrs)
	}

	buf.WriteString("\n")
	for _, e := range g.Edges {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render SVG: %w", err)
	}
	return buf.Bytes(), nil
}

// Write renders g and writes the DOT and SVG artifacts into dir. The
// returned paths are absolute when dir is.
func Write(ctx context.Context, g *conan.Graph, dir string) (dotPath, svgPath string, err error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("create output dir: %w", err)
	}

	dot := ToDOT(g)
	dotPath = filepath.Join(dir, DOTFilename)
	if err := os.WriteFile(dotPath, []byte(dot), 0o644); err != nil {
		return "", "", fmt.Errorf("write DOT: %w", err)
	}

	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return dotPath, "", err
	}
	svgPath = filepath.Join(dir, SVGFilename)
	if err := os.WriteFile(svgPath, svg, 0o644); err != nil {
		return dotPath, "", fmt.Errorf("write SVG: %w", err)
	}
	return dotPath, svgPath, nil
}

package conan

import (
	"context"
	"sort"
	"strings"
)

// Graph is the resolved dependency graph reported by 'conan graph info'.
type Graph struct {
	Nodes []GraphNode
	Edges []GraphEdge
}

// GraphNode is one resolved package. The consumer root has an empty Ref.
type GraphNode struct {
	ID      string
	Ref     string // name/version
	Name    string
	Version string
}

// GraphEdge is a direct dependency between two nodes.
type GraphEdge struct {
	From string // node ID of the dependent
	To   string // node ID of the dependency
}

// graphInfoOutput mirrors the relevant slice of 'conan graph info -f json'.
type graphInfoOutput struct {
	Graph struct {
		Nodes map[string]graphInfoNode `json:"nodes"`
	} `json:"graph"`
}

type graphInfoNode struct {
	Ref          string                   `json:"ref"`
	Name         string                   `json:"name"`
	Version      string                   `json:"version"`
	Dependencies map[string]graphInfoEdge `json:"dependencies"`
}

type graphInfoEdge struct {
	Ref    string `json:"ref"`
	Direct bool   `json:"direct"`
}

// GraphInfo resolves the dependency graph for the given conanfile path or
// explicit requirements, without installing anything. The same settings,
// build type and profile as Install are applied so the reported graph matches
// what Install would produce.
func (h *Helper) GraphInfo(ctx context.Context, path string, requirements []string) (*Graph, error) {
	args := []string{"graph", "info"}
	if len(requirements) > 0 {
		for _, req := range requirements {
			args = append(args, "--requires", req)
		}
	} else {
		args = append(args, path)
	}
	for _, key := range sortedKeys(h.settings) {
		args = append(args, "-s", key+"="+h.settings[key])
	}
	args = append(args,
		"-s", "build_type="+h.buildType,
		"-pr", h.profile,
		"-f", "json")

	var out graphInfoOutput
	if err := h.runJSON(ctx, &out, args...); err != nil {
		return nil, err
	}

	g := &Graph{}
	ids := make([]string, 0, len(out.Graph.Nodes))
	for id := range out.Graph.Nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		n := out.Graph.Nodes[id]
		g.Nodes = append(g.Nodes, GraphNode{
			ID:      id,
			Ref:     trimRevision(n.Ref),
			Name:    n.Name,
			Version: n.Version,
		})
		depIDs := make([]string, 0, len(n.Dependencies))
		for depID := range n.Dependencies {
			depIDs = append(depIDs, depID)
		}
		sort.Strings(depIDs)
		for _, depID := range depIDs {
			if n.Dependencies[depID].Direct {
				g.Edges = append(g.Edges, GraphEdge{From: id, To: depID})
			}
		}
	}
	return g, nil
}

// trimRevision strips the "#revision" suffix Conan appends to references.
func trimRevision(ref string) string {
	if i := strings.IndexByte(ref, '#'); i >= 0 {
		return ref[:i]
	}
	return ref
}

// Label returns the display name for a node: its ref when known, otherwise
// its name or, for the consumer root, "conanfile".
func (n GraphNode) Label() string {
	switch {
	case n.Ref != "":
		return n.Ref
	case n.Name != "":
		return n.Name
	default:
		return "conanfile"
	}
}

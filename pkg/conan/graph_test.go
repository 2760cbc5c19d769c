package conan

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/conango/conango/pkg/errors"
)

const graphInfoJSON = `{
  "graph": {
    "nodes": {
      "0": {
        "ref": "",
        "name": null,
        "dependencies": {
          "1": {"ref": "fmt/10.0.0", "direct": true},
          "2": {"ref": "zlib/1.3", "direct": false}
        }
      },
      "1": {
        "ref": "fmt/10.0.0#abc123",
        "name": "fmt",
        "version": "10.0.0",
        "dependencies": {
          "2": {"ref": "zlib/1.3", "direct": true}
        }
      },
      "2": {
        "ref": "zlib/1.3#def456",
        "name": "zlib",
        "version": "1.3",
        "dependencies": {}
      }
    }
  }
}`

func TestGraphInfoParsesNodesAndDirectEdges(t *testing.T) {
	h, runner := newTestHelper(t, "2.5.0", func(name string, args []string) (string, string, error) {
		if args[0] == "graph" {
			return graphInfoJSON, "", nil
		}
		return "", "", fmt.Errorf("unexpected call: %v", args)
	})

	g, err := h.GraphInfo(context.Background(), ".", []string{"fmt/10.0.0"})
	if err != nil {
		t.Fatalf("GraphInfo = %v", err)
	}

	if len(g.Nodes) != 3 {
		t.Fatalf("len(Nodes) = %d, want 3", len(g.Nodes))
	}
	// Revision suffixes are stripped.
	if g.Nodes[1].Ref != "fmt/10.0.0" {
		t.Errorf("Nodes[1].Ref = %q, want %q", g.Nodes[1].Ref, "fmt/10.0.0")
	}
	// Only direct dependencies become edges.
	want := []GraphEdge{{From: "0", To: "1"}, {From: "1", To: "2"}}
	if len(g.Edges) != len(want) {
		t.Fatalf("Edges = %v, want %v", g.Edges, want)
	}
	for i, e := range want {
		if g.Edges[i] != e {
			t.Errorf("Edges[%d] = %v, want %v", i, g.Edges[i], e)
		}
	}

	cmdline := strings.Join(runner.callsMatching("graph info")[0], " ")
	for _, wantArg := range []string{"--requires fmt/10.0.0", "-pr myprofile", "-f json"} {
		if !strings.Contains(cmdline, wantArg) {
			t.Errorf("graph info command missing %q: %s", wantArg, cmdline)
		}
	}
}

func TestGraphInfoMalformedOutput(t *testing.T) {
	h, _ := newTestHelper(t, "2.5.0", func(name string, args []string) (string, string, error) {
		return "not json at all", "", nil
	})

	_, err := h.GraphInfo(context.Background(), ".", nil)
	if !errors.Is(err, errors.CodeMalformedOutput) {
		t.Fatalf("GraphInfo = %v, want MALFORMED_OUTPUT", err)
	}
}

func TestGraphNodeLabel(t *testing.T) {
	tests := []struct {
		node GraphNode
		want string
	}{
		{GraphNode{Ref: "fmt/10.0.0"}, "fmt/10.0.0"},
		{GraphNode{Name: "myapp"}, "myapp"},
		{GraphNode{}, "conanfile"},
	}
	for _, tt := range tests {
		if got := tt.node.Label(); got != tt.want {
			t.Errorf("Label(%+v) = %q, want %q", tt.node, got, tt.want)
		}
	}
}

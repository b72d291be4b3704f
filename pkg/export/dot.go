// Package export renders discovered process models for BI and graph tools.
package export

import (
	"fmt"
	"sort"
	"strings"

	"github.com/procflow/procflow/pkg/discovery"
)

// DOTOptions controls the Graphviz rendering.
type DOTOptions struct {
	// GraphName names the digraph. Empty means "process".
	GraphName string
	// EdgeLabels adds frequency and dependency labels to edges.
	EdgeLabels bool
}

// DefaultDOTOptions returns the standard rendering options.
func DefaultDOTOptions() DOTOptions {
	return DOTOptions{GraphName: "process", EdgeLabels: true}
}

// ToDOT renders the dependency net as a Graphviz digraph. Start and end
// activities get distinct shapes; loops are drawn as self or paired edges.
func ToDOT(model *discovery.ProcessModel, opts DOTOptions) string {
	if opts.GraphName == "" {
		opts.GraphName = "process"
	}

	starts := make(map[string]bool, len(model.StartActivities))
	for _, a := range model.StartActivities {
		starts[a.Activity] = true
	}
	ends := make(map[string]bool, len(model.EndActivities))
	for _, a := range model.EndActivities {
		ends[a.Activity] = true
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "digraph %q {\n", opts.GraphName)
	sb.WriteString("  rankdir=TB;\n")
	sb.WriteString("  node [shape=box, style=rounded, fontname=\"Helvetica\"];\n")

	for _, activity := range model.Activities {
		attrs := ""
		switch {
		case starts[activity] && ends[activity]:
			attrs = ", peripheries=2"
		case starts[activity]:
			attrs = ", penwidth=2"
		case ends[activity]:
			attrs = ", style=\"rounded,filled\", fillcolor=\"#EEEEEE\""
		}
		fmt.Fprintf(&sb, "  %q [label=%q%s];\n", activity, activity, attrs)
	}

	edges := append([]discovery.Edge(nil), model.Edges...)
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Source != edges[j].Source {
			return edges[i].Source < edges[j].Source
		}
		return edges[i].Target < edges[j].Target
	})
	for _, e := range edges {
		if opts.EdgeLabels {
			fmt.Fprintf(&sb, "  %q -> %q [label=\"%d (%.2f)\"];\n", e.Source, e.Target, e.Frequency, e.Dependency)
		} else {
			fmt.Fprintf(&sb, "  %q -> %q;\n", e.Source, e.Target)
		}
	}

	for _, loop := range model.LoopsL1 {
		fmt.Fprintf(&sb, "  %q -> %q [label=\"%d\", style=dashed];\n", loop.Activity, loop.Activity, loop.Frequency)
	}
	for _, loop := range model.LoopsL2 {
		fmt.Fprintf(&sb, "  %q -> %q [label=\"loop %d\", style=dashed, dir=both];\n", loop.ActivityA, loop.ActivityB, loop.Frequency)
	}

	sb.WriteString("}\n")
	return sb.String()
}

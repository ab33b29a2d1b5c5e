// Package depgraph builds a service dependency graph from parent/child span
// pairs fetched from the trace index.
package depgraph

import "sort"

// SpanEdge is one observed call between two services.
type SpanEdge struct {
	Parent     string
	Child      string
	DurationMs float64
	Error      bool
}

// Node is one service in the graph with its in/out call totals.
type Node struct {
	Service  string `json:"service"`
	CallsIn  int    `json:"calls_in"`
	CallsOut int    `json:"calls_out"`
}

// Edge aggregates all calls from Source to Target.
type Edge struct {
	Source       string  `json:"source"`
	Target       string  `json:"target"`
	Calls        int     `json:"calls"`
	Errors       int     `json:"errors"`
	ErrorRate    float64 `json:"error_rate"`
	AvgLatencyMs float64 `json:"avg_latency_ms"`
	P95LatencyMs float64 `json:"p95_latency_ms"`
}

// Graph is the aggregated dependency graph.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Build aggregates span edges into a graph. Edges are ordered by call count
// descending, then by source/target name; nodes alphabetically. Output is
// deterministic for a given input.
func Build(spans []SpanEdge) Graph {
	type edgeAcc struct {
		calls     int
		errors    int
		totalMs   float64
		durations []float64
	}

	type edgeKey struct{ source, target string }

	edges := make(map[edgeKey]*edgeAcc)
	nodes := make(map[string]*Node)

	node := func(service string) *Node {
		n, ok := nodes[service]
		if !ok {
			n = &Node{Service: service}
			nodes[service] = n
		}
		return n
	}

	for _, span := range spans {
		if span.Parent == "" || span.Child == "" || span.Parent == span.Child {
			continue
		}

		key := edgeKey{span.Parent, span.Child}
		acc, ok := edges[key]
		if !ok {
			acc = &edgeAcc{}
			edges[key] = acc
		}
		acc.calls++
		acc.totalMs += span.DurationMs
		acc.durations = append(acc.durations, span.DurationMs)
		if span.Error {
			acc.errors++
		}

		node(span.Parent).CallsOut++
		node(span.Child).CallsIn++
	}

	graph := Graph{
		Nodes: make([]Node, 0, len(nodes)),
		Edges: make([]Edge, 0, len(edges)),
	}
	for _, n := range nodes {
		graph.Nodes = append(graph.Nodes, *n)
	}
	sort.Slice(graph.Nodes, func(i, j int) bool {
		return graph.Nodes[i].Service < graph.Nodes[j].Service
	})

	for key, acc := range edges {
		graph.Edges = append(graph.Edges, Edge{
			Source:       key.source,
			Target:       key.target,
			Calls:        acc.calls,
			Errors:       acc.errors,
			ErrorRate:    float64(acc.errors) / float64(acc.calls),
			AvgLatencyMs: acc.totalMs / float64(acc.calls),
			P95LatencyMs: p95(acc.durations),
		})
	}
	sort.Slice(graph.Edges, func(i, j int) bool {
		if graph.Edges[i].Calls != graph.Edges[j].Calls {
			return graph.Edges[i].Calls > graph.Edges[j].Calls
		}
		if graph.Edges[i].Source != graph.Edges[j].Source {
			return graph.Edges[i].Source < graph.Edges[j].Source
		}
		return graph.Edges[i].Target < graph.Edges[j].Target
	})

	return graph
}

// Neighborhood trims a graph to the edges touching root and the nodes they
// reference. An empty root returns the graph unchanged.
func Neighborhood(graph Graph, root string) Graph {
	if root == "" {
		return graph
	}

	keep := map[string]bool{root: true}
	var edges []Edge
	for _, e := range graph.Edges {
		if e.Source == root || e.Target == root {
			edges = append(edges, e)
			keep[e.Source] = true
			keep[e.Target] = true
		}
	}

	var nodes []Node
	for _, n := range graph.Nodes {
		if keep[n.Service] {
			nodes = append(nodes, n)
		}
	}

	return Graph{Nodes: nodes, Edges: edges}
}

func p95(durations []float64) float64 {
	if len(durations) == 0 {
		return 0
	}
	sorted := make([]float64, len(durations))
	copy(sorted, durations)
	sort.Float64s(sorted)
	idx := int(float64(len(sorted)-1) * 0.95)
	return sorted[idx]
}

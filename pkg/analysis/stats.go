// Package analysis computes shape statistics over a taxonomy index: level
// widths, depth and fan-out distributions, the longest root-to-leaf path and
// the diameter of each tree.
package analysis

import (
	"slices"
	"time"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
	"gonum.org/v1/gonum/graph/traverse"
	"gonum.org/v1/gonum/stat"

	"github.com/vanderheijden86/oasftree/pkg/debug"
	"github.com/vanderheijden86/oasftree/pkg/taxonomy"
)

// LevelCount is the number of categories at one depth.
type LevelCount struct {
	Depth int `json:"depth"`
	Count int `json:"count"`
}

// Distribution summarizes a sample of integer measurements.
type Distribution struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
	Median float64 `json:"median"`
	Max    int     `json:"max"`
}

// Stats describes the shape of one taxonomy forest.
type Stats struct {
	Type     string `json:"type"`
	Total    int    `json:"total"`
	Roots    int    `json:"roots"`
	Leaves   int    `json:"leaves"`
	MaxDepth int    `json:"max_depth"`

	// Diameter is the longest path, counted in edges, between any two
	// categories of the same tree. It can exceed MaxDepth when the two
	// deepest leaves hang off different children of one node.
	Diameter int `json:"diameter"`

	Depth Distribution `json:"depth"`
	// FanOut is measured over categories that have children.
	FanOut     Distribution `json:"fan_out"`
	WidestSlug string       `json:"widest_slug,omitempty"`

	Levels      []LevelCount `json:"levels"`
	LongestPath []string     `json:"longest_path,omitempty"`
}

// Compute walks idx once and returns its statistics. An empty index yields
// zero values with only Type set.
func Compute(idx *taxonomy.TreeIndex) Stats {
	start := time.Now()
	defer func() { debug.LogTiming("analysis.Compute("+string(idx.Type())+")", time.Since(start)) }()

	s := Stats{Type: string(idx.Type()), Levels: []LevelCount{}}
	if idx.CountAll() == 0 {
		return s
	}

	var (
		depths  []float64
		fanOuts []float64
		deepest string
	)
	for n := range idx.All() {
		s.Total++
		depths = append(depths, float64(n.Depth))
		for len(s.Levels) <= n.Depth {
			s.Levels = append(s.Levels, LevelCount{Depth: len(s.Levels)})
		}
		s.Levels[n.Depth].Count++

		if n.IsRoot() {
			s.Roots++
		}
		if !n.HasChildren() {
			s.Leaves++
		} else {
			fanOuts = append(fanOuts, float64(len(n.ChildSlugs)))
			if len(n.ChildSlugs) > s.FanOut.Max {
				s.FanOut.Max = len(n.ChildSlugs)
				s.WidestSlug = n.Slug
			}
		}
		if deepest == "" || n.Depth > s.MaxDepth {
			s.MaxDepth = n.Depth
			deepest = n.Slug
		}
	}

	s.Depth = distribution(depths)
	s.Depth.Max = s.MaxDepth
	maxFan := s.FanOut.Max
	s.FanOut = distribution(fanOuts)
	s.FanOut.Max = maxFan

	if path, err := idx.Ancestors(deepest); err == nil {
		s.LongestPath = append(path, deepest)
	}
	s.Diameter = diameter(undirected(idx))
	return s
}

func distribution(xs []float64) Distribution {
	if len(xs) == 0 {
		return Distribution{}
	}
	sorted := slices.Clone(xs)
	slices.Sort(sorted)

	d := Distribution{
		Mean:   stat.Mean(xs, nil),
		Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
	}
	if len(xs) > 1 {
		d.StdDev = stat.StdDev(xs, nil)
	}
	return d
}

// diameter measures every tree with two breadth-first walks: the node farthest
// from any start is one end of a longest path, and the node farthest from it
// is the other.
func diameter(g graph.Undirected) int {
	best := 0
	for _, comp := range topo.ConnectedComponents(g) {
		end, _ := farthest(g, comp[0])
		_, d := farthest(g, end)
		best = max(best, d)
	}
	return best
}

func farthest(g graph.Undirected, from graph.Node) (graph.Node, int) {
	far, dist := from, 0
	var bf traverse.BreadthFirst
	bf.Walk(g, from, func(n graph.Node, d int) bool {
		if d > dist {
			far, dist = n, d
		}
		return false
	})
	return far, dist
}

// undirected builds the parent/child graph of idx. Node IDs are ordinals.
func undirected(idx *taxonomy.TreeIndex) graph.Undirected {
	g := simple.NewUndirectedGraph()
	ids := make(map[string]int64, idx.CountAll())
	for n := range idx.All() {
		id := int64(n.Ordinal)
		ids[n.Slug] = id
		g.AddNode(simple.Node(id))
		if !n.IsRoot() {
			g.SetEdge(g.NewEdge(simple.Node(ids[n.ParentSlug]), simple.Node(id)))
		}
	}
	return g
}

package memory

import "github.com/sandevgo/chatctx/internal/core"

// Graph is the per-session conversation graph: an arena of exchanges
// indexed by integer id, with adjacency stored as index lists on the nodes
// themselves. Ids are assigned at insertion and never reused; nodes are
// never removed, so evicted exchanges stay addressable through their
// summaries for as long as the graph lives.
type Graph struct {
	nodes []*core.Exchange
}

func NewGraph() *Graph {
	return &Graph{}
}

// Add inserts the exchange, assigns its id, and returns it.
func (g *Graph) Add(ex *core.Exchange) int {
	ex.ID = len(g.nodes)
	g.nodes = append(g.nodes, ex)
	return ex.ID
}

func (g *Graph) Node(id int) *core.Exchange {
	if id < 0 || id >= len(g.nodes) {
		return nil
	}
	return g.nodes[id]
}

func (g *Graph) Len() int {
	return len(g.nodes)
}

// Connect records a directed, similarity-weighted reference from one
// exchange to another. The reverse direction is implied and stored on the
// target's ReferencedBy list.
func (g *Graph) Connect(from, to int, weight float64) {
	src, dst := g.Node(from), g.Node(to)
	if src == nil || dst == nil || from == to {
		return
	}
	src.References = append(src.References, core.Link{To: to, Weight: weight})
	dst.ReferencedBy = append(dst.ReferencedBy, from)
}

// Related walks the reference adjacency out to maxDepth and returns the
// reachable exchange ids, the origin included, in visit order.
func (g *Graph) Related(id, maxDepth int) []int {
	if g.Node(id) == nil {
		return nil
	}

	visited := make(map[int]bool)
	var order []int

	var walk func(current, depth int)
	walk = func(current, depth int) {
		if depth > maxDepth || visited[current] {
			return
		}
		visited[current] = true
		order = append(order, current)
		for _, link := range g.nodes[current].References {
			walk(link.To, depth+1)
		}
	}
	walk(id, 0)
	return order
}

func (g *Graph) all() []*core.Exchange {
	return g.nodes
}

func (g *Graph) restore(nodes []*core.Exchange) {
	g.nodes = nodes
}

package dependency

import "fmt"

// DefaultMaxDepth bounds traversal when the caller does not set a depth
const DefaultMaxDepth = 10

// OrderOptions controls creation-order traversal
type OrderOptions struct {
	IncludeOptional bool
	MaxDepth        int
}

// Order is a creation order with any anomalies met along the way
type Order struct {
	Resources []Key
	Warnings  []string
	Truncated bool
	Cycle     bool
}

// Strings renders the order as "domain/resource" identifiers
func (o Order) Strings() []string {
	out := make([]string, len(o.Resources))
	for i, k := range o.Resources {
		out[i] = k.String()
	}
	return out
}

type walker struct {
	graph    *Graph
	opts     OrderOptions
	onPath   map[Key]bool
	done     map[Key]bool
	path     []Key
	order    Order
	depthHit map[Key]bool
	// dist is the shortest edge count from the target
	dist map[Key]int
}

// CreationOrder lists the target and its prerequisites so that every
// resource appears after everything it requires. The target comes last.
// A prerequisite is kept when its shortest distance from the target is
// within MaxDepth, independent of traversal order.
func (g *Graph) CreationOrder(target Key, opts OrderOptions) Order {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if resolved, ok := g.Resolve(target); ok {
		target = resolved
	}

	w := &walker{
		graph:    g,
		opts:     opts,
		onPath:   make(map[Key]bool),
		done:     make(map[Key]bool),
		depthHit: make(map[Key]bool),
	}
	w.dist = w.distances(target)
	w.visit(target)
	return w.order
}

func (w *walker) distances(target Key) map[Key]int {
	dist := map[Key]int{target: 0}
	queue := []Key{target}
	for len(queue) > 0 {
		k := queue[0]
		queue = queue[1:]
		for _, dep := range w.graph.edges(k, w.opts.IncludeOptional) {
			if _, seen := dist[dep]; !seen {
				dist[dep] = dist[k] + 1
				queue = append(queue, dep)
			}
		}
	}
	return dist
}

func (w *walker) visit(k Key) {
	if w.done[k] {
		return
	}
	if w.onPath[k] {
		w.order.Cycle = true
		w.order.Warnings = append(w.order.Warnings, formatPath(w.path, k))
		return
	}
	if w.dist[k] > w.opts.MaxDepth {
		w.order.Truncated = true
		if !w.depthHit[k] {
			w.depthHit[k] = true
			w.order.Warnings = append(w.order.Warnings, fmt.Sprintf(
				"max depth %d exceeded at %s; plan truncated", w.opts.MaxDepth, k))
		}
		return
	}

	w.onPath[k] = true
	w.path = append(w.path, k)

	for _, dep := range w.graph.edges(k, w.opts.IncludeOptional) {
		w.visit(dep)
	}

	w.path = w.path[:len(w.path)-1]
	delete(w.onPath, k)
	w.done[k] = true
	w.order.Resources = append(w.order.Resources, k)
}

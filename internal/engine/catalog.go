package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ksyq12/sslvhost/internal/errors"
)

// ID identifies a resource in a catalog, written Kind[title].
type ID string

// MakeID builds the ID of a resource of the given kind and title.
func MakeID(kind, title string) ID {
	return ID(kind + "[" + title + "]")
}

// Resource is a unit of desired state.
type Resource interface {
	// ID returns the unique catalog identity.
	ID() ID

	// Check compares actual with desired state. It returns a short
	// description of what would change, or "" when in sync.
	Check(ctx context.Context) (string, error)

	// Apply converges the resource. It is only called after Check
	// reported a difference.
	Apply(ctx context.Context) error
}

// Refresher is implemented by resources that react to notifications.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Option adds edges while a resource is added.
type Option func(*node)

// Requires makes the resource depend on ids.
func Requires(ids ...ID) Option {
	return func(n *node) { n.requires = append(n.requires, ids...) }
}

// Notifies schedules a refresh of ids when the resource changes. It also
// orders ids after the resource.
func Notifies(ids ...ID) Option {
	return func(n *node) { n.notifies = append(n.notifies, ids...) }
}

type node struct {
	res      Resource
	index    int
	requires []ID
	notifies []ID
}

// Catalog is a set of resources and the edges between them.
type Catalog struct {
	order []ID
	nodes map[ID]*node
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{nodes: make(map[ID]*node)}
}

// Add inserts r. Edges may name resources that are added later; Validate
// checks they all exist.
func (c *Catalog) Add(r Resource, opts ...Option) error {
	id := r.ID()
	if _, exists := c.nodes[id]; exists {
		return errors.Wrap(errors.ErrCodeDependency, "duplicate resource", fmt.Errorf("%s", id))
	}
	n := &node{res: r, index: len(c.order)}
	for _, opt := range opts {
		opt(n)
	}
	c.nodes[id] = n
	c.order = append(c.order, id)
	return nil
}

// Require adds the edge "from requires to".
func (c *Catalog) Require(from, to ID) error {
	n, ok := c.nodes[from]
	if !ok {
		return errors.Wrap(errors.ErrCodeDependency, "unknown resource", fmt.Errorf("%s", from))
	}
	n.requires = append(n.requires, to)
	return nil
}

// Notify adds the edge "from notifies to".
func (c *Catalog) Notify(from, to ID) error {
	n, ok := c.nodes[from]
	if !ok {
		return errors.Wrap(errors.ErrCodeDependency, "unknown resource", fmt.Errorf("%s", from))
	}
	n.notifies = append(n.notifies, to)
	return nil
}

// Has reports whether id is in the catalog.
func (c *Catalog) Has(id ID) bool {
	_, ok := c.nodes[id]
	return ok
}

// Get returns the resource with the given id.
func (c *Catalog) Get(id ID) (Resource, bool) {
	n, ok := c.nodes[id]
	if !ok {
		return nil, false
	}
	return n.res, true
}

// Len returns the number of resources.
func (c *Catalog) Len() int {
	return len(c.order)
}

// IDs returns resource ids in insertion order.
func (c *Catalog) IDs() []ID {
	return append([]ID(nil), c.order...)
}

// Requirements returns the ids that id requires.
func (c *Catalog) Requirements(id ID) []ID {
	if n, ok := c.nodes[id]; ok {
		return append([]ID(nil), n.requires...)
	}
	return nil
}

// Notifications returns the ids that id notifies.
func (c *Catalog) Notifications(id ID) []ID {
	if n, ok := c.nodes[id]; ok {
		return append([]ID(nil), n.notifies...)
	}
	return nil
}

// predecessors returns every id that must converge before id, from both
// require edges and incoming notify edges.
func (c *Catalog) predecessors() map[ID][]ID {
	preds := make(map[ID][]ID, len(c.order))
	for _, id := range c.order {
		n := c.nodes[id]
		preds[id] = append(preds[id], n.requires...)
		for _, target := range n.notifies {
			preds[target] = append(preds[target], id)
		}
	}
	return preds
}

// Validate checks that every edge points at a resource and the graph is
// acyclic.
func (c *Catalog) Validate() error {
	_, err := c.Order()
	return err
}

// Order returns a topological order of the catalog. Among resources whose
// predecessors are done, the one added first comes first, so the order is
// deterministic.
func (c *Catalog) Order() ([]ID, error) {
	for _, id := range c.order {
		n := c.nodes[id]
		for _, ref := range append(append([]ID(nil), n.requires...), n.notifies...) {
			if _, ok := c.nodes[ref]; !ok {
				return nil, errors.Wrap(errors.ErrCodeDependency, "invalid dependency graph",
					fmt.Errorf("%s references missing resource %s", id, ref))
			}
			if ref == id {
				return nil, errors.Wrap(errors.ErrCodeDependency, "invalid dependency graph",
					fmt.Errorf("%s depends on itself", id))
			}
		}
	}

	preds := c.predecessors()
	indegree := make(map[ID]int, len(c.order))
	succs := make(map[ID][]ID, len(c.order))
	for _, id := range c.order {
		seen := make(map[ID]bool)
		for _, p := range preds[id] {
			if seen[p] {
				continue
			}
			seen[p] = true
			indegree[id]++
			succs[p] = append(succs[p], id)
		}
	}

	var ready []ID
	for _, id := range c.order {
		if indegree[id] == 0 {
			ready = append(ready, id)
		}
	}

	sorted := make([]ID, 0, len(c.order))
	for len(ready) > 0 {
		sort.SliceStable(ready, func(i, j int) bool {
			return c.nodes[ready[i]].index < c.nodes[ready[j]].index
		})
		id := ready[0]
		ready = ready[1:]
		sorted = append(sorted, id)
		for _, s := range succs[id] {
			indegree[s]--
			if indegree[s] == 0 {
				ready = append(ready, s)
			}
		}
	}

	if len(sorted) != len(c.order) {
		var cyclic []string
		for _, id := range c.order {
			if indegree[id] > 0 {
				cyclic = append(cyclic, string(id))
			}
		}
		return nil, errors.Wrap(errors.ErrCodeDependency, "invalid dependency graph",
			fmt.Errorf("dependency cycle among %s", strings.Join(cyclic, ", ")))
	}
	return sorted, nil
}

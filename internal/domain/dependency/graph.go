package dependency

import (
	"fmt"
	"sort"
	"strings"

	"github.com/GriffinCanCode/catalogd/internal/shared/types"
)

// Key identifies a resource within a domain
type Key struct {
	Domain   string
	Resource string
}

func (k Key) String() string {
	if k.Domain == "" {
		return k.Resource
	}
	return k.Domain + "/" + k.Resource
}

// ParseKey accepts "resource" or "domain/resource"
func ParseKey(s string) Key {
	if i := strings.LastIndex(s, "/"); i >= 0 {
		return Key{Domain: s[:i], Resource: s[i+1:]}
	}
	return Key{Resource: s}
}

type node struct {
	key           Key
	requires      []types.ResourceRef
	requiredBy    []types.ResourceRef
	oneOfGroups   []types.OneOfGroup
	subscriptions []types.SubscriptionRequirement
	tier          string
	category      string
}

// Graph is an immutable resource dependency graph
type Graph struct {
	nodes      map[Key]*node
	byResource map[string][]string
}

// tierSubscriptions maps lower-cased tier or category tags to the add-on they
// imply
var tierSubscriptions = map[string]types.SubscriptionRequirement{
	"advanced": {
		Name:        "advanced",
		Tier:        "Advanced",
		Description: "Requires the Advanced subscription tier",
		Required:    true,
	},
	"security": {
		Name:        "security-addon",
		Tier:        "Security",
		Description: "Requires the security add-on subscription",
		Required:    true,
	},
}

// NewGraph builds the adjacency map from dependency records. Records for the
// same key are merged.
func NewGraph(records []types.DependencyRecord) *Graph {
	g := &Graph{
		nodes:      make(map[Key]*node),
		byResource: make(map[string][]string),
	}

	for _, r := range records {
		n := g.ensure(Key{Domain: r.Domain, Resource: r.Resource})
		for _, ref := range r.Requires {
			if ref.Domain == "" {
				ref.Domain = r.Domain
			}
			if !containsRef(n.requires, ref) {
				n.requires = append(n.requires, ref)
			}
		}
		n.oneOfGroups = append(n.oneOfGroups, r.OneOfGroups...)
		n.subscriptions = append(n.subscriptions, r.Subscriptions...)
		if r.Tier != "" {
			n.tier = r.Tier
		}
		if r.Category != "" {
			n.category = r.Category
		}
	}

	// Derive reverse edges once every forward edge is known.
	keys := g.sortedKeys()
	for _, k := range keys {
		for _, ref := range g.nodes[k].requires {
			target := g.ensure(Key{Domain: ref.Domain, Resource: ref.ResourceType})
			target.requiredBy = append(target.requiredBy, types.ResourceRef{
				Domain:       k.Domain,
				ResourceType: k.Resource,
				Required:     ref.Required,
			})
		}
	}

	for resource := range g.byResource {
		sort.Strings(g.byResource[resource])
	}
	return g
}

func (g *Graph) ensure(k Key) *node {
	n, ok := g.nodes[k]
	if !ok {
		n = &node{key: k}
		g.nodes[k] = n
		g.byResource[k.Resource] = append(g.byResource[k.Resource], k.Domain)
	}
	return n
}

func (g *Graph) sortedKeys() []Key {
	keys := make([]Key, 0, len(g.nodes))
	for k := range g.nodes {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Domain != keys[j].Domain {
			return keys[i].Domain < keys[j].Domain
		}
		return keys[i].Resource < keys[j].Resource
	})
	return keys
}

func containsRef(refs []types.ResourceRef, ref types.ResourceRef) bool {
	for _, r := range refs {
		if r.Domain == ref.Domain && r.ResourceType == ref.ResourceType {
			return true
		}
	}
	return false
}

// Len returns the number of resources in the graph
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Resolve finds the node for a key: exact match first, then the resource in
// any domain (sorted), then nothing.
func (g *Graph) Resolve(k Key) (Key, bool) {
	if _, ok := g.nodes[k]; ok {
		return k, true
	}
	if domains := g.byResource[k.Resource]; len(domains) > 0 {
		return Key{Domain: domains[0], Resource: k.Resource}, true
	}
	return k, false
}

// Dependencies returns the resolved adjacency of a resource
func (g *Graph) Dependencies(domain, resource string) (types.ResourceDependencies, bool) {
	k, ok := g.Resolve(Key{Domain: domain, Resource: resource})
	if !ok {
		return types.ResourceDependencies{}, false
	}
	n := g.nodes[k]
	return types.ResourceDependencies{
		Domain:        k.Domain,
		Resource:      k.Resource,
		Requires:      append([]types.ResourceRef{}, n.requires...),
		RequiredBy:    append([]types.ResourceRef{}, n.requiredBy...),
		OneOfGroups:   append([]types.OneOfGroup(nil), n.oneOfGroups...),
		Subscriptions: g.subscriptionsFor(n),
	}, true
}

// subscriptionsFor combines declared subscriptions with those implied by the
// node's tier and category tags
func (g *Graph) subscriptionsFor(n *node) []types.SubscriptionRequirement {
	out := append([]types.SubscriptionRequirement(nil), n.subscriptions...)
	for _, tag := range []string{n.tier, n.category} {
		if sub, ok := tierSubscriptions[strings.ToLower(tag)]; ok {
			out = append(out, sub)
		}
	}
	return out
}

// edges returns the outgoing requires edges of k, honouring includeOptional
func (g *Graph) edges(k Key, includeOptional bool) []Key {
	n, ok := g.nodes[k]
	if !ok {
		return nil
	}
	out := make([]Key, 0, len(n.requires))
	for _, ref := range n.requires {
		if !ref.Required && !includeOptional {
			continue
		}
		out = append(out, Key{Domain: ref.Domain, Resource: ref.ResourceType})
	}
	return out
}

func formatPath(path []Key, closing Key) string {
	parts := make([]string, 0, len(path)+1)
	start := 0
	for i, k := range path {
		if k == closing {
			start = i
			break
		}
	}
	for _, k := range path[start:] {
		parts = append(parts, k.String())
	}
	parts = append(parts, closing.String())
	return fmt.Sprintf("dependency cycle detected: %s", strings.Join(parts, " -> "))
}

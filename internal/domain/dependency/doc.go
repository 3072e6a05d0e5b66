// Package dependency models which resources must exist before another can be
// created, and turns "create X" into an ordered multi-step plan.
//
// The graph is an adjacency map keyed by (domain, resource). Lookups that miss
// the exact key fall back to the same resource name in any domain, checking
// domains in sorted order; a resource found nowhere has no edges.
//
// Traversals are depth-first with the depth threaded through every call.
// Cycles and depth overruns never fail a resolution: the offending branch is
// cut and a warning is attached to the result.
package dependency

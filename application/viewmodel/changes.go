package viewmodel

import (
	"slices"

	"github.com/stoat/Mewton-family-tree/domain/tree"
)

// ChangeType names an incremental canvas edit.
type ChangeType string

const (
	ChangePosition ChangeType = "position"
	ChangeRemove   ChangeType = "remove"
	ChangeSelect   ChangeType = "select"
	ChangeAdd      ChangeType = "add"
)

// NodeChange is one canvas edit to a node. Position is nil for a drag event
// that carries no coordinates (the end of a drag, for instance).
type NodeChange struct {
	Type     ChangeType `json:"type"`
	ID       string     `json:"id,omitempty"`
	Position *Position  `json:"position,omitempty"`
	Dragging bool       `json:"dragging,omitempty"`
	Selected bool       `json:"selected,omitempty"`
	Item     *Node      `json:"item,omitempty"`
}

// EdgeChange is one canvas edit to an edge.
type EdgeChange struct {
	Type     ChangeType `json:"type"`
	ID       string     `json:"id,omitempty"`
	Selected bool       `json:"selected,omitempty"`
	Item     *Edge      `json:"item,omitempty"`
}

// ApplyNodeChanges returns nodes with changes applied in order. Changes that
// name an unknown id are ignored. The input slice is not modified.
func ApplyNodeChanges(changes []NodeChange, nodes []Node) []Node {
	next := slices.Clone(nodes)
	for _, c := range changes {
		if c.Type == ChangeAdd {
			if c.Item != nil {
				next = append(next, *c.Item)
			}
			continue
		}

		i := slices.IndexFunc(next, func(n Node) bool { return n.ID == c.ID })
		if i < 0 {
			continue
		}
		switch c.Type {
		case ChangePosition:
			if c.Position != nil {
				next[i].Position = *c.Position
			}
		case ChangeSelect:
			next[i].Selected = c.Selected
		case ChangeRemove:
			next = slices.Delete(next, i, i+1)
		}
	}
	return next
}

// ApplyEdgeChanges returns edges with changes applied in order.
func ApplyEdgeChanges(changes []EdgeChange, edges []Edge) []Edge {
	next := slices.Clone(edges)
	for _, c := range changes {
		if c.Type == ChangeAdd {
			if c.Item != nil {
				next = append(next, *c.Item)
			}
			continue
		}

		i := slices.IndexFunc(next, func(e Edge) bool { return e.ID == c.ID })
		if i < 0 {
			continue
		}
		switch c.Type {
		case ChangeSelect:
			next[i].Selected = c.Selected
		case ChangeRemove:
			next = slices.Delete(next, i, i+1)
		}
	}
	return next
}

// ReconcileNodes applies node changes to the rendering of t and maps the
// surviving nodes back onto t's people.
func ReconcileNodes(t tree.Tree, changes []NodeChange) tree.Tree {
	nodes := ApplyNodeChanges(changes, Nodes(t))
	people := make([]tree.Person, 0, len(nodes))
	for _, n := range nodes {
		people = append(people, NodeToPerson(n))
	}
	return t.WithPeople(people)
}

// ReconcileEdges applies edge changes to the rendering of t and maps the
// surviving edges back onto t's relationships.
func ReconcileEdges(t tree.Tree, changes []EdgeChange) tree.Tree {
	edges := ApplyEdgeChanges(changes, Edges(t))
	rels := make([]tree.Relationship, 0, len(edges))
	for _, e := range edges {
		rels = append(rels, EdgeToRelationship(e))
	}
	return t.WithRelationships(rels)
}

// Dragging reports whether any change is part of a drag still in progress.
func Dragging(changes []NodeChange) bool {
	return slices.ContainsFunc(changes, func(c NodeChange) bool {
		return c.Type == ChangePosition && c.Dragging
	})
}

// Structural reports whether changes alter the tree beyond selection state.
func Structural(changes []NodeChange) bool {
	return slices.ContainsFunc(changes, func(c NodeChange) bool {
		return c.Type != ChangeSelect
	})
}

// StructuralEdges reports whether changes alter the tree beyond selection state.
func StructuralEdges(changes []EdgeChange) bool {
	return slices.ContainsFunc(changes, func(c EdgeChange) bool {
		return c.Type != ChangeSelect
	})
}

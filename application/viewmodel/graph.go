// Package viewmodel maps the tree onto the node and edge shapes a graph
// canvas works with, and folds the canvas' incremental change events back
// into the tree.
package viewmodel

import (
	"github.com/stoat/Mewton-family-tree/domain/tree"
)

// NodeType is the renderer type every person node uses.
const NodeType = "default"

const (
	strokeWidth     = 2
	partnerDasharray = "6 4"
)

// Position is a point on the canvas.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is the canvas representation of a person.
type Node struct {
	ID       string      `json:"id"`
	Type     string      `json:"type"`
	Position Position    `json:"position"`
	Data     tree.Person `json:"data"`
	Selected bool        `json:"selected,omitempty"`
}

// EdgeStyle selects how an edge is drawn.
type EdgeStyle struct {
	StrokeWidth     int    `json:"strokeWidth"`
	StrokeDasharray string `json:"strokeDasharray,omitempty"`
}

// Edge is the canvas representation of a relationship.
type Edge struct {
	ID       string             `json:"id"`
	Source   string             `json:"source"`
	Target   string             `json:"target"`
	Data     *tree.Relationship `json:"data,omitempty"`
	Style    EdgeStyle          `json:"style"`
	Selected bool               `json:"selected,omitempty"`
}

// PersonToNode places p on the canvas at its stored coordinates.
func PersonToNode(p tree.Person) Node {
	return Node{
		ID:       p.ID,
		Type:     NodeType,
		Position: Position{X: p.X, Y: p.Y},
		Data:     p,
	}
}

// NodeToPerson is the inverse of PersonToNode. The node's id and position win
// over whatever its data carries, since those are what the canvas edits.
func NodeToPerson(n Node) tree.Person {
	p := n.Data
	p.ID = n.ID
	p.X = n.Position.X
	p.Y = n.Position.Y
	return p
}

// StyleFor returns the stroke for a relationship type: dashed for partners,
// solid otherwise.
func StyleFor(typ tree.RelationType) EdgeStyle {
	if typ == tree.Partner {
		return EdgeStyle{StrokeWidth: strokeWidth, StrokeDasharray: partnerDasharray}
	}
	return EdgeStyle{StrokeWidth: strokeWidth}
}

// RelationshipToEdge draws r from its from person to its to person.
func RelationshipToEdge(r tree.Relationship) Edge {
	data := r
	return Edge{
		ID:     r.ID,
		Source: r.From,
		Target: r.To,
		Data:   &data,
		Style:  StyleFor(r.Type),
	}
}

// EdgeToRelationship is the inverse of RelationshipToEdge. An edge that lost
// its data, such as one drawn directly on the canvas, becomes parentChild.
func EdgeToRelationship(e Edge) tree.Relationship {
	typ := tree.ParentChild
	if e.Data != nil && e.Data.Type != "" {
		typ = e.Data.Type
	}
	return tree.Relationship{
		ID:   e.ID,
		Type: typ,
		From: e.Source,
		To:   e.Target,
	}
}

// Nodes renders every person in tree order.
func Nodes(t tree.Tree) []Node {
	nodes := make([]Node, 0, len(t.People))
	for _, p := range t.People {
		nodes = append(nodes, PersonToNode(p))
	}
	return nodes
}

// Edges renders every relationship in tree order.
func Edges(t tree.Tree) []Edge {
	edges := make([]Edge, 0, len(t.Relationships))
	for _, r := range t.Relationships {
		edges = append(edges, RelationshipToEdge(r))
	}
	return edges
}

package viewmodel

import (
	"encoding/json"
	"testing"

	"github.com/stoat/Mewton-family-tree/domain/tree"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTree() tree.Tree {
	t := tree.Empty()
	t.People = []tree.Person{
		{ID: "a", DisplayName: "Anna", Birth: "1850", X: 10, Y: 20},
		{ID: "b", DisplayName: "Bert", Notes: "sailor", X: 100, Y: 20},
		{ID: "c", DisplayName: "Cleo", X: 55.5, Y: 140},
	}
	t.Relationships = []tree.Relationship{
		{ID: "r1", Type: tree.Partner, From: "a", To: "b"},
		{ID: "r2", Type: tree.ParentChild, From: "a", To: "c"},
		{ID: "r3", Type: tree.ParentChild, From: "b", To: "c"},
	}
	return t
}

func TestPersonNodeRoundTrip(t *testing.T) {
	for _, p := range sampleTree().People {
		node := PersonToNode(p)
		assert.Equal(t, p.ID, node.ID)
		assert.Equal(t, Position{X: p.X, Y: p.Y}, node.Position)
		assert.Equal(t, NodeType, node.Type)
		assert.Equal(t, p, NodeToPerson(node))
	}
}

func TestPersonWithoutCoordinatesLandsAtOrigin(t *testing.T) {
	var p tree.Person
	require.NoError(t, json.Unmarshal([]byte(`{"id":"x","displayName":"Xan"}`), &p))

	node := PersonToNode(p)
	assert.Equal(t, Position{}, node.Position)

	back := NodeToPerson(node)
	assert.Equal(t, 0.0, back.X)
	assert.Equal(t, 0.0, back.Y)
	assert.Equal(t, "Xan", back.DisplayName)
}

func TestNodePositionWinsOverData(t *testing.T) {
	node := PersonToNode(tree.Person{ID: "a", DisplayName: "Anna", X: 1, Y: 2})
	node.Position = Position{X: 300, Y: 400}

	p := NodeToPerson(node)
	assert.Equal(t, 300.0, p.X)
	assert.Equal(t, 400.0, p.Y)
}

func TestRelationshipEdgeRoundTrip(t *testing.T) {
	for _, r := range sampleTree().Relationships {
		edge := RelationshipToEdge(r)
		assert.Equal(t, r.From, edge.Source)
		assert.Equal(t, r.To, edge.Target)
		assert.Equal(t, r, EdgeToRelationship(edge))
	}
}

func TestEdgeStyle(t *testing.T) {
	partner := RelationshipToEdge(tree.Relationship{ID: "p", Type: tree.Partner, From: "a", To: "b"})
	assert.Equal(t, EdgeStyle{StrokeWidth: 2, StrokeDasharray: "6 4"}, partner.Style)

	parent := RelationshipToEdge(tree.Relationship{ID: "c", Type: tree.ParentChild, From: "a", To: "b"})
	assert.Equal(t, EdgeStyle{StrokeWidth: 2}, parent.Style)
}

func TestEdgeWithoutDataDefaultsToParentChild(t *testing.T) {
	r := EdgeToRelationship(Edge{ID: "e", Source: "a", Target: "b"})
	assert.Equal(t, tree.ParentChild, r.Type)
}

func TestReconcileNodesMovesAndRemoves(t *testing.T) {
	before := sampleTree()

	after := ReconcileNodes(before, []NodeChange{
		{Type: ChangePosition, ID: "a", Position: &Position{X: 7, Y: 8}, Dragging: true},
		{Type: ChangePosition, ID: "a", Position: &Position{X: 70, Y: 80}},
		{Type: ChangeRemove, ID: "b"},
		{Type: ChangeSelect, ID: "c", Selected: true},
		{Type: ChangePosition, ID: "ghost", Position: &Position{X: 1, Y: 1}},
	})

	require.Len(t, after.People, 2)
	assert.Equal(t, "a", after.People[0].ID)
	assert.Equal(t, 70.0, after.People[0].X)
	assert.Equal(t, 80.0, after.People[0].Y)
	assert.Equal(t, "1850", after.People[0].Birth)
	assert.Equal(t, before.People[2], after.People[1])

	assert.Len(t, before.People, 3, "input tree is not modified")
	assert.Equal(t, before.Relationships, after.Relationships, "removing a node keeps its edges")
}

func TestReconcileEdgesRemovesExactlyOne(t *testing.T) {
	before := sampleTree()

	after := ReconcileEdges(before, []EdgeChange{{Type: ChangeRemove, ID: "r2"}})

	assert.Equal(t, []tree.Relationship{before.Relationships[0], before.Relationships[2]}, after.Relationships)
	assert.Len(t, before.Relationships, 3)
}

func TestReconcileEdgesAdd(t *testing.T) {
	after := ReconcileEdges(sampleTree(), []EdgeChange{
		{Type: ChangeAdd, Item: &Edge{ID: "new", Source: "c", Target: "a"}},
	})

	require.Len(t, after.Relationships, 4)
	assert.Equal(t, tree.Relationship{ID: "new", Type: tree.ParentChild, From: "c", To: "a"}, after.Relationships[3])
}

func TestChangeClassification(t *testing.T) {
	selectOnly := []NodeChange{{Type: ChangeSelect, ID: "a", Selected: true}}
	assert.False(t, Structural(selectOnly))
	assert.False(t, Dragging(selectOnly))

	drag := []NodeChange{{Type: ChangePosition, ID: "a", Position: &Position{}, Dragging: true}}
	assert.True(t, Structural(drag))
	assert.True(t, Dragging(drag))

	assert.False(t, StructuralEdges([]EdgeChange{{Type: ChangeSelect, ID: "r1"}}))
	assert.True(t, StructuralEdges([]EdgeChange{{Type: ChangeRemove, ID: "r1"}}))
}

func TestNodeJSONShape(t *testing.T) {
	raw, err := json.Marshal(PersonToNode(tree.Person{ID: "a", DisplayName: "Anna", X: 1, Y: 2}))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": "a",
		"type": "default",
		"position": {"x": 1, "y": 2},
		"data": {"id": "a", "displayName": "Anna", "birth": "", "death": "", "notes": "", "x": 1, "y": 2}
	}`, string(raw))
}

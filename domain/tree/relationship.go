package tree

import "github.com/google/uuid"

// RelationType identifies the kind of edge between two people.
type RelationType string

const (
	// ParentChild edges run from the parent to the child.
	ParentChild RelationType = "parentChild"
	// Partner edges are undirected; From/To order is for display only.
	Partner RelationType = "partner"
)

// IsValid reports whether t is one of the known relationship types.
func (t RelationType) IsValid() bool {
	return t == ParentChild || t == Partner
}

// Relationship is a typed edge between two person ids. The ids are not
// required to resolve to people in the tree.
type Relationship struct {
	ID   string       `json:"id"`
	Type RelationType `json:"type"`
	From string       `json:"from"`
	To   string       `json:"to"`
}

// NewRelationship creates a relationship with a freshly generated id.
func NewRelationship(typ RelationType, from, to string) Relationship {
	return Relationship{
		ID:   uuid.New().String(),
		Type: typ,
		From: from,
		To:   to,
	}
}

// Involves reports whether personID is either endpoint.
func (r Relationship) Involves(personID string) bool {
	return r.From == personID || r.To == personID
}

// Other returns the endpoint opposite personID.
func (r Relationship) Other(personID string) string {
	if r.From == personID {
		return r.To
	}
	return r.From
}

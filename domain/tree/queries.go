package tree

import "iter"

// Direction selects which endpoint of a relationship must match a person.
type Direction int

const (
	// Either matches relationships where the person is from or to.
	Either Direction = iota
	// Outgoing matches relationships whose from is the person.
	Outgoing
	// Incoming matches relationships whose to is the person.
	Incoming
)

func (d Direction) matches(r Relationship, personID string) bool {
	switch d {
	case Outgoing:
		return r.From == personID
	case Incoming:
		return r.To == personID
	default:
		return r.Involves(personID)
	}
}

// RelationshipsInvolving yields the relationships of the given type that touch
// personID from the given direction. The sequence reads t lazily and can be
// ranged over any number of times.
func RelationshipsInvolving(t Tree, personID string, typ RelationType, dir Direction) iter.Seq[Relationship] {
	return func(yield func(Relationship) bool) {
		for _, r := range t.Relationships {
			if r.Type != typ || !dir.matches(r, personID) {
				continue
			}
			if !yield(r) {
				return
			}
		}
	}
}

// ParentsOf returns the parents recorded for personID, in relationship order.
func ParentsOf(t Tree, personID string) []Person {
	var out []Person
	for r := range RelationshipsInvolving(t, personID, ParentChild, Incoming) {
		out = append(out, t.PersonOrPlaceholder(r.From))
	}
	return out
}

// ChildrenOf returns the children recorded for personID, in relationship order.
func ChildrenOf(t Tree, personID string) []Person {
	var out []Person
	for r := range RelationshipsInvolving(t, personID, ParentChild, Outgoing) {
		out = append(out, t.PersonOrPlaceholder(r.To))
	}
	return out
}

// PartnersOf returns the partners of personID regardless of edge direction.
func PartnersOf(t Tree, personID string) []Person {
	var out []Person
	for r := range RelationshipsInvolving(t, personID, Partner, Either) {
		out = append(out, t.PersonOrPlaceholder(r.Other(personID)))
	}
	return out
}

// Relatives groups the derived relationship views of one person.
type Relatives struct {
	Person   Person   `json:"person"`
	Parents  []Person `json:"parents"`
	Children []Person `json:"children"`
	Partners []Person `json:"partners"`
	Timeline []Event  `json:"timeline"`
}

// RelativesOf collects every derived view of personID.
func RelativesOf(t Tree, personID string) Relatives {
	p := t.PersonOrPlaceholder(personID)
	return Relatives{
		Person:   p,
		Parents:  ParentsOf(t, personID),
		Children: ChildrenOf(t, personID),
		Partners: PartnersOf(t, personID),
		Timeline: TimelineFor(t, p),
	}
}

// Package tree holds the family tree aggregate, the rules that keep it
// consistent, and the read-only views derived from it.
//
// Tree is a value. Every mutator leaves its receiver untouched and returns a
// new Tree, so callers can hand the previous value to a renderer or a writer
// without copying it first.
package tree

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// DefaultTitle is the title of a freshly initialized tree.
const DefaultTitle = "Family Tree"

// Meta carries document level settings.
type Meta struct {
	Title string `json:"title"`
}

// Tree is the root aggregate: the whole document is the unit of persistence
// and transfer.
type Tree struct {
	People        []Person       `json:"people"`
	Relationships []Relationship `json:"relationships"`
	Meta          Meta           `json:"meta"`
}

// Empty returns the tree a store starts from when nothing is persisted yet.
func Empty() Tree {
	return Tree{
		People:        []Person{},
		Relationships: []Relationship{},
		Meta:          Meta{Title: DefaultTitle},
	}
}

// MarshalJSON always renders people and relationships as arrays.
func (t Tree) MarshalJSON() ([]byte, error) {
	type plain Tree
	p := plain(t)
	if p.People == nil {
		p.People = []Person{}
	}
	if p.Relationships == nil {
		p.Relationships = []Relationship{}
	}
	return json.Marshal(p)
}

// Decode parses a persisted or transferred document.
func Decode(raw []byte) (Tree, error) {
	var t Tree
	if err := json.Unmarshal(raw, &t); err != nil {
		return Tree{}, fmt.Errorf("decode tree: %w", err)
	}
	return t, nil
}

// Encode renders t as compact JSON, the form the store writes.
func Encode(t Tree) ([]byte, error) {
	return json.Marshal(t)
}

// EncodeIndent renders t with two-space indentation, the form of an export.
func EncodeIndent(t Tree) ([]byte, error) {
	return json.MarshalIndent(t, "", "  ")
}

// Title returns the document title, falling back to DefaultTitle.
func (t Tree) Title() string {
	if strings.TrimSpace(t.Meta.Title) == "" {
		return DefaultTitle
	}
	return t.Meta.Title
}

func (t Tree) clone() Tree {
	return Tree{
		People:        slices.Clone(t.People),
		Relationships: slices.Clone(t.Relationships),
		Meta:          t.Meta,
	}
}

// Person looks a person up by id.
func (t Tree) Person(id string) (Person, bool) {
	i := slices.IndexFunc(t.People, func(p Person) bool { return p.ID == id })
	if i < 0 {
		return Person{}, false
	}
	return t.People[i], true
}

// PersonOrPlaceholder looks a person up by id and returns a placeholder
// for ids that do not resolve.
func (t Tree) PersonOrPlaceholder(id string) Person {
	if p, ok := t.Person(id); ok {
		return p
	}
	return Placeholder(id)
}

// Relationship looks a relationship up by id.
func (t Tree) Relationship(id string) (Relationship, bool) {
	i := slices.IndexFunc(t.Relationships, func(r Relationship) bool { return r.ID == id })
	if i < 0 {
		return Relationship{}, false
	}
	return t.Relationships[i], true
}

// AddPerson appends p. The id must not already be in use.
func (t Tree) AddPerson(p Person) (Tree, error) {
	if strings.TrimSpace(p.DisplayName) == "" {
		return t, ErrEmptyDisplayName
	}
	if _, exists := t.Person(p.ID); exists || p.ID == "" {
		return t, fmt.Errorf("add person %q: %w", p.ID, ErrDuplicateID)
	}
	next := t.clone()
	next.People = append(next.People, p)
	return next, nil
}

// UpdatePerson applies edit to the person with the given id.
func (t Tree) UpdatePerson(id string, edit PersonEdit) (Tree, error) {
	if edit.DisplayName != nil && strings.TrimSpace(*edit.DisplayName) == "" {
		return t, ErrEmptyDisplayName
	}
	return t.mapPerson(id, edit.Apply)
}

// MovePerson sets the canvas coordinates of a person.
func (t Tree) MovePerson(id string, x, y float64) (Tree, error) {
	return t.mapPerson(id, func(p Person) Person {
		p.X, p.Y = x, y
		return p
	})
}

func (t Tree) mapPerson(id string, fn func(Person) Person) (Tree, error) {
	i := slices.IndexFunc(t.People, func(p Person) bool { return p.ID == id })
	if i < 0 {
		return t, fmt.Errorf("person %q: %w", id, ErrPersonNotFound)
	}
	next := t.clone()
	next.People[i] = fn(next.People[i])
	return next, nil
}

// RemovePerson filters the person out of the tree. Relationships that point
// at the person are kept; dangling references are tolerated.
func (t Tree) RemovePerson(id string) (Tree, error) {
	if _, ok := t.Person(id); !ok {
		return t, fmt.Errorf("person %q: %w", id, ErrPersonNotFound)
	}
	next := t.clone()
	next.People = slices.DeleteFunc(next.People, func(p Person) bool { return p.ID == id })
	return next, nil
}

// AddRelationship appends r. Endpoints are not required to exist.
func (t Tree) AddRelationship(r Relationship) (Tree, error) {
	if !r.Type.IsValid() {
		return t, fmt.Errorf("add relationship %q: %w", r.Type, ErrInvalidRelationType)
	}
	if r.From == "" || r.To == "" {
		return t, ErrMissingRelationTarget
	}
	if _, exists := t.Relationship(r.ID); exists || r.ID == "" {
		return t, fmt.Errorf("add relationship %q: %w", r.ID, ErrDuplicateID)
	}
	next := t.clone()
	next.Relationships = append(next.Relationships, r)
	return next, nil
}

// RemoveRelationship removes exactly the relationship with the given id.
func (t Tree) RemoveRelationship(id string) (Tree, error) {
	if _, ok := t.Relationship(id); !ok {
		return t, fmt.Errorf("relationship %q: %w", id, ErrRelationshipNotFound)
	}
	next := t.clone()
	next.Relationships = slices.DeleteFunc(next.Relationships, func(r Relationship) bool { return r.ID == id })
	return next, nil
}

// WithTitle returns t with a new document title.
func (t Tree) WithTitle(title string) Tree {
	next := t.clone()
	next.Meta.Title = title
	return next
}

// WithPeople returns t with its people sequence replaced.
func (t Tree) WithPeople(people []Person) Tree {
	next := t.clone()
	next.People = slices.Clone(people)
	return next
}

// WithRelationships returns t with its relationship sequence replaced.
func (t Tree) WithRelationships(rels []Relationship) Tree {
	next := t.clone()
	next.Relationships = slices.Clone(rels)
	return next
}

package tree

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func person(id, name string) Person {
	return Person{ID: id, DisplayName: name}
}

func rel(id string, typ RelationType, from, to string) Relationship {
	return Relationship{ID: id, Type: typ, From: from, To: to}
}

func TestEmptyTreeEncoding(t *testing.T) {
	raw, err := Encode(Empty())
	require.NoError(t, err)
	assert.JSONEq(t, `{"people":[],"relationships":[],"meta":{"title":"Family Tree"}}`, string(raw))

	// nil slices still encode as arrays
	raw, err = Encode(Tree{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"people":[],"relationships":[],"meta":{"title":""}}`, string(raw))
}

func TestEncodeIndentMatchesCompactDocument(t *testing.T) {
	tr := Tree{
		People:        []Person{{ID: "p1", DisplayName: "Anna", Birth: "1850", X: 10.5, Y: -3}},
		Relationships: []Relationship{rel("r1", Partner, "p1", "p2")},
		Meta:          Meta{Title: "Mine"},
	}

	compact, err := Encode(tr)
	require.NoError(t, err)
	indented, err := EncodeIndent(tr)
	require.NoError(t, err)

	assert.JSONEq(t, string(compact), string(indented))
	assert.Contains(t, string(indented), "\n  \"people\": [")
}

func TestDecodeRoundTrip(t *testing.T) {
	in := `{"people":[{"id":"p1","displayName":"Anna","birth":"1850","death":"","notes":"n","x":1,"y":2}],"relationships":[{"id":"r1","type":"parentChild","from":"p1","to":"p2"}],"meta":{"title":"T"}}`

	tr, err := Decode([]byte(in))
	require.NoError(t, err)
	assert.Equal(t, "Anna", tr.People[0].DisplayName)
	assert.Equal(t, ParentChild, tr.Relationships[0].Type)

	out, err := Encode(tr)
	require.NoError(t, err)
	assert.JSONEq(t, in, string(out))
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode([]byte(`{"people":`))
	assert.Error(t, err)
}

func TestTitleFallback(t *testing.T) {
	assert.Equal(t, DefaultTitle, Tree{}.Title())
	assert.Equal(t, "Smiths", Empty().WithTitle("Smiths").Title())
}

func TestAddPerson(t *testing.T) {
	base := Empty()

	t.Run("appends and leaves receiver untouched", func(t *testing.T) {
		next, err := base.AddPerson(person("p1", "Anna"))
		require.NoError(t, err)

		assert.Len(t, next.People, 1)
		assert.Empty(t, base.People)
	})

	t.Run("rejects duplicate id", func(t *testing.T) {
		one, err := base.AddPerson(person("p1", "Anna"))
		require.NoError(t, err)

		_, err = one.AddPerson(person("p1", "Other"))
		assert.ErrorIs(t, err, ErrDuplicateID)
	})

	t.Run("rejects blank name", func(t *testing.T) {
		_, err := base.AddPerson(person("p1", "   "))
		assert.ErrorIs(t, err, ErrEmptyDisplayName)
	})

	t.Run("generated ids are unique", func(t *testing.T) {
		a, b := NewPerson(" Anna "), NewPerson("Anna")
		assert.NotEqual(t, a.ID, b.ID)
		assert.Equal(t, "Anna", a.DisplayName)
	})
}

func TestUpdateAndMovePerson(t *testing.T) {
	base, err := Empty().AddPerson(Person{ID: "p1", DisplayName: "Anna", Birth: "1850", X: 1, Y: 1})
	require.NoError(t, err)

	name, death := "Anna Smith", "1920"
	next, err := base.UpdatePerson("p1", PersonEdit{DisplayName: &name, Death: &death})
	require.NoError(t, err)

	got, _ := next.Person("p1")
	assert.Equal(t, "Anna Smith", got.DisplayName)
	assert.Equal(t, "1850", got.Birth)
	assert.Equal(t, "1920", got.Death)
	assert.Equal(t, 1.0, got.X)

	moved, err := next.MovePerson("p1", 40, 50)
	require.NoError(t, err)
	got, _ = moved.Person("p1")
	assert.Equal(t, 40.0, got.X)
	assert.Equal(t, 50.0, got.Y)

	_, err = base.MovePerson("missing", 0, 0)
	assert.ErrorIs(t, err, ErrPersonNotFound)

	blank := ""
	_, err = base.UpdatePerson("p1", PersonEdit{DisplayName: &blank})
	assert.ErrorIs(t, err, ErrEmptyDisplayName)
}

func TestRemovePersonKeepsDanglingRelationships(t *testing.T) {
	tr := Tree{
		People:        []Person{person("p1", "Anna"), person("p2", "Bob")},
		Relationships: []Relationship{rel("r1", Partner, "p1", "p2")},
	}

	next, err := tr.RemovePerson("p2")
	require.NoError(t, err)

	assert.Len(t, next.People, 1)
	assert.Len(t, next.Relationships, 1)
	assert.True(t, next.PersonOrPlaceholder("p2").IsPlaceholder())
}

func TestAddRelationship(t *testing.T) {
	base := Empty()

	next, err := base.AddRelationship(rel("r1", ParentChild, "p1", "ghost"))
	require.NoError(t, err, "dangling endpoints are tolerated")
	assert.Len(t, next.Relationships, 1)

	_, err = next.AddRelationship(rel("r1", Partner, "a", "b"))
	assert.ErrorIs(t, err, ErrDuplicateID)

	_, err = base.AddRelationship(rel("r2", "sibling", "a", "b"))
	assert.ErrorIs(t, err, ErrInvalidRelationType)

	_, err = base.AddRelationship(rel("r3", Partner, "a", ""))
	assert.ErrorIs(t, err, ErrMissingRelationTarget)

	// self ancestry is not validated
	_, err = base.AddRelationship(rel("r4", ParentChild, "a", "a"))
	assert.NoError(t, err)
}

func TestRemoveRelationshipRemovesExactlyOne(t *testing.T) {
	tr := Tree{
		People: []Person{person("p1", "Anna"), person("p2", "Bob"), person("p3", "Cara")},
		Relationships: []Relationship{
			rel("r1", Partner, "p1", "p2"),
			rel("r2", ParentChild, "p1", "p3"),
			rel("r3", ParentChild, "p2", "p3"),
		},
	}

	next, err := tr.RemoveRelationship("r2")
	require.NoError(t, err)

	assert.Equal(t, []Relationship{
		rel("r1", Partner, "p1", "p2"),
		rel("r3", ParentChild, "p2", "p3"),
	}, next.Relationships)
	assert.Len(t, tr.Relationships, 3)

	_, err = tr.RemoveRelationship("nope")
	assert.ErrorIs(t, err, ErrRelationshipNotFound)
}

func TestWithPeopleCopiesInput(t *testing.T) {
	people := []Person{person("p1", "Anna")}
	next := Empty().WithPeople(people)
	people[0].DisplayName = "changed"

	assert.Equal(t, "Anna", next.People[0].DisplayName)
}

func TestPersonJSONFieldNames(t *testing.T) {
	raw, err := json.Marshal(Person{ID: "p1", DisplayName: "Anna", X: 1, Y: 2})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"p1","displayName":"Anna","birth":"","death":"","notes":"","x":1,"y":2}`, string(raw))
}

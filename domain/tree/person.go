package tree

import (
	"strings"

	"github.com/google/uuid"
)

// PlaceholderName is the display name given to people looked up by an id
// that no longer exists in the tree.
const PlaceholderName = "Unknown person"

// Person is one individual in the family graph. X and Y are canvas
// coordinates; they carry no meaning beyond keeping the layout across reloads.
type Person struct {
	ID          string  `json:"id"`
	DisplayName string  `json:"displayName"`
	Birth       string  `json:"birth"`
	Death       string  `json:"death"`
	Notes       string  `json:"notes"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
}

// NewPerson creates a person with a freshly generated id.
func NewPerson(displayName string) Person {
	return Person{
		ID:          uuid.New().String(),
		DisplayName: strings.TrimSpace(displayName),
	}
}

// Placeholder returns the stand-in used for dangling references.
func Placeholder(id string) Person {
	return Person{ID: id, DisplayName: PlaceholderName}
}

// IsPlaceholder reports whether p was produced by Placeholder.
func (p Person) IsPlaceholder() bool {
	return p.DisplayName == PlaceholderName && p.Birth == "" && p.Death == "" && p.Notes == ""
}

// BirthYear returns the year parsed from Birth.
func (p Person) BirthYear() (int, bool) {
	return ParseYear(p.Birth)
}

// DeathYear returns the year parsed from Death.
func (p Person) DeathYear() (int, bool) {
	return ParseYear(p.Death)
}

// PersonEdit carries the fields a user may change through the edit form.
// Nil fields are left untouched.
type PersonEdit struct {
	DisplayName *string
	Birth       *string
	Death       *string
	Notes       *string
}

// Apply returns p with the edit applied. Id and position never change here.
func (e PersonEdit) Apply(p Person) Person {
	if e.DisplayName != nil {
		p.DisplayName = *e.DisplayName
	}
	if e.Birth != nil {
		p.Birth = *e.Birth
	}
	if e.Death != nil {
		p.Death = *e.Death
	}
	if e.Notes != nil {
		p.Notes = *e.Notes
	}
	return p
}

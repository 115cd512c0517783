package tree

import (
	"slices"
	"strconv"
	"strings"
	"unicode"
)

// EventKind classifies a timeline entry.
type EventKind string

const (
	EventBirth    EventKind = "birth"
	EventMarriage EventKind = "marriage"
	EventDeath    EventKind = "death"
)

// Event is one dated entry on a person's timeline.
type Event struct {
	Year  int       `json:"year"`
	Kind  EventKind `json:"kind"`
	Label string    `json:"label"`
}

// ParseYear reads the leading integer of a free-form year field, skipping
// leading whitespace: "1850" and " 1850s" give 1850, "c. 1850" gives false.
func ParseYear(s string) (int, bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return 0, false
	}
	year, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return year, true
}

// TimelineFor builds p's timeline: birth, one marriage per partner whose
// birth year parses, and death, sorted by year. There is no marriage date in
// the data model, so a marriage is placed at the partner's birth year.
// Entries whose year does not parse are left out.
func TimelineFor(t Tree, p Person) []Event {
	events := make([]Event, 0, 2)

	if year, ok := p.BirthYear(); ok {
		events = append(events, Event{Year: year, Kind: EventBirth, Label: "Born"})
	}

	for r := range RelationshipsInvolving(t, p.ID, Partner, Either) {
		partner, ok := t.Person(r.Other(p.ID))
		if !ok {
			continue
		}
		year, ok := partner.BirthYear()
		if !ok {
			continue
		}
		events = append(events, Event{
			Year:  year,
			Kind:  EventMarriage,
			Label: "Married " + partner.DisplayName,
		})
	}

	if year, ok := p.DeathYear(); ok {
		events = append(events, Event{Year: year, Kind: EventDeath, Label: "Died"})
	}

	slices.SortStableFunc(events, func(a, b Event) int {
		return a.Year - b.Year
	})
	return events
}

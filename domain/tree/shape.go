package tree

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// ErrInvalidShape is wrapped by every rejection from ValidateShape.
var ErrInvalidShape = errors.New("invalid tree shape")

// RejectReason enumerates why a candidate document was refused.
type RejectReason string

const (
	ReasonMalformedJSON         RejectReason = "MALFORMED_JSON"
	ReasonNotAnObject           RejectReason = "NOT_AN_OBJECT"
	ReasonMissingPeople         RejectReason = "MISSING_PEOPLE"
	ReasonPeopleNotArray        RejectReason = "PEOPLE_NOT_ARRAY"
	ReasonMissingRelationships  RejectReason = "MISSING_RELATIONSHIPS"
	ReasonRelationshipsNotArray RejectReason = "RELATIONSHIPS_NOT_ARRAY"
)

var reasonMessages = map[RejectReason]string{
	ReasonMalformedJSON:         "body is not valid JSON",
	ReasonNotAnObject:           "body must be a JSON object",
	ReasonMissingPeople:         "people is required",
	ReasonPeopleNotArray:        "people must be an array",
	ReasonMissingRelationships:  "relationships is required",
	ReasonRelationshipsNotArray: "relationships must be an array",
}

// Message returns a short human readable explanation.
func (r RejectReason) Message() string {
	if msg, ok := reasonMessages[r]; ok {
		return msg
	}
	return string(r)
}

// ShapeResult is the outcome of ValidateShape: either accepted, or rejected
// with exactly one reason.
type ShapeResult struct {
	Accepted bool
	Reason   RejectReason
}

// Err returns nil for an accepted document and an error wrapping
// ErrInvalidShape otherwise.
func (r ShapeResult) Err() error {
	if r.Accepted {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalidShape, r.Reason.Message())
}

func rejected(reason RejectReason) ShapeResult {
	return ShapeResult{Reason: reason}
}

// ValidateShape accepts a document iff it is a JSON object whose people and
// relationships members are arrays. Array elements are not inspected:
// malformed people or relationships pass through untouched.
func ValidateShape(raw []byte) ShapeResult {
	if !gjson.ValidBytes(raw) {
		return rejected(ReasonMalformedJSON)
	}
	doc := gjson.ParseBytes(raw)
	if !doc.IsObject() {
		return rejected(ReasonNotAnObject)
	}

	people := doc.Get("people")
	switch {
	case !people.Exists():
		return rejected(ReasonMissingPeople)
	case !people.IsArray():
		return rejected(ReasonPeopleNotArray)
	}

	rels := doc.Get("relationships")
	switch {
	case !rels.Exists():
		return rejected(ReasonMissingRelationships)
	case !rels.IsArray():
		return rejected(ReasonRelationshipsNotArray)
	}

	return ShapeResult{Accepted: true}
}

package tree

import "errors"

var (
	ErrDuplicateID           = errors.New("duplicate id")
	ErrPersonNotFound        = errors.New("person not found")
	ErrRelationshipNotFound  = errors.New("relationship not found")
	ErrEmptyDisplayName      = errors.New("display name is required")
	ErrInvalidRelationType   = errors.New("invalid relationship type")
	ErrMissingRelationTarget = errors.New("relationship endpoints are required")
)

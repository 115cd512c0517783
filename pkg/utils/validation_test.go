package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sample struct {
	Password string `validate:"required,max=8"`
	Type     string `validate:"oneof=parentChild partner"`
}

func TestValidateStruct(t *testing.T) {
	assert.NoError(t, ValidateStruct(sample{Password: "x", Type: "partner"}))

	err := ValidateStruct(sample{Type: "cousin"})
	assert.EqualError(t, err, "password is required; type must be one of: parentChild partner")

	err = ValidateStruct(sample{Password: "far too long", Type: "partner"})
	assert.EqualError(t, err, "password must be at most 8 characters")
}

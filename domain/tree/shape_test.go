package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateShape(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		accept bool
		reason RejectReason
	}{
		{"empty tree", `{"people":[],"relationships":[]}`, true, ""},
		{"full tree", `{"people":[{"id":"a"}],"relationships":[],"meta":{"title":"x"}}`, true, ""},
		{"malformed elements pass", `{"people":[1,"two",null,{"x":"not a number"}],"relationships":[{}]}`, true, ""},
		{"invalid json", `{"people":[`, false, ReasonMalformedJSON},
		{"array body", `[]`, false, ReasonNotAnObject},
		{"null body", `null`, false, ReasonNotAnObject},
		{"missing people", `{"relationships":[]}`, false, ReasonMissingPeople},
		{"people not array", `{"people":"not an array","relationships":[]}`, false, ReasonPeopleNotArray},
		{"people null", `{"people":null,"relationships":[]}`, false, ReasonPeopleNotArray},
		{"missing relationships", `{"people":[]}`, false, ReasonMissingRelationships},
		{"relationships object", `{"people":[],"relationships":{}}`, false, ReasonRelationshipsNotArray},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ValidateShape([]byte(tt.body))

			assert.Equal(t, tt.accept, res.Accepted)
			assert.Equal(t, tt.reason, res.Reason)
			if tt.accept {
				assert.NoError(t, res.Err())
			} else {
				assert.ErrorIs(t, res.Err(), ErrInvalidShape)
				assert.Contains(t, res.Err().Error(), tt.reason.Message())
			}
		})
	}
}

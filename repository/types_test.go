package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCardinalitySatisfies(t *testing.T) {
	required := Cardinality{Min: 1, Max: 1}
	assert.False(t, required.Satisfies(0))
	assert.True(t, required.Satisfies(1))
	assert.False(t, required.Satisfies(2))

	unbounded := Cardinality{Min: 0, MaxUnbounded: true}
	assert.True(t, unbounded.Satisfies(0))
	assert.True(t, unbounded.Satisfies(1000))
}

func TestCardinalityString(t *testing.T) {
	assert.Equal(t, "0..1", Cardinality{Min: 0, Max: 1}.String())
	assert.Equal(t, "1..*", Cardinality{Min: 1, MaxUnbounded: true}.String())
}

func TestDefinitionKeyString(t *testing.T) {
	unversioned := DefinitionKey{URL: "http://example.org/fhir/StructureDefinition/foo"}
	assert.Equal(t, "http://example.org/fhir/StructureDefinition/foo", unversioned.String())

	versioned := DefinitionKey{URL: "http://example.org/fhir/StructureDefinition/foo", Version: "1.0.0"}
	assert.Equal(t, "http://example.org/fhir/StructureDefinition/foo|1.0.0", versioned.String())
}

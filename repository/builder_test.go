package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderExpandsChoiceType(t *testing.T) {
	b := NewStructureDefinitionBuilder("Observation", "http://example.org/fhir/StructureDefinition/Observation", "", KindResource, DerivationSpecialization)
	b.AddElement(ElementDefinition{OriginalName: "Observation", Name: "Observation"})
	added := b.AddElement(ElementDefinition{
		OriginalName: "Observation.value[x]",
		Types:        []TypeRef{{Code: "string"}, {Code: "boolean"}},
	})
	require.Len(t, added, 2)
	assert.Equal(t, "Observation.valueString", added[0].Name)
	assert.Equal(t, "Observation.valueBoolean", added[1].Name)

	sd, _ := b.Build()
	_, ok := sd.ByName("Observation.valueString")
	assert.True(t, ok)
}

func TestBuilderPromotesBackboneOnFirstChild(t *testing.T) {
	b := NewStructureDefinitionBuilder("Patient", "http://example.org/fhir/StructureDefinition/Patient", "", KindResource, DerivationSpecialization)
	b.AddElement(ElementDefinition{OriginalName: "Patient", Name: "Patient"})
	contact := b.AddElement(ElementDefinition{OriginalName: "Patient.contact", Name: "Patient.contact"})[0]
	assert.False(t, contact.IsBackbone, "an element with no children yet is not a backbone")

	b.AddElement(ElementDefinition{OriginalName: "Patient.contact.name", Name: "Patient.contact.name"})
	assert.True(t, contact.IsBackbone, "adding a child retroactively promotes the parent to a backbone")
}

func TestBuilderRoutesSlicesAndSynthesizesSliceProfiles(t *testing.T) {
	b := NewStructureDefinitionBuilder("Patient", "http://example.org/fhir/StructureDefinition/my-patient", "", KindResource, DerivationConstraint)
	b.AddElement(ElementDefinition{OriginalName: "Patient", Name: "Patient"})
	b.AddElement(ElementDefinition{OriginalName: "Patient.identifier", Name: "Patient.identifier", IsArray: true})
	b.AddElement(ElementDefinition{
		OriginalName: "Patient.identifier:mrn.system",
		TypeID:       "uri",
	})
	b.AddElement(ElementDefinition{
		OriginalName: "Patient.identifier:ssn.system",
		TypeID:       "uri",
	})

	sd, slices := b.Build()
	identifier, ok := sd.ByName("Patient.identifier")
	require.True(t, ok)
	require.NotNil(t, identifier.Slicing)
	assert.Len(t, identifier.Slicing.SliceProfiles, 2, "each distinct slice name synthesizes its own profile")
	assert.Len(t, slices, 2)

	mrn := identifier.Slicing.SliceProfiles[0]
	assert.Equal(t, sd.URL+":mrn", mrn.URL)
	_, ok = mrn.ByName("system")
	assert.True(t, ok, "the slice's relative path is stripped of the container prefix")
}

func TestExpandChoiceNameUppercasesFirstLetter(t *testing.T) {
	assert.Equal(t, "valueCodeableConcept", expandChoiceName("value[x]", "CodeableConcept"))
	assert.Equal(t, "valueString", expandChoiceName("value[x]", "string"))
}

func TestStripSliceQualifiers(t *testing.T) {
	assert.Equal(t, "Patient.identifier.system", stripSliceQualifiers("Patient.identifier:mrn.system"))
}

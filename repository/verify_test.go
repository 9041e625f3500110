package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifySealsOnSuccess(t *testing.T) {
	r := New()
	require.NoError(t, r.AddStructureDefinition(&StructureDefinition{
		TypeID:           "Patient",
		URL:              "http://example.org/fhir/StructureDefinition/Patient",
		Kind:             KindResource,
		Derivation:       DerivationSpecialization,
		byName:           map[string]*ElementDefinition{},
		childrenByParent: map[string][]*ElementDefinition{},
	}))

	require.NoError(t, r.Verify())

	err := r.AddStructureDefinition(&StructureDefinition{TypeID: "Other", URL: "http://example.org/fhir/StructureDefinition/Other"})
	assert.Error(t, err, "Add* calls must fail once the repository is sealed")
}

func TestVerifyFailsOnUnresolvedBaseDefinition(t *testing.T) {
	r := New()
	require.NoError(t, r.AddStructureDefinition(&StructureDefinition{
		TypeID:           "Patient",
		URL:              "http://example.org/fhir/StructureDefinition/Patient",
		BaseDefinition:   "http://example.org/fhir/StructureDefinition/missing",
		byName:           map[string]*ElementDefinition{},
		childrenByParent: map[string][]*ElementDefinition{},
	}))

	err := r.Verify()
	require.Error(t, err)
	loadErr, ok := err.(*LoadError)
	require.True(t, ok)
	assert.True(t, loadErr.HasFatal())
}

func TestVerifyFailsOnUnresolvedType(t *testing.T) {
	r := New()
	ed := &ElementDefinition{Name: "Patient.contact", Types: []TypeRef{{Code: "BogusType"}}}
	require.NoError(t, r.AddStructureDefinition(&StructureDefinition{
		TypeID:           "Patient",
		URL:              "http://example.org/fhir/StructureDefinition/Patient",
		Elements:         []*ElementDefinition{ed},
		byName:           map[string]*ElementDefinition{"Patient.contact": ed},
		childrenByParent: map[string][]*ElementDefinition{},
	}))

	err := r.Verify()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BogusType")
}

func TestVerifyRequiredBindingMissingValueSetIsFatal(t *testing.T) {
	r := New()
	ed := &ElementDefinition{
		Name:    "Patient.maritalStatus",
		Binding: &Binding{Strength: BindingRequired, ValueSetKey: DefinitionKey{URL: "http://example.org/fhir/ValueSet/missing"}},
	}
	require.NoError(t, r.AddStructureDefinition(&StructureDefinition{
		TypeID:           "Patient",
		URL:              "http://example.org/fhir/StructureDefinition/Patient",
		Elements:         []*ElementDefinition{ed},
		byName:           map[string]*ElementDefinition{"Patient.maritalStatus": ed},
		childrenByParent: map[string][]*ElementDefinition{},
	}))

	err := r.Verify()
	require.Error(t, err)
}

func TestVerifyPreferredBindingMissingValueSetIsNotFatal(t *testing.T) {
	r := New()
	ed := &ElementDefinition{
		Name:    "Patient.maritalStatus",
		Binding: &Binding{Strength: BindingPreferred, ValueSetKey: DefinitionKey{URL: "http://example.org/fhir/ValueSet/missing"}},
	}
	require.NoError(t, r.AddStructureDefinition(&StructureDefinition{
		TypeID:           "Patient",
		URL:              "http://example.org/fhir/StructureDefinition/Patient",
		Elements:         []*ElementDefinition{ed},
		byName:           map[string]*ElementDefinition{"Patient.maritalStatus": ed},
		childrenByParent: map[string][]*ElementDefinition{},
	}))

	assert.NoError(t, r.Verify(), "a non-required binding's unresolved value set is logged, not fatal")
}

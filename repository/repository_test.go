package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSD(typeID, url, base string, derivation Derivation) *StructureDefinition {
	return &StructureDefinition{
		TypeID:           typeID,
		URL:              url,
		BaseDefinition:   base,
		Derivation:       derivation,
		byName:           map[string]*ElementDefinition{},
		childrenByParent: map[string][]*ElementDefinition{},
	}
}

func TestAddStructureDefinitionRejectsDuplicateURL(t *testing.T) {
	r := New()
	require.NoError(t, r.AddStructureDefinition(newSD("Patient", "http://example.org/fhir/StructureDefinition/Patient", "", DerivationSpecialization)))
	err := r.AddStructureDefinition(newSD("Patient", "http://example.org/fhir/StructureDefinition/Patient", "", DerivationSpecialization))
	assert.Error(t, err)
}

func TestAddStructureDefinitionFirstByTypeWins(t *testing.T) {
	r := New()
	first := newSD("Patient", "http://example.org/fhir/StructureDefinition/Patient", "", DerivationSpecialization)
	second := newSD("Patient", "http://example.org/fhir/StructureDefinition/my-patient", "http://example.org/fhir/StructureDefinition/Patient", DerivationConstraint)
	require.NoError(t, r.AddStructureDefinition(first))
	require.NoError(t, r.AddStructureDefinition(second))

	sd, ok := r.StructureByType("Patient")
	require.True(t, ok)
	assert.Equal(t, first.URL, sd.URL, "the first-loaded definition for a type code wins the type-code index")
}

func TestIsDerivedFromWalksBaseChain(t *testing.T) {
	r := New()
	require.NoError(t, r.AddStructureDefinition(newSD("Resource", "http://example.org/fhir/StructureDefinition/Resource", "", DerivationBaseType)))
	require.NoError(t, r.AddStructureDefinition(newSD("DomainResource", "http://example.org/fhir/StructureDefinition/DomainResource", "http://example.org/fhir/StructureDefinition/Resource", DerivationSpecialization)))
	require.NoError(t, r.AddStructureDefinition(newSD("Patient", "http://example.org/fhir/StructureDefinition/Patient", "http://example.org/fhir/StructureDefinition/DomainResource", DerivationSpecialization)))

	assert.True(t, r.IsDerivedFrom("Patient", "Patient"), "a type is derived from itself")
	assert.True(t, r.IsDerivedFrom("Patient", "DomainResource"))
	assert.True(t, r.IsDerivedFrom("Patient", "Resource"))
	assert.False(t, r.IsDerivedFrom("Patient", "Observation"))
}

func TestResolveTypeNameAcceptsURLOrTypeCode(t *testing.T) {
	r := New()
	require.NoError(t, r.AddStructureDefinition(newSD("Patient", "http://example.org/fhir/StructureDefinition/Patient", "", DerivationSpecialization)))

	byCode, ok := r.ResolveTypeName("Patient")
	require.True(t, ok)
	assert.Equal(t, "http://example.org/fhir/StructureDefinition/Patient", byCode)

	byURL, ok := r.ResolveTypeName("http://example.org/fhir/StructureDefinition/Patient")
	require.True(t, ok)
	assert.Equal(t, byURL, byCode)

	_, ok = r.ResolveTypeName("Bogus")
	assert.False(t, ok)
}

func TestSealRejectsFurtherWrites(t *testing.T) {
	r := New()
	r.Seal()
	assert.Error(t, r.AddStructureDefinition(newSD("Patient", "http://example.org/fhir/StructureDefinition/Patient", "", DerivationSpecialization)))
	assert.Error(t, r.AddValueSet(&ValueSet{URL: "http://example.org/fhir/ValueSet/x"}))
	assert.Error(t, r.AddCodeSystem(&CodeSystem{URL: "http://example.org/fhir/CodeSystem/x"}))
}

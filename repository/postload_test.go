package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func codeSystemWithHierarchy() *CodeSystem {
	return &CodeSystem{
		URL:           "http://example.org/fhir/CodeSystem/animals",
		CaseSensitive: true,
		Content:       ContentComplete,
		Codes: []Code{
			{Code: "animal"},
			{Code: "mammal", Parent: "animal"},
			{Code: "dog", Parent: "mammal"},
			{Code: "bird", Parent: "animal"},
		},
	}
}

func TestFinalizeValueSetIncludeAllCodes(t *testing.T) {
	r := New()
	require.NoError(t, r.AddCodeSystem(codeSystemWithHierarchy()))
	require.NoError(t, r.AddValueSet(&ValueSet{
		URL:      "http://example.org/fhir/ValueSet/animals",
		Includes: []ValueSetRule{{SystemURL: "http://example.org/fhir/CodeSystem/animals"}},
	}))
	require.NoError(t, r.PostLoad())

	vs, ok := r.ValueSetByURL("http://example.org/fhir/ValueSet/animals")
	require.True(t, ok)
	assert.True(t, vs.ContainsCode("http://example.org/fhir/CodeSystem/animals", "dog"))
	assert.True(t, vs.ContainsCode("http://example.org/fhir/CodeSystem/animals", "bird"))
}

func TestFinalizeValueSetIsAFilter(t *testing.T) {
	r := New()
	require.NoError(t, r.AddCodeSystem(codeSystemWithHierarchy()))
	require.NoError(t, r.AddValueSet(&ValueSet{
		URL: "http://example.org/fhir/ValueSet/mammals",
		Includes: []ValueSetRule{{
			SystemURL: "http://example.org/fhir/CodeSystem/animals",
			Filters:   []ConceptFilter{{Property: "concept", Op: FilterIsA, Value: "mammal"}},
		}},
	}))
	require.NoError(t, r.PostLoad())

	vs, _ := r.ValueSetByURL("http://example.org/fhir/ValueSet/mammals")
	assert.True(t, vs.ContainsCode("http://example.org/fhir/CodeSystem/animals", "dog"), "dog descends from mammal")
	assert.True(t, vs.ContainsCode("http://example.org/fhir/CodeSystem/animals", "mammal"), "is-a includes the anchor code itself")
	assert.False(t, vs.ContainsCode("http://example.org/fhir/CodeSystem/animals", "bird"))
}

func TestFinalizeValueSetExcludeSubtracts(t *testing.T) {
	r := New()
	require.NoError(t, r.AddCodeSystem(codeSystemWithHierarchy()))
	require.NoError(t, r.AddValueSet(&ValueSet{
		URL:      "http://example.org/fhir/ValueSet/non-dog-animals",
		Includes: []ValueSetRule{{SystemURL: "http://example.org/fhir/CodeSystem/animals"}},
		Excludes: []ValueSetRule{{SystemURL: "http://example.org/fhir/CodeSystem/animals", Codes: []string{"dog"}}},
	}))
	require.NoError(t, r.PostLoad())

	vs, _ := r.ValueSetByURL("http://example.org/fhir/ValueSet/non-dog-animals")
	assert.False(t, vs.ContainsCode("http://example.org/fhir/CodeSystem/animals", "dog"))
	assert.True(t, vs.ContainsCode("http://example.org/fhir/CodeSystem/animals", "bird"))
}

func TestFinalizeValueSetUnionOfOtherValueSets(t *testing.T) {
	r := New()
	require.NoError(t, r.AddCodeSystem(codeSystemWithHierarchy()))
	require.NoError(t, r.AddValueSet(&ValueSet{
		URL:      "http://example.org/fhir/ValueSet/dogs",
		Includes: []ValueSetRule{{SystemURL: "http://example.org/fhir/CodeSystem/animals", Codes: []string{"dog"}}},
	}))
	require.NoError(t, r.AddValueSet(&ValueSet{
		URL:      "http://example.org/fhir/ValueSet/birds",
		Includes: []ValueSetRule{{SystemURL: "http://example.org/fhir/CodeSystem/animals", Codes: []string{"bird"}}},
	}))
	require.NoError(t, r.AddValueSet(&ValueSet{
		URL:      "http://example.org/fhir/ValueSet/pets",
		Includes: []ValueSetRule{{ValueSetURLs: []string{"http://example.org/fhir/ValueSet/dogs", "http://example.org/fhir/ValueSet/birds"}}},
	}))
	require.NoError(t, r.PostLoad())

	vs, _ := r.ValueSetByURL("http://example.org/fhir/ValueSet/pets")
	assert.True(t, vs.ContainsCode("http://example.org/fhir/CodeSystem/animals", "dog"))
	assert.True(t, vs.ContainsCode("http://example.org/fhir/CodeSystem/animals", "bird"))
	assert.False(t, vs.ContainsCode("http://example.org/fhir/CodeSystem/animals", "mammal"))
}

func TestFinalizeValueSetIsIdempotent(t *testing.T) {
	r := New()
	require.NoError(t, r.AddCodeSystem(codeSystemWithHierarchy()))
	vs := &ValueSet{
		URL:      "http://example.org/fhir/ValueSet/animals",
		Includes: []ValueSetRule{{SystemURL: "http://example.org/fhir/CodeSystem/animals"}},
	}
	require.NoError(t, r.AddValueSet(vs))
	require.NoError(t, r.PostLoad())
	first := len(vs.expansion)
	require.NoError(t, r.finalizeValueSet(vs))
	assert.Equal(t, first, len(vs.expansion), "re-finalizing an already-finalized value set is a no-op")
}

func TestMergeSupplementsAddsCodesToTarget(t *testing.T) {
	r := New()
	require.NoError(t, r.AddCodeSystem(&CodeSystem{
		URL:     "http://example.org/fhir/CodeSystem/base",
		Content: ContentFragment,
		Codes:   []Code{{Code: "a"}},
	}))
	require.NoError(t, r.AddCodeSystem(&CodeSystem{
		URL:         "http://example.org/fhir/CodeSystem/supplement",
		Content:     ContentSupplement,
		Supplements: "http://example.org/fhir/CodeSystem/base",
		Codes:       []Code{{Code: "b"}},
	}))
	require.NoError(t, r.PostLoad())

	base, ok := r.CodeSystemByURL("http://example.org/fhir/CodeSystem/base")
	require.True(t, ok)
	_, hasA := base.ByCode("a")
	_, hasB := base.ByCode("b")
	assert.True(t, hasA)
	assert.True(t, hasB, "supplement codes are merged into the target code system")
}

func TestFixInheritedSlicingPropagatesFromBase(t *testing.T) {
	r := New()
	baseBuilder := NewStructureDefinitionBuilder("Patient", "http://example.org/fhir/StructureDefinition/Patient", "", KindResource, DerivationSpecialization)
	baseBuilder.AddElement(ElementDefinition{OriginalName: "Patient", Name: "Patient"})
	baseBuilder.AddElement(ElementDefinition{OriginalName: "Patient.identifier", Name: "Patient.identifier", IsArray: true})
	baseBuilder.AddElement(ElementDefinition{OriginalName: "Patient.identifier:mrn.system", TypeID: "uri"})
	base, baseSlices := baseBuilder.Build()
	require.NoError(t, r.AddStructureDefinition(base))
	for _, s := range baseSlices {
		require.NoError(t, r.AddStructureDefinition(s))
	}

	derivedBuilder := NewStructureDefinitionBuilder("Patient", "http://example.org/fhir/StructureDefinition/my-patient", "", KindResource, DerivationConstraint)
	derivedBuilder.SetBaseDefinition("http://example.org/fhir/StructureDefinition/Patient")
	derivedBuilder.AddElement(ElementDefinition{OriginalName: "Patient", Name: "Patient"})
	derivedBuilder.AddElement(ElementDefinition{OriginalName: "Patient.identifier", Name: "Patient.identifier", IsArray: true})
	derived, _ := derivedBuilder.Build()
	require.NoError(t, r.AddStructureDefinition(derived))

	derivedIdentifier, ok := derived.ByName("Patient.identifier")
	require.True(t, ok)
	require.Nil(t, derivedIdentifier.Slicing, "the derived profile declares no slicing of its own before the fixer runs")

	r.fixInheritedSlicing()
	assert.NotNil(t, derivedIdentifier.Slicing, "the fixer propagates the base element's slicing down to the derived element")
}
